package svgprep

import (
	"math"
	"regexp"
	"strings"

	"github.com/mj1618/clickaudit/internal/dom"
)

const (
	// DefaultEdge is the longest edge given to an SVG that only has a viewBox.
	DefaultEdge = 200
	// FallbackSize is used when neither dimensions nor a viewBox exist.
	FallbackSize = 24
)

var (
	badNamespace = regexp.MustCompile(`xmlns=["']https?://(www\.)?w3\.org/2000/svg["']`)
	svgOpenTag   = regexp.MustCompile(`(?i)<svg`)
)

// Sanitize rewrites svg markup into something a standalone renderer
// accepts. It normalizes the SVG namespace, declares xlink when xlink
// attributes are used, drops preserveAspectRatio="none", turns 100% sizes
// into viewBox pixels, strips <foreignObject> and gives the root explicit
// pixel dimensions. On failure the source is returned unchanged.
func Sanitize(src string) string {
	if strings.TrimSpace(src) == "" {
		return src
	}
	cleaned := badNamespace.ReplaceAllString(src, `xmlns="`+NamespaceSVG+`"`)
	if strings.Contains(cleaned, "xlink:") && !strings.Contains(cleaned, "xmlns:xlink") {
		if loc := svgOpenTag.FindStringIndex(cleaned); loc != nil {
			cleaned = cleaned[:loc[1]] + ` xmlns:xlink="` + NamespaceXLink + `"` + cleaned[loc[1]:]
		}
	}
	svg, err := Parse(cleaned)
	if err != nil {
		return src
	}
	SanitizeTree(svg)
	return dom.OuterXML(svg)
}

// SanitizeTree applies the structural fixes of Sanitize to a parsed root.
func SanitizeTree(svg *dom.Node) {
	svg.SetAttr("xmlns", NamespaceSVG)
	if usesXLink(svg) {
		svg.SetAttr("xmlns:xlink", NamespaceXLink)
	}
	if strings.EqualFold(strings.TrimSpace(svg.AttrOr("preserveAspectRatio", "")), "none") {
		svg.RemoveAttr("preserveAspectRatio")
	}
	for _, fo := range dom.FindAll(svg, false, func(n *dom.Node) bool { return n.IsElement("foreignObject") }) {
		if fo.Parent != nil {
			fo.Parent.RemoveChild(fo)
		}
	}
	fixDimensions(svg)
}

func usesXLink(svg *dom.Node) bool {
	for _, n := range append([]*dom.Node{svg}, dom.Elements(svg)...) {
		for _, a := range n.Attrs {
			if strings.HasPrefix(a.Name, "xlink:") {
				return true
			}
		}
	}
	return false
}

func fixDimensions(svg *dom.Node) {
	vb, hasVB := ParseViewBox(svg.AttrOr("viewBox", ""))
	if hasVB {
		if isFull(svg.AttrOr("width", "")) {
			svg.SetAttr("width", formatFloat(vb.Width))
		}
		if isFull(svg.AttrOr("height", "")) {
			svg.SetAttr("height", formatFloat(vb.Height))
		}
	}
	w, hasW := Length(svg.AttrOr("width", ""))
	h, hasH := Length(svg.AttrOr("height", ""))
	switch {
	case hasW && hasH:
		return
	case hasVB && hasW:
		h = w * vb.Height / vb.Width
	case hasVB && hasH:
		w = h * vb.Width / vb.Height
	case hasVB:
		scale := DefaultEdge / math.Max(vb.Width, vb.Height)
		w, h = vb.Width*scale, vb.Height*scale
	case hasW:
		h = w
	case hasH:
		w = h
	default:
		w, h = FallbackSize, FallbackSize
	}
	if !hasW {
		svg.SetAttr("width", formatFloat(round2(w)))
	}
	if !hasH {
		svg.SetAttr("height", formatFloat(round2(h)))
	}
}

func isFull(v string) bool {
	return strings.TrimSpace(v) == "100%"
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
