package svgprep

import (
	"strings"

	"github.com/mj1618/clickaudit/internal/dom"
)

// DefaultFixedColor is the paint used for previews.
const DefaultFixedColor = "#888888"

var shapeTags = []string{"path", "rect", "circle", "polygon", "ellipse", "line", "polyline"}

// FixColors replaces ambiguous paint on shape elements with color. Fill that
// is unset, currentColor or inherit becomes color. Stroke that is
// currentColor or inherit becomes color; an unset stroke becomes color only
// on unfilled shapes (fill="none", line, polyline). Running it twice gives
// the same result. On parse failure src is returned unchanged.
func FixColors(src, color string) string {
	if color == "" {
		color = DefaultFixedColor
	}
	svg, err := Parse(src)
	if err != nil {
		return src
	}
	FixColorsTree(svg, color)
	return dom.OuterXML(svg)
}

// FixColorsTree applies FixColors to a parsed root in place.
func FixColorsTree(svg *dom.Node, color string) {
	for _, el := range dom.FindAll(svg, false, func(n *dom.Node) bool { return n.IsElement(shapeTags...) }) {
		fill, hasFill := paint(el, "fill")
		if !hasFill || ambiguous(fill) {
			setPaint(el, "fill", color)
			fill = color
		}
		stroke, hasStroke := paint(el, "stroke")
		switch {
		case hasStroke && ambiguous(stroke):
			setPaint(el, "stroke", color)
		case !hasStroke:
			if strings.EqualFold(fill, "none") || el.IsElement("line", "polyline") {
				setPaint(el, "stroke", color)
			}
		}
	}
}

func ambiguous(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "currentcolor", "inherit":
		return true
	}
	return false
}

// paint returns the effective value of a paint property: an inline style
// declaration wins over the presentation attribute.
func paint(el *dom.Node, prop string) (string, bool) {
	if v, ok := styleDecl(el.AttrOr("style", ""), prop); ok {
		return v, true
	}
	v, ok := el.Attr(prop)
	if ok && strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, ok
}

// setPaint writes prop as a presentation attribute and removes any inline
// style declaration that would override it.
func setPaint(el *dom.Node, prop, value string) {
	el.SetAttr(prop, value)
	style, ok := el.Attr("style")
	if !ok {
		return
	}
	var kept []string
	for _, d := range strings.Split(style, ";") {
		k, _, found := strings.Cut(d, ":")
		if found && strings.EqualFold(strings.TrimSpace(k), prop) {
			continue
		}
		if strings.TrimSpace(d) != "" {
			kept = append(kept, strings.TrimSpace(d))
		}
	}
	if len(kept) == 0 {
		el.RemoveAttr("style")
		return
	}
	el.SetAttr("style", strings.Join(kept, ";"))
}

func styleDecl(style, prop string) (string, bool) {
	for _, d := range strings.Split(style, ";") {
		k, v, found := strings.Cut(d, ":")
		if found && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
