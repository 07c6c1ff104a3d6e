// Package svgprep prepares captured SVG markup for rasterization. All passes
// are best effort: on any failure they return their input unchanged.
package svgprep

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mj1618/clickaudit/internal/dom"
)

const (
	NamespaceSVG   = "http://www.w3.org/2000/svg"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

var errNoSVG = errors.New("svgprep: no <svg> element")

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Parse reads SVG markup into a detached tree and returns its root <svg>.
// Markup is parsed the way a browser parses inline SVG, so tag and
// attribute names get their SVG casing.
func Parse(src string) (*dom.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), bodyContext)
	if err != nil {
		return nil, err
	}
	for _, h := range nodes {
		root := dom.Convert(h)
		if root == nil {
			continue
		}
		if root.IsElement("svg") {
			return root, nil
		}
		if svg := dom.Find(root, false, func(n *dom.Node) bool { return n.IsElement("svg") }); svg != nil {
			if p := svg.Parent; p != nil {
				p.RemoveChild(svg)
			}
			return svg, nil
		}
	}
	return nil, errNoSVG
}

// ViewBox is a parsed viewBox attribute.
type ViewBox struct {
	MinX, MinY, Width, Height float64
}

// ParseViewBox parses "min-x min-y width height" with space or comma
// separators. Width and height must be positive.
func ParseViewBox(s string) (ViewBox, bool) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(f) != 4 {
		return ViewBox{}, false
	}
	var v [4]float64
	for i, p := range f {
		x, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ViewBox{}, false
		}
		v[i] = x
	}
	if v[2] <= 0 || v[3] <= 0 {
		return ViewBox{}, false
	}
	return ViewBox{v[0], v[1], v[2], v[3]}, true
}

// Length parses a pixel length ("24", "24px", "1.5e1"). Percentages and
// other units are rejected.
func Length(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || x <= 0 {
		return 0, false
	}
	return x, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
