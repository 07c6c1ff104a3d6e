package imagery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/svgprep"
)

// ErrFragmentNotFound is returned when a <use> target does not exist.
var ErrFragmentNotFound = errors.New("imagery: use fragment not found")

func firstUse(svg *dom.Node) *dom.Node {
	return dom.Find(svg, false, func(n *dom.Node) bool { return n.IsElement("use") })
}

// UseHref returns the href of a <use> element, preferring href over
// xlink:href.
func UseHref(use *dom.Node) string {
	if v, ok := use.Attr("href"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(use.AttrOr("xlink:href", ""))
}

// ResolveUse builds a standalone copy of svg when it draws through a <use>
// reference. The target is looked up in doc for "#frag" and fetched for
// "url#frag". A referenced <symbol> contributes its viewBox and children;
// any other element is copied whole. The result carries svg's own
// attributes. It returns nil, nil when svg has no <use>.
func (a *Analyzer) ResolveUse(ctx context.Context, doc *dom.Document, svg *dom.Node) (*dom.Node, error) {
	use := firstUse(svg)
	if use == nil {
		return nil, nil
	}
	href := UseHref(use)
	docPart, frag, _ := strings.Cut(href, "#")
	if frag == "" {
		return nil, fmt.Errorf("%w: %q has no fragment", ErrFragmentNotFound, href)
	}

	var ref *dom.Node
	if docPart == "" {
		ref = doc.ElementByID(frag)
	} else {
		var err error
		ref, err = a.externalFragment(ctx, resolveURL(doc, docPart), frag)
		if err != nil {
			return nil, err
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: #%s", ErrFragmentNotFound, frag)
	}
	return standalone(svg, ref), nil
}

func standalone(svg, ref *dom.Node) *dom.Node {
	out := dom.NewElement("svg", append([]dom.Attr(nil), svg.Attrs...)...)
	out.Namespace = dom.NamespaceSVG
	out.SetAttr("xmlns", svgprep.NamespaceSVG)
	if !out.HasAttr("width") {
		out.SetAttr("width", "24")
	}
	if !out.HasAttr("height") {
		out.SetAttr("height", "24")
	}
	if vb, ok := ref.Attr("viewBox"); ok && vb != "" {
		out.SetAttr("viewBox", vb)
	}
	if ref.IsElement("symbol") {
		for _, c := range ref.Children {
			out.AppendChild(c.Clone())
		}
		return out
	}
	out.AppendChild(ref.Clone())
	return out
}

// externalFragment fetches a sprite document and finds the element with the
// given id in it.
func (a *Analyzer) externalFragment(ctx context.Context, docURL, frag string) (*dom.Node, error) {
	res, err := a.cfg.Fetcher.Fetch(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("imagery: fetch sprite: %w", err)
	}
	gdoc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("imagery: parse sprite: %w", err)
	}
	match := gdoc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == frag
	}).First()
	if match.Length() == 0 {
		return nil, fmt.Errorf("%w: %s#%s", ErrFragmentNotFound, docURL, frag)
	}
	return dom.Convert(match.Get(0)), nil
}

// ProcessSVG returns preview-ready markup for svg: <use> references
// resolved, sanitized and with fixed colors.
func (a *Analyzer) ProcessSVG(ctx context.Context, doc *dom.Document, svg *dom.Node) (string, error) {
	node := svg
	resolved, err := a.ResolveUse(ctx, doc, svg)
	if err != nil {
		return "", err
	}
	if resolved != nil {
		node = resolved
	}
	return svgprep.FixColors(svgprep.Sanitize(dom.OuterXML(node)), a.cfg.FixedColor), nil
}
