// Package probe holds single-element introspection: positioning, nested
// ARIA attributes, ancestor links, new-window behaviour, aria-hidden
// inheritance, role suppression and href resolution.
package probe

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mj1618/clickaudit/internal/accname"
	"github.com/mj1618/clickaudit/internal/dom"
)

const (
	// maxAncestorWalk caps the ancestor-link walk.
	maxAncestorWalk = 500
	// maxAriaHiddenDepth is the number of ancestors checked above the element.
	maxAriaHiddenDepth = 10
)

// Href sentinels.
const (
	HrefNotApplicable = "N/A (no URL)"
	HrefMissing       = "href is missing"
)

// IsAbsolutelyPositioned reports whether el, or a ::before/::after
// pseudo-element that renders content, is absolutely positioned.
func IsAbsolutelyPositioned(el *dom.Node) bool {
	if el == nil || el.Style == nil {
		return false
	}
	s := el.Style
	if s.Position == "absolute" {
		return true
	}
	for _, p := range []dom.PseudoStyle{s.Before, s.After} {
		if p.Position == "absolute" && accname.HasPseudoContent(p.Content) {
			return true
		}
	}
	return false
}

// NestedAria is a descendant carrying an ARIA label attribute.
type NestedAria struct {
	Tag            string  `yaml:"tag"            json:"tag"`
	AriaLabel      *string `yaml:"ariaLabel"      json:"ariaLabel"`
	AriaLabelledBy *string `yaml:"ariaLabelledBy" json:"ariaLabelledBy"`
}

// NestedAriaElements returns, in document order, every light descendant of
// el with a non-empty aria-label or aria-labelledby.
func NestedAriaElements(el *dom.Node) []NestedAria {
	out := []NestedAria{}
	if el == nil {
		return out
	}
	for _, d := range dom.Elements(el) {
		label := attrPtr(d, "aria-label")
		by := attrPtr(d, "aria-labelledby")
		if (label == nil || *label == "") && (by == nil || *by == "") {
			continue
		}
		out = append(out, NestedAria{Tag: d.LowerTag(), AriaLabel: label, AriaLabelledBy: by})
	}
	return out
}

func attrPtr(n *dom.Node, name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// AncestorLinkHref returns the resolved href of the nearest ancestor <a>,
// or nil. An ancestor anchor without a usable href yields an empty string.
func AncestorLinkHref(el *dom.Node, base *url.URL) *string {
	cur := el.ParentElement()
	for i := 0; cur != nil && i < maxAncestorWalk; i++ {
		if cur.IsElement("a") {
			href := ""
			if raw, ok := cur.Attr("href"); ok {
				if u, err := resolve(raw, base); err == nil {
					href = u.String()
				}
			}
			return &href
		}
		cur = cur.ParentElement()
	}
	return nil
}

var windowOpen = regexp.MustCompile(`\b(?:window|self|top|parent)\s*\.\s*open\s*\(`)

// OpensNewWindow reports declarative (target="_blank") and scripted
// (onclick calling window.open on el or one of its direct children)
// new-window behaviour separately.
func OpensNewWindow(el *dom.Node) (byTarget, byScript bool) {
	if el == nil {
		return false, false
	}
	byTarget = strings.EqualFold(strings.TrimSpace(el.AttrOr("target", "")), "_blank")
	if opensByScript(el) {
		return byTarget, true
	}
	for _, c := range el.Children {
		if c.Type == dom.ElementNode && opensByScript(c) {
			return byTarget, true
		}
	}
	return byTarget, false
}

func opensByScript(n *dom.Node) bool {
	h, ok := n.Attr("onclick")
	return ok && windowOpen.MatchString(h)
}

// AriaHiddenEffective reports whether el or one of its first ten ancestors
// has aria-hidden="true".
func AriaHiddenEffective(el *dom.Node) bool {
	cur := el
	for depth := 0; cur != nil && depth <= maxAriaHiddenDepth; depth++ {
		if v, ok := cur.Attr("aria-hidden"); ok && v == "true" {
			return true
		}
		cur = cur.ParentElement()
	}
	return false
}

// HasPresentationRole reports whether el's own role is presentation or none.
func HasPresentationRole(el *dom.Node) bool {
	role, _ := el.Attr("role")
	return role == "presentation" || role == "none"
}

// Href is the resolved link target of an element.
type Href struct {
	URL string
	// Internal is nil when no URL applies.
	Internal *bool
}

// ResolveHref resolves el's href against base. Non-anchors get
// HrefNotApplicable; anchors whose href is missing, blank, contains
// whitespace or fails to parse get HrefMissing. Internal compares hostnames
// with the page URL.
func ResolveHref(el *dom.Node, base *url.URL, page *url.URL) Href {
	if !el.IsElement("a") {
		return Href{URL: HrefNotApplicable}
	}
	raw, ok := el.Attr("href")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || strings.ContainsAny(raw, " \t\n") {
		return Href{URL: HrefMissing}
	}
	u, err := resolve(raw, base)
	if err != nil {
		return Href{URL: HrefMissing}
	}
	internal := page != nil && strings.EqualFold(u.Hostname(), page.Hostname())
	return Href{URL: u.String(), Internal: &internal}
}

func resolve(raw string, base *url.URL) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if base == nil {
		return ref, nil
	}
	return base.ResolveReference(ref), nil
}
