// Package accname resolves the text an interactive element would be
// announced with. Each source (direct text, shadow tree, slotted content,
// pseudo-element content, ARIA id references) has its own resolver, and
// Merge combines them in a fixed precedence.
package accname

import (
	"regexp"
	"strings"

	"github.com/mj1618/clickaudit/internal/dom"
)

// Policy controls which subtrees a text walk skips.
type Policy struct {
	// Exclude lists lower-case tag names whose whole subtree contributes no text.
	Exclude []string
}

var (
	// VisibleTextPolicy is used for the light-DOM label: icon markup and
	// stylesheets never leak into it.
	VisibleTextPolicy = Policy{Exclude: []string{"svg", "style"}}
	// ShadowTextPolicy is used inside shadow trees.
	ShadowTextPolicy = Policy{Exclude: []string{"style"}}
)

func (p Policy) skips(n *dom.Node) bool {
	if n.Type != dom.ElementNode {
		return false
	}
	for _, t := range p.Exclude {
		if strings.EqualFold(n.Tag, t) {
			return true
		}
	}
	return false
}

// collectText gathers the trimmed text of every text node below roots in
// light pre-order, skipping excluded subtrees. expandSlots replaces a <slot>
// with its assigned nodes.
func collectText(roots []*dom.Node, p Policy, expandSlots bool) []string {
	var parts []string
	stack := make([]*dom.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch {
		case n.Type == dom.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			continue
		case p.skips(n):
			continue
		}
		kids := n.Children
		if expandSlots && n.IsElement("slot") {
			kids = n.Assigned
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return parts
}

func joinCollapse(parts []string) string {
	return dom.CollapseSpace(strings.Join(parts, " "))
}

// DirectText returns the visible light-DOM text of el, excluding <svg> and
// <style> subtrees.
func DirectText(el *dom.Node) string {
	return DirectTextWith(el, VisibleTextPolicy)
}

// DirectTextWith is DirectText with an explicit exclusion policy.
func DirectTextWith(el *dom.Node, p Policy) string {
	if el == nil {
		return ""
	}
	return joinCollapse(collectText(el.Children, p, false))
}

// ShadowText returns the text of the shadow tree hosted by el or by any of
// its light descendants. Only hosting is detected: an element that itself
// lives inside another element's shadow tree gets no shadow text from that.
func ShadowText(el *dom.Node) string {
	if el == nil {
		return ""
	}
	hosts := []*dom.Node{el}
	hosts = append(hosts, dom.Elements(el)...)
	var parts []string
	for _, h := range hosts {
		if h.Shadow == nil {
			continue
		}
		parts = append(parts, shadowParts(h.Shadow, 0)...)
	}
	return joinCollapse(parts)
}

const maxShadowDepth = 64

// shadowParts walks a shadow root's children. Nested hosts inside it
// contribute their own shadow children rather than their light children.
func shadowParts(root *dom.Node, depth int) []string {
	if depth > maxShadowDepth {
		return nil
	}
	var parts []string
	for _, c := range root.Children {
		parts = append(parts, shadowNodeParts(c, depth)...)
	}
	return parts
}

func shadowNodeParts(n *dom.Node, depth int) []string {
	switch {
	case n.Type == dom.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			return []string{s}
		}
		return nil
	case n.Type != dom.ElementNode || ShadowTextPolicy.skips(n):
		return nil
	case n.Shadow != nil:
		return shadowParts(n.Shadow, depth+1)
	}
	var parts []string
	for _, c := range n.Children {
		parts = append(parts, shadowNodeParts(c, depth)...)
	}
	return parts
}

// SlotText returns the text projected into the <slot> elements of el's
// light subtree, resolved through flattened assignment. It is empty when
// no slot is present.
func SlotText(el *dom.Node) string {
	if el == nil {
		return ""
	}
	var parts []string
	for _, d := range dom.Elements(el) {
		if d.IsElement("slot") {
			parts = append(parts, collectText(d.Assigned, ShadowTextPolicy, true)...)
		}
	}
	return joinCollapse(parts)
}

var quoteEdges = regexp.MustCompile(`^["']|["']$`)

// PseudoText returns the ::before and ::after content of el joined by a
// space, with one layer of surrounding quotes removed.
func PseudoText(el *dom.Node) string {
	if el == nil || el.Style == nil {
		return ""
	}
	var parts []string
	for _, c := range []string{el.Style.Before.Content, el.Style.After.Content} {
		if s := pseudoContent(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func pseudoContent(content string) string {
	c := strings.TrimSpace(content)
	switch c {
	case "", "none", "normal", `""`, "''":
		return ""
	}
	return strings.TrimSpace(quoteEdges.ReplaceAllString(c, ""))
}

// HasPseudoContent reports whether a computed pseudo content value renders
// anything.
func HasPseudoContent(content string) bool {
	return pseudoContent(content) != ""
}

// MismatchMarker is substituted for an ARIA id reference that does not
// resolve to an element.
func MismatchMarker(id string) string {
	return "Aria Mismatch for " + id
}

// ReferencedText resolves a space separated id list (aria-labelledby,
// aria-describedby) against doc. Found elements contribute their collapsed
// text content, missing ids contribute MismatchMarker. Empty fragments are
// dropped.
func ReferencedText(doc *dom.Document, ids string) string {
	var parts []string
	for _, id := range strings.Fields(ids) {
		el := doc.ElementByID(id)
		if el == nil {
			parts = append(parts, MismatchMarker(id))
			continue
		}
		if s := dom.CollapseSpace(dom.TextContent(el)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
