// Package dom holds a captured copy of a rendered page: the element tree
// including open shadow roots, flattened slot assignments, and the small
// subset of computed style and layout the extraction pipeline reads.
//
// A tree is produced either by the browser capture script or by converting
// parsed HTML. Everything downstream of capture works on this tree only, so
// resolvers and probes are plain functions that can be tested without a
// browser.
package dom

import "strings"

// NodeType identifies the kind of a Node.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	// FragmentNode is a shadow root. Its Host is the element it is attached to.
	FragmentNode
)

// Namespace values for Node.Namespace.
const (
	NamespaceHTML = ""
	NamespaceSVG  = "svg"
)

// Attr is a single attribute. Prefixed names keep their prefix ("xlink:href").
type Attr struct {
	Name  string
	Value string
}

// Rect is a layout box in page coordinates.
type Rect struct {
	X      float64 `json:"x"      yaml:"x"`
	Y      float64 `json:"y"      yaml:"y"`
	Width  float64 `json:"width"  yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// PseudoStyle is the computed style of a ::before or ::after pseudo-element.
type PseudoStyle struct {
	Content  string `json:"content"`
	Position string `json:"position"`
}

// Style is the computed style subset captured for candidate elements.
type Style struct {
	Position        string      `json:"position"`
	BackgroundImage string      `json:"backgroundImage"`
	Before          PseudoStyle `json:"before"`
	After           PseudoStyle `json:"after"`
}

// Node is one node of the captured tree.
type Node struct {
	Type      NodeType
	Tag       string // local name as the browser reports it ("a", "svg", "foreignObject")
	Namespace string
	Data      string // text or comment content
	Attrs     []Attr

	Parent   *Node
	Children []*Node

	// Shadow is the open shadow root hosted by this element, if any.
	Shadow *Node
	// Assigned holds the flattened assigned nodes of a <slot> element.
	Assigned []*Node

	Style *Style
	Rect  *Rect
	// Props carries live DOM properties that differ from attributes (currentSrc).
	Props map[string]string

	host *Node
}

// NewElement returns a detached element node.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText returns a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// IsElement reports whether n is an element whose tag matches one of tags,
// compared case-insensitively. With no tags it only checks the node type.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Tag, t) {
			return true
		}
	}
	return false
}

// LowerTag returns the lower-cased tag name.
func (n *Node) LowerTag() string {
	return strings.ToLower(n.Tag)
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// AppendChild attaches c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. It is a no-op when c is not a child.
func (n *Node) RemoveChild(c *Node) {
	for i, k := range n.Children {
		if k == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return
		}
	}
}

// AttachShadow makes root (a FragmentNode) the shadow root of n.
func (n *Node) AttachShadow(root *Node) {
	root.Type = FragmentNode
	root.Parent = nil
	root.host = n
	n.Shadow = root
}

// Host returns the host element of a shadow root, or nil.
func (n *Node) Host() *Node {
	if n == nil {
		return nil
	}
	return n.host
}

// ParentElement mirrors the DOM property: the parent when it is an element,
// nil at a document or shadow-root boundary.
func (n *Node) ParentElement() *Node {
	if n == nil || n.Parent == nil || n.Parent.Type != ElementNode {
		return nil
	}
	return n.Parent
}

// Clone returns a deep copy of n's light tree. Shadow roots, slot
// assignments, style and layout are not copied.
func (n *Node) Clone() *Node {
	c := &Node{
		Type:      n.Type,
		Tag:       n.Tag,
		Namespace: n.Namespace,
		Data:      n.Data,
		Attrs:     append([]Attr(nil), n.Attrs...),
	}
	for _, k := range n.Children {
		c.AppendChild(k.Clone())
	}
	return c
}
