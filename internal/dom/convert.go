package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FromHTML parses an HTML document and converts it into a captured tree.
// Declarative shadow roots (<template shadowrootmode="open">) become shadow
// roots of their parent and slots are assigned.
func FromHTML(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	return Convert(root), nil
}

// Convert turns a parsed x/net/html tree into a captured tree. Inline style
// attributes are read into Style. There is no layout, so Rect stays nil.
func Convert(h *html.Node) *Node {
	n := convertNode(h)
	if n == nil {
		return nil
	}
	AssignSlots(n)
	return n
}

func convertNode(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.DocumentNode:
		n = &Node{Type: DocumentNode}
	case html.ElementNode:
		n = &Node{Type: ElementNode, Tag: h.Data, Namespace: h.Namespace}
		for _, a := range h.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.Attrs = append(n.Attrs, Attr{Name: name, Value: a.Val})
		}
		if style, ok := n.Attr("style"); ok {
			n.Style = ParseInlineStyle(style)
		}
		// Template content is inert: it is neither queried nor
		// reachable by id.
		if h.Data == "template" && h.Namespace == "" {
			return n
		}
	case html.TextNode:
		return &Node{Type: TextNode, Data: h.Data}
	case html.CommentNode:
		return &Node{Type: CommentNode, Data: h.Data}
	default:
		return nil
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if isShadowTemplate(c) && n.Type == ElementNode && n.Shadow == nil {
			root := &Node{Type: FragmentNode}
			for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
				if k := convertNode(gc); k != nil {
					root.AppendChild(k)
				}
			}
			n.AttachShadow(root)
			continue
		}
		if k := convertNode(c); k != nil {
			n.AppendChild(k)
		}
	}
	return n
}

func isShadowTemplate(h *html.Node) bool {
	if h.Type != html.ElementNode || h.Data != "template" || h.Namespace != "" {
		return false
	}
	for _, a := range h.Attr {
		if a.Key == "shadowrootmode" || a.Key == "shadowroot" {
			return strings.EqualFold(a.Val, "open")
		}
	}
	return false
}

// ParseInlineStyle reads the declarations of a style attribute that the
// pipeline cares about. The background shorthand contributes its url().
func ParseInlineStyle(decl string) *Style {
	s := &Style{Position: "static", BackgroundImage: "none"}
	for _, part := range strings.Split(decl, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		switch k {
		case "position":
			s.Position = strings.ToLower(v)
		case "background-image":
			s.BackgroundImage = v
		case "background":
			if i := strings.Index(strings.ToLower(v), "url("); i >= 0 {
				if j := strings.Index(v[i:], ")"); j >= 0 {
					s.BackgroundImage = v[i : i+j+1]
				}
			}
		}
	}
	return s
}
