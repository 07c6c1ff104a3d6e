package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// OuterXML serializes n and its light descendants as XML markup, the way
// XMLSerializer does for SVG content. Childless elements self-close.
func OuterXML(n *Node) string {
	var b strings.Builder
	writeXML(&b, n)
	return b.String()
}

// InnerXML serializes only the children of n.
func InnerXML(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		writeXML(&b, c)
	}
	return b.String()
}

func writeXML(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(html.EscapeString(n.Data))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case DocumentNode, FragmentNode:
		for _, c := range n.Children {
			writeXML(b, c)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.Attrs {
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Value))
			b.WriteByte('"')
		}
		if len(n.Children) == 0 {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.Children {
			writeXML(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}
