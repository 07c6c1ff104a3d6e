package imagery

import (
	"strings"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/model"
)

// FigureContext reports the nearest <figure> at or above el and its
// <figcaption>.
func FigureContext(el *dom.Node) model.FigureContext {
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if !cur.IsElement("figure") {
			continue
		}
		caption := dom.Find(cur, false, func(n *dom.Node) bool { return n.IsElement("figcaption") })
		has := caption != nil
		text := ""
		if has {
			text = strings.TrimSpace(dom.TextContent(caption))
		}
		return model.FigureContext{InFigure: true, HasCaption: &has, CaptionText: &text}
	}
	return model.FigureContext{InFigure: false}
}
