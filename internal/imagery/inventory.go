package imagery

import (
	"context"
	"fmt"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/model"
)

// Inventory describes every <svg> of the page in composed document order.
// A failure on one SVG is recorded on its entry and does not stop the rest.
func (a *Analyzer) Inventory(ctx context.Context, doc *dom.Document) []model.SvgEntry {
	entries := []model.SvgEntry{}
	id := 0
	for _, el := range doc.Elements() {
		if !el.IsElement("svg") {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		entries = append(entries, a.inventoryEntry(ctx, doc, el, id))
		id++
	}
	return entries
}

func (a *Analyzer) inventoryEntry(ctx context.Context, doc *dom.Document, svg *dom.Node, id int) (e model.SvgEntry) {
	e = model.SvgEntry{ID: id, OriginalHTML: dom.OuterXML(svg), UseHrefs: []string{}}
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn().Int("svg", id).Interface("panic", r).Msg("svg inventory entry failed")
			e = model.SvgEntry{ID: id, OriginalHTML: e.OriginalHTML, UseHrefs: []string{}, Error: fmt.Sprint(r)}
		}
	}()

	role := svg.AttrOr("role", "")
	e.TitleDesc = TitleOrDesc(svg)
	e.AriaLabel = svg.AttrOr("aria-label", "")
	e.AriaLabelledBy = svg.AttrOr("aria-labelledby", "")
	e.AriaDescribedBy = svg.AttrOr("aria-describedby", "")
	e.HasAriaHidden = svg.AttrOr("aria-hidden", "") == "true"
	e.HasRolePresentation = role == "presentation" || role == "none"
	for _, u := range dom.FindAll(svg, false, func(n *dom.Node) bool { return n.IsElement("use") }) {
		e.UseHrefs = append(e.UseHrefs, UseHref(u))
	}
	e.HasUseElements = len(e.UseHrefs) > 0
	e.Width = svg.AttrOr("width", "auto")
	e.Height = svg.AttrOr("height", "auto")
	e.ViewBox = svg.AttrOr("viewBox", "")
	e.ClassName = svg.AttrOr("class", "")
	e.Style = svg.AttrOr("style", "")

	processed, err := a.ProcessSVG(ctx, doc, svg)
	if err != nil {
		a.log.Debug().Err(err).Int("svg", id).Msg("svg reference not resolved")
		e.Error = err.Error()
		return e
	}
	e.ProcessedSvg = processed
	if a.cfg.Previews {
		e.PreviewBitmap = a.renderSVG(processed)
	}
	return e
}
