package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/probe"
)

// Candidates returns the interactive elements of doc (a, button,
// [role=link], [role=button]) in composed document order.
func Candidates(doc *dom.Document) []*dom.Node {
	var out []*dom.Node
	for _, el := range doc.Elements() {
		role, hasRole := el.Attr("role")
		if model.IsCandidate(el.Tag, role, hasRole) {
			out = append(out, el)
		}
	}
	return out
}

// counters is the walk state carried from one element to the next.
type counters struct {
	seq     int
	buttons int
	links   int
}

// advance returns the ids for an element of kind and the next state.
func (c counters) advance(kind model.Kind) (seqID, kindID int, next counters) {
	next = c
	next.seq++
	if kind == model.KindButton {
		next.buttons++
		return c.seq, next.buttons, next
	}
	next.links++
	return c.seq, next.links, next
}

// Walker visits every candidate once, in order, and collects its record.
type Walker struct {
	Classifier Classifier
	Log        zerolog.Logger
}

// Walk returns one record per candidate. A failing element yields a partial
// record carrying its ids, tag and the failure; the walk continues. Only
// cancellation of ctx stops it early.
func (w *Walker) Walk(ctx context.Context, doc *dom.Document) ([]model.InteractiveElement, error) {
	elements := []model.InteractiveElement{}
	var state counters
	for _, el := range Candidates(doc) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract: walk: %w", err)
		}
		role := el.AttrOr("role", "")
		kind := model.ClassifyKind(el.Tag, role)
		var seqID, kindID int
		seqID, kindID, state = state.advance(kind)

		rec := w.visit(ctx, doc, el, kind)
		rec.SequenceID, rec.KindID = seqID, kindID
		elements = append(elements, rec)
	}
	return elements, nil
}

func (w *Walker) visit(ctx context.Context, doc *dom.Document, el *dom.Node, kind model.Kind) (rec model.InteractiveElement) {
	defer func() {
		if r := recover(); r != nil {
			w.Log.Warn().Str("tag", el.LowerTag()).Interface("panic", r).Msg("element extraction failed")
			rec = partialRecord(el, kind, fmt.Sprint(r))
		}
	}()
	return w.Classifier.Classify(ctx, doc, el)
}

// partialRecord is the best-effort record of an element whose extraction
// failed. Unresolved fields hold their empty or null value.
func partialRecord(el *dom.Node, kind model.Kind, reason string) model.InteractiveElement {
	href := probe.HrefNotApplicable
	if el.IsElement("a") {
		href = probe.HrefMissing
	}
	return model.InteractiveElement{
		Tag:                el.LowerTag(),
		IsButton:           kind == model.KindButton,
		Href:               href,
		NestedAriaElements: []model.NestedAria{},
		ImageContent:       []model.ImageDescriptor{},
		Error:              reason,
	}
}
