package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mj1618/clickaudit/internal/accname"
	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/imagery"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/probe"
)

// Classifier builds the record of one interactive element.
type Classifier interface {
	Classify(ctx context.Context, doc *dom.Document, el *dom.Node) model.InteractiveElement
}

// ElementClassifier assembles a record from the text resolvers, the probes
// and the image analyzer. Each source is read on its own; a failure in one
// leaves only that field empty.
type ElementClassifier struct {
	Images *imagery.Analyzer
	Log    zerolog.Logger
}

// Classify fills every field of the record except the ids.
func (c *ElementClassifier) Classify(ctx context.Context, doc *dom.Document, el *dom.Node) model.InteractiveElement {
	tag := el.LowerTag()
	role := el.AttrOr("role", "")
	base := doc.Base()
	page, _ := url.Parse(doc.URL)

	rec := model.InteractiveElement{
		Tag:      tag,
		IsButton: model.ClassifyKind(tag, role) == model.KindButton,
	}

	href := guard(c.Log, "href", probe.Href{URL: probe.HrefMissing}, func() probe.Href {
		return probe.ResolveHref(el, base, page)
	})
	rec.Href, rec.IsInternal = href.URL, href.Internal

	src := accname.Sources{
		Direct: guard(c.Log, "directText", "", func() string { return accname.DirectText(el) }),
		Slot:   guard(c.Log, "slotText", "", func() string { return accname.SlotText(el) }),
		Shadow: guard(c.Log, "shadowText", "", func() string { return accname.ShadowText(el) }),
		Pseudo: guard(c.Log, "pseudoText", "", func() string { return accname.PseudoText(el) }),
	}
	rec.AccessibleText = accname.Merge(src)
	rec.HasAccessibleText = rec.AccessibleText != ""
	rec.PseudoElementText = src.Pseudo

	rec.AriaLabel = strings.TrimSpace(el.AttrOr("aria-label", ""))
	rec.AriaLabelledBy = el.AttrOr("aria-labelledby", "")
	rec.AriaDescribedBy = el.AttrOr("aria-describedby", "")
	rec.AriaLabelledByText = guard(c.Log, "ariaLabelledBy", "", func() string {
		return accname.ReferencedText(doc, rec.AriaLabelledBy)
	})
	rec.AriaDescribedByText = guard(c.Log, "ariaDescribedBy", "", func() string {
		return accname.ReferencedText(doc, rec.AriaDescribedBy)
	})
	rec.HasAriaData = rec.AriaLabel != "" || rec.AriaLabelledByText != "" || rec.AriaDescribedByText != ""

	rec.IsAbsolutelyPositioned = guard(c.Log, "position", false, func() bool { return probe.IsAbsolutelyPositioned(el) })
	rec.NestedAriaElements = guard(c.Log, "nestedAria", []model.NestedAria{}, func() []model.NestedAria {
		return probe.NestedAriaElements(el)
	})
	if el.Rect != nil {
		r := *el.Rect
		rec.BoundingBox = &r
	}

	type window struct{ target, script bool }
	w := guard(c.Log, "newWindow", window{}, func() window {
		t, s := probe.OpensNewWindow(el)
		return window{t, s}
	})
	rec.OpensNewWindowTarget, rec.OpensNewWindowScript = w.target, w.script
	rec.OpensNewWindow = w.target || w.script
	rec.AncestorLinkHref = guard(c.Log, "ancestorLink", (*string)(nil), func() *string {
		return probe.AncestorLinkHref(el, base)
	})

	img := guard(c.Log, "images", imagery.Result{Images: []model.ImageDescriptor{}}, func() imagery.Result {
		return c.Images.Analyze(ctx, doc, el)
	})
	rec.HasImage = img.HasImage
	rec.ImageContent = img.Images
	rec.FigureContext = img.Figure

	rec.ShadowDomInfo = model.ShadowDomInfo{HasShadowRoot: el.Shadow != nil, ShadowText: src.Shadow}
	rec.SlotInfo = model.SlotInfo{
		ContainsSlot: dom.Find(el, false, func(n *dom.Node) bool { return n.IsElement("slot") }) != nil,
		SlotText:     src.Slot,
	}

	rec.Rel = attrPtr(el, "rel")
	rec.Target = attrPtr(el, "target")
	rec.Title = attrPtr(el, "title")
	rec.HasTitle = rec.Title != nil
	rec.Tabindex = attrPtr(el, "tabindex")
	rec.HasTabindex = rec.Tabindex != nil
	return rec
}

// guard runs one source and substitutes def if it panics.
func guard[T any](log zerolog.Logger, source string, def T, fn func() T) (v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("source", source).Interface("panic", r).Msg("source failed")
			v = def
		}
	}()
	return fn()
}

func attrPtr(n *dom.Node, name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}
