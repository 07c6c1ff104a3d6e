package imagery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/fetch"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/render"
)

type stubFetcher struct {
	resources map[string]*fetch.Result
	calls     []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*fetch.Result, error) {
	f.calls = append(f.calls, url)
	if r, ok := f.resources[url]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

type stubRenderer struct {
	inputs []string
	fits   []render.Fit
	err    error
}

func (r *stubRenderer) Render(svg string, fit render.Fit) ([]byte, error) {
	r.inputs = append(r.inputs, svg)
	r.fits = append(r.fits, fit)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

type stubThumbnailer struct{ calls int }

func (s *stubThumbnailer) Thumbnail(data []byte, w, h int) ([]byte, error) {
	s.calls++
	return []byte("jpg"), nil
}

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseDocument(src, "https://example.com/page")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc
}

func byID(t *testing.T, doc *dom.Document, id string) *dom.Node {
	t.Helper()
	n := doc.ElementByID(id)
	if n == nil {
		t.Fatalf("no element #%s", id)
	}
	return n
}

func newAnalyzer(f *stubFetcher, r *stubRenderer, th *stubThumbnailer, previews bool) *Analyzer {
	return New(Config{Fetcher: f, Renderer: r, Thumbnailer: th, Previews: previews})
}

func TestAltText(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`<img id="x" src="a.png">`, AltMissing},
		{`<img id="x" src="a.png" alt="">`, AltEmpty},
		{`<img id="x" src="a.png" alt="X">`, "X"},
	}
	for _, tt := range tests {
		doc := parse(t, tt.src)
		if got := AltText(byID(t, doc, "x")); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.src, tt.want, got)
		}
	}
}

func TestTitleOrDesc(t *testing.T) {
	tests := []struct {
		inner string
		want  string
	}{
		{`<title>Close</title>`, "Close"},
		{`<desc>An X icon</desc>`, "An X icon"},
		{`<title> Close </title><desc>An X icon</desc>`, "Close - An X icon"},
		{`<path d="M0 0"/>`, ""},
	}
	for _, tt := range tests {
		doc := parse(t, `<svg id="s">`+tt.inner+`</svg>`)
		if got := TitleOrDesc(byID(t, doc, "s")); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.inner, tt.want, got)
		}
	}
}

func TestAnalyze_SVGTitleInButton(t *testing.T) {
	doc := parse(t, `<button id="b"><svg><title>Close</title></svg></button>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, false)
	res := a.Analyze(context.Background(), doc, byID(t, doc, "b"))
	if !res.HasImage {
		t.Error("expected HasImage")
	}
	if len(res.Images) != 1 || res.Images[0].SVG == nil {
		t.Fatalf("expected one svg descriptor, got %+v", res.Images)
	}
	if got := res.Images[0].SVG.TitleOrDesc; got != "Close" {
		t.Errorf("expected titleOrDesc Close, got %q", got)
	}
	if res.Images[0].PreviewBitmap != nil {
		t.Error("preview should be nil when previews are disabled")
	}
}

func TestAnalyze_OrderAndIDs(t *testing.T) {
	doc := parse(t, `<a id="a" href="/" style="background-image:url('/bg.png')"><svg aria-label="s1"></svg><img alt="i1"><x-c><template shadowrootmode="open"><img alt="i2"></template></x-c></a>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, false)
	res := a.Analyze(context.Background(), doc, byID(t, doc, "a"))
	wantTypes := []string{model.ImageTypeImg, model.ImageTypeImg, model.ImageTypeSVG, model.ImageTypeBackground}
	if len(res.Images) != len(wantTypes) {
		t.Fatalf("expected %d images, got %d", len(wantTypes), len(res.Images))
	}
	for i, d := range res.Images {
		if d.Type != wantTypes[i] || d.ImageID != i {
			t.Errorf("image %d: expected %s/%d, got %s/%d", i, wantTypes[i], i, d.Type, d.ImageID)
		}
	}
	if res.Images[1].Img.AltText != "i2" {
		t.Errorf("expected shadow img second, got %q", res.Images[1].Img.AltText)
	}
	if got := res.Images[3].Background.SourceURL; got != "https://example.com/bg.png" {
		t.Errorf("unexpected background url %q", got)
	}
}

func TestAnalyze_SVGAriaReferences(t *testing.T) {
	doc := parse(t, `<span id="lbl">Search</span><a id="a"><svg aria-labelledby="lbl" aria-describedby="gone" role="presentation" aria-hidden="true"></svg></a>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, false)
	info := a.Analyze(context.Background(), doc, byID(t, doc, "a")).Images[0].SVG
	if info.AriaLabelledByText != "Search" {
		t.Errorf("expected labelledby text, got %q", info.AriaLabelledByText)
	}
	if info.AriaDescribedByText != "Aria Mismatch for gone" {
		t.Errorf("expected mismatch marker, got %q", info.AriaDescribedByText)
	}
	if !info.PresentationRole || !info.AriaHiddenEffective {
		t.Errorf("expected role and hidden flags, got %+v", info)
	}
}

func TestAnalyze_ImgPreview(t *testing.T) {
	f := &stubFetcher{resources: map[string]*fetch.Result{
		"https://example.com/logo.png": {Body: []byte("raw"), ContentType: "image/png"},
	}}
	th := &stubThumbnailer{}
	doc := parse(t, `<a id="a"><img src="/logo.png" alt="Logo"><img src="/missing.png"></a>`)
	res := newAnalyzer(f, &stubRenderer{}, th, true).Analyze(context.Background(), doc, byID(t, doc, "a"))
	if p := res.Images[0].PreviewBitmap; p == nil || !strings.HasPrefix(*p, "data:image/jpeg;base64,") {
		t.Errorf("expected jpeg data uri, got %v", p)
	}
	if res.Images[1].PreviewBitmap != nil {
		t.Error("failed fetch should leave preview nil")
	}
	if th.calls != 1 {
		t.Errorf("expected one thumbnail, got %d", th.calls)
	}
}

func TestAnalyze_ImgPreviewPrefersCurrentSrc(t *testing.T) {
	f := &stubFetcher{}
	doc := parse(t, `<a id="a"><img id="i" src="/small.png"></a>`)
	byID(t, doc, "i").Props = map[string]string{"currentSrc": "https://cdn.example.com/large.png"}
	newAnalyzer(f, &stubRenderer{}, &stubThumbnailer{}, true).Analyze(context.Background(), doc, byID(t, doc, "a"))
	if len(f.calls) != 1 || f.calls[0] != "https://cdn.example.com/large.png" {
		t.Errorf("expected currentSrc fetch, got %v", f.calls)
	}
}

func TestAnalyze_SVGImageFileIsRasterized(t *testing.T) {
	f := &stubFetcher{resources: map[string]*fetch.Result{
		"https://example.com/icon.svg": {Body: []byte(`<svg viewBox="0 0 10 10"><path fill="currentColor" d="M0 0h10v10z"/></svg>`), ContentType: "image/svg+xml"},
	}}
	r := &stubRenderer{}
	th := &stubThumbnailer{}
	doc := parse(t, `<a id="a"><img src="icon.svg" alt=""></a>`)
	res := newAnalyzer(f, r, th, true).Analyze(context.Background(), doc, byID(t, doc, "a"))
	if p := res.Images[0].PreviewBitmap; p == nil || !strings.HasPrefix(*p, "data:image/png;base64,") {
		t.Errorf("expected png data uri, got %v", p)
	}
	if th.calls != 0 {
		t.Error("svg image should not go through the thumbnailer")
	}
	if len(r.inputs) != 1 || !strings.Contains(r.inputs[0], `fill="#888888"`) {
		t.Errorf("expected fixed-color svg to be rendered, got %v", r.inputs)
	}
}

func TestAnalyze_SVGPreviewFailureIsNil(t *testing.T) {
	doc := parse(t, `<button id="b"><svg viewBox="0 0 10 10"><rect width="10" height="10"/></svg></button>`)
	r := &stubRenderer{err: errors.New("boom")}
	res := newAnalyzer(&stubFetcher{}, r, &stubThumbnailer{}, true).Analyze(context.Background(), doc, byID(t, doc, "b"))
	if res.Images[0].PreviewBitmap != nil {
		t.Error("expected nil preview on render failure")
	}
}

func TestAnalyze_SVGPreviewFitsExtremeAspect(t *testing.T) {
	doc := parse(t, `<button id="b"><svg viewBox="0 0 600 100"><rect width="600" height="100"/></svg></button>`)
	r := &stubRenderer{}
	newAnalyzer(&stubFetcher{}, r, &stubThumbnailer{}, true).Analyze(context.Background(), doc, byID(t, doc, "b"))
	if len(r.fits) != 1 || r.fits[0] != (render.Fit{Mode: render.FitHeight, Size: 40}) {
		t.Errorf("expected fit-to-height 40, got %+v", r.fits)
	}
}

func TestAnalyze_SVGPreviewEndToEnd(t *testing.T) {
	doc := parse(t, `<button id="b"><svg viewBox="0 0 24 24"><rect width="24" height="24" fill="currentColor"/></svg></button>`)
	a := New(Config{Fetcher: &stubFetcher{}, Previews: true})
	res := a.Analyze(context.Background(), doc, byID(t, doc, "b"))
	if p := res.Images[0].PreviewBitmap; p == nil || !strings.HasPrefix(*p, "data:image/png;base64,") {
		t.Errorf("expected rendered png preview, got %v", p)
	}
}

func TestResolveUse_SameDocumentSymbol(t *testing.T) {
	doc := parse(t, `<svg style="display:none"><symbol id="icon-check" viewBox="0 0 16 16"><path d="M1 8l4 4 10-10"/></symbol></svg><button id="b"><svg id="s" class="icon"><use href="#icon-check"></use></svg></button>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, true)
	out, err := a.ResolveUse(context.Background(), doc, byID(t, doc, "s"))
	if err != nil {
		t.Fatalf("ResolveUse: %v", err)
	}
	if got := out.AttrOr("viewBox", ""); got != "0 0 16 16" {
		t.Errorf("expected symbol viewBox, got %q", got)
	}
	if out.AttrOr("class", "") != "icon" {
		t.Error("original attributes should be carried over")
	}
	if out.AttrOr("width", "") != "24" || out.AttrOr("height", "") != "24" {
		t.Error("expected default 24x24 size")
	}
	if len(out.Children) != 1 || !out.Children[0].IsElement("path") {
		t.Fatalf("expected the symbol's path as only child, got %d children", len(out.Children))
	}
	if dom.Find(out, false, func(n *dom.Node) bool { return n.IsElement("use") }) != nil {
		t.Error("resolved svg should not contain the <use>")
	}
	// The page tree is untouched.
	if len(byID(t, doc, "icon-check").Children) != 1 {
		t.Error("symbol children should be cloned, not moved")
	}
}

func TestResolveUse_XLinkElementTarget(t *testing.T) {
	doc := parse(t, `<svg><defs><g id="dot" viewBox="0 0 4 4"><circle r="2"/></g></defs></svg><svg id="s"><use xlink:href="#dot"/></svg>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, true)
	out, err := a.ResolveUse(context.Background(), doc, byID(t, doc, "s"))
	if err != nil {
		t.Fatalf("ResolveUse: %v", err)
	}
	if len(out.Children) != 1 || !out.Children[0].IsElement("g") {
		t.Error("non-symbol target should be copied whole")
	}
}

func TestResolveUse_ExternalSprite(t *testing.T) {
	f := &stubFetcher{resources: map[string]*fetch.Result{
		"https://example.com/sprite.svg": {Body: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"><symbol id="cart" viewBox="0 0 32 32"><rect width="32" height="32"/></symbol></svg>`)},
	}}
	doc := parse(t, `<svg id="s"><use href="/sprite.svg#cart"/></svg>`)
	a := newAnalyzer(f, &stubRenderer{}, &stubThumbnailer{}, true)
	out, err := a.ResolveUse(context.Background(), doc, byID(t, doc, "s"))
	if err != nil {
		t.Fatalf("ResolveUse: %v", err)
	}
	if out.AttrOr("viewBox", "") != "0 0 32 32" {
		t.Errorf("expected external symbol viewBox, got %q", out.AttrOr("viewBox", ""))
	}
	if len(out.Children) != 1 || !out.Children[0].IsElement("rect") {
		t.Error("expected the external symbol's rect")
	}
}

func TestResolveUse_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing_fragment", `<svg id="s"><use href="#nope"/></svg>`},
		{"external_unreachable", `<svg id="s"><use href="https://cdn.example.com/x.svg#a"/></svg>`},
		{"no_fragment", `<svg id="s"><use href="/sprite.svg"/></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.src)
			a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, true)
			out, err := a.ResolveUse(context.Background(), doc, byID(t, doc, "s"))
			if err == nil || out != nil {
				t.Errorf("expected error and no content, got %v %v", out, err)
			}
		})
	}
}

func TestResolveUse_NoUse(t *testing.T) {
	doc := parse(t, `<svg id="s"><path d="M0 0"/></svg>`)
	a := newAnalyzer(&stubFetcher{}, &stubRenderer{}, &stubThumbnailer{}, true)
	out, err := a.ResolveUse(context.Background(), doc, byID(t, doc, "s"))
	if out != nil || err != nil {
		t.Errorf("expected nil, nil for inline svg, got %v %v", out, err)
	}
}

func TestBackgroundURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`url("https://a/b.png")`, "https://a/b.png"},
		{`url('x.jpg')`, "x.jpg"},
		{`url(y.gif)`, "y.gif"},
		{`linear-gradient(red, blue), url( "z.webp" )`, "z.webp"},
		{`none`, ""},
		{`linear-gradient(red, blue)`, ""},
	}
	for _, tt := range tests {
		if got := BackgroundURL(tt.in); got != tt.want {
			t.Errorf("BackgroundURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFigureContext(t *testing.T) {
	doc := parse(t, `<figure><img src="a.png"><figcaption>  A caption </figcaption><a id="in" href="/">x</a></figure><figure><a id="nocap" href="/">y</a></figure><a id="out" href="/">z</a>`)

	fc := FigureContext(byID(t, doc, "in"))
	if !fc.InFigure || fc.HasCaption == nil || !*fc.HasCaption || *fc.CaptionText != "A caption" {
		t.Errorf("unexpected figure context %+v", fc)
	}
	fc = FigureContext(byID(t, doc, "nocap"))
	if !fc.InFigure || fc.HasCaption == nil || *fc.HasCaption || *fc.CaptionText != "" {
		t.Errorf("expected figure without caption, got %+v", fc)
	}
	fc = FigureContext(byID(t, doc, "out"))
	if fc.InFigure || fc.HasCaption != nil || fc.CaptionText != nil {
		t.Errorf("expected no figure fields, got %+v", fc)
	}
}

func TestInventory(t *testing.T) {
	doc := parse(t, `<svg id="a" width="16" aria-label="Logo"><title>Brand</title><path fill="currentColor" d="M0 0"/></svg>
<svg id="b" role="none" aria-hidden="true"><use href="#gone"/></svg>
<x-c><template shadowrootmode="open"><svg class="c" viewBox="0 0 2 1"><rect/></svg></template></x-c>`)
	r := &stubRenderer{}
	entries := newAnalyzer(&stubFetcher{}, r, &stubThumbnailer{}, true).Inventory(context.Background(), doc)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	a, b, c := entries[0], entries[1], entries[2]
	if a.ID != 0 || a.TitleDesc != "Brand" || a.AriaLabel != "Logo" || a.Width != "16" || a.Height != "auto" {
		t.Errorf("unexpected first entry %+v", a)
	}
	if !strings.Contains(a.ProcessedSvg, `fill="#888888"`) || a.PreviewBitmap == nil {
		t.Errorf("expected processed svg with preview, got %q", a.ProcessedSvg)
	}
	if !b.HasAriaHidden || !b.HasRolePresentation || !b.HasUseElements || b.UseHrefs[0] != "#gone" {
		t.Errorf("unexpected second entry %+v", b)
	}
	if b.Error == "" || b.PreviewBitmap != nil {
		t.Error("unresolved use should be recorded as an error without preview")
	}
	if c.ClassName != "c" || c.ViewBox != "0 0 2 1" {
		t.Errorf("expected shadow svg entry, got %+v", c)
	}
}
