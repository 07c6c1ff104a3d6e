// Package imagery describes the images inside or behind an interactive
// element: <img> alt data, <svg> title/ARIA data, CSS background images and
// their preview bitmaps.
package imagery

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mj1618/clickaudit/internal/accname"
	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/fetch"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/probe"
	"github.com/mj1618/clickaudit/internal/render"
	"github.com/mj1618/clickaudit/internal/svgprep"
)

// Alt text sentinels.
const (
	AltMissing = "Alt tag not present"
	AltEmpty   = "Alt tag present but empty (decorative image)"
)

// Fetcher retrieves a resource by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// SVGRenderer rasterizes SVG markup to PNG.
type SVGRenderer interface {
	Render(svg string, fit render.Fit) ([]byte, error)
}

// Config configures an Analyzer. Zero values get defaults in New.
type Config struct {
	Fetcher     Fetcher
	Renderer    SVGRenderer
	Thumbnailer render.Thumbnailer
	// Previews enables preview bitmaps. Without it Analyze fetches and
	// renders nothing.
	Previews   bool
	MaxEdge    int
	FixedColor string
	Logger     *zerolog.Logger
}

// Analyzer builds image descriptors. It is safe for sequential use by one
// extraction; separate extractions may share one Analyzer.
type Analyzer struct {
	cfg Config
	log zerolog.Logger
}

// New returns an Analyzer with defaults filled in.
func New(cfg Config) *Analyzer {
	if cfg.Fetcher == nil {
		cfg.Fetcher = fetch.New(fetch.Config{})
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.NewRenderer()
	}
	if cfg.Thumbnailer == nil {
		cfg.Thumbnailer = render.Imaging{}
	}
	if cfg.MaxEdge <= 0 {
		cfg.MaxEdge = svgprep.DefaultEdge
	}
	if cfg.FixedColor == "" {
		cfg.FixedColor = svgprep.DefaultFixedColor
	}
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	return &Analyzer{cfg: cfg, log: l.With().Str("component", "imagery").Logger()}
}

// Result is the image data of one element.
type Result struct {
	Images []model.ImageDescriptor
	// HasImage is true when the element contains an <img> or <svg>.
	HasImage bool
	Figure   model.FigureContext
}

// Analyze describes every <img> then every <svg> inside el (open shadow
// trees included), then el's own background image. Failures only ever
// leave a preview empty.
func (a *Analyzer) Analyze(ctx context.Context, doc *dom.Document, el *dom.Node) Result {
	res := Result{Images: []model.ImageDescriptor{}}
	desc := dom.ElementsPiercing(el)
	var imgs, svgs []*dom.Node
	for _, d := range desc {
		switch {
		case d.IsElement("img"):
			imgs = append(imgs, d)
		case d.IsElement("svg"):
			svgs = append(svgs, d)
		}
	}
	res.HasImage = len(imgs) > 0 || len(svgs) > 0

	id := 0
	for _, img := range imgs {
		res.Images = append(res.Images, a.describeImg(ctx, doc, img, id))
		id++
	}
	for _, svg := range svgs {
		res.Images = append(res.Images, a.describeSVG(ctx, doc, svg, id))
		id++
	}
	if bg, ok := a.describeBackground(ctx, doc, el, id); ok {
		res.Images = append(res.Images, bg)
	}
	res.Figure = FigureContext(el)
	return res
}

// AltText returns the alt attribute, or a sentinel when it is absent or
// empty.
func AltText(img *dom.Node) string {
	alt, ok := img.Attr("alt")
	switch {
	case !ok:
		return AltMissing
	case alt == "":
		return AltEmpty
	}
	return alt
}

func (a *Analyzer) describeImg(ctx context.Context, doc *dom.Document, img *dom.Node, id int) model.ImageDescriptor {
	info := &model.ImgInfo{
		AltText:             AltText(img),
		TitleText:           attrPtr(img, "title"),
		Src:                 imgSource(doc, img),
		AriaHiddenEffective: probe.AriaHiddenEffective(img),
		PresentationRole:    probe.HasPresentationRole(img),
	}
	d := model.ImageDescriptor{ImageID: id, Type: model.ImageTypeImg, Img: info}
	if a.cfg.Previews && info.Src != "" {
		d.PreviewBitmap = a.previewURL(ctx, info.Src)
	}
	return d
}

func imgSource(doc *dom.Document, img *dom.Node) string {
	src := img.Props["currentSrc"]
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("src", ""))
	}
	if src == "" {
		return ""
	}
	return resolveURL(doc, src)
}

// TitleOrDesc joins the first <title> and <desc> of svg with " - ", or
// returns whichever exists.
func TitleOrDesc(svg *dom.Node) string {
	var title, desc string
	if t := dom.Find(svg, false, func(n *dom.Node) bool { return n.IsElement("title") }); t != nil {
		title = strings.TrimSpace(dom.TextContent(t))
	}
	if d := dom.Find(svg, false, func(n *dom.Node) bool { return n.IsElement("desc") }); d != nil {
		desc = strings.TrimSpace(dom.TextContent(d))
	}
	switch {
	case title != "" && desc != "":
		return title + " - " + desc
	case title != "":
		return title
	}
	return desc
}

func (a *Analyzer) describeSVG(ctx context.Context, doc *dom.Document, svg *dom.Node, id int) model.ImageDescriptor {
	info := &model.SVGInfo{
		TitleOrDesc:         TitleOrDesc(svg),
		TitleText:           attrPtr(svg, "title"),
		AriaLabel:           svg.AttrOr("aria-label", ""),
		AriaLabelledByText:  accname.ReferencedText(doc, svg.AttrOr("aria-labelledby", "")),
		AriaDescribedByText: accname.ReferencedText(doc, svg.AttrOr("aria-describedby", "")),
		AriaHiddenEffective: probe.AriaHiddenEffective(svg),
		PresentationRole:    probe.HasPresentationRole(svg),
		UsesReference:       firstUse(svg) != nil,
	}
	d := model.ImageDescriptor{ImageID: id, Type: model.ImageTypeSVG, SVG: info}
	if a.cfg.Previews {
		processed, err := a.ProcessSVG(ctx, doc, svg)
		if err != nil {
			a.log.Debug().Err(err).Int("imageId", id).Msg("svg reference not resolved")
			return d
		}
		d.PreviewBitmap = a.renderSVG(processed)
	}
	return d
}

var cssURL = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)

// BackgroundURL extracts the first url() of a computed background-image.
func BackgroundURL(backgroundImage string) string {
	if backgroundImage == "" || backgroundImage == "none" {
		return ""
	}
	m := cssURL.FindStringSubmatch(backgroundImage)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (a *Analyzer) describeBackground(ctx context.Context, doc *dom.Document, el *dom.Node, id int) (model.ImageDescriptor, bool) {
	if el.Style == nil {
		return model.ImageDescriptor{}, false
	}
	raw := BackgroundURL(el.Style.BackgroundImage)
	if raw == "" {
		return model.ImageDescriptor{}, false
	}
	src := resolveURL(doc, raw)
	d := model.ImageDescriptor{
		ImageID:    id,
		Type:       model.ImageTypeBackground,
		Background: &model.BackgroundInfo{SourceURL: src},
	}
	if a.cfg.Previews {
		d.PreviewBitmap = a.previewURL(ctx, src)
	}
	return d, true
}

// previewURL fetches src and returns a data URI preview, or nil.
func (a *Analyzer) previewURL(ctx context.Context, src string) *string {
	res, err := a.cfg.Fetcher.Fetch(ctx, src)
	if err != nil {
		a.log.Debug().Err(err).Str("url", truncate(src)).Msg("image fetch failed")
		return nil
	}
	if isSVG(res) {
		processed := svgprep.FixColors(svgprep.Sanitize(string(res.Body)), a.cfg.FixedColor)
		return a.renderSVG(processed)
	}
	out, err := a.cfg.Thumbnailer.Thumbnail(res.Body, a.cfg.MaxEdge, a.cfg.MaxEdge)
	if err != nil {
		a.log.Debug().Err(err).Str("url", truncate(src)).Msg("thumbnail failed")
		return nil
	}
	uri := render.DataURI("image/jpeg", out)
	return &uri
}

// renderSVG rasterizes processed SVG markup into a PNG data URI, or nil.
func (a *Analyzer) renderSVG(processed string) *string {
	w, h := float64(svgprep.FallbackSize), float64(svgprep.FallbackSize)
	if root, err := svgprep.Parse(processed); err == nil {
		if pw, ok := svgprep.Length(root.AttrOr("width", "")); ok {
			w = pw
		}
		if ph, ok := svgprep.Length(root.AttrOr("height", "")); ok {
			h = ph
		}
	}
	out, err := a.cfg.Renderer.Render(processed, render.FitFor(w, h))
	if err != nil {
		a.log.Debug().Err(err).Msg("svg rasterization failed")
		return nil
	}
	uri := render.DataURI("image/png", out)
	return &uri
}

func isSVG(res *fetch.Result) bool {
	if strings.Contains(strings.ToLower(res.ContentType), "svg") {
		return true
	}
	head := bytes.TrimSpace(res.Body)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

func resolveURL(doc *dom.Document, raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return raw
	}
	u, err := doc.Base().Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}

func attrPtr(n *dom.Node, name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

func truncate(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
