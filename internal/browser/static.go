package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/fetch"
)

// ErrNoScreenshot is returned by pages that cannot render.
var ErrNoScreenshot = errors.New("browser: screenshots need a rendering engine")

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Static loads pages without running scripts. Declarative shadow roots
// and inline style attributes are honoured; there is no layout, so bounding
// boxes are null.
type Static struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// NewStatic returns a Static engine. A nil fetcher uses fetch defaults.
func NewStatic(f Fetcher, logger *zerolog.Logger) *Static {
	if f == nil {
		f = fetch.New(fetch.Config{})
	}
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	return &Static{fetcher: f, log: l.With().Str("component", "static").Logger()}
}

// Open fetches rawURL, or reads it from disk for file:// URLs.
func (s *Static) Open(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: parse url: %w", err)
	}
	if u.Scheme == "file" {
		body, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, fmt.Errorf("browser: read %s: %w", u.Path, err)
		}
		return OpenHTML(body, rawURL)
	}

	res, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: load %s: %w", rawURL, err)
	}
	if ct := strings.ToLower(res.ContentType); ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		s.log.Warn().Str("url", rawURL).Str("contentType", res.ContentType).Msg("page is not html")
	}
	final := res.URL
	if final == "" {
		final = rawURL
	}
	return OpenHTML(res.Body, final)
}

// Close is a no-op.
func (s *Static) Close() error { return nil }

// OpenHTML parses markup served from pageURL into a page.
func OpenHTML(markup []byte, pageURL string) (Page, error) {
	gdoc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("browser: parse html: %w", err)
	}
	title := strings.Join(strings.Fields(gdoc.Find("title").First().Text()), " ")
	base, _ := gdoc.Find("base[href]").First().Attr("href")

	root := dom.Convert(gdoc.Nodes[0])
	doc := dom.NewDocument(root, pageURL, title)
	doc.BaseURL = strings.TrimSpace(base)
	return &staticPage{doc: doc}, nil
}

type staticPage struct {
	doc *dom.Document
}

func (p *staticPage) URL() string   { return p.doc.URL }
func (p *staticPage) Title() string { return p.doc.Title }

func (p *staticPage) Snapshot(ctx context.Context) (*dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func (p *staticPage) Screenshot(context.Context) ([]byte, error) {
	return nil, ErrNoScreenshot
}

func (p *staticPage) DismissConsent(context.Context, []string) bool { return false }

func (p *staticPage) Close() error { return nil }
