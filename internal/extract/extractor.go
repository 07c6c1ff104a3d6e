// Package extract turns a loaded page into the ordered inventory of its
// interactive elements and owns the page for the length of one request.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mj1618/clickaudit/internal/browser"
	"github.com/mj1618/clickaudit/internal/imagery"
	"github.com/mj1618/clickaudit/internal/model"
)

var (
	// ErrInvalidURL rejects a request before any browser work.
	ErrInvalidURL = errors.New("extract: invalid url")
	// ErrNavigation means the page could not be loaded or captured.
	ErrNavigation = errors.New("extract: page failed")
)

// Request is one extraction.
type Request struct {
	URL           string
	HandleCookies bool
	// CookieText is tried before every other consent phrase.
	CookieText string
	Screenshot bool
	// AllowFile permits file:// URLs. Only local callers should set it.
	AllowFile bool
}

// Config configures an Extractor.
type Config struct {
	Engine browser.Engine
	Images *imagery.Analyzer
	// ConsentPhrases are tried after Request.CookieText and before the
	// built-in phrases.
	ConsentPhrases []string
	Logger         *zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Extractor runs extractions. It holds no per-request state, so one value
// may serve concurrent requests if its Engine does.
type Extractor struct {
	cfg    Config
	log    zerolog.Logger
	walker *Walker
}

// New returns an Extractor. Engine is required.
func New(cfg Config) *Extractor {
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	l = l.With().Str("component", "extract").Logger()
	if cfg.Images == nil {
		cfg.Images = imagery.New(imagery.Config{Logger: &l})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Extractor{
		cfg: cfg,
		log: l,
		walker: &Walker{
			Classifier: &ElementClassifier{Images: cfg.Images, Log: l},
			Log:        l,
		},
	}
}

// NormalizeURL trims raw and adds https:// when it has no http(s) scheme.
// file:// URLs are kept when allowFile is set and rejected otherwise.
func NormalizeURL(raw string, allowFile bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	lower := strings.ToLower(raw)
	isFile := strings.HasPrefix(lower, "file:")
	if isFile && !allowFile {
		return "", fmt.Errorf("%w: file urls are not allowed", ErrInvalidURL)
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !isFile {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "file" && u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

// open validates the request and loads the page. The caller must Close the
// returned page.
func (e *Extractor) open(ctx context.Context, req Request) (string, browser.Page, bool, error) {
	target, err := NormalizeURL(req.URL, req.AllowFile)
	if err != nil {
		return "", nil, false, err
	}
	page, err := e.cfg.Engine.Open(ctx, target)
	if err != nil {
		return "", nil, false, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	handled := false
	if req.HandleCookies {
		handled = e.dismissConsent(ctx, page, req.CookieText)
	}
	return target, page, handled, nil
}

func (e *Extractor) dismissConsent(ctx context.Context, page browser.Page, custom string) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().Interface("panic", r).Msg("consent handling failed")
			handled = false
		}
	}()
	return page.DismissConsent(ctx, browser.ConsentPhrases(custom, e.cfg.ConsentPhrases))
}

func (e *Extractor) closePage(page browser.Page) {
	if err := page.Close(); err != nil {
		e.log.Debug().Err(err).Msg("page close")
	}
}

// Extract loads req.URL and returns the inventory of its interactive
// elements. Errors wrap ErrInvalidURL or ErrNavigation, or are the context
// error; no partial report is returned with an error.
func (e *Extractor) Extract(ctx context.Context, req Request) (*model.PageReport, error) {
	target, page, handled, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer e.closePage(page)

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	start := time.Now()
	elements, err := e.walker.Walk(ctx, doc)
	if err != nil {
		return nil, err
	}

	report := &model.PageReport{
		RunID:         uuid.NewString(),
		OriginalURL:   target,
		FinalURL:      firstNonEmpty(page.URL(), doc.URL, target),
		Title:         firstNonEmpty(page.Title(), doc.Title),
		Timestamp:     e.cfg.Now().UTC(),
		CookieHandled: handled,
		Elements:      elements,
	}
	if req.Screenshot {
		shot, err := page.Screenshot(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("screenshot failed")
		} else {
			report.Screenshot = shot
		}
	}
	buttons, links := report.Counts()
	e.log.Info().
		Str("url", report.FinalURL).
		Int("buttons", buttons).
		Int("links", links).
		Dur("took", time.Since(start)).
		Msg("extraction complete")
	return report, nil
}

// ExtractSVGs loads req.URL and returns the inventory of every <svg> on it.
func (e *Extractor) ExtractSVGs(ctx context.Context, req Request) (*model.SvgReport, error) {
	target, page, _, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer e.closePage(page)

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	svgs := e.cfg.Images.Inventory(ctx, doc)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract: svgs: %w", err)
	}
	e.log.Info().Str("url", doc.URL).Int("svgs", len(svgs)).Msg("svg inventory complete")
	return &model.SvgReport{
		RunID:     uuid.NewString(),
		URL:       target,
		FinalURL:  firstNonEmpty(page.URL(), doc.URL, target),
		Timestamp: e.cfg.Now().UTC(),
		SvgCount:  len(svgs),
		Svgs:      svgs,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
