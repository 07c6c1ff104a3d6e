package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mj1618/clickaudit/internal/dom"
)

//go:embed capture.js
var captureScript string

const consentCandidatesScript = `() => {
  const texts = [];
  const els = [];
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    const s = getComputedStyle(el);
    return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
  };
  for (const el of document.querySelectorAll('body *')) {
    let own = '';
    for (const c of el.childNodes) if (c.nodeType === Node.TEXT_NODE) own += c.data;
    own = own.trim();
    if (!own || own.length > 80 || !visible(el)) continue;
    els.push(el);
    texts.push(own);
    if (texts.length >= 2000) break;
  }
  window.__clickauditConsent = els;
  return JSON.stringify(texts);
}`

const consentClickScript = `(i) => {
  const el = (window.__clickauditConsent || [])[i];
  if (!el) return false;
  el.click();
  return true;
}`

// RodConfig configures the Rod engine.
type RodConfig struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local one.
	RemoteURL string
	Headful   bool
	Stealth   bool

	NavigationTimeout time.Duration
	// SettleWait is slept after load so late scripts can render.
	SettleWait time.Duration
	// ConsentWait is slept before looking for a consent banner.
	ConsentWait time.Duration
	// ConsentSettle is slept after clicking a consent button.
	ConsentSettle time.Duration

	ViewportWidth  int
	ViewportHeight int

	Logger *zerolog.Logger
}

func (c *RodConfig) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.ConsentSettle <= 0 {
		c.ConsentSettle = time.Second
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1366
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 900
	}
}

// Rod drives Chrome through the DevTools protocol. The browser is started
// on first use and every page gets its own incognito context.
type Rod struct {
	cfg RodConfig
	log zerolog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewRod returns a Rod engine. Chrome is not started until Open.
func NewRod(cfg RodConfig) *Rod {
	cfg.defaults()
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	return &Rod{cfg: cfg, log: l.With().Str("component", "rod").Logger()}
}

func (r *Rod) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("browser: engine is closed")
	}
	if r.browser != nil {
		return r.browser, nil
	}

	wsURL := r.cfg.RemoteURL
	if wsURL != "" {
		r.log.Info().Str("url", wsURL).Msg("connecting to remote chrome")
	} else {
		l := launcher.New().
			Headless(!r.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		r.lnch = l
		r.log.Info().Str("url", wsURL).Bool("headful", r.cfg.Headful).Msg("launched local chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.cleanupLocked()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		r.log.Warn().Err(err).Msg("ignore cert errors failed")
	}
	r.browser = b
	return b, nil
}

// Open navigates a fresh incognito tab to pageURL and waits for load.
func (r *Rod) Open(ctx context.Context, pageURL string) (Page, error) {
	b, err := r.connect()
	if err != nil {
		return nil, err
	}
	inc, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("browser: incognito context: %w", err)
	}

	var page *rod.Page
	if r.cfg.Stealth {
		page, err = stealth.Page(inc)
	} else {
		page, err = inc.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		inc.Close()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	p := &rodPage{page: page, ctxBrowser: inc, cfg: r.cfg, log: r.log}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		r.log.Warn().Err(err).Msg("set viewport failed")
	}

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigationTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		p.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		r.log.Warn().Err(err).Str("url", pageURL).Msg("wait load timeout")
	}
	if err := sleep(ctx, r.cfg.SettleWait); err != nil {
		p.Close()
		return nil, err
	}

	if info, err := page.Info(); err == nil {
		p.url, p.title = info.URL, info.Title
	} else {
		p.url = pageURL
	}
	return p, nil
}

// Close shuts down the browser, or disconnects from a remote one.
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cleanupLocked()
	return nil
}

func (r *Rod) cleanupLocked() {
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			r.log.Debug().Err(err).Msg("browser close")
		}
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
}

type rodPage struct {
	page       *rod.Page
	ctxBrowser *rod.Browser
	cfg        RodConfig
	log        zerolog.Logger
	url, title string
}

func (p *rodPage) URL() string   { return p.url }
func (p *rodPage) Title() string { return p.title }

func (p *rodPage) Snapshot(ctx context.Context) (*dom.Document, error) {
	res, err := p.page.Context(ctx).Eval(captureScript)
	if err != nil {
		return nil, fmt.Errorf("browser: capture: %w", err)
	}
	doc, err := DecodeSnapshot([]byte(res.Value.Str()))
	if err != nil {
		return nil, err
	}
	p.url = doc.URL
	if doc.Title != "" {
		p.title = doc.Title
	}
	return doc, nil
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	img, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return img, nil
}

func (p *rodPage) DismissConsent(ctx context.Context, phrases []string) bool {
	if err := sleep(ctx, p.cfg.ConsentWait); err != nil {
		return false
	}
	res, err := p.page.Context(ctx).Eval(consentCandidatesScript)
	if err != nil {
		p.log.Debug().Err(err).Msg("consent scan failed")
		return false
	}
	var texts []string
	if err := json.Unmarshal([]byte(res.Value.Str()), &texts); err != nil {
		p.log.Debug().Err(err).Msg("consent scan decode failed")
		return false
	}
	i := ChooseConsent(texts, phrases)
	if i < 0 {
		p.log.Debug().Int("candidates", len(texts)).Msg("no consent text found")
		return false
	}
	clicked, err := p.page.Context(ctx).Eval(consentClickScript, i)
	if err != nil || !clicked.Value.Bool() {
		p.log.Debug().Err(err).Str("text", texts[i]).Msg("consent click failed")
		return false
	}
	p.log.Info().Str("text", texts[i]).Msg("clicked consent banner")
	_ = sleep(ctx, p.cfg.ConsentSettle)
	return true
}

// Close closes the tab and its incognito context.
func (p *rodPage) Close() error {
	err := p.page.Close()
	if cerr := p.ctxBrowser.Close(); err == nil {
		err = cerr
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
