// Package fetch retrieves image and sprite resources referenced by a page.
// Every request carries a short timeout and a body size cap so a single
// unreachable resource cannot stall an extraction.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is a fetched resource.
type Result struct {
	Body        []byte
	ContentType string
	// URL is the final URL after redirects, or the data URI itself.
	URL string
}

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // per request. Default: 5s.
	MaxBytes  int64         // Default: 10MB.
	UserAgent string
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "clickaudit/1.0"
	}
}

// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor data.
var ErrUnsupportedScheme = errors.New("fetch: unsupported url scheme")

// Fetcher performs bounded GET requests.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch retrieves rawURL. data: URIs are decoded locally.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		return DecodeDataURI(rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch: http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}
	return &Result{Body: body, ContentType: ct, URL: resp.Request.URL.String()}, nil
}

// DecodeDataURI decodes an RFC 2397 data URI.
func DecodeDataURI(raw string) (*Result, error) {
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, errors.New("fetch: malformed data uri")
	}
	ct := "text/plain;charset=US-ASCII"
	isBase64 := false
	if meta != "" {
		parts := strings.Split(meta, ";")
		if parts[0] != "" {
			ct = parts[0]
		}
		for _, p := range parts[1:] {
			if strings.EqualFold(p, "base64") {
				isBase64 = true
			}
		}
	}
	var body []byte
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, fmt.Errorf("fetch: decode data uri: %w", err)
		}
		body = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("fetch: unescape data uri: %w", err)
		}
		body = []byte(s)
	}
	return &Result{Body: body, ContentType: ct, URL: raw}, nil
}
