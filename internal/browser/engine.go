// Package browser loads pages and captures them as DOM snapshots. Rod
// drives a real Chrome; Static parses HTML without executing scripts.
package browser

import (
	"context"

	"github.com/mj1618/clickaudit/internal/dom"
)

// Engine opens pages. Each Open returns a page owned exclusively by the
// caller, isolated from pages opened concurrently.
type Engine interface {
	Open(ctx context.Context, url string) (Page, error)
	Close() error
}

// Page is one loaded page.
type Page interface {
	// URL is the final URL after redirects.
	URL() string
	Title() string
	// Snapshot captures the current DOM with computed styles and layout.
	Snapshot(ctx context.Context) (*dom.Document, error)
	// Screenshot returns a full-page PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// DismissConsent clicks the first visible element whose text equals one
	// of phrases. It reports whether anything was clicked.
	DismissConsent(ctx context.Context, phrases []string) bool
	Close() error
}
