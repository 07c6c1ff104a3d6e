package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/model"
)

// Cache operations.
const (
	opElements = "elements"
	opSVGs     = "svgs"
)

// cacheKey identifies one extraction request.
type cacheKey struct {
	Op            string
	URL           string
	HandleCookies bool
	CookieText    string
	Screenshot    bool
	AllowFile     bool
}

func keyFor(op string, req extract.Request) cacheKey {
	return cacheKey{
		Op:            op,
		URL:           strings.TrimSpace(req.URL),
		HandleCookies: req.HandleCookies,
		CookieText:    req.CookieText,
		Screenshot:    req.Screenshot,
		AllowFile:     req.AllowFile,
	}
}

// cacheEntry holds a finished report with its timestamp.
type cacheEntry struct {
	value     interface{}
	timestamp time.Time
}

// Cache is an Extractor that reuses reports for identical requests within
// a TTL. Failed extractions are never cached.
type Cache struct {
	next    Extractor
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache wraps next. A ttl of 0 disables caching.
func NewCache(next Extractor, ttl time.Duration) *Cache {
	return &Cache{
		next:    next,
		entries: make(map[cacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Extract returns a cached report if within TTL, otherwise extracts fresh.
func (c *Cache) Extract(ctx context.Context, req extract.Request) (*model.PageReport, error) {
	v, err := c.load(keyFor(opElements, req), func() (interface{}, error) {
		return c.next.Extract(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PageReport), nil
}

// ExtractSVGs returns a cached SVG inventory if within TTL, otherwise
// extracts fresh.
func (c *Cache) ExtractSVGs(ctx context.Context, req extract.Request) (*model.SvgReport, error) {
	v, err := c.load(keyFor(opSVGs, req), func() (interface{}, error) {
		return c.next.ExtractSVGs(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.SvgReport), nil
}

func (c *Cache) load(key cacheKey, fresh func() (interface{}, error)) (interface{}, error) {
	if c.ttl == 0 {
		return fresh()
	}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		v := entry.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := fresh()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pruneLocked()
	c.entries[key] = cacheEntry{value: v, timestamp: c.now()}
	c.mu.Unlock()

	return v, nil
}

func (c *Cache) pruneLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.timestamp) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

// InvalidateURL removes all cache entries for the given URL, so the next
// request for it extracts fresh.
func (c *Cache) InvalidateURL(url string) {
	url = strings.TrimSpace(url)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.URL == url {
			delete(c.entries, k)
		}
	}
}
