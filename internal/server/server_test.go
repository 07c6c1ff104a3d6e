package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/clickaudit/internal/browser"
	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/fetch"
	"github.com/mj1618/clickaudit/internal/imagery"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/rs/zerolog"
)

type stubExtractor struct {
	mu       sync.Mutex
	calls    []extract.Request
	err      error
	deadline bool
}

func (s *stubExtractor) record(ctx context.Context, req extract.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	_, s.deadline = ctx.Deadline()
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubExtractor) Extract(ctx context.Context, req extract.Request) (*model.PageReport, error) {
	s.record(ctx, req)
	if s.err != nil {
		return nil, s.err
	}
	return &model.PageReport{
		RunID:       fmt.Sprintf("run-%d", s.callCount()),
		OriginalURL: req.URL,
		FinalURL:    req.URL + "/",
		Title:       "Example",
		Elements: []model.InteractiveElement{
			{SequenceID: 0, KindID: 1, Tag: "a"},
			{SequenceID: 1, KindID: 1, Tag: "button", IsButton: true},
			{SequenceID: 2, KindID: 2, Tag: "button", IsButton: true},
		},
		Screenshot: []byte("png"),
	}, nil
}

func (s *stubExtractor) ExtractSVGs(ctx context.Context, req extract.Request) (*model.SvgReport, error) {
	s.record(ctx, req)
	if s.err != nil {
		return nil, s.err
	}
	return &model.SvgReport{URL: req.URL, SvgCount: 1, Svgs: []model.SvgEntry{{ID: 0}}}, nil
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, decoded
}

func TestStatusAndHealth(t *testing.T) {
	h := New(Config{Extractor: &stubExtractor{}, Version: "1.2.3"}).Handler()

	for _, tt := range []struct {
		path   string
		status string
	}{
		{"/api/status", "success"},
		{"/api/health", "healthy"},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.path, rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != tt.status {
			t.Errorf("%s: status field %v", tt.path, body["status"])
		}
	}
}

func TestTestWebsite(t *testing.T) {
	stub := &stubExtractor{}
	h := New(Config{Extractor: stub, RequestTimeout: time.Minute}).Handler()

	rec, body := post(t, h, "/api/test-website",
		`{"url":"https://example.com","handleCookies":true,"cookieSelector":"Agree","screenshot":true}`)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["originalUrl"] != "https://example.com" || data["title"] != "Example" {
		t.Errorf("unexpected data %v", data)
	}
	if data["buttons"] != 2.0 || data["links"] != 1.0 {
		t.Errorf("counts: buttons=%v links=%v", data["buttons"], data["links"])
	}
	if s, _ := data["screenshot"].(string); !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Errorf("screenshot: %q", s)
	}
	if len(data["elements"].([]interface{})) != 3 {
		t.Error("expected 3 elements")
	}

	got := stub.calls[0]
	want := extract.Request{URL: "https://example.com", HandleCookies: true, CookieText: "Agree", Screenshot: true}
	if got != want {
		t.Errorf("request: got %+v, want %+v", got, want)
	}
	if !stub.deadline {
		t.Error("request timeout should bound the extraction")
	}
}

func TestTestWebsite_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		code int
		msg  string
	}{
		{"missing_url", nil, `{}`, http.StatusBadRequest, "URL is required"},
		{"bad_json", nil, `{"url":`, http.StatusBadRequest, "invalid JSON body"},
		{"invalid_url", fmt.Errorf("%w: %q", extract.ErrInvalidURL, "http://"), `{"url":"http://"}`, http.StatusBadRequest, ""},
		{"navigation", fmt.Errorf("%w: timeout", extract.ErrNavigation), `{"url":"https://slow.test"}`, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Config{Extractor: &stubExtractor{err: tt.err}}).Handler()
			rec, body := post(t, h, "/api/test-website", tt.body)
			if rec.Code != tt.code {
				t.Errorf("status: got %d, want %d", rec.Code, tt.code)
			}
			if body["success"] != false {
				t.Error("success should be false")
			}
			msg, _ := body["error"].(string)
			if msg == "" || (tt.msg != "" && msg != tt.msg) {
				t.Errorf("error: got %q, want %q", msg, tt.msg)
			}
		})
	}
}

func TestExtractSVGs(t *testing.T) {
	h := New(Config{Extractor: &stubExtractor{}}).Handler()
	rec, body := post(t, h, "/api/extract-svgs", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["svgCount"] != 1.0 || len(data["svgs"].([]interface{})) != 1 {
		t.Errorf("unexpected data %v", data)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(Config{Extractor: &stubExtractor{}}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/test-website", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestCache(t *testing.T) {
	stub := &stubExtractor{}
	c := NewCache(stub, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	req := extract.Request{URL: "https://example.com"}

	first, _ := c.Extract(ctx, req)
	second, _ := c.Extract(ctx, extract.Request{URL: " https://example.com "})
	if first != second || stub.callCount() != 1 {
		t.Fatalf("second request should hit the cache, calls=%d", stub.callCount())
	}

	c.Extract(ctx, extract.Request{URL: "https://example.com", HandleCookies: true})
	c.ExtractSVGs(ctx, req)
	if stub.callCount() != 3 {
		t.Errorf("different options and operations use separate entries, calls=%d", stub.callCount())
	}

	now = now.Add(2 * time.Minute)
	third, _ := c.Extract(ctx, req)
	if third == first || stub.callCount() != 4 {
		t.Error("expired entry should be refreshed")
	}

	c.InvalidateURL("https://example.com")
	c.Extract(ctx, req)
	if stub.callCount() != 5 {
		t.Error("InvalidateURL should drop entries")
	}
}

func TestTestWebsite_Refresh(t *testing.T) {
	stub := &stubExtractor{}
	h := New(Config{Extractor: NewCache(stub, time.Hour)}).Handler()

	post(t, h, "/api/test-website", `{"url":"https://example.com"}`)
	post(t, h, "/api/test-website", `{"url":"https://example.com"}`)
	if stub.callCount() != 1 {
		t.Fatalf("second request should be served from the cache, calls=%d", stub.callCount())
	}
	_, body := post(t, h, "/api/test-website", `{"url":"https://example.com","refresh":true}`)
	if stub.callCount() != 2 || body["success"] != true {
		t.Errorf("refresh should extract again, calls=%d", stub.callCount())
	}
}

func TestTestWebsite_RejectsFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "private.html")
	if err := os.WriteFile(path, []byte(`<a href="/x">secret-token</a>`), 0o644); err != nil {
		t.Fatal(err)
	}
	l := zerolog.Nop()
	fetcher := fetch.New(fetch.Config{})
	ex := extract.New(extract.Config{
		Engine: browser.NewStatic(fetcher, &l),
		Images: imagery.New(imagery.Config{Fetcher: fetcher, Logger: &l}),
		Logger: &l,
	})
	h := New(Config{Extractor: ex, Logger: &l}).Handler()

	for _, route := range []string{"/api/test-website", "/api/extract-svgs"} {
		rec, body := post(t, h, route, `{"url":"file://`+path+`"}`)
		if rec.Code != http.StatusBadRequest || body["success"] != false {
			t.Errorf("%s: got %d %v", route, rec.Code, body)
		}
		if strings.Contains(rec.Body.String(), "secret-token") {
			t.Errorf("%s: local file content leaked", route)
		}
	}
}

func TestCache_ErrorsAndDisabled(t *testing.T) {
	stub := &stubExtractor{err: errors.New("boom")}
	c := NewCache(stub, time.Minute)
	ctx := context.Background()
	req := extract.Request{URL: "https://example.com"}

	for i := 0; i < 2; i++ {
		if _, err := c.Extract(ctx, req); err == nil {
			t.Fatal("expected error")
		}
	}
	if stub.callCount() != 2 {
		t.Errorf("failures must not be cached, calls=%d", stub.callCount())
	}

	ok := &stubExtractor{}
	off := NewCache(ok, 0)
	off.Extract(ctx, req)
	off.Extract(ctx, req)
	if ok.callCount() != 2 {
		t.Errorf("ttl 0 disables caching, calls=%d", ok.callCount())
	}
}
