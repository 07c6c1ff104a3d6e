// Package server exposes extractions over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/model"
)

// Extractor is the work the server delegates to.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (*model.PageReport, error)
	ExtractSVGs(ctx context.Context, req extract.Request) (*model.SvgReport, error)
}

// invalidator is implemented by extractors that cache reports.
type invalidator interface {
	InvalidateURL(url string)
}

// Config configures a Server.
type Config struct {
	Extractor Extractor
	// RequestTimeout bounds each extraction. Zero means no extra bound.
	RequestTimeout time.Duration
	Version        string
	Logger         *zerolog.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	log     zerolog.Logger
	started time.Time
}

// New returns a Server.
func New(cfg Config) *Server {
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	return &Server{
		cfg:     cfg,
		log:     l.With().Str("component", "server").Logger(),
		started: time.Now(),
	}
}

// websiteRequest is the body of POST /api/test-website.
type websiteRequest struct {
	URL            string `json:"url"`
	HandleCookies  bool   `json:"handleCookies"`
	CookieSelector string `json:"cookieSelector"`
	Screenshot     bool   `json:"screenshot"`
	// Refresh drops any cached report for the URL first.
	Refresh bool `json:"refresh"`
}

// websiteResult is a PageReport with summary counts and the optional
// screenshot inlined.
type websiteResult struct {
	*model.PageReport
	Buttons    int    `json:"buttons"`
	Links      int    `json:"links"`
	Screenshot string `json:"screenshot,omitempty"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/health", s.handleHealth)
	r.Post("/api/test-website", s.handleTestWebsite)
	r.Post("/api/extract-svgs", s.handleExtractSVGs)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "Server is running",
		"version":   s.cfg.Version,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"uptime":     time.Since(s.started).Seconds(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]uint64{
			"alloc":     mem.Alloc,
			"sys":       mem.Sys,
			"heapInuse": mem.HeapInuse,
		},
	})
}

func (s *Server) handleTestWebsite(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	report, err := s.cfg.Extractor.Extract(ctx, req)
	if err != nil {
		s.writeExtractError(w, req.URL, err)
		return
	}

	res := websiteResult{PageReport: report}
	res.Buttons, res.Links = report.Counts()
	if len(report.Screenshot) > 0 {
		res.Screenshot = "data:image/png;base64," + base64.StdEncoding.EncodeToString(report.Screenshot)
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: res})
}

func (s *Server) handleExtractSVGs(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	report, err := s.cfg.Extractor.ExtractSVGs(ctx, req)
	if err != nil {
		s.writeExtractError(w, req.URL, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: report})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (extract.Request, bool) {
	var body websiteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return extract.Request{}, false
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return extract.Request{}, false
	}
	if body.Refresh {
		if inv, ok := s.cfg.Extractor.(invalidator); ok {
			inv.InvalidateURL(body.URL)
		}
	}
	return extract.Request{
		URL:           body.URL,
		HandleCookies: body.HandleCookies,
		CookieText:    body.CookieSelector,
		Screenshot:    body.Screenshot,
	}, true
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) writeExtractError(w http.ResponseWriter, url string, err error) {
	if errors.Is(err, extract.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error().Err(err).Str("url", url).Msg("extraction failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Error: msg})
}
