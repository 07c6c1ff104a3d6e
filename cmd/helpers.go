package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/clickaudit/internal/browser"
	"github.com/mj1618/clickaudit/internal/config"
	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/fetch"
	"github.com/mj1618/clickaudit/internal/imagery"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// addEngineFlags registers flags that override the browser section of the
// config file.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", "", "Page engine: rod (Chrome) or static (no scripts)")
	cmd.Flags().String("remote", "", "DevTools WebSocket URL of a running Chrome")
	cmd.Flags().Bool("headful", false, "Show the browser window")
	cmd.Flags().Bool("no-previews", false, "Skip image preview bitmaps")
}

// applyEngineFlags returns a copy of base with any engine flags applied.
func applyEngineFlags(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	c := *base
	if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
		c.Engine = engine
	}
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		c.Browser.Remote = remote
	}
	if headful, _ := cmd.Flags().GetBool("headful"); headful {
		c.Browser.Headful = true
	}
	if noPreviews, _ := cmd.Flags().GetBool("no-previews"); noPreviews {
		c.Preview.Enabled = false
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// newExtractor builds the extraction stack described by c. The returned
// engine must be closed by the caller.
func newExtractor(c *config.Config) (*extract.Extractor, browser.Engine) {
	fetcher := fetch.New(fetch.Config{
		Timeout:   c.Fetch.Timeout,
		MaxBytes:  c.Fetch.MaxBytes,
		UserAgent: c.Fetch.UserAgent,
	})

	var engine browser.Engine
	switch c.Engine {
	case config.EngineStatic:
		engine = browser.NewStatic(fetcher, &log.Logger)
	default:
		engine = browser.NewRod(browser.RodConfig{
			RemoteURL:         c.Browser.Remote,
			Headful:           c.Browser.Headful,
			Stealth:           c.Browser.Stealth,
			NavigationTimeout: c.Browser.NavigationTimeout,
			SettleWait:        c.Browser.SettleWait,
			ConsentWait:       c.Consent.Wait,
			ConsentSettle:     c.Consent.Settle,
			ViewportWidth:     c.Browser.ViewportWidth,
			ViewportHeight:    c.Browser.ViewportHeight,
			Logger:            &log.Logger,
		})
	}

	images := imagery.New(imagery.Config{
		Fetcher:     fetcher,
		Renderer:    render.NewRenderer(),
		Thumbnailer: render.Imaging{Quality: c.Preview.JPEGQuality},
		Previews:    c.Preview.Enabled,
		MaxEdge:     c.Preview.MaxEdge,
		FixedColor:  c.Preview.FixedColor,
		Logger:      &log.Logger,
	})

	ex := extract.New(extract.Config{
		Engine:         engine,
		Images:         images,
		ConsentPhrases: c.Consent.Phrases,
		Logger:         &log.Logger,
	})
	return ex, engine
}

// parseBBox parses "x,y,w,h".
func parseBBox(s string) (*model.Rect, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return nil, fmt.Errorf("invalid bbox %q: width and height must be positive", s)
	}
	return &model.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// splitList splits a comma-separated flag value.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Parameter extraction helpers for MCP argument maps

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
