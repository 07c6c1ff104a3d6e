// Package config loads clickaudit settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine names.
const (
	EngineRod    = "rod"
	EngineStatic = "static"
)

// Config is the top-level configuration.
type Config struct {
	Engine  string        `yaml:"engine"` // rod | static
	Browser BrowserConfig `yaml:"browser"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Preview PreviewConfig `yaml:"preview"`
	Consent ConsentConfig `yaml:"consent"`
	Server  ServerConfig  `yaml:"server"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote            string        `yaml:"remote"`
	Headful           bool          `yaml:"headful"`
	Stealth           bool          `yaml:"stealth"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleWait        time.Duration `yaml:"settle_wait"`
	ViewportWidth     int           `yaml:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height"`
}

// FetchConfig bounds image and sprite downloads.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// PreviewConfig controls preview bitmaps.
type PreviewConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MaxEdge     int    `yaml:"max_edge"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	FixedColor  string `yaml:"fixed_color"`
}

// ConsentConfig controls cookie banner dismissal.
type ConsentConfig struct {
	Enabled bool          `yaml:"enabled"`
	Wait    time.Duration `yaml:"wait"`
	Settle  time.Duration `yaml:"settle"`
	// Phrases are tried before the built-in list.
	Phrases []string `yaml:"phrases"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// CacheTTL keeps reports for repeated requests. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	c := Config{
		Browser: BrowserConfig{Stealth: true},
		Preview: PreviewConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// Load reads path, or returns Default when path is empty. Keys missing from
// the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = EngineRod
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1366
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 900
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 5 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 10 << 20
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "clickaudit/1.0"
	}
	if c.Preview.MaxEdge <= 0 {
		c.Preview.MaxEdge = 200
	}
	if c.Preview.JPEGQuality <= 0 {
		c.Preview.JPEGQuality = 80
	}
	if c.Preview.FixedColor == "" {
		c.Preview.FixedColor = "#888888"
	}
	if c.Consent.Wait < 0 {
		c.Consent.Wait = 0
	}
	if c.Consent.Settle <= 0 {
		c.Consent.Settle = time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineRod, EngineStatic:
	default:
		return fmt.Errorf("config: unknown engine %q (use rod or static)", c.Engine)
	}
	if c.Preview.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality %d out of range 1-100", c.Preview.JPEGQuality)
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("config: negative cache_ttl")
	}
	return nil
}
