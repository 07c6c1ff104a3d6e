package cmd

import (
	"github.com/mj1618/clickaudit/internal/server"
	"github.com/mj1618/clickaudit/internal/version"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve extractions over a JSON HTTP API",
	Long: `Start an HTTP server with the endpoints:

  GET  /api/status        liveness and version
  GET  /api/health        uptime and memory
  POST /api/test-website  {"url", "handleCookies", "cookieSelector", "screenshot", "refresh"}
  POST /api/extract-svgs  {"url", "refresh"}

Only http(s) URLs are accepted; file:// is refused with 400.

Examples:
  clickaudit api
  clickaudit api --addr 127.0.0.1:8080 --cache-ttl 5m`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	addEngineFlags(apiCmd)
	apiCmd.Flags().String("addr", "", "Listen address (default from config, :3000)")
	apiCmd.Flags().Duration("cache-ttl", 0, "Reuse reports for identical requests for this long (0 to disable)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	c, err := applyEngineFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.Server.Addr = addr
	}
	if cmd.Flags().Changed("cache-ttl") {
		c.Server.CacheTTL, _ = cmd.Flags().GetDuration("cache-ttl")
	}

	ex, engine := newExtractor(c)
	defer engine.Close()

	srv := server.New(server.Config{
		Extractor:      server.NewCache(ex, c.Server.CacheTTL),
		RequestTimeout: c.Server.RequestTimeout,
		Version:        version.Version,
		Logger:         &log.Logger,
	})
	return srv.ListenAndServe(cmd.Context(), c.Server.Addr)
}
