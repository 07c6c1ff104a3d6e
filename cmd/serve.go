package cmd

import (
	"time"

	"github.com/mj1618/clickaudit/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing clickaudit tools",
	Long: `Start a Model Context Protocol (MCP) server with two tools:

  extract   links and buttons of a page with their accessibility data
            (optionally filtered by kind or text, with an annotated screenshot)
  svgs      the page-wide <svg> inventory

Finished reports are cached per request for --cache-ttl (default 30s) so an
agent can filter the same page repeatedly without reloading it. Pass
refresh: true to a tool to drop the cached report for that URL. file:// URLs
are refused.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  clickaudit serve
  clickaudit serve --transport streamable-http --port 8080
  clickaudit serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addEngineFlags(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 30000, "Per-request report cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := applyEngineFlags(cmd, cfg)
	if err != nil {
		return err
	}
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	ex, engine := newExtractor(c)
	defer engine.Close()

	srv := newMCPServer(server.NewCache(ex, time.Duration(cacheTTLMs)*time.Millisecond))
	return srv.serve(MCPConfig{Transport: transport, Port: port})
}
