package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/server"
	"github.com/mj1618/clickaudit/internal/version"
	"gopkg.in/yaml.v3"
)

// mcpServer exposes extractions as MCP tools.
type mcpServer struct {
	extractor server.Extractor
	mcp       *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer creates and configures an MCP server with the clickaudit tools.
func newMCPServer(ex server.Extractor) *mcpServer {
	s := &mcpServer{extractor: ex}
	s.mcp = mcpserver.NewMCPServer(
		"clickaudit",
		version.Version,
	)
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("extract",
			mcp.WithDescription("Load a web page and list every link and button (including inside shadow roots) with accessible text, ARIA references, image descriptors and attributes. Returns YAML."),
			mcp.WithString("url", mcp.Description("Page URL; https:// is assumed when no scheme is given"), mcp.Required()),
			mcp.WithBoolean("cookies", mcp.Description("Try to dismiss a cookie consent banner first")),
			mcp.WithString("cookie-text", mcp.Description("Consent button text to try before the built-in phrases")),
			mcp.WithString("kind", mcp.Description("Comma-separated kinds to include: button, link")),
			mcp.WithString("text", mcp.Description("Only include elements whose text contains this")),
			mcp.WithBoolean("screenshot", mcp.Description("Also return an annotated full-page screenshot")),
			mcp.WithBoolean("refresh", mcp.Description("Ignore any cached report for this URL")),
		),
		s.handleExtract,
	)

	s.mcp.AddTool(
		mcp.NewTool("svgs",
			mcp.WithDescription("Inventory every <svg> on a web page with its markup, <use> references resolved, naming attributes and a preview bitmap. Returns YAML."),
			mcp.WithString("url", mcp.Description("Page URL"), mcp.Required()),
			mcp.WithBoolean("refresh", mcp.Description("Ignore any cached inventory for this URL")),
		),
		s.handleSVGs,
	)
}

func (s *mcpServer) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	req := extract.Request{
		URL:           stringParam(params, "url", ""),
		HandleCookies: boolParam(params, "cookies", false),
		CookieText:    stringParam(params, "cookie-text", ""),
		Screenshot:    boolParam(params, "screenshot", false),
	}
	if req.URL == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	s.refresh(params, req.URL)
	kinds := model.ParseKinds(splitList(stringParam(params, "kind", "")))
	text := stringParam(params, "text", "")

	report, err := s.extractor.Extract(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(toolError(err)), nil
	}

	// Filter a copy; the report may be shared through the cache.
	filtered := *report
	filtered.Elements = model.FilterElements(report.Elements, kinds, text, nil)
	b, err := yaml.Marshal(&filtered)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := mcp.NewToolResultText(string(b))
	if req.Screenshot && len(report.Screenshot) > 0 {
		shot, err := AnnotatePNG(report.Screenshot, filtered.Elements, 1, LabelSequence)
		if err != nil {
			shot = report.Screenshot
		}
		result.Content = append(result.Content, mcp.ImageContent{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(shot),
			MIMEType: "image/png",
		})
	}
	return result, nil
}

func (s *mcpServer) handleSVGs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	url := stringParam(params, "url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	s.refresh(params, url)

	report, err := s.extractor.ExtractSVGs(ctx, extract.Request{URL: url})
	if err != nil {
		return mcp.NewToolResultError(toolError(err)), nil
	}
	b, err := yaml.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// refresh drops cached reports for url when the refresh argument is set.
func (s *mcpServer) refresh(params map[string]interface{}, url string) {
	if !boolParam(params, "refresh", false) {
		return
	}
	if c, ok := s.extractor.(*server.Cache); ok {
		c.InvalidateURL(url)
	}
}

func toolError(err error) string {
	if errors.Is(err, extract.ErrInvalidURL) {
		return "invalid url: " + err.Error()
	}
	return err.Error()
}
