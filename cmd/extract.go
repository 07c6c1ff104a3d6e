package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/model"
	"github.com/mj1618/clickaudit/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "List every link and button on a page with its accessibility data",
	Long: `Load a page and report every clickable element (a, button, [role=link],
[role=button]) including those inside open shadow roots, in document order.

Examples:
  clickaudit extract example.com
  clickaudit extract https://example.com --cookies --kind button
  clickaudit extract https://example.com --annotate boxes.png
  clickaudit extract file:///tmp/page.html --engine static --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addEngineFlags(extractCmd)
	extractCmd.Flags().Bool("cookies", false, "Try to dismiss a cookie consent banner first")
	extractCmd.Flags().String("cookie-text", "", "Consent button text to try before the built-in phrases")
	extractCmd.Flags().String("kind", "", "Comma-separated kinds to include (button, link)")
	extractCmd.Flags().String("text", "", "Only include elements whose text contains this (case-insensitive)")
	extractCmd.Flags().String("bbox", "", "Only include elements overlapping bounding box (x,y,w,h)")
	extractCmd.Flags().String("screenshot", "", "Write a full-page PNG screenshot to this path")
	extractCmd.Flags().String("annotate", "", "Write a screenshot with element boxes drawn to this path")
	extractCmd.Flags().Bool("kind-labels", false, "Label annotated boxes by kind id instead of sequence id")
	extractCmd.Flags().Duration("timeout", 2*time.Minute, "Overall time limit")
}

func runExtract(cmd *cobra.Command, args []string) error {
	c, err := applyEngineFlags(cmd, cfg)
	if err != nil {
		return err
	}
	cookies, _ := cmd.Flags().GetBool("cookies")
	cookieText, _ := cmd.Flags().GetString("cookie-text")
	kindStr, _ := cmd.Flags().GetString("kind")
	text, _ := cmd.Flags().GetString("text")
	bboxStr, _ := cmd.Flags().GetString("bbox")
	shotPath, _ := cmd.Flags().GetString("screenshot")
	annotatePath, _ := cmd.Flags().GetString("annotate")
	kindLabels, _ := cmd.Flags().GetBool("kind-labels")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	bbox, err := parseBBox(bboxStr)
	if err != nil {
		return err
	}
	kinds := model.ParseKinds(splitList(kindStr))
	if kindStr != "" && len(kinds) == 0 {
		return fmt.Errorf("invalid --kind %q (use button, link)", kindStr)
	}

	ex, engine := newExtractor(c)
	defer engine.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	report, err := ex.Extract(ctx, extract.Request{
		URL:           args[0],
		HandleCookies: cookies || c.Consent.Enabled,
		CookieText:    cookieText,
		Screenshot:    shotPath != "" || annotatePath != "",
		AllowFile:     true,
	})
	if err != nil {
		return err
	}

	if shotPath != "" || annotatePath != "" {
		if len(report.Screenshot) == 0 {
			log.Warn().Str("engine", c.Engine).Msg("no screenshot available")
		} else if err := writeScreenshots(report, shotPath, annotatePath, kindLabels); err != nil {
			return err
		}
	}

	report.Elements = model.FilterElements(report.Elements, kinds, text, bbox)
	return output.Print(report)
}

func writeScreenshots(report *model.PageReport, shotPath, annotatePath string, kindLabels bool) error {
	if shotPath != "" {
		if err := os.WriteFile(shotPath, report.Screenshot, 0o644); err != nil {
			return fmt.Errorf("write screenshot: %w", err)
		}
	}
	if annotatePath == "" {
		return nil
	}
	mode := LabelSequence
	if kindLabels {
		mode = LabelKind
	}
	data, err := AnnotatePNG(report.Screenshot, report.Elements, 1, mode)
	if err != nil {
		return err
	}
	if err := os.WriteFile(annotatePath, data, 0o644); err != nil {
		return fmt.Errorf("write annotated screenshot: %w", err)
	}
	return nil
}
