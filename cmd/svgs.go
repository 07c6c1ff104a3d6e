package cmd

import (
	"context"
	"time"

	"github.com/mj1618/clickaudit/internal/extract"
	"github.com/mj1618/clickaudit/internal/output"
	"github.com/spf13/cobra"
)

var svgsCmd = &cobra.Command{
	Use:   "svgs <url>",
	Short: "Inventory every inline <svg> on a page",
	Long: `Load a page and report every <svg> element (light DOM and shadow roots)
with its markup, <use> references resolved, naming attributes and a preview
bitmap.`,
	Args: cobra.ExactArgs(1),
	RunE: runSVGs,
}

func init() {
	rootCmd.AddCommand(svgsCmd)
	addEngineFlags(svgsCmd)
	svgsCmd.Flags().Duration("timeout", 2*time.Minute, "Overall time limit")
}

func runSVGs(cmd *cobra.Command, args []string) error {
	c, err := applyEngineFlags(cmd, cfg)
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ex, engine := newExtractor(c)
	defer engine.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	report, err := ex.ExtractSVGs(ctx, extract.Request{URL: args[0], AllowFile: true})
	if err != nil {
		return err
	}
	return output.Print(report)
}
