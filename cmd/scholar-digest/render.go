// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/digest"
	"github.com/pdiddy/scholar-digest/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Re-render the HTML report from a saved snapshot",
	Long: `Render rebuilds the HTML report for a past run from its JSON snapshot,
without scanning mail or querying lookup sources. Useful after template
changes or for inspecting an old run.`,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	papers, err := digest.LoadSnapshot(digest.SnapshotPath(cfg.Report.OutputDir, date))
	if err != nil {
		return err
	}

	data := report.Data{End: date, Groups: digest.GroupByDate(papers)}
	reportPath := digest.ReportPath(cfg.Report.OutputDir, date)
	if err := report.RenderFile(reportPath, data); err != nil {
		return err
	}

	logger.Info().Str("path", reportPath).Int("papers", len(papers)).Msg("report written")
	return nil
}

func init() {
	renderCmd.Flags().String("date", "", "run date to render (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(renderCmd)
}
