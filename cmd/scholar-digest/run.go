// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/archive"
	"github.com/pdiddy/scholar-digest/internal/digest"
	"github.com/pdiddy/scholar-digest/internal/lookup"
	"github.com/pdiddy/scholar-digest/internal/mailer"
	"github.com/pdiddy/scholar-digest/internal/report"
	"github.com/pdiddy/scholar-digest/internal/secrets"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan the mail store and produce today's digest",
	Long: `Run executes the whole pipeline: scan the mail store for recent alert
emails, extract and enrich the papers they mention, merge duplicates, and
write today's snapshot, summary, and HTML report. Unless --dry-run is set
the report is also delivered by email and the run is archived.

A run that finds no alerts, or alerts with nothing extractable, writes and
sends nothing.`,
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.Mailbox.Root = root
	}
	if cmd.Flags().Changed("days") {
		cfg.Mailbox.LookbackDays, _ = cmd.Flags().GetInt("days")
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var cutoff time.Time
	if cfg.Mailbox.LookbackDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -cfg.Mailbox.LookbackDays)
	}

	ctx := context.Background()
	resolver := lookup.NewResolver(cfg.Lookup, logger)
	pipe := digest.New(cfg.Mailbox, resolver, logger)

	outcome, err := pipe.Run(ctx, cutoff)
	if err != nil {
		return err
	}

	if outcome.NoAlerts() {
		logger.Info().Msg("no alert messages found")
		return nil
	}
	if outcome.NothingToReport() {
		logger.Info().Msg("alerts matched but carried no extractable papers")
		return nil
	}

	endDate := time.Now().Format("2006-01-02")

	snapshotPath := digest.SnapshotPath(cfg.Report.OutputDir, endDate)
	if err := digest.SaveSnapshot(snapshotPath, outcome.Papers); err != nil {
		return err
	}
	logger.Info().Str("path", snapshotPath).Msg("snapshot written")

	groups := digest.GroupByDate(outcome.Papers)

	if err := digest.WriteSummary(digest.SummaryPath(cfg.Report.OutputDir, endDate), digest.Summary{
		Date:        endDate,
		Scanned:     outcome.Scanned,
		Matched:     outcome.Matched,
		Papers:      len(outcome.Papers),
		Groups:      len(groups),
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	data := report.Data{End: endDate, Groups: groups}
	if !cutoff.IsZero() {
		data.Start = cutoff.Format("2006-01-02")
	}

	reportPath := digest.ReportPath(cfg.Report.OutputDir, endDate)
	if err := report.RenderFile(reportPath, data); err != nil {
		return err
	}
	logger.Info().Str("path", reportPath).Msg("report written")

	if dryRun {
		logger.Info().Msg("dry run, skipping archive and delivery")
		return nil
	}

	store, err := archive.NewStore(cfg.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(ctx, archive.RunRecord{
		Date:    endDate,
		Scanned: outcome.Scanned,
		Matched: outcome.Matched,
		Papers:  outcome.Papers,
	}); err != nil {
		return err
	}
	if cfg.Mail.Host == "" {
		logger.Warn().Msg("mail host not configured, skipping delivery")
		return nil
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, data); err != nil {
		return err
	}
	sender := mailer.New(cfg.Mail, secretDefault(secrets.MailPassword, ""), logger)
	return sender.Send(mailer.Subject(endDate), buf.String())
}

func init() {
	runCmd.Flags().String("root", "", "mail store directory to scan (overrides config)")
	runCmd.Flags().Int("days", 0, "lookback window in days (overrides config; 0 with no config = 7)")
	runCmd.Flags().Bool("dry-run", false, "write snapshot and report but do not send email")

	rootCmd.AddCommand(runCmd)
}
