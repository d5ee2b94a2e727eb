// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/digest"
	"github.com/pdiddy/scholar-digest/internal/mailer"
	"github.com/pdiddy/scholar-digest/internal/report"
	"github.com/pdiddy/scholar-digest/internal/secrets"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Deliver a saved run's report by email",
	Long: `Send renders a past run's snapshot and delivers it by email. Use it to
resend a digest after a delivery failure or to deliver a --dry-run run.`,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if cfg.Mail.Host == "" {
		return fmt.Errorf("mail host not configured")
	}

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	papers, err := digest.LoadSnapshot(digest.SnapshotPath(cfg.Report.OutputDir, date))
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		return fmt.Errorf("snapshot for %s is empty, nothing to send", date)
	}

	var buf bytes.Buffer
	data := report.Data{End: date, Groups: digest.GroupByDate(papers)}
	if err := report.Render(&buf, data); err != nil {
		return err
	}

	sender := mailer.New(cfg.Mail, secretDefault(secrets.MailPassword, ""), logger)
	return sender.Send(mailer.Subject(date), buf.String())
}

func init() {
	sendCmd.Flags().String("date", "", "run date to send (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(sendCmd)
}
