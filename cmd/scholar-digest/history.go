// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/archive"
)

var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "Search archived digest runs",
	Long: `History searches the run archive with FTS5 full-text search over paper
titles and abstracts. Without a query it lists the most recently archived
papers. Use --date to restrict results to one run.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	store, err := archive.NewStore(cfg.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	runDate, _ := cmd.Flags().GetString("date")
	limit, _ := cmd.Flags().GetInt("limit")

	results, err := store.History(context.Background(), archive.HistoryOptions{
		Query:      query,
		RunDate:    runDate,
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(results, jsonOutput)
}

func formatHistoryOutput(results []archive.HistoryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-50s  %-30s  %s\n", "Run", "Title", "Venue", "Reasons")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		venue := r.Record.VenueYear
		if len(venue) > 30 {
			venue = venue[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-50s  %-30s  %s\n",
			r.RunDate, title, venue, strings.Join(r.Record.Reasons, "; "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	historyCmd.Flags().String("query", "", "full-text search query")
	historyCmd.Flags().String("date", "", "restrict to one run date (YYYY-MM-DD)")
	historyCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(historyCmd)
}
