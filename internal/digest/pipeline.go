// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest runs the extraction pipeline over the mail store and
// reduces per-message results into one de-duplicated, date-grouped
// collection of paper records.
package digest

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/alert"
	"github.com/pdiddy/scholar-digest/internal/lookup"
	"github.com/pdiddy/scholar-digest/internal/mailbox"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// MessageResult is one message's contribution: its mentions keyed by title,
// already enriched. Titles are unique within a message by construction.
type MessageResult map[string]types.PaperRecord

// Outcome is the end state of one pipeline run. Scanned counts candidate
// files, Matched counts messages that passed the sender and date filters.
// The two zero states are distinct: with no matched alerts the run reports
// "no alerts found"; with matched alerts but an empty paper map the alerts
// carried nothing extractable. Both skip rendering and delivery.
type Outcome struct {
	Scanned int
	Matched int
	Papers  map[string]types.PaperRecord
}

// NoAlerts reports that no message passed the filters.
func (o Outcome) NoAlerts() bool { return o.Matched == 0 }

// NothingToReport reports that the merged collection is empty, for either
// reason; rendering and delivery must not run in this state.
func (o Outcome) NothingToReport() bool { return len(o.Papers) == 0 }

// Pipeline wires the scanner, extractor, parser, and resolver together.
type Pipeline struct {
	cfg      types.MailboxConfig
	resolver *lookup.Resolver
	log      zerolog.Logger
}

// New returns a pipeline over the configured mail store.
func New(cfg types.MailboxConfig, resolver *lookup.Resolver, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, resolver: resolver, log: log}
}

// Run scans the mail store and processes every candidate message on a
// bounded worker pool; each worker takes one message through extraction,
// parsing, and enrichment to completion. The reduction into the final map
// is a single-threaded fold over complete per-message results, so two
// messages' updates are never interleaved on one title.
//
// Which duplicate message's fields become canonical depends on worker
// completion order; only the reason list order varies with it, never the
// set of titles or reasons. Callers must not rely on which duplicate wins.
//
// cutoff bounds both the file modification time and the message received
// time; a zero cutoff disables the window entirely.
func (p *Pipeline) Run(ctx context.Context, cutoff time.Time) (Outcome, error) {
	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	candidates := mailbox.Scan(p.cfg.Root, cutoff, p.log)
	results := make(chan MessageResult)

	var scanned, matched int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range candidates {
				atomic.AddInt64(&scanned, 1)
				res := p.process(ctx, cand.Path, cutoff)
				if res == nil {
					continue
				}
				atomic.AddInt64(&matched, 1)
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	papers := make(map[string]types.PaperRecord)
	for res := range results {
		Merge(papers, res)
	}

	out := Outcome{
		Scanned: int(atomic.LoadInt64(&scanned)),
		Matched: int(atomic.LoadInt64(&matched)),
		Papers:  papers,
	}
	p.log.Info().
		Int("scanned", out.Scanned).
		Int("matched", out.Matched).
		Int("papers", len(out.Papers)).
		Msg("pipeline finished")
	return out, nil
}

// process takes one candidate to completion. A nil result means the message
// did not pass the filters; a non-nil empty result means it was an alert
// that contributed zero records (for instance a parse failure, which is
// absorbed here so one malformed message cannot abort the batch).
func (p *Pipeline) process(ctx context.Context, path string, cutoff time.Time) MessageResult {
	msg, ok := mailbox.Extract(path, cutoff, p.log)
	if !ok {
		return nil
	}

	ext, err := alert.Parse(msg.Received, msg.Body, p.log)
	if err != nil {
		p.log.Error().Str("path", path).Err(err).Msg("alert body parse failed")
		return MessageResult{}
	}

	result := make(MessageResult)
	for _, m := range ext.Mentions() {
		result[m.Title] = p.resolver.Resolve(ctx, m)
	}
	return result
}
