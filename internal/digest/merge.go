// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"sort"
	"strings"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// UndatedLabel is the synthetic group label for records without a date.
const UndatedLabel = "undated"

// Merge folds one message's result into the accumulator. A title seen for
// the first time is inserted as-is; on repeat encounters the first-seen
// record's fields are kept and only the new occurrence's reasons are
// appended. Titles match by exact, case-sensitive string comparison with
// no trimming or unicode normalization.
func Merge(acc map[string]types.PaperRecord, msg MessageResult) {
	for title, rec := range msg {
		existing, ok := acc[title]
		if !ok {
			acc[title] = rec
			continue
		}
		existing.Reasons = append(existing.Reasons, rec.Reasons...)
		acc[title] = existing
	}
}

// GroupByDate orders the merged records by (date ascending, title
// case-insensitive ascending) and partitions consecutive equal-date runs
// into groups. Concatenating the groups' papers in group order reproduces
// that total order exactly: grouping is a stable partition of it.
func GroupByDate(papers map[string]types.PaperRecord) []types.ReportGroup {
	records := make([]types.PaperRecord, 0, len(papers))
	for _, r := range papers {
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return strings.ToLower(records[i].Title) < strings.ToLower(records[j].Title)
	})

	var groups []types.ReportGroup
	for _, r := range records {
		label := r.Date
		if label == "" {
			label = UndatedLabel
		}
		if len(groups) == 0 || groups[len(groups)-1].Label != label {
			groups = append(groups, types.ReportGroup{Label: label})
		}
		last := &groups[len(groups)-1]
		last.Papers = append(last.Papers, r)
	}
	return groups
}
