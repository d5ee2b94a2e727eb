// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-digest pipeline.
package types

// PaperMention is one paper entry extracted from a single alert message.
// Abstract, AuthorVenue, and URL hold the alert-supplied values before any
// external enrichment. All mentions from one message share Reason and Date.
type PaperMention struct {
	// Title is the paper title as it appears in the alert HTML.
	Title string `json:"title" yaml:"title"`

	// Abstract is the alert-supplied snippet text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// AuthorVenue is the alert-supplied "Authors - Venue, Year" line.
	AuthorVenue string `json:"author_venue" yaml:"author_venue"`

	// URL is the destination URL after unwrapping the Scholar redirect.
	URL string `json:"url" yaml:"url"`

	// Reason is the message's free-text explanation for the alert.
	Reason string `json:"reason" yaml:"reason"`

	// Date is the containing message's date as YYYY-MM-DD.
	Date string `json:"date" yaml:"date"`
}

// PaperRecord is the enriched, final unit of the digest. Title is the unique
// key; equality is exact and case-sensitive. Reasons accumulates one entry
// per message that mentioned the title within a run.
type PaperRecord struct {
	Title     string   `json:"title" yaml:"title"`
	Abstract  string   `json:"abstract" yaml:"abstract"`
	VenueYear string   `json:"venue_year" yaml:"venue_year"`
	Authors   string   `json:"authors" yaml:"authors"`
	DOI       string   `json:"doi" yaml:"doi"`
	Type      string   `json:"type" yaml:"type"`
	URL       string   `json:"url" yaml:"url"`
	Reasons   []string `json:"reason" yaml:"reason"`
	Date      string   `json:"date" yaml:"date"`
}

// ReportGroup is a date-labeled bucket of finalized paper records, ordered
// by case-insensitive title. Read-only once built.
type ReportGroup struct {
	// Label is the group's calendar date (YYYY-MM-DD), or a synthetic
	// whole-run label when a record carries no date.
	Label string `json:"label" yaml:"label"`

	Papers []PaperRecord `json:"papers" yaml:"papers"`
}
