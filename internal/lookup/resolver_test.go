// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name  string
	hit   *Hit
	err   error
	calls int32
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Lookup(_ context.Context, _ string) (*Hit, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.hit, m.err
}

func mention(title string) types.PaperMention {
	return types.PaperMention{
		Title:       title,
		Abstract:    "alert abstract",
		AuthorVenue: "J. Doe - ACM, 2020",
		URL:         "https://example.org/paper",
		Reason:      "R1",
		Date:        "2023-01-02",
	}
}

// --- SplitAuthorVenue ---

func TestSplitAuthorVenue(t *testing.T) {
	tests := []struct {
		in            string
		wantAuthor    string
		wantVenueYear string
	}{
		{"J. Doe - ACM, 2020", "J. Doe", "ACM, 2020"},
		{"A, B, C - NSDI, 2021", "A, B, C", "NSDI, 2021"},
		{"Unparsed String", "Unparsed String", ""},
		{"", "", ""},
		{"X - Y - Z", "X", "Y"},
	}
	for _, tt := range tests {
		author, venueYear := SplitAuthorVenue(tt.in)
		if author != tt.wantAuthor || venueYear != tt.wantVenueYear {
			t.Errorf("SplitAuthorVenue(%q) = (%q, %q), want (%q, %q)",
				tt.in, author, venueYear, tt.wantAuthor, tt.wantVenueYear)
		}
	}
}

// --- field priority ---

func TestResolvePrimaryWins(t *testing.T) {
	primary := &mockSource{name: "dblp", hit: &Hit{
		Venue: "SOSP", Year: "2020",
		Authors: []string{"Alice A.", "Bob B."},
		DOI:     "10.1/x", Type: "Conference and Workshop Papers",
	}}
	secondary := &mockSource{name: "s2", hit: &Hit{
		Venue: "WrongVenue", Year: "1999",
		Authors:  []string{"Nobody"},
		Abstract: "s2 abstract",
	}}

	r := NewResolverWithSources(primary, secondary, zerolog.Nop())
	rec := r.Resolve(context.Background(), mention("Paper A"))

	if rec.VenueYear != "SOSP, 2020" {
		t.Errorf("VenueYear = %q", rec.VenueYear)
	}
	if rec.Authors != "Alice A., Bob B." {
		t.Errorf("Authors = %q", rec.Authors)
	}
	if rec.DOI != "10.1/x" || rec.Type != "Conference and Workshop Papers" {
		t.Errorf("DOI/Type = %q/%q", rec.DOI, rec.Type)
	}
	// A primary DOI overrides the alert-supplied URL.
	if rec.URL != "https://doi.org/10.1/x" {
		t.Errorf("URL = %q, want doi.org link", rec.URL)
	}
	// The abstract is the one field where the secondary outranks the alert.
	if rec.Abstract != "s2 abstract" {
		t.Errorf("Abstract = %q", rec.Abstract)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != "R1" {
		t.Errorf("Reasons = %v", rec.Reasons)
	}
	if rec.Date != "2023-01-02" {
		t.Errorf("Date = %q", rec.Date)
	}
}

func TestResolveSecondaryFillsGaps(t *testing.T) {
	// Primary hit with no venue/year/authors: venue and authors fall
	// through to the secondary, DOI still comes from the primary.
	primary := &mockSource{name: "dblp", hit: &Hit{DOI: "10.2/y"}}
	secondary := &mockSource{name: "s2", hit: &Hit{
		Venue: "NSDI", Year: "2021", Authors: []string{"Carol C."},
	}}

	r := NewResolverWithSources(primary, secondary, zerolog.Nop())
	rec := r.Resolve(context.Background(), mention("Paper G"))

	if rec.VenueYear != "NSDI, 2021" {
		t.Errorf("VenueYear = %q", rec.VenueYear)
	}
	if rec.Authors != "Carol C." {
		t.Errorf("Authors = %q", rec.Authors)
	}
	if rec.URL != "https://doi.org/10.2/y" {
		t.Errorf("URL = %q", rec.URL)
	}
}

// A venue without a year (or vice versa) does not count as a usable
// venue/year pair; the next source in priority supplies it.
func TestResolveVenueYearRequiresBoth(t *testing.T) {
	primary := &mockSource{name: "dblp", hit: &Hit{Venue: "CoRR"}}
	secondary := &mockSource{name: "s2", hit: nil}

	r := NewResolverWithSources(primary, secondary, zerolog.Nop())
	rec := r.Resolve(context.Background(), mention("Paper H"))

	if rec.VenueYear != "ACM, 2020" {
		t.Errorf("VenueYear = %q, want alert-supplied fallback", rec.VenueYear)
	}
}

func TestResolveFullFallback(t *testing.T) {
	primary := &mockSource{name: "dblp", hit: nil}
	secondary := &mockSource{name: "s2", err: errors.New("boom")}

	r := NewResolverWithSources(primary, secondary, zerolog.Nop())
	rec := r.Resolve(context.Background(), mention("Paper B"))

	if rec.DOI != "" || rec.Type != "" {
		t.Errorf("DOI/Type = %q/%q, want empty", rec.DOI, rec.Type)
	}
	if rec.Authors != "J. Doe" {
		t.Errorf("Authors = %q, want alert-supplied author substring", rec.Authors)
	}
	if rec.VenueYear != "ACM, 2020" {
		t.Errorf("VenueYear = %q, want alert-supplied substring", rec.VenueYear)
	}
	if rec.URL != "https://example.org/paper" {
		t.Errorf("URL = %q, want alert-supplied url", rec.URL)
	}
	if rec.Abstract != "alert abstract" {
		t.Errorf("Abstract = %q", rec.Abstract)
	}
}

func TestResolveNoDelimiterAuthorVenue(t *testing.T) {
	r := NewResolverWithSources(&mockSource{name: "dblp"}, &mockSource{name: "s2"}, zerolog.Nop())

	m := mention("Paper C")
	m.AuthorVenue = "Unparsed String"
	rec := r.Resolve(context.Background(), m)

	if rec.Authors != "Unparsed String" {
		t.Errorf("Authors = %q, want whole string", rec.Authors)
	}
	if rec.VenueYear != "" {
		t.Errorf("VenueYear = %q, want empty", rec.VenueYear)
	}
}

// --- memoization ---

func TestResolveCachesPerTitle(t *testing.T) {
	primary := &mockSource{name: "dblp", hit: &Hit{Venue: "ATC", Year: "2022"}}
	secondary := &mockSource{name: "s2"}
	r := NewResolverWithSources(primary, secondary, zerolog.Nop())

	m1 := mention("Paper D")
	m2 := mention("Paper D")
	m2.Reason = "R2"
	m2.Date = "2023-01-03"

	rec1 := r.Resolve(context.Background(), m1)
	rec2 := r.Resolve(context.Background(), m2)

	if got := atomic.LoadInt32(&primary.calls); got != 1 {
		t.Errorf("primary queried %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&secondary.calls); got != 1 {
		t.Errorf("secondary queried %d times, want 1", got)
	}

	// Enriched fields are shared; reason and date are per mention.
	if rec1.VenueYear != rec2.VenueYear {
		t.Errorf("cached fields differ: %q vs %q", rec1.VenueYear, rec2.VenueYear)
	}
	if rec2.Reasons[0] != "R2" || rec2.Date != "2023-01-03" {
		t.Errorf("second mention's reason/date not carried: %v %q", rec2.Reasons, rec2.Date)
	}
}

func TestResolveDistinctTitlesQueriedSeparately(t *testing.T) {
	primary := &mockSource{name: "dblp"}
	r := NewResolverWithSources(primary, &mockSource{name: "s2"}, zerolog.Nop())

	// Titles differing only in case or whitespace are distinct keys;
	// dedup is exact and does no normalization.
	r.Resolve(context.Background(), mention("paper e"))
	r.Resolve(context.Background(), mention("Paper E"))
	r.Resolve(context.Background(), mention("Paper E "))

	if got := atomic.LoadInt32(&primary.calls); got != 3 {
		t.Errorf("primary queried %d times, want 3", got)
	}
}

func TestResolveConcurrentSameTitle(t *testing.T) {
	primary := &mockSource{name: "dblp", hit: &Hit{Venue: "OSDI", Year: "2023"}}
	r := NewResolverWithSources(primary, &mockSource{name: "s2"}, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := r.Resolve(context.Background(), mention("Paper F"))
			if rec.VenueYear != "OSDI, 2023" {
				t.Errorf("VenueYear = %q", rec.VenueYear)
			}
		}()
	}
	wg.Wait()

	// A duplicate concurrent query is acceptable; a corrupted cache is not.
	if r.cache.Len() != 1 {
		t.Errorf("cache holds %d titles, want 1", r.cache.Len())
	}
}
