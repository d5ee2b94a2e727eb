// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/httputil"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// Resolver enriches paper mentions by consulting the primary (DBLP) and
// secondary (Semantic Scholar) sources and merging their fields with the
// alert-supplied values.
//
// Field priority, applied independently per field:
//
//	venue/year: primary -> secondary -> alert-supplied venue/year substring
//	authors:    primary (joined ", ") -> secondary -> alert-supplied author substring
//	doi, type:  primary only, else empty
//	url:        https://doi.org/<doi> when the primary supplied a DOI, else alert URL
//	abstract:   secondary, else alert-supplied snippet
//
// Source failures are logged and treated as no-hit; when both sources miss,
// the record degrades fully to the alert-supplied fields. That is the
// expected fallback, not an error: enrichment never drops a paper.
type Resolver struct {
	primary   Source
	secondary Source
	cache     *Cache
	log       zerolog.Logger
}

// NewResolver builds a resolver from config. The secondary source is
// replaced by Disabled when switched off, so it reports no hit without I/O.
func NewResolver(cfg types.LookupConfig, log zerolog.Logger) *Resolver {
	client := httputil.NewClient(cfg.Timeout)

	var secondary Source = Disabled{SourceName: "semantic_scholar"}
	if cfg.EnableSemanticScholar {
		secondary = &SemanticScholarSource{
			Client:    client,
			APIKey:    cfg.SemanticScholarAPIKey,
			UserAgent: cfg.UserAgent,
			Log:       log,
		}
	}

	return &Resolver{
		primary:   &DBLPSource{Client: client, UserAgent: cfg.UserAgent, Log: log},
		secondary: secondary,
		cache:     NewCache(),
		log:       log,
	}
}

// NewResolverWithSources wires explicit sources; used by tests and by any
// caller that needs a custom source pair.
func NewResolverWithSources(primary, secondary Source, log zerolog.Logger) *Resolver {
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		cache:     NewCache(),
		log:       log,
	}
}

// Resolve returns the enriched record for one mention. Lookups for a title
// run at most once per source per run; repeated mentions are served from
// the cache. The mention's reason and date always pass through verbatim.
func (r *Resolver) Resolve(ctx context.Context, m types.PaperMention) types.PaperRecord {
	rec, ok := r.cache.Get(m.Title)
	if !ok {
		// The cache lock is not held here: populate after the calls so a
		// slow source never serializes the other workers.
		rec = r.enrich(ctx, m)
		r.cache.Put(m.Title, rec)
	}

	rec.Reasons = []string{m.Reason}
	rec.Date = m.Date
	return rec
}

func (r *Resolver) enrich(ctx context.Context, m types.PaperMention) types.PaperRecord {
	alertAuthor, alertVenueYear := SplitAuthorVenue(m.AuthorVenue)

	primary := r.query(ctx, r.primary, m.Title)
	secondary := r.query(ctx, r.secondary, m.Title)

	rec := types.PaperRecord{
		Title:     m.Title,
		Abstract:  m.Abstract,
		VenueYear: alertVenueYear,
		Authors:   alertAuthor,
		URL:       m.URL,
	}

	switch {
	case primary != nil && primary.Venue != "" && primary.Year != "":
		rec.VenueYear = primary.Venue + ", " + primary.Year
	case secondary != nil && secondary.Venue != "" && secondary.Year != "":
		rec.VenueYear = secondary.Venue + ", " + secondary.Year
	}

	switch {
	case primary != nil && len(primary.Authors) > 0:
		rec.Authors = strings.Join(primary.Authors, ", ")
	case secondary != nil && len(secondary.Authors) > 0:
		rec.Authors = strings.Join(secondary.Authors, ", ")
	}

	if primary != nil {
		rec.DOI = primary.DOI
		rec.Type = primary.Type
		if primary.DOI != "" {
			rec.URL = "https://doi.org/" + primary.DOI
		}
	}

	if secondary != nil && secondary.Abstract != "" {
		rec.Abstract = secondary.Abstract
	}

	return rec
}

// query runs one source lookup, absorbing failures: a network or parse
// error from a source is logged and counts as no hit.
func (r *Resolver) query(ctx context.Context, src Source, title string) *Hit {
	hit, err := src.Lookup(ctx, title)
	if err != nil {
		r.log.Error().Str("source", src.Name()).Str("title", title).Err(err).Msg("lookup failed")
		return nil
	}
	return hit
}

// SplitAuthorVenue splits the alert-supplied "Authors - Venue, Year" line
// on the first " - " delimiter. Without a delimiter the whole string is the
// author part and the venue/year part is empty; never an error.
func SplitAuthorVenue(s string) (author, venueYear string) {
	parts := strings.Split(s, " - ")
	if len(parts) < 2 {
		return s, ""
	}
	return parts[0], parts[1]
}
