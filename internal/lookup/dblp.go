// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/httputil"
)

// dblpAPIBase is the DBLP publication search endpoint. Declared as a var so
// tests can substitute an httptest server.
var dblpAPIBase = "https://dblp.org/search/publ/api"

// DBLPSource queries the DBLP bibliographic search API. It is the primary
// source: the only one trusted for DOI and publication type.
type DBLPSource struct {
	Client    *http.Client
	UserAgent string
	Log       zerolog.Logger
}

// Name returns the source identifier.
func (s *DBLPSource) Name() string { return "dblp" }

// Lookup searches DBLP for the exact title and returns the first hit's
// fields. A zero-hit answer returns (nil, nil).
func (s *DBLPSource) Lookup(ctx context.Context, title string) (*Hit, error) {
	params := url.Values{
		"q":      {title},
		"format": {"json"},
		"h":      {"1"},
	}
	reqURL := dblpAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0, s.Log)
	if err != nil {
		return nil, fmt.Errorf("DBLP API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBLP API returned HTTP %d", resp.StatusCode)
	}

	var dr dblpResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("parsing DBLP response: %w", err)
	}

	if dr.Result.Hits.Total == "0" || len(dr.Result.Hits.Hit) == 0 {
		return nil, nil
	}

	info := dr.Result.Hits.Hit[0].Info
	hit := &Hit{
		Venue: info.Venue.String(),
		Year:  info.Year,
		DOI:   info.DOI,
		Type:  info.Type,
	}
	for _, a := range info.Authors.Author {
		hit.Authors = append(hit.Authors, a.Text)
	}
	return hit, nil
}

// DBLP API JSON structures. The feed has two quirks the decoder absorbs:
// a single author arrives as an object instead of a one-element array, and
// a venue can arrive as an array of strings.
type dblpResponse struct {
	Result dblpResult `json:"result"`
}

type dblpResult struct {
	Hits dblpHits `json:"hits"`
}

type dblpHits struct {
	Total string         `json:"@total"`
	Hit   []dblpHitEntry `json:"hit"`
}

type dblpHitEntry struct {
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Title   string      `json:"title"`
	Venue   dblpVenue   `json:"venue"`
	Year    string      `json:"year"`
	Type    string      `json:"type"`
	DOI     string      `json:"doi"`
	Authors dblpAuthors `json:"authors"`
}

type dblpAuthor struct {
	Text string `json:"text"`
}

// dblpAuthors accepts both {"author": {...}} and {"author": [{...}, ...]}.
type dblpAuthors struct {
	Author []dblpAuthor
}

func (a *dblpAuthors) UnmarshalJSON(data []byte) error {
	var multi struct {
		Author []dblpAuthor `json:"author"`
	}
	if err := json.Unmarshal(data, &multi); err == nil {
		a.Author = multi.Author
		return nil
	}

	var single struct {
		Author dblpAuthor `json:"author"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	a.Author = []dblpAuthor{single.Author}
	return nil
}

// dblpVenue accepts either a string or an array of strings, keeping the first.
type dblpVenue struct {
	value string
}

func (v *dblpVenue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.value = s
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		v.value = list[0]
	}
	return nil
}

func (v dblpVenue) String() string { return v.value }
