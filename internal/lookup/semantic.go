// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/httputil"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,venue,year"

// SemanticScholarSource queries the Semantic Scholar API. It is the
// secondary source: consulted for venue, year, authors, and abstract, but
// never for DOI or publication type.
type SemanticScholarSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	Log       zerolog.Logger
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Lookup searches Semantic Scholar for the exact title and returns the top
// result's fields. An empty result set returns (nil, nil).
func (s *SemanticScholarSource) Lookup(ctx context.Context, title string) (*Hit, error) {
	params := url.Values{
		"query":  {title},
		"limit":  {"1"},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0, s.Log)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	if len(sr.Data) == 0 {
		return nil, nil
	}

	paper := sr.Data[0]
	hit := &Hit{
		Venue:    paper.Venue,
		Abstract: paper.Abstract,
	}
	if paper.Year > 0 {
		hit.Year = strconv.Itoa(paper.Year)
	}
	for _, a := range paper.Authors {
		hit.Authors = append(hit.Authors, a.Name)
	}
	return hit, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID  string           `json:"paperId"`
	Title    string           `json:"title"`
	Abstract string           `json:"abstract"`
	Venue    string           `json:"venue"`
	Year     int              `json:"year"`
	Authors  []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
