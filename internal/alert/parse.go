// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package alert parses the HTML body of a Google Scholar alert message into
// per-paper field arrays. The HTML arrives quoted-printable encoded, and its
// text nodes are double-encoded (UTF-8 bytes read as Latin-1), so both
// decodes happen here.
package alert

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// CSS classes Scholar uses to mark up one paper mention.
const (
	titleSelector   = ".gse_alrt_title"
	snippetSelector = ".gse_alrt_sni"
)

// Extraction holds the parallel field arrays pulled from one message. The
// arrays are positionally aligned by mention order; Mentions pairs them up.
type Extraction struct {
	Titles       []string
	Abstracts    []string
	AuthorVenues []string
	URLs         []string

	// Reason is the message's trailing free-text explanation, shared by
	// every mention in the message.
	Reason string

	// Date is the message date normalized to YYYY-MM-DD.
	Date string
}

// Parse decodes and dissects one alert body.
//
// Title nodes supply the paper titles and, through their hyperlink targets,
// the destination URLs. Snippet nodes supply the abstracts; each snippet's
// immediately preceding sibling holds the "Authors - Venue, Year" line. The
// last paragraph's text is the message reason.
func Parse(received time.Time, body []byte, log zerolog.Logger) (Extraction, error) {
	decoded := decodeQuotedPrintable(body)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return Extraction{}, err
	}

	ext := Extraction{Date: received.Format("2006-01-02")}

	doc.Find(titleSelector).Each(func(_ int, s *goquery.Selection) {
		ext.Titles = append(ext.Titles, fixDoubleEncoded(s.Text()))
		href, _ := s.Attr("href")
		ext.URLs = append(ext.URLs, UnwrapURL(href, log))
	})

	doc.Find(snippetSelector).Each(func(_ int, s *goquery.Selection) {
		ext.Abstracts = append(ext.Abstracts, fixDoubleEncoded(collapse(s.Text())))
		ext.AuthorVenues = append(ext.AuthorVenues, fixDoubleEncoded(collapse(s.Prev().Text())))
	})

	ext.Reason = fixDoubleEncoded(collapse(doc.Find("p").Last().Text()))

	return ext, nil
}

// Mentions zips the field arrays into per-paper mentions. A count mismatch
// between titles and snippets truncates to the shortest array: trailing
// entries without a positional counterpart are dropped silently.
func (e Extraction) Mentions() []types.PaperMention {
	n := len(e.Titles)
	for _, l := range []int{len(e.Abstracts), len(e.AuthorVenues), len(e.URLs)} {
		if l < n {
			n = l
		}
	}

	mentions := make([]types.PaperMention, 0, n)
	for i := 0; i < n; i++ {
		mentions = append(mentions, types.PaperMention{
			Title:       e.Titles[i],
			Abstract:    e.Abstracts[i],
			AuthorVenue: e.AuthorVenues[i],
			URL:         e.URLs[i],
			Reason:      e.Reason,
			Date:        e.Date,
		})
	}
	return mentions
}

// UnwrapURL extracts the true destination from a Scholar redirect link,
// which wraps it in a "url" query parameter. When the link cannot be parsed
// or carries no such parameter, the wrapped URL is returned unchanged.
func UnwrapURL(raw string, log zerolog.Logger) string {
	u, err := url.Parse(raw)
	if err != nil {
		log.Error().Str("url", raw).Err(err).Msg("parsing alert link failed")
		return raw
	}
	target := u.Query().Get("url")
	if target == "" {
		return raw
	}
	return target
}

// collapse squeezes all internal whitespace, including newlines, to single
// spaces and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
