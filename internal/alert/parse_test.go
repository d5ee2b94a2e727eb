// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alert

import (
	"bytes"
	"mime/quotedprintable"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testReceived = time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)

// qp encodes a fixture body the way it travels in a real alert.
func qp(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const singleMentionHTML = `<html><body>
<h3><a class="gse_alrt_title" href="https://scholar.google.com/scholar_url?url=https://example.org/paperA&amp;hl=en">Paper A</a></h3>
<div>J. Doe - ACM, 2020</div>
<div class="gse_alrt_sni">Some abstract
text</div>
<p>This alert is sent by Google Scholar because you are following new results for AIOps.</p>
</body></html>`

func TestParseSingleMention(t *testing.T) {
	ext, err := Parse(testReceived, qp(t, singleMentionHTML), zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mentions := ext.Mentions()
	if len(mentions) != 1 {
		t.Fatalf("len(mentions) = %d, want 1", len(mentions))
	}
	m := mentions[0]

	if m.Title != "Paper A" {
		t.Errorf("Title = %q, want %q", m.Title, "Paper A")
	}
	if m.Abstract != "Some abstract text" {
		t.Errorf("Abstract = %q, want %q", m.Abstract, "Some abstract text")
	}
	if m.AuthorVenue != "J. Doe - ACM, 2020" {
		t.Errorf("AuthorVenue = %q, want %q", m.AuthorVenue, "J. Doe - ACM, 2020")
	}
	if m.URL != "https://example.org/paperA" {
		t.Errorf("URL = %q, want the unwrapped destination", m.URL)
	}
	if m.Date != "2023-01-02" {
		t.Errorf("Date = %q, want 2023-01-02", m.Date)
	}
	if !strings.Contains(m.Reason, "following new results for AIOps") {
		t.Errorf("Reason = %q", m.Reason)
	}
}

func TestParseMultipleMentionsStayAligned(t *testing.T) {
	html := `<html><body>
<h3><a class="gse_alrt_title" href="https://scholar.google.com/scholar_url?url=https://example.org/one">First Paper</a></h3>
<div>A. One - NSDI, 2021</div>
<div class="gse_alrt_sni">First abstract.</div>
<h3><a class="gse_alrt_title" href="https://scholar.google.com/scholar_url?url=https://example.org/two">Second Paper</a></h3>
<div>B. Two - SOSP, 2022</div>
<div class="gse_alrt_sni">Second abstract.</div>
<p>reason text</p>
</body></html>`

	ext, err := Parse(testReceived, qp(t, html), zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mentions := ext.Mentions()
	if len(mentions) != 2 {
		t.Fatalf("len(mentions) = %d, want 2", len(mentions))
	}
	if mentions[0].Title != "First Paper" || mentions[1].Title != "Second Paper" {
		t.Errorf("titles out of order: %q, %q", mentions[0].Title, mentions[1].Title)
	}
	if mentions[0].AuthorVenue != "A. One - NSDI, 2021" {
		t.Errorf("AuthorVenue[0] = %q", mentions[0].AuthorVenue)
	}
	if mentions[1].URL != "https://example.org/two" {
		t.Errorf("URL[1] = %q", mentions[1].URL)
	}
	if mentions[0].Reason != mentions[1].Reason {
		t.Errorf("mentions of one message must share the reason")
	}
}

// A title without a matching snippet is dropped by positional pairing.
// Pins current behavior: the zip truncates to the shortest array.
func TestParseTruncatesToShortestList(t *testing.T) {
	html := `<html><body>
<a class="gse_alrt_title" href="https://example.org/kept?url=https://example.org/kept">Kept</a>
<div>C. Three - OSDI, 2023</div>
<div class="gse_alrt_sni">Only abstract.</div>
<a class="gse_alrt_title" href="https://example.org/dropped">Dropped</a>
</body></html>`

	ext, err := Parse(testReceived, qp(t, html), zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ext.Titles) != 2 || len(ext.Abstracts) != 1 {
		t.Fatalf("Titles = %d, Abstracts = %d; want 2 and 1", len(ext.Titles), len(ext.Abstracts))
	}

	mentions := ext.Mentions()
	if len(mentions) != 1 {
		t.Fatalf("len(mentions) = %d, want 1", len(mentions))
	}
	if mentions[0].Title != "Kept" {
		t.Errorf("Title = %q, want %q", mentions[0].Title, "Kept")
	}
}

func TestParseNoMentions(t *testing.T) {
	ext, err := Parse(testReceived, qp(t, "<html><body><p>nothing here</p></body></html>"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ext.Mentions()) != 0 {
		t.Errorf("expected zero mentions")
	}
}

func TestParseRepairsDoubleEncodedText(t *testing.T) {
	// "Méthode" double-encoded: its UTF-8 bytes read back as Latin-1.
	mojibake := "MÃ©thode"
	html := `<html><body>
<a class="gse_alrt_title" href="https://example.org/p">` + mojibake + `</a>
<div>D. Four - VLDB, 2024</div>
<div class="gse_alrt_sni">` + mojibake + ` abstract</div>
</body></html>`

	ext, err := Parse(testReceived, []byte(html), zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ext.Titles) != 1 || ext.Titles[0] != "Méthode" {
		t.Errorf("Titles = %q, want repaired UTF-8", ext.Titles)
	}
	if ext.Abstracts[0] != "Méthode abstract" {
		t.Errorf("Abstract = %q", ext.Abstracts[0])
	}
}

// --- UnwrapURL ---

func TestUnwrapURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"scholar redirect",
			"https://scholar.google.com/scholar_url?url=https://example.org/paperA&hl=en",
			"https://example.org/paperA",
		},
		{
			"no url parameter stays wrapped",
			"https://example.org/direct?x=1",
			"https://example.org/direct?x=1",
		},
		{
			"unparseable link stays verbatim",
			"http://%zz/bad",
			"http://%zz/bad",
		},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnwrapURL(tt.in, zerolog.Nop()); got != tt.want {
				t.Errorf("UnwrapURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- encoding helpers ---

func TestFixDoubleEncoded(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "Paper A", "Paper A"},
		{"mojibake repaired", "cafÃ©", "café"},
		{"already correct accents kept", "café", "café"},
		{"cjk kept", "故障诊断", "故障诊断"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixDoubleEncoded(tt.in); got != tt.want {
				t.Errorf("fixDoubleEncoded(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeQuotedPrintableLenient(t *testing.T) {
	// Valid soft break and escape decode.
	got := decodeQuotedPrintable([]byte("a=3Db=\r\nc"))
	if string(got) != "a=bc" {
		t.Errorf("decoded = %q, want %q", got, "a=bc")
	}

	// Invalid escapes fall back to the input verbatim.
	raw := []byte(`<a href="x?a=1&b=2">`)
	if got := decodeQuotedPrintable(raw); !bytes.Equal(got, raw) {
		t.Errorf("lenient decode = %q, want input unchanged", got)
	}
}
