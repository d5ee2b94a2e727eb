// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func sampleData() Data {
	return Data{
		Start: "2023-01-01",
		End:   "2023-01-02",
		Groups: []types.ReportGroup{
			{
				Label: "2023-01-01",
				Papers: []types.PaperRecord{
					{
						Title:     "Paper A",
						Abstract:  "Some abstract text",
						VenueYear: "ACM, 2020",
						Authors:   "J. Doe",
						DOI:       "10.1/x",
						Type:      "Conference and Workshop Papers",
						URL:       "https://doi.org/10.1/x",
						Reasons:   []string{"new results for AIOps", "cited paper X"},
						Date:      "2023-01-01",
					},
				},
			},
			{
				Label: "2023-01-02",
				Papers: []types.PaperRecord{
					{Title: "Paper <B>", URL: "https://example.org/b", Date: "2023-01-02"},
				},
			},
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleData()))
	html := buf.String()

	assert.Contains(t, html, "Paper A")
	assert.Contains(t, html, `href="https://doi.org/10.1/x"`)
	assert.Contains(t, html, "ACM, 2020")
	assert.Contains(t, html, "new results for AIOps; cited paper X")
	assert.Contains(t, html, "<h2>2023-01-01</h2>")
	assert.Contains(t, html, "<h2>2023-01-02</h2>")
	// Titles are escaped, not injected.
	assert.Contains(t, html, "Paper &lt;B&gt;")
	assert.NotContains(t, html, "Paper <B>")
	// Both window bounds appear in the heading.
	assert.Contains(t, html, "2023-01-01 to 2023-01-02")
}

func TestRenderNoLowerBound(t *testing.T) {
	data := sampleData()
	data.Start = ""

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, data))
	assert.NotContains(t, buf.String(), " to 2023-01-02")
}

func TestDataTotal(t *testing.T) {
	assert.Equal(t, 2, sampleData().Total())
	assert.Equal(t, 0, Data{}.Total())
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "2023-01-02.html")
	require.NoError(t, RenderFile(path, sampleData()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Paper A")
}
