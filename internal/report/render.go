// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the grouped digest into a single HTML document.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// Data is everything the report template needs for one run.
type Data struct {
	// Start and End bound the run's lookback window (YYYY-MM-DD). An empty
	// Start means the window had no lower bound.
	Start string
	End   string

	// Groups holds the date-ordered paper groups.
	Groups []types.ReportGroup
}

// Total returns the number of papers across all groups.
func (d Data) Total() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Papers)
	}
	return n
}

// Render writes the HTML report to w.
func Render(w io.Writer, data Data) error {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// RenderFile renders the report to path, creating parent directories.
func RenderFile(path string, data Data) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()

	if err := Render(f, data); err != nil {
		return err
	}
	return f.Close()
}
