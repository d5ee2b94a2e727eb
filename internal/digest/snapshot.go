// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// SnapshotPath returns the JSON artifact path for a run date.
func SnapshotPath(outputDir, date string) string {
	return filepath.Join(outputDir, date+".json")
}

// ReportPath returns the rendered report path for a run date.
func ReportPath(outputDir, date string) string {
	return filepath.Join(outputDir, date+".html")
}

// SummaryPath returns the YAML run summary path for a run date.
func SummaryPath(outputDir, date string) string {
	return filepath.Join(outputDir, date+"-summary.yaml")
}

// SaveSnapshot writes the merged title-keyed map as indented JSON. The
// snapshot is the reporting input and must be re-loadable; reason list
// order is preserved.
func SaveSnapshot(path string, papers map[string]types.PaperRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(papers, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot back into an equivalent map.
func LoadSnapshot(path string) (map[string]types.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	papers := make(map[string]types.PaperRecord)
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return papers, nil
}

// Summary describes one run for the YAML sidecar next to the snapshot.
type Summary struct {
	Date        string    `yaml:"date"`
	Scanned     int       `yaml:"messages_scanned"`
	Matched     int       `yaml:"messages_matched"`
	Papers      int       `yaml:"papers"`
	Groups      int       `yaml:"groups"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

// WriteSummary writes the run summary sidecar.
func WriteSummary(path string, s Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary %s: %w", path, err)
	}
	return nil
}
