// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each HTTP request, including the lookup sources.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// MailboxConfig holds settings for scanning and extracting alert messages.
type MailboxConfig struct {
	// Root is the mail store directory to walk (e.g. "~/Library/Mail").
	Root string `json:"root" yaml:"root"`

	// LookbackDays selects the time window: only messages received within
	// the last N days are eligible. Zero or negative means no lower bound.
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`

	// Workers is the extraction worker pool size (default: NumCPU).
	Workers int `json:"workers" yaml:"workers"`
}

// LookupConfig holds settings for the enrichment resolver.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableSemanticScholar controls whether the secondary scholarly source
	// is queried. When false it deterministically reports no hit without I/O.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// ReportConfig holds settings for snapshot and report output.
type ReportConfig struct {
	// OutputDir receives <date>.json, <date>.html, and <date>-summary.yaml.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// MailConfig holds SMTP delivery settings. The account password lives in
// the secrets directory, not here.
type MailConfig struct {
	// Host is the SMTP server hostname (e.g. "smtp.mail.me.com").
	Host string `json:"host" yaml:"host"`

	// Port is the SMTP submission port (default 587, STARTTLS).
	Port int `json:"port" yaml:"port"`

	// From is the sender, as a display-name address
	// (e.g. "Jane Doe <jane@example.com>").
	From string `json:"from" yaml:"from"`

	// To is the recipient address.
	To string `json:"to" yaml:"to"`

	// Username is the SMTP login; defaults to the From address.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// MaxRetries is the number of delivery attempts (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ArchiveConfig holds settings for the SQLite run archive.
type ArchiveConfig struct {
	// Dir is the directory holding digest.db.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default limit for history queries (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one digest run.
type PipelineConfig struct {
	Mailbox MailboxConfig `json:"mailbox" yaml:"mailbox"`
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Mail    MailConfig    `json:"mail" yaml:"mail"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}
