// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup enriches extracted paper mentions by querying external
// bibliographic services and merging their answers under a fixed priority
// policy. Results are memoized per title for the lifetime of a run.
package lookup

import "context"

// Hit is one source's answer for a title. A nil *Hit means the source had
// no usable result, which is an expected outcome, not an error.
type Hit struct {
	Venue    string
	Year     string
	Authors  []string
	DOI      string
	Type     string
	Abstract string
}

// Source queries one external service by exact title string.
type Source interface {
	Name() string
	Lookup(ctx context.Context, title string) (*Hit, error)
}

// Disabled is a Source that deterministically reports no hit without
// performing any I/O. It stands in for a source switched off in config.
type Disabled struct {
	// SourceName preserves the name of the source it replaces, for logs.
	SourceName string
}

// Name returns the disabled source's identifier.
func (d Disabled) Name() string { return d.SourceName }

// Lookup reports no hit.
func (d Disabled) Lookup(context.Context, string) (*Hit, error) { return nil, nil }
