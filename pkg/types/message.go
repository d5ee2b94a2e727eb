// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MessageCandidate is a mail store file that passed the modification-time
// filter. Produced by the scanner, consumed once by the extractor.
type MessageCandidate struct {
	// Path is the absolute path of the message file.
	Path string

	// ModTime is the file's last-modification timestamp (symlinks followed).
	ModTime time.Time
}

// NormalizedMessage is an alert message reduced to the fields the parser
// needs. Only constructed for messages whose sender matched the alert-source
// filter and whose received time is inside the lookback window.
type NormalizedMessage struct {
	// Sender is the raw From header value.
	Sender string

	// Subject is the raw Subject header value.
	Subject string

	// Received is the content-received timestamp: the container's
	// date-received property for .emlx files, the Date header for .eml.
	Received time.Time

	// Body is the raw text/html part, still transfer-encoded
	// (quoted-printable); the parser owns the decode.
	Body []byte
}
