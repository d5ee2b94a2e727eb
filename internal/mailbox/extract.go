// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// senderMarkers identify Google Scholar alert senders. Matching is plain
// substring containment against the From header, not a regexp.
var senderMarkers = []string{
	"<scholaralerts-noreply@google.com>",
	"<scholarcitations-noreply@google.com>",
	"Google Scholar",
	"Google学术",
}

// IsAlertSender reports whether the From header names a known alert source.
func IsAlertSender(from string) bool {
	for _, marker := range senderMarkers {
		if strings.Contains(from, marker) {
			return true
		}
	}
	return false
}

// Extract opens one candidate message and returns its normalized form, or
// absent (nil, false) when the message is not an eligible alert. Absent
// covers sender and cutoff rejections as well as every per-path failure:
// a malformed message is logged and dropped, never propagated, so a single
// bad file cannot abort the batch.
//
// A zero cutoff disables the time filter.
func Extract(path string, cutoff time.Time, log zerolog.Logger) (*types.NormalizedMessage, bool) {
	var (
		msg *types.NormalizedMessage
		err error
	)
	switch filepath.Ext(path) {
	case ".emlx":
		msg, err = extractEmlx(path, cutoff, log)
	case ".eml":
		msg, err = extractEml(path, cutoff, log)
	default:
		err = fmt.Errorf("unrecognized message container %q", filepath.Ext(path))
	}
	if err != nil {
		log.Error().Str("path", path).Err(err).Msg("message extraction failed")
		return nil, false
	}
	return msg, msg != nil
}

// extractEmlx handles Format A. The trailing property list is parsed first
// so a stale message is rejected before the message itself is touched.
func extractEmlx(path string, cutoff time.Time, log zerolog.Logger) (*types.NormalizedMessage, error) {
	raw, meta, err := readEmlx(path)
	if err != nil {
		return nil, err
	}

	received := meta.Received()
	if !cutoff.IsZero() && received.Before(cutoff) {
		log.Debug().Str("path", path).Time("received", received).Msg("before cutoff")
		return nil, nil
	}

	return normalize(path, raw, received, cutoff, log)
}

// extractEml handles Format B. Headers and body arrive together, so the
// sender filter runs first and the Date header supplies the received time.
func extractEml(path string, cutoff time.Time, log zerolog.Logger) (*types.NormalizedMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return normalize(path, raw, time.Time{}, cutoff, log)
}

// normalize parses the RFC 822 message, applies the sender filter, resolves
// the received time (received overrides the Date header when non-zero), and
// locates the text/html part. Returns (nil, nil) for filter rejections.
func normalize(path string, raw []byte, received time.Time, cutoff time.Time, log zerolog.Logger) (*types.NormalizedMessage, error) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing message: %w", err)
	}

	from := m.Header.Get("From")
	if !IsAlertSender(from) {
		log.Debug().Str("path", path).Str("from", from).Msg("not an alert sender")
		return nil, nil
	}

	if received.IsZero() {
		received, err = m.Header.Date()
		if err != nil {
			return nil, fmt.Errorf("parsing Date header: %w", err)
		}
		if !cutoff.IsZero() && received.Before(cutoff) {
			log.Debug().Str("path", path).Time("received", received).Msg("before cutoff")
			return nil, nil
		}
	}

	body, err := htmlPart(m.Header.Get("Content-Type"), m.Body)
	if err != nil {
		return nil, fmt.Errorf("locating html part: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("message has no text/html part")
	}

	return &types.NormalizedMessage{
		Sender:   from,
		Subject:  m.Header.Get("Subject"),
		Received: received,
		Body:     body,
	}, nil
}

// htmlPart returns the bytes of the first text/html part, walking nested
// multipart containers. Single-part bodies are returned as read, still
// carrying their transfer encoding; the alert parser owns that decode.
// Returns (nil, nil) when no html part exists.
func htmlPart(contentType string, body io.Reader) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Messages without a usable Content-Type are treated as html;
		// the parser degrades gracefully on non-html input.
		mediaType = "text/html"
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("multipart without boundary")
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			found, err := htmlPart(part.Header.Get("Content-Type"), part)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
	case mediaType == "text/html":
		return io.ReadAll(body)
	default:
		return nil, nil
	}
}
