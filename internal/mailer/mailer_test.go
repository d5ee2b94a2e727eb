// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailer

import (
	"bytes"
	"io"
	"mime/quotedprintable"
	"net/mail"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func TestBuildMessageRoundTrip(t *testing.T) {
	body := "<html><body><h1>Scholar alerts</h1><p>café &amp; naïveté</p></body></html>"
	raw, fromAddr, err := BuildMessage("Alerts <alerts@example.org>", "reader@example.org", Subject("2026-02-01"), body)
	require.NoError(t, err)
	assert.Equal(t, "alerts@example.org", fromAddr)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Google Scholar alerts digest (2026-02-01)", msg.Header.Get("Subject"))
	assert.Equal(t, "reader@example.org", msg.Header.Get("To"))
	assert.Contains(t, msg.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "quoted-printable", msg.Header.Get("Content-Transfer-Encoding"))

	decoded, err := io.ReadAll(quotedprintable.NewReader(msg.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBuildMessageRejectsBadSender(t *testing.T) {
	_, _, err := BuildMessage("not an address", "reader@example.org", "subject", "<p>hi</p>")
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	s := New(types.MailConfig{
		Host: "smtp.example.org",
		From: "Alerts <alerts@example.org>",
		To:   "reader@example.org",
	}, "secret", zerolog.Nop())

	assert.Equal(t, 587, s.cfg.Port)
	assert.Equal(t, 3, s.cfg.MaxRetries)
	assert.Equal(t, "alerts@example.org", s.cfg.Username, "username defaults to the bare sender address")
}

func TestSendRetriesThenFails(t *testing.T) {
	orig := retryBaseDelay
	retryBaseDelay = 0
	defer func() { retryBaseDelay = orig }()

	s := New(types.MailConfig{
		Host:       "127.0.0.1",
		Port:       1, // nothing listens here
		From:       "alerts@example.org",
		To:         "reader@example.org",
		MaxRetries: 2,
	}, "secret", zerolog.Nop())

	err := s.Send("subject", "<p>body</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
