// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailer delivers the rendered report by SMTP. Delivery uses the
// submission port with STARTTLS and retries transient failures with
// exponential backoff. No partial report is ever sent: callers hand over a
// complete rendered document or nothing.
package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// retryBaseDelay is the first backoff step between delivery attempts.
// Tests override this to avoid real sleeps.
var retryBaseDelay = 2 * time.Second

// Sender delivers HTML reports for one configured account.
type Sender struct {
	cfg      types.MailConfig
	password string
	log      zerolog.Logger
}

// New returns a sender. The password comes from the secrets directory, not
// from the config file.
func New(cfg types.MailConfig, password string, log zerolog.Logger) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Username == "" {
		if addr, err := mail.ParseAddress(cfg.From); err == nil {
			cfg.Username = addr.Address
		}
	}
	return &Sender{cfg: cfg, password: password, log: log}
}

// Send delivers one HTML document. Failed attempts back off exponentially;
// the last error is returned when every attempt fails.
func (s *Sender) Send(subject, htmlBody string) error {
	msg, fromAddr, err := BuildMessage(s.cfg.From, s.cfg.To, subject, htmlBody)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay << (attempt - 1)
			s.log.Warn().
				Dur("backoff", backoff).
				Int("attempt", attempt+1).
				Err(lastErr).
				Msg("delivery failed, retrying")
			time.Sleep(backoff)
		}

		if lastErr = s.deliver(fromAddr, msg); lastErr == nil {
			s.log.Info().Str("to", s.cfg.To).Str("subject", subject).Msg("report delivered")
			return nil
		}
	}
	return fmt.Errorf("sending report after %d attempts: %w", s.cfg.MaxRetries, lastErr)
}

// deliver performs one SMTP conversation: EHLO, STARTTLS, AUTH, one message.
func (s *Sender) deliver(fromAddr string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server %s does not offer STARTTLS", addr)
	}
	if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.password, s.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("authenticating as %s: %w", s.cfg.Username, err)
	}

	if err := c.Mail(fromAddr); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	rcpt, err := mail.ParseAddress(s.cfg.To)
	if err != nil {
		return fmt.Errorf("parsing recipient %q: %w", s.cfg.To, err)
	}
	if err := c.Rcpt(rcpt.Address); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return c.Quit()
}

// BuildMessage assembles an RFC 5322 message with a quoted-printable HTML
// body. It returns the wire bytes and the bare envelope-from address.
func BuildMessage(from, to, subject, htmlBody string) ([]byte, string, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, "", fmt.Errorf("parsing sender %q: %w", from, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qw := quotedprintable.NewWriter(&buf)
	if _, err := qw.Write([]byte(htmlBody)); err != nil {
		return nil, "", fmt.Errorf("encoding body: %w", err)
	}
	if err := qw.Close(); err != nil {
		return nil, "", fmt.Errorf("encoding body: %w", err)
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), fromAddr.Address, nil
}

// Subject returns the digest subject line for a run end date.
func Subject(endDate string) string {
	return fmt.Sprintf("Google Scholar alerts digest (%s)", endDate)
}
