// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alert

import (
	"bytes"
	"io"
	"mime/quotedprintable"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeQuotedPrintable decodes the transport encoding leniently: when the
// input is not valid quoted-printable (for instance a body that was already
// decoded upstream), the original bytes are returned untouched.
func decodeQuotedPrintable(b []byte) []byte {
	out, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(b)))
	if err != nil {
		return b
	}
	return out
}

// fixDoubleEncoded repairs text that was UTF-8 on the wire but decoded as
// Latin-1, which is how Scholar alert text nodes arrive. The string is
// encoded back to Latin-1 bytes and reinterpreted as UTF-8. Strings that do
// not fit Latin-1, or whose bytes are not valid UTF-8, were not double
// encoded and are returned as-is.
func fixDoubleEncoded(s string) string {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil || !utf8.Valid(b) {
		return s
	}
	return string(b)
}
