// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailbox

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"howett.net/plist"
)

// emlxMeta is the subset of the .emlx trailing property list the extractor
// cares about. Apple Mail records the delivery timestamp here, which lets
// the cutoff check run without parsing the message itself.
type emlxMeta struct {
	DateReceived int64  `plist:"date-received"`
	Flags        uint64 `plist:"flags"`
}

// Received returns the delivery timestamp from the property list.
func (m emlxMeta) Received() time.Time {
	return time.Unix(m.DateReceived, 0)
}

// readEmlx splits an .emlx file into its RFC 822 message bytes and the
// trailing property list. The format is: a decimal byte count on the first
// line, that many bytes of message, then an XML plist.
func readEmlx(path string) (msg []byte, meta emlxMeta, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, emlxMeta{}, err
	}

	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, emlxMeta{}, fmt.Errorf("%s: missing byte-count line", path)
	}

	count, err := strconv.Atoi(string(bytes.TrimSpace(data[:nl])))
	if err != nil {
		return nil, emlxMeta{}, fmt.Errorf("%s: bad byte-count line: %w", path, err)
	}

	start := nl + 1
	if count < 0 || start+count > len(data) {
		return nil, emlxMeta{}, fmt.Errorf("%s: byte count %d exceeds file size", path, count)
	}

	msg = data[start : start+count]
	rest := bytes.TrimSpace(data[start+count:])
	if len(rest) > 0 {
		if _, err := plist.Unmarshal(rest, &meta); err != nil {
			return nil, emlxMeta{}, fmt.Errorf("%s: parsing property list: %w", path, err)
		}
	}
	return msg, meta, nil
}
