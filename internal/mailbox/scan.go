// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailbox locates alert messages in a local mail store and reduces
// them to normalized in-memory records. Two container formats are
// recognized: Apple Mail .emlx (byte-count line, RFC 822 message, trailing
// property list) and flat RFC 822 .eml files.
package mailbox

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// messageExtensions are the file extensions treated as message containers.
var messageExtensions = map[string]bool{
	".emlx": true,
	".eml":  true,
}

// Scan walks root recursively and sends every message file whose
// modification time is strictly after minMtime. A zero minMtime disables
// the lower bound. The returned channel is closed when the walk finishes;
// the sequence is finite, unordered, and not restartable.
//
// Unreadable paths are logged and skipped; they never abort the walk.
func Scan(root string, minMtime time.Time, log zerolog.Logger) <-chan types.MessageCandidate {
	out := make(chan types.MessageCandidate)

	go func() {
		defer close(out)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("skipping unreadable path")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !messageExtensions[filepath.Ext(path)] {
				return nil
			}

			// os.Stat follows symlinks, so a linked message is judged by
			// the target's modification time.
			info, err := os.Stat(path)
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("skipping unstattable path")
				return nil
			}
			if !minMtime.IsZero() && !info.ModTime().After(minMtime) {
				return nil
			}

			out <- types.MessageCandidate{Path: path, ModTime: info.ModTime()}
			return nil
		})
		if err != nil {
			log.Error().Str("root", root).Err(err).Msg("mail store walk failed")
		}
	}()

	return out
}
