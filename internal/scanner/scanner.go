// Package scanner reads decoded barcodes from a line-oriented source such as
// a USB barcode reader in keyboard mode or a pipe.
package scanner

import (
	"bufio"
	"context"
	"io"
	"log"
	"strings"
)

// DefaultPrefixes accepts ISBN-13 codes from the Bookland range.
var DefaultPrefixes = []string{"978"}

// Scanner filters input lines down to identifiers with an accepted prefix.
type Scanner struct {
	// Prefixes lists accepted identifier prefixes. Empty means DefaultPrefixes.
	Prefixes []string
	// OnOther, if set, receives trimmed non-empty lines that are not accepted
	// identifiers. It runs on the reading goroutine.
	OnOther func(line string)
}

// New creates a scanner for the given prefixes.
func New(prefixes ...string) *Scanner {
	return &Scanner{Prefixes: prefixes}
}

// Normalize strips surrounding space and the hyphens and spaces printed on
// book covers.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// Accepts reports whether a normalized code starts with an accepted prefix.
func (s *Scanner) Accepts(code string) bool {
	prefixes := s.Prefixes
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// Detections emits every accepted identifier read from r. The channel is
// closed at end of input or when ctx is done.
func (s *Scanner) Detections(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}

			code := Normalize(line)
			if !s.Accepts(code) {
				if s.OnOther != nil {
					s.OnOther(line)
				}
				continue
			}

			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Printf("[SCANNER] Read failed: %v", err)
		}
	}()

	return out
}
