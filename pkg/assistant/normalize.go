package assistant

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize NFC-normalizes raw user text and strips surrounding whitespace.
// It fails with ErrEmptyInput when nothing is left.
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(norm.NFC.String(raw))
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}
