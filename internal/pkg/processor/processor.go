// Package processor cleans model output into a final commit message.
package processor

import (
	"regexp"
	"strings"
)

// escapeArtifact matches a leftover backslash-letter sequence such as \t or \"x.
var escapeArtifact = regexp.MustCompile(`\\[a-zA-Z]`)

// Normalize turns escaped newlines into real ones, drops carriage returns,
// trims surrounding whitespace and removes remaining backslash-letter artifacts.
// It repeats until the text stops changing, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	current := raw
	for {
		next := normalizeOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func normalizeOnce(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)
	s = escapeArtifact.ReplaceAllString(s, "")
	return s
}
