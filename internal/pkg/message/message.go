// Package message inspects commit message drafts against the Conventional Commits shape.
package message

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidCommitTypes contains all valid Conventional Commits types, in the order the prompt lists them.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// MaxSubjectLength is the maximum length of the header line.
const MaxSubjectLength = 72

// headerRegex matches <type>(<scope>)!: <subject>, with scope and ! optional.
var headerRegex = regexp.MustCompile(`^([a-z]+)(\(([^)]+)\))?(!)?:\s*(.*)$`)

// Draft is a parsed commit message.
type Draft struct {
	Header   string
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	Body     string
	// blankAfterHeader records whether the body is separated by an empty line.
	blankAfterHeader bool
}

// Parse splits text into header and body and reads the header's parts.
func Parse(text string) Draft {
	text = strings.TrimSpace(text)
	header, rest, hasRest := strings.Cut(text, "\n")

	d := Draft{Header: strings.TrimSpace(header)}
	if hasRest {
		d.blankAfterHeader = strings.HasPrefix(strings.TrimLeft(rest, " \t"), "\n") || strings.TrimSpace(rest) == ""
		d.Body = strings.TrimSpace(rest)
	}

	if m := headerRegex.FindStringSubmatch(d.Header); m != nil {
		d.Type = m[1]
		d.Scope = m[3]
		d.Breaking = m[4] == "!"
		d.Subject = strings.TrimSpace(m[5])
	} else {
		d.Subject = d.Header
	}
	return d
}

// IsConventional reports whether the header has a known type and a subject.
func (d Draft) IsConventional() bool {
	return IsValidCommitType(d.Type) && d.Subject != ""
}

// Warnings lists the ways the draft departs from the format rules.
// None of them block a commit.
func (d Draft) Warnings() []string {
	var warnings []string

	switch {
	case d.Type == "":
		warnings = append(warnings, "header is not in <type>(<scope>): <subject> form")
	case !IsValidCommitType(d.Type):
		warnings = append(warnings, fmt.Sprintf("unknown commit type %q (valid types: %s)", d.Type, strings.Join(ValidCommitTypes, ", ")))
	}

	if d.Type != "" && d.Subject == "" {
		warnings = append(warnings, "subject is empty")
	}

	if n := utf8.RuneCountInString(d.Header); n > MaxSubjectLength {
		warnings = append(warnings, fmt.Sprintf("header exceeds %d characters (%d chars)", MaxSubjectLength, n))
	}

	if strings.HasSuffix(d.Subject, ".") {
		warnings = append(warnings, "subject ends with a period")
	}

	if r, _ := utf8.DecodeRuneInString(d.Subject); d.Type != "" && unicode.IsUpper(r) {
		warnings = append(warnings, "subject starts with an uppercase letter")
	}

	if d.Body != "" && !d.blankAfterHeader {
		warnings = append(warnings, "no blank line between header and body")
	}

	return warnings
}

// Inspect parses text and returns its warnings.
func Inspect(text string) []string {
	return Parse(text).Warnings()
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}
