package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/commitsmith/commitsmith/internal/pkg/git"
	"github.com/commitsmith/commitsmith/internal/pkg/message"
)

// SystemPrompt is the role instruction sent as the first chat message.
const SystemPrompt = `You are an expert at writing semantic git commit messages. You reply with the commit message only, without explanations or code fences.`

// promptTemplate is the fixed instruction set wrapped around the staged changes.
const promptTemplate = `Generate a git commit message for the staged changes below.

=== BEGIN CHANGED FILES (name-status) ===
{{.NameStatus}}
=== END CHANGED FILES ===

=== BEGIN DIFF ===
{{.Diff}}
=== END DIFF ===

Format rules:
- Header line: <type>(<scope>): <subject>, where the scope is optional
- Allowed types: {{.Types}}
- Subject: imperative mood ("add", not "added"), lowercase, no trailing period, at most 72 characters
- Leave one blank line between the header and the body
- Body: short bullet points starting with "- ", each describing one change and why it was made
- Mention breaking changes in a footer starting with "BREAKING CHANGE:"
- Output plain text only: no markdown headings, no code fences, no quotes around the message

Terminology used in instructions:
- "summary", "subject", "title" and "first line" all mean the header line
- "body", "description", "details" and "bullets" all mean everything after the header line
{{- if and .Previous .Feedback}}

The previous commit message was:
=== BEGIN PREVIOUS MESSAGE ===
{{.Previous}}
=== END PREVIOUS MESSAGE ===

Revise the previous commit message according to these instructions from the user:
{{.Feedback}}
Keep every part the instructions do not mention unchanged, and return the complete revised message.
{{- else if .Feedback}}

Additional instructions from the user:
{{.Feedback}}
{{- end}}
`

var promptTmpl = template.Must(template.New("prompt").Parse(promptTemplate))

// promptData contains the data used to render the prompt template.
type promptData struct {
	NameStatus string
	Diff       string
	Types      string
	Previous   string
	Feedback   string
}

// BuildPrompt assembles the full instruction string for one generation call.
// previous and feedback are empty on the first call.
func BuildPrompt(changes git.ChangeSet, previous, feedback string) string {
	data := promptData{
		NameStatus: changes.NameStatus,
		Diff:       changes.Diff,
		Types:      strings.Join(message.ValidCommitTypes, ", "),
		Previous:   strings.TrimSpace(previous),
		Feedback:   strings.TrimSpace(feedback),
	}

	var buf bytes.Buffer
	// The template is fixed and the data is plain strings, so Execute cannot fail.
	_ = promptTmpl.Execute(&buf, data)
	return buf.String()
}
