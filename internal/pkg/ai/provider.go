// Package ai turns staged changes into commit message drafts through an LLM provider.
package ai

import (
	"context"

	"github.com/commitsmith/commitsmith/internal/pkg/git"
)

// GenerateRequest contains the data needed to generate one draft.
type GenerateRequest struct {
	Changes git.ChangeSet
	// PreviousMessage is the draft being revised, empty on the first call.
	PreviousMessage string
	// Feedback is the user's revision instruction, empty on the first call.
	Feedback string
}

// GenerateResult is the outcome of one successful generation call.
type GenerateResult struct {
	// Text is the extracted message before post-processing.
	Text string
	// Source tells whether the strict or the fallback parse produced Text.
	Source ParseSource
	// History is the conversation to pass to the next call.
	History Conversation
}

// Provider defines the interface for LLM backends.
type Provider interface {
	// Name returns the provider identifier.
	Name() string
	// Shape returns the request layout the provider uses.
	Shape() Shape
	// CheckAvailable probes a local server before any prompt is sent.
	CheckAvailable(ctx context.Context) error
	// Generate performs one blocking request. history is empty on the first call.
	Generate(ctx context.Context, history Conversation, req GenerateRequest) (GenerateResult, error)
}
