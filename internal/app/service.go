// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"

	"github.com/commitsmith/commitsmith/internal/pkg/ai"
	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
	"github.com/commitsmith/commitsmith/internal/pkg/git"
	"github.com/commitsmith/commitsmith/internal/pkg/history"
	"github.com/commitsmith/commitsmith/internal/pkg/message"
	"github.com/commitsmith/commitsmith/internal/pkg/processor"
	"github.com/commitsmith/commitsmith/internal/pkg/ui"
)

// Options contains the switches for one run.
type Options struct {
	// StageAll stages every working-tree change before collecting.
	StageAll bool
	// Preview shows each draft and asks for revision instructions.
	Preview bool
	// MessageOnly prints the message and never touches the repository.
	MessageOnly bool
	// Push pushes after a successful commit.
	Push bool
}

// Result describes what a run did.
type Result struct {
	Message   string
	Revisions int
	Committed bool
	Pushed    bool
}

// CommitService orchestrates the commit message generation workflow.
type CommitService struct {
	gitClient  git.Client
	aiProvider ai.Provider
	uiManager  ui.Manager
	historyMgr history.Manager
	config     config.Config
}

// NewCommitService creates a new CommitService with the given dependencies.
// historyMgr may be nil, in which case nothing is recorded.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	uiManager ui.Manager,
	historyMgr history.Manager,
	cfg config.Config,
) *CommitService {
	return &CommitService{
		gitClient:  gitClient,
		aiProvider: aiProvider,
		uiManager:  uiManager,
		historyMgr: historyMgr,
		config:     cfg,
	}
}

// draft is the accumulator of the review loop.
type draft struct {
	text      string
	history   ai.Conversation
	revisions int
}

// Run executes one invocation: collect, generate, review, then commit and push.
func (s *CommitService) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.StageAll && !opts.MessageOnly {
		apperrors.Debug("Staging all changes")
		if err := s.gitClient.AddAll(ctx); err != nil {
			return nil, err
		}
	}

	changes, err := s.gitClient.CollectStaged(ctx)
	if err != nil {
		return nil, err
	}
	apperrors.Debug("Collected changes: %d bytes of name-status, %d bytes of diff",
		len(changes.NameStatus), len(changes.Diff))

	if err := s.aiProvider.CheckAvailable(ctx); err != nil {
		return nil, err
	}

	current, err := s.generate(ctx, changes, draft{}, "")
	if err != nil {
		return nil, err
	}

	if opts.Preview && !opts.MessageOnly {
		current, err = s.review(ctx, changes, current)
		if err != nil {
			return nil, err
		}
	} else {
		s.uiManager.ShowMessage(current.text)
	}

	result := &Result{Message: current.text, Revisions: current.revisions}
	if opts.MessageOnly {
		s.record(result)
		return result, nil
	}

	if err := s.gitClient.Commit(ctx, current.text); err != nil {
		return nil, err
	}
	result.Committed = true
	s.uiManager.ShowSuccess("Committed")

	if opts.Push {
		if err := s.gitClient.Push(ctx); err != nil {
			s.record(result)
			return result, err
		}
		result.Pushed = true
		s.uiManager.ShowSuccess(s.pushedLine(ctx))
	}

	s.record(result)
	return result, nil
}

// pushedLine names the branch that was pushed when git can tell.
func (s *CommitService) pushedLine(ctx context.Context) string {
	branch, err := s.gitClient.CurrentBranch(ctx)
	if err != nil || branch == "" || branch == "HEAD" {
		return "Pushed"
	}
	return "Pushed " + branch
}

// review shows drafts until the user submits an empty line.
// Each round folds (draft, feedback) into the next draft.
func (s *CommitService) review(ctx context.Context, changes git.ChangeSet, current draft) (draft, error) {
	for {
		s.uiManager.ShowDraft(current.text, message.Inspect(current.text))

		feedback, err := s.uiManager.PromptFeedback(ctx)
		if err != nil {
			return current, err
		}
		if feedback == "" {
			return current, nil
		}

		current, err = s.generate(ctx, changes, current, feedback)
		if err != nil {
			return current, err
		}
	}
}

// generate asks the provider for a draft. prev is the zero draft on the first call.
func (s *CommitService) generate(ctx context.Context, changes git.ChangeSet, prev draft, feedback string) (draft, error) {
	spinner := s.uiManager.ShowSpinner("Generating commit message...")
	spinner.Start()
	res, err := s.aiProvider.Generate(ctx, prev.history, ai.GenerateRequest{
		Changes:         changes,
		PreviousMessage: prev.text,
		Feedback:        feedback,
	})
	spinner.Stop()
	if err != nil {
		return prev, err
	}

	text := processor.Normalize(res.Text)
	if text == "" {
		return prev, apperrors.NewEmptyResponseError(s.aiProvider.Name(), res.Text, nil)
	}

	next := draft{text: text, history: res.History}
	if feedback != "" {
		next.revisions = prev.revisions + 1
	}
	apperrors.Debug("Draft after %d revision(s), %d characters", next.revisions, len(text))
	return next, nil
}

// record appends the accepted message to the history log.
// A history failure never fails the run.
func (s *CommitService) record(result *Result) {
	if s.historyMgr == nil {
		return
	}
	entry := &history.Entry{
		Message:   result.Message,
		Provider:  s.aiProvider.Name(),
		Model:     s.config.Model,
		Revisions: result.Revisions,
		Committed: result.Committed,
		Pushed:    result.Pushed,
	}
	if err := s.historyMgr.Save(entry); err != nil {
		apperrors.Warn("failed to save history: %v", err)
	}
}
