package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/commitsmith/commitsmith/internal/pkg/ai"
	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
	"github.com/commitsmith/commitsmith/internal/pkg/git"
	"github.com/commitsmith/commitsmith/internal/pkg/history"
	"github.com/commitsmith/commitsmith/internal/pkg/ui"
)

// MockGitClient is a mock implementation of git.Client
type MockGitClient struct {
	mock.Mock
}

func (m *MockGitClient) CollectStaged(ctx context.Context) (git.ChangeSet, error) {
	args := m.Called(ctx)
	return args.Get(0).(git.ChangeSet), args.Error(1)
}

func (m *MockGitClient) AddAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGitClient) Commit(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockGitClient) Push(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGitClient) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockAIProvider is a mock implementation of ai.Provider
type MockAIProvider struct {
	mock.Mock
}

func (m *MockAIProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAIProvider) Shape() ai.Shape {
	args := m.Called()
	return args.Get(0).(ai.Shape)
}

func (m *MockAIProvider) CheckAvailable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAIProvider) Generate(ctx context.Context, history ai.Conversation, req ai.GenerateRequest) (ai.GenerateResult, error) {
	args := m.Called(ctx, history, req)
	return args.Get(0).(ai.GenerateResult), args.Error(1)
}

// MockUIManager is a mock implementation of ui.Manager
type MockUIManager struct {
	mock.Mock
}

func (m *MockUIManager) ShowDraft(draft string, warnings []string) {
	m.Called(draft, warnings)
}

func (m *MockUIManager) PromptFeedback(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockUIManager) ShowMessage(message string) {
	m.Called(message)
}

func (m *MockUIManager) ShowSpinner(text string) ui.Spinner {
	args := m.Called(text)
	return args.Get(0).(ui.Spinner)
}

func (m *MockUIManager) ShowSuccess(message string) {
	m.Called(message)
}

// MockSpinner is a mock implementation of ui.Spinner
type MockSpinner struct {
	mock.Mock
}

func (m *MockSpinner) Start() {
	m.Called()
}

func (m *MockSpinner) Stop() {
	m.Called()
}

// MockHistoryManager is a mock implementation of history.Manager
type MockHistoryManager struct {
	mock.Mock
}

func (m *MockHistoryManager) Save(entry *history.Entry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockHistoryManager) Recent(limit int) ([]*history.Entry, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Entry), args.Error(1)
}

var testChanges = git.ChangeSet{
	NameStatus: "M main.go",
	Diff:       "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")",
}

type fixture struct {
	git     *MockGitClient
	ai      *MockAIProvider
	ui      *MockUIManager
	history *MockHistoryManager
	service *CommitService
}

// newFixture wires mocks for the parts every run touches.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		git:     &MockGitClient{},
		ai:      &MockAIProvider{},
		ui:      &MockUIManager{},
		history: &MockHistoryManager{},
	}
	cfg := config.Config{Provider: config.ProviderOpenRouter, Model: "test-model"}
	f.service = NewCommitService(f.git, f.ai, f.ui, f.history, cfg)

	spinner := &MockSpinner{}
	spinner.On("Start").Return()
	spinner.On("Stop").Return()
	f.ui.On("ShowSpinner", mock.Anything).Return(spinner).Maybe()
	f.ai.On("Name").Return("openrouter").Maybe()
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.git.AssertExpectations(t)
	f.ai.AssertExpectations(t)
	f.ui.AssertExpectations(t)
	f.history.AssertExpectations(t)
}

func firstCall() interface{} {
	return mock.MatchedBy(func(req ai.GenerateRequest) bool {
		return req.PreviousMessage == "" && req.Feedback == ""
	})
}

func TestRun_NoStagedChanges(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(git.ChangeSet{}, apperrors.NewNoStagedChangesError())

	result, err := f.service.Run(context.Background(), Options{})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNoStagedChanges))
	f.ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	f.git.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestRun_CommitsNormalizedMessage(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, ai.Conversation{}, firstCall()).
		Return(ai.GenerateResult{Text: "  feat: greet\\n\\n- print hi\\r  "}, nil).Once()
	f.ui.On("ShowMessage", "feat: greet\n\n- print hi").Return()
	f.git.On("Commit", mock.Anything, "feat: greet\n\n- print hi").Return(nil)
	f.ui.On("ShowSuccess", "Committed").Return()
	f.history.On("Save", mock.MatchedBy(func(e *history.Entry) bool {
		return e.Committed && !e.Pushed && e.Model == "test-model" && e.Provider == "openrouter"
	})).Return(nil)

	result, err := f.service.Run(context.Background(), Options{})

	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Equal(t, 0, result.Revisions)
	f.assertExpectations(t)
}

func TestRun_StageAllRunsBeforeCollect(t *testing.T) {
	f := newFixture(t)
	mock.InOrder(
		f.git.On("AddAll", mock.Anything).Return(nil),
		f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil),
	)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "chore: stage"}, nil)
	f.ui.On("ShowMessage", "chore: stage").Return()
	f.git.On("Commit", mock.Anything, "chore: stage").Return(nil)
	f.ui.On("ShowSuccess", mock.Anything).Return()
	f.history.On("Save", mock.Anything).Return(nil)

	_, err := f.service.Run(context.Background(), Options{StageAll: true})

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRun_PreviewAcceptImmediately(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, ai.Conversation{}, firstCall()).
		Return(ai.GenerateResult{Text: "fix: handle nil map"}, nil).Once()
	f.ui.On("ShowDraft", "fix: handle nil map", mock.Anything).Return().Once()
	f.ui.On("PromptFeedback", mock.Anything).Return("", nil).Once()
	f.git.On("Commit", mock.Anything, "fix: handle nil map").Return(nil)
	f.ui.On("ShowSuccess", "Committed").Return()
	f.history.On("Save", mock.Anything).Return(nil)

	result, err := f.service.Run(context.Background(), Options{Preview: true})

	require.NoError(t, err)
	assert.Equal(t, "fix: handle nil map", result.Message)
	f.ai.AssertNumberOfCalls(t, "Generate", 1)
	f.ui.AssertNotCalled(t, "ShowMessage", mock.Anything)
	f.assertExpectations(t)
}

func TestRun_PreviewRevisionFoldsHistory(t *testing.T) {
	f := newFixture(t)
	firstHistory := ai.NewConversation(ai.SystemPrompt, "first prompt")
	secondHistory := firstHistory.WithUser("revision prompt").WithAssistant("fix: nil map")

	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, ai.Conversation{}, firstCall()).
		Return(ai.GenerateResult{Text: "fix: handle a nil map in the lookup", History: firstHistory}, nil).Once()
	f.ai.On("Generate", mock.Anything, firstHistory, mock.MatchedBy(func(req ai.GenerateRequest) bool {
		return req.PreviousMessage == "fix: handle a nil map in the lookup" && req.Feedback == "shorter"
	})).Return(ai.GenerateResult{Text: "fix: nil map", History: secondHistory}, nil).Once()

	f.ui.On("ShowDraft", mock.Anything, mock.Anything).Return().Twice()
	f.ui.On("PromptFeedback", mock.Anything).Return("shorter", nil).Once()
	f.ui.On("PromptFeedback", mock.Anything).Return("", nil).Once()
	f.git.On("Commit", mock.Anything, "fix: nil map").Return(nil)
	f.ui.On("ShowSuccess", "Committed").Return()
	f.history.On("Save", mock.MatchedBy(func(e *history.Entry) bool {
		return e.Revisions == 1 && e.Message == "fix: nil map"
	})).Return(nil)

	result, err := f.service.Run(context.Background(), Options{Preview: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Revisions)
	f.ai.AssertNumberOfCalls(t, "Generate", 2)
	f.assertExpectations(t)
}

func TestRun_MessageOnlySkipsRepository(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "docs: update readme"}, nil).Once()
	f.ui.On("ShowMessage", "docs: update readme").Return()
	f.history.On("Save", mock.MatchedBy(func(e *history.Entry) bool {
		return !e.Committed
	})).Return(nil)

	result, err := f.service.Run(context.Background(), Options{
		StageAll:    true,
		Preview:     true,
		MessageOnly: true,
		Push:        true,
	})

	require.NoError(t, err)
	assert.False(t, result.Committed)
	f.git.AssertNotCalled(t, "AddAll", mock.Anything)
	f.git.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	f.git.AssertNotCalled(t, "Push", mock.Anything)
	f.ui.AssertNotCalled(t, "PromptFeedback", mock.Anything)
	f.assertExpectations(t)
}

func TestRun_ProviderUnavailable(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(
		apperrors.NewProviderUnavailableError("ollama", errors.New("connection refused"), "Start the Ollama server with 'ollama serve'"))

	_, err := f.service.Run(context.Background(), Options{})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrProviderUnavailable))
	f.ai.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_PushFailureKeepsCommit(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "feat: push"}, nil)
	f.ui.On("ShowMessage", mock.Anything).Return()
	f.git.On("Commit", mock.Anything, "feat: push").Return(nil)
	f.ui.On("ShowSuccess", "Committed").Return()
	f.git.On("Push", mock.Anything).Return(apperrors.NewGitError(errors.New("exit status 128"), "no remote"))
	f.history.On("Save", mock.MatchedBy(func(e *history.Entry) bool {
		return e.Committed && !e.Pushed
	})).Return(nil)

	result, err := f.service.Run(context.Background(), Options{Push: true})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrVersionControl))
	require.NotNil(t, result)
	assert.True(t, result.Committed)
	assert.False(t, result.Pushed)
	f.ui.AssertNotCalled(t, "ShowSuccess", mock.MatchedBy(func(msg string) bool { return strings.HasPrefix(msg, "Pushed") }))
	f.assertExpectations(t)
}

func TestRun_PushAfterCommit(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "feat: push"}, nil)
	f.ui.On("ShowMessage", mock.Anything).Return()
	mock.InOrder(
		f.git.On("Commit", mock.Anything, "feat: push").Return(nil),
		f.git.On("Push", mock.Anything).Return(nil),
		f.git.On("CurrentBranch", mock.Anything).Return("main", nil),
	)
	f.ui.On("ShowSuccess", "Committed").Return()
	f.ui.On("ShowSuccess", "Pushed main").Return()
	f.history.On("Save", mock.Anything).Return(nil)

	result, err := f.service.Run(context.Background(), Options{Push: true})

	require.NoError(t, err)
	assert.True(t, result.Pushed)
	f.assertExpectations(t)
}

func TestRun_PushedLineWithoutBranch(t *testing.T) {
	f := newFixture(t)
	f.git.On("CurrentBranch", mock.Anything).Return("", errors.New("not a git repository")).Once()
	f.git.On("CurrentBranch", mock.Anything).Return("HEAD", nil).Once()

	assert.Equal(t, "Pushed", f.service.pushedLine(context.Background()))
	assert.Equal(t, "Pushed", f.service.pushedLine(context.Background()))
}

func TestRun_CommitFailureSkipsPush(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "feat: x"}, nil)
	f.ui.On("ShowMessage", mock.Anything).Return()
	f.git.On("Commit", mock.Anything, "feat: x").Return(apperrors.NewGitError(errors.New("exit status 1"), "hook failed"))

	_, err := f.service.Run(context.Background(), Options{Push: true})

	require.Error(t, err)
	f.git.AssertNotCalled(t, "Push", mock.Anything)
	f.history.AssertNotCalled(t, "Save", mock.Anything)
}

func TestRun_RevisionFailureAbortsWithoutCommit(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, ai.Conversation{}, firstCall()).
		Return(ai.GenerateResult{Text: "feat: x"}, nil).Once()
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{}, apperrors.NewUpstreamError("openrouter", "rate limited")).Once()
	f.ui.On("ShowDraft", mock.Anything, mock.Anything).Return()
	f.ui.On("PromptFeedback", mock.Anything).Return("add a body", nil).Once()

	_, err := f.service.Run(context.Background(), Options{Preview: true})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUpstream))
	f.git.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestRun_PromptAbortDoesNotCommit(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "feat: x"}, nil).Once()
	f.ui.On("ShowDraft", mock.Anything, mock.Anything).Return()
	f.ui.On("PromptFeedback", mock.Anything).Return("", errors.New("user aborted"))

	_, err := f.service.Run(context.Background(), Options{Preview: true})

	require.Error(t, err)
	f.git.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestRun_BlankAfterNormalizing(t *testing.T) {
	f := newFixture(t)
	f.git.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	f.ai.On("CheckAvailable", mock.Anything).Return(nil)
	f.ai.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "\\n\\n"}, nil)

	_, err := f.service.Run(context.Background(), Options{})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrProtocol))
	f.git.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestRun_WithoutHistoryManager(t *testing.T) {
	gitClient := &MockGitClient{}
	provider := &MockAIProvider{}
	uiManager := &MockUIManager{}
	spinner := &MockSpinner{}

	gitClient.On("CollectStaged", mock.Anything).Return(testChanges, nil)
	gitClient.On("Commit", mock.Anything, "feat: x").Return(nil)
	provider.On("CheckAvailable", mock.Anything).Return(nil)
	provider.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(ai.GenerateResult{Text: "feat: x"}, nil)
	uiManager.On("ShowSpinner", mock.Anything).Return(spinner)
	uiManager.On("ShowMessage", mock.Anything).Return()
	uiManager.On("ShowSuccess", mock.Anything).Return()
	spinner.On("Start").Return()
	spinner.On("Stop").Return()

	service := NewCommitService(gitClient, provider, uiManager, nil, config.Config{})
	result, err := service.Run(context.Background(), Options{})

	require.NoError(t, err)
	assert.True(t, result.Committed)
	spinner.AssertNumberOfCalls(t, "Start", 1)
	spinner.AssertNumberOfCalls(t, "Stop", 1)
}
