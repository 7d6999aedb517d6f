// Package git collects staged changes and commits them for commitsmith.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// GitCommandTimeout bounds the read-only queries. Commands that change the
// repository run hooks or talk to a remote and are bounded only by ctx.
const GitCommandTimeout = 10 * time.Second

// secretExcludes keeps environment files out of the collected changes.
// A bare pattern matches at the top level; the */ forms catch nested copies.
var secretExcludes = []string{
	":(exclude).env",
	":(exclude).env.*",
	":(exclude)*/.env",
	":(exclude)*/.env.*",
	":(exclude)*.env",
	":(exclude)*.env.*",
}

// exampleIncludes re-adds the templates the exclusion pass removed.
var exampleIncludes = []string{"*.env.example"}

// ChangeSet holds the staged changes sent to the model.
// It is collected once per run and never refreshed.
type ChangeSet struct {
	NameStatus string
	Diff       string
}

// IsEmpty reports whether nothing survived the exclusion filter.
func (c ChangeSet) IsEmpty() bool {
	return strings.TrimSpace(c.NameStatus) == "" && strings.TrimSpace(c.Diff) == ""
}

// Client defines the interface for Git operations.
type Client interface {
	CollectStaged(ctx context.Context) (ChangeSet, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
	CurrentBranch(ctx context.Context) (string, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// Open resolves the repository containing dir and returns a client rooted at its top level,
// so that the pathspecs apply to the whole tree whatever the caller's directory.
func Open(ctx context.Context, dir string) (*DefaultClient, error) {
	top, err := NewClientWithWorkDir(dir).TopLevel(ctx)
	if err != nil {
		return nil, err
	}
	return NewClientWithWorkDir(top), nil
}

// WorkDir returns the directory git commands run in.
func (c *DefaultClient) WorkDir() string {
	return c.workDir
}

// TopLevel returns the root of the working tree.
func (c *DefaultClient) TopLevel(ctx context.Context) (string, error) {
	out, err := c.output(ctx, GitCommandTimeout, "rev-parse", "--show-toplevel")
	if err != nil {
		appErr := apperrors.GetAppError(err)
		if appErr != nil && appErr.Code == apperrors.ErrVersionControl {
			appErr.Message = "not inside a git repository"
			appErr.Suggestion = "Run commitsmith from a directory inside a git working tree"
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CollectStaged returns the staged name-status summary and diff with secret files filtered out.
// The exclusion pass and the example re-inclusion pass are concatenated.
func (c *DefaultClient) CollectStaged(ctx context.Context) (ChangeSet, error) {
	excluded := append([]string{"."}, secretExcludes...)

	nameStatus, err := c.stagedPass(ctx, "--name-status", excluded)
	if err != nil {
		return ChangeSet{}, err
	}
	exampleNameStatus, err := c.stagedPass(ctx, "--name-status", exampleIncludes)
	if err != nil {
		return ChangeSet{}, err
	}

	diff, err := c.stagedPass(ctx, "", excluded)
	if err != nil {
		return ChangeSet{}, err
	}
	exampleDiff, err := c.stagedPass(ctx, "", exampleIncludes)
	if err != nil {
		return ChangeSet{}, err
	}

	changes := ChangeSet{
		NameStatus: normalizeNameStatus(nameStatus + exampleNameStatus),
		Diff:       strings.TrimRight(diff+exampleDiff, "\n"),
	}
	if changes.IsEmpty() {
		return ChangeSet{}, apperrors.NewNoStagedChangesError()
	}

	apperrors.Debug("Collected %d name-status bytes and %d diff bytes", len(changes.NameStatus), len(changes.Diff))
	return changes, nil
}

// stagedPass runs one git diff --cached over the given pathspecs.
func (c *DefaultClient) stagedPass(ctx context.Context, mode string, pathspecs []string) (string, error) {
	args := []string{"diff", "--cached"}
	if mode != "" {
		args = append(args, mode)
	}
	args = append(args, "--")
	args = append(args, pathspecs...)
	return c.output(ctx, GitCommandTimeout, args...)
}

var spaceRun = regexp.MustCompile(` {2,}`)

// normalizeNameStatus turns tabs into single spaces and collapses runs of spaces.
func normalizeNameStatus(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimRight(s, "\n")
}

// AddAll stages all working-tree changes, including deletions and untracked files.
func (c *DefaultClient) AddAll(ctx context.Context) error {
	_, err := c.combined(ctx, "add", "-A")
	return err
}

// Commit executes a git commit with the given message.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	_, err := c.combined(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current branch to its default remote.
// A failed push leaves the commit in place.
func (c *DefaultClient) Push(ctx context.Context) error {
	_, err := c.combined(ctx, "push")
	return err
}

// CurrentBranch returns the name of the current branch.
func (c *DefaultClient) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.output(ctx, GitCommandTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// output runs git and returns stdout. Stderr is attached to the error on failure.
func (c *DefaultClient) output(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := c.command(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		return "", c.wrapErr(ctx, args, err, stderr)
	}
	return string(out), nil
}

// combined runs git and returns stdout and stderr interleaved.
func (c *DefaultClient) combined(ctx context.Context, args ...string) (string, error) {
	cmd := c.command(ctx, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", c.wrapErr(ctx, args, err, string(out))
	}
	return string(out), nil
}

func (c *DefaultClient) command(ctx context.Context, args ...string) *exec.Cmd {
	apperrors.Debug("Running git %s", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	return cmd
}

func (c *DefaultClient) wrapErr(ctx context.Context, args []string, err error, output string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return apperrors.Wrap(ctx.Err(), apperrors.ErrVersionControl, fmt.Sprintf("git %s timed out", args[0]))
	}
	appErr := apperrors.NewGitError(err, output)
	appErr.Message = fmt.Sprintf("git %s failed", args[0])
	return appErr
}
