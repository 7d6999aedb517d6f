// Package ui renders drafts and collects review feedback in the terminal.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Spinner provides loading animation while a request is in flight.
type Spinner interface {
	Start()
	Stop()
}

// Manager defines the terminal operations of a run.
type Manager interface {
	// ShowDraft renders a draft framed for review, followed by its warnings.
	ShowDraft(draft string, warnings []string)
	// PromptFeedback reads one line of revision instructions.
	// An empty line accepts the draft. Cancelling ctx abandons the prompt.
	PromptFeedback(ctx context.Context) (string, error)
	// ShowMessage prints a final message as plain text.
	ShowMessage(message string)
	ShowSpinner(text string) Spinner
	ShowSuccess(message string)
}

// DefaultManager implements Manager with charmbracelet components.
type DefaultManager struct {
	in          io.Reader
	lines       *bufio.Reader
	pending     chan lineResult
	out         io.Writer
	errOut      io.Writer
	interactive bool
	styles      *styles
}

// lineResult is one read from the plain input.
type lineResult struct {
	line string
	err  error
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title   lipgloss.Style
	frame   lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	hint    lipgloss.Style
}

// NewTerminalManager creates a DefaultManager that prompts with huh when in
// is a terminal and reads plain lines otherwise.
func NewTerminalManager(in io.Reader, out, errOut io.Writer) *DefaultManager {
	return NewDefaultManager(in, out, errOut, IsTerminal(in) && IsTerminal(out))
}

// NewDefaultManager creates a DefaultManager. Non-interactive managers never
// start bubbletea programs.
func NewDefaultManager(in io.Reader, out, errOut io.Writer, interactive bool) *DefaultManager {
	m := &DefaultManager{
		in:          in,
		out:         out,
		errOut:      errOut,
		interactive: interactive,
	}
	m.initStyles()
	return m
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

func (m *DefaultManager) initStyles() {
	r := lipgloss.NewRenderer(m.out)
	m.styles = &styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		frame: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		warning: r.NewStyle().
			Foreground(lipgloss.Color("220")),
		success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		hint: r.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
	}
}

// ShowDraft renders the draft inside a rounded border.
func (m *DefaultManager) ShowDraft(draft string, warnings []string) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.styles.title.Render("Commit message draft"))
	fmt.Fprintln(m.out, m.styles.frame.Render(draft))
	for _, w := range warnings {
		fmt.Fprintln(m.out, m.styles.warning.Render("! "+w))
	}
}

// PromptFeedback reads revision instructions for the current draft.
func (m *DefaultManager) PromptFeedback(ctx context.Context) (string, error) {
	if !m.interactive {
		return m.readLine(ctx)
	}

	var feedback string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Revise the message?").
				Description("Describe a change, or press Enter to commit as is.").
				Value(&feedback),
		),
	).WithInput(m.in).WithOutput(m.out)

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("review aborted: %w", err)
	}
	return strings.TrimSpace(feedback), nil
}

// readLine reads one line of plain input. End of input accepts the draft.
// The read runs in its own goroutine so a cancelled ctx returns at once; a
// read left behind by a cancelled prompt is picked up by the next call.
func (m *DefaultManager) readLine(ctx context.Context) (string, error) {
	if m.lines == nil {
		m.lines = bufio.NewReader(m.in)
	}
	fmt.Fprint(m.out, m.styles.hint.Render("Revision instructions (empty to accept): "))

	if m.pending == nil {
		m.pending = make(chan lineResult, 1)
		go func(lines *bufio.Reader, results chan<- lineResult) {
			line, err := lines.ReadString('\n')
			results <- lineResult{line: line, err: err}
		}(m.lines, m.pending)
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(m.out)
		return "", fmt.Errorf("review aborted: %w", ctx.Err())
	case res := <-m.pending:
		m.pending = nil
		if res.err != nil && res.err != io.EOF {
			return "", fmt.Errorf("failed to read feedback: %w", res.err)
		}
		fmt.Fprintln(m.out)
		return strings.TrimSpace(res.line), nil
	}
}

// ShowMessage prints message as is.
func (m *DefaultManager) ShowMessage(message string) {
	fmt.Fprintln(m.out, message)
}

// ShowSpinner returns a spinner on the error stream, or a no-op spinner
// when the manager is not interactive.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	if !m.interactive {
		return noopSpinner{}
	}
	return newBubbleSpinner(text, m.errOut)
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, m.styles.success.Render("[OK] "+message))
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	out     io.Writer
	model   spinnerModel
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for the spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newSpinnerModel(text string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, text: text}
}

func newBubbleSpinner(text string, out io.Writer) *bubbleSpinner {
	return &bubbleSpinner{
		out:   out,
		model: newSpinnerModel(text),
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}
	// The spinner must not read stdin: the feedback prompt owns it.
	s.program = tea.NewProgram(s.model, tea.WithOutput(s.out), tea.WithInput(nil))
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
}

func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	<-s.done
	s.program = nil
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (noopSpinner) Start() {}
func (noopSpinner) Stop()  {}
