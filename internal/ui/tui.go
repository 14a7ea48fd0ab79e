package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/monty-go/internal/command"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	echoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Handler turns input lines into results. *loop.Loop satisfies it.
type Handler interface {
	Start() []command.Result
	Handle(line string) command.Result
}

// RunTUI runs the interactive interface until the exit command, ctrl+c or
// cancellation of ctx.
func RunTUI(ctx context.Context, h Handler) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	program := tea.NewProgram(NewModel(h), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// Model is the bubbletea model of a session: a transcript of results above a
// single input line.
type Model struct {
	handler    Handler
	input      textinput.Model
	transcript []string
	width      int
	height     int
	quitting   bool
}

// NewModel creates a model and records the start results of h.
func NewModel(h Handler) *Model {
	ti := textinput.New()
	ti.Placeholder = "todo read book"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	m := &Model{handler: h, input: ti}
	for _, res := range h.Start() {
		m.appendResult(res)
	}
	return m
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	m.transcript = append(m.transcript, echoStyle.Render("> "+line))
	res := m.handler.Handle(line)
	m.appendResult(res)

	if res.Exit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) appendResult(res command.Result) {
	style := lipgloss.NewStyle()
	if res.Kind == command.ResultCommandError || res.Kind == command.ResultLoadingError {
		style = errorStyle
	}
	for _, line := range FormatResult(res) {
		m.transcript = append(m.transcript, style.Render(line))
	}
	m.transcript = append(m.transcript, "")
}

// Transcript returns the rendered lines so far.
func (m *Model) Transcript() []string {
	return m.transcript
}

// Quitting reports whether the model has asked the program to exit.
func (m *Model) Quitting() bool {
	return m.quitting
}

// View renders the visible tail of the transcript and the input line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Monty") + "\n\n")

	lines := m.transcript
	// Title, blank line, input and help take four rows.
	if m.height > 4 && len(lines) > m.height-4 {
		lines = lines[len(lines)-(m.height-4):]
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}

	if m.quitting {
		return b.String()
	}
	b.WriteString(promptStyle.Render(m.input.View()) + "\n")
	b.WriteString(helpStyle.Render("enter to send | bye or esc to quit"))
	return b.String()
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
