// Package ui renders session results on a console and provides the optional
// interactive terminal interface.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/monty-go/internal/command"
	"github.com/nibzard/monty-go/internal/todo"
)

// Divider frames every response.
const Divider = "____________________________________________________________"

const logo = ` __  __             _
|  \/  | ___  _ __ | |_ _   _
| |\/| |/ _ \| '_ \| __| | | |
| |  | | (_) | | | | |_| |_| |
|_|  |_|\___/|_| |_|\__|\__,_|`

// LoadingErrorMessage is shown when the saved list could not be read.
const LoadingErrorMessage = "Error loading tasks from file. Starting with an empty task list."

// FormatResult returns the message lines for a result, without framing or
// styling.
func FormatResult(r command.Result) []string {
	switch r.Kind {
	case command.ResultWelcome:
		return []string{"Hello! I'm Monty", "What can I do for you?"}
	case command.ResultGoodbye:
		return []string{"Bye. Hope to see you again soon!"}
	case command.ResultTaskAdded:
		return []string{
			"Got it. I've added this task:",
			"  " + r.Task.String(),
			fmt.Sprintf("Now you have %d tasks in the list.", r.Count),
		}
	case command.ResultTaskDeleted:
		return []string{
			"Noted. I've removed this task:",
			"  " + r.Task.String(),
			fmt.Sprintf("Now you have %d tasks in the list.", r.Count),
		}
	case command.ResultTaskMarked:
		return []string{"Nice! I've marked this task as done:", "  " + r.Task.String()}
	case command.ResultTaskUnmarked:
		return []string{"OK, I've marked this task as not done yet:", "  " + r.Task.String()}
	case command.ResultTaskList:
		if len(r.Tasks) == 0 {
			return []string{"Your task list is empty."}
		}
		return append([]string{"Here are the tasks in your list:"}, numbered(r.Tasks)...)
	case command.ResultFoundTasks:
		if len(r.Tasks) == 0 {
			return []string{fmt.Sprintf("No tasks found containing the keyword: %q", r.Keyword)}
		}
		return append([]string{"Here are the matching tasks in your list:"}, numbered(r.Tasks)...)
	case command.ResultLoadingError:
		return []string{LoadingErrorMessage}
	case command.ResultCommandError:
		return []string{r.Message}
	default:
		return nil
	}
}

func numbered(tasks []todo.Task) []string {
	lines := make([]string, len(tasks))
	for i := range tasks {
		lines[i] = fmt.Sprintf("%d.%s", i+1, tasks[i].String())
	}
	return lines
}

// ConsoleRenderer writes framed results to a writer.
type ConsoleRenderer struct {
	w       io.Writer
	divider lipgloss.Style
	text    lipgloss.Style
	errText lipgloss.Style
	logo    lipgloss.Style
}

// NewConsoleRenderer creates a renderer for w. Colours are used only when w
// is a terminal that supports them.
func NewConsoleRenderer(w io.Writer) *ConsoleRenderer {
	lr := lipgloss.NewRenderer(w)
	return &ConsoleRenderer{
		w:       w,
		divider: lr.NewStyle().Foreground(lipgloss.Color("240")),
		text:    lr.NewStyle(),
		errText: lr.NewStyle().Foreground(lipgloss.Color("196")),
		logo:    lr.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	}
}

// Render writes one result.
func (r *ConsoleRenderer) Render(res command.Result) error {
	var b strings.Builder

	if res.Kind == command.ResultWelcome {
		b.WriteString("Hello from\n")
		b.WriteString(r.logo.Render(logo))
		b.WriteString("\n")
		for _, line := range FormatResult(res) {
			b.WriteString(r.text.Render(line) + "\n")
		}
		_, err := io.WriteString(r.w, b.String())
		return err
	}

	style := r.text
	if res.Kind == command.ResultCommandError || res.Kind == command.ResultLoadingError {
		style = r.errText
	}

	b.WriteString(r.divider.Render(Divider) + "\n")
	for _, line := range FormatResult(res) {
		b.WriteString(" " + style.Render(line) + "\n")
	}
	b.WriteString(r.divider.Render(Divider) + "\n")

	_, err := io.WriteString(r.w, b.String())
	return err
}
