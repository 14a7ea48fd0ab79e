// Package todo defines the task model shared by every other package.
package todo

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the task variant. Its value is the one-letter tag used in
// rendering and in the backing store.
type Kind string

const (
	KindToDo     Kind = "T"
	KindDeadline Kind = "D"
	KindEvent    Kind = "E"
)

// ParseKind maps a tag ("T", "D", "E") to a Kind.
func ParseKind(tag string) (Kind, bool) {
	switch k := Kind(strings.TrimSpace(tag)); k {
	case KindToDo, KindDeadline, KindEvent:
		return k, true
	default:
		return "", false
	}
}

// Name returns the lower-case variant name ("todo", "deadline", "event").
func (k Kind) Name() string {
	switch k {
	case KindToDo:
		return "todo"
	case KindDeadline:
		return "deadline"
	case KindEvent:
		return "event"
	default:
		return string(k)
	}
}

// ErrEmpty is wrapped by ValidationError when a required field is blank.
var ErrEmpty = errors.New("cannot be empty")

// ValidationError reports a task that could not be constructed.
type ValidationError struct {
	Field string // description, by, from, to or task
	Err   error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Task is a single tracked item. The zero value is not valid; use NewToDo,
// NewDeadline or NewEvent.
type Task struct {
	kind        Kind
	description string
	done        bool

	// Deadline payload
	by string

	// Event payload
	from string
	to   string
}

// NewToDo creates a ToDo task.
func NewToDo(description string) (*Task, error) {
	desc, err := required("description", description)
	if err != nil {
		return nil, err
	}
	return &Task{kind: KindToDo, description: desc}, nil
}

// NewDeadline creates a Deadline task due by the given token.
func NewDeadline(description, by string) (*Task, error) {
	desc, err := required("description", description)
	if err != nil {
		return nil, err
	}
	by, err = required("by", by)
	if err != nil {
		return nil, err
	}
	return &Task{kind: KindDeadline, description: desc, by: by}, nil
}

// NewEvent creates an Event task spanning from..to.
func NewEvent(description, from, to string) (*Task, error) {
	desc, err := required("description", description)
	if err != nil {
		return nil, err
	}
	from, err = required("from", from)
	if err != nil {
		return nil, err
	}
	to, err = required("to", to)
	if err != nil {
		return nil, err
	}
	return &Task{kind: KindEvent, description: desc, from: from, to: to}, nil
}

func required(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Err: ErrEmpty}
	}
	return trimmed, nil
}

// MarkDone marks the task as completed.
func (t *Task) MarkDone() {
	t.done = true
}

// MarkNotDone clears the completed flag.
func (t *Task) MarkNotDone() {
	t.done = false
}

// IsDone reports whether the task is completed.
func (t *Task) IsDone() bool {
	return t.done
}

// Kind returns the variant tag.
func (t *Task) Kind() Kind {
	return t.kind
}

// Description returns the trimmed description.
func (t *Task) Description() string {
	return t.description
}

// By returns the deadline token, or "" for other kinds.
func (t *Task) By() string {
	return t.by
}

// From returns the event start token, or "" for other kinds.
func (t *Task) From() string {
	return t.from
}

// To returns the event end token, or "" for other kinds.
func (t *Task) To() string {
	return t.to
}

// StatusIcon returns "X" when done and a single space otherwise.
func (t *Task) StatusIcon() string {
	if t.done {
		return "X"
	}
	return " "
}

// String renders the task for display.
func (t *Task) String() string {
	base := fmt.Sprintf("[%s][%s] %s", t.kind, t.StatusIcon(), t.description)
	switch t.kind {
	case KindDeadline:
		return base + fmt.Sprintf(" (by: %s)", t.by)
	case KindEvent:
		return base + fmt.Sprintf(" (from: %s to: %s)", t.from, t.to)
	default:
		return base
	}
}

// Clone returns an independent copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
