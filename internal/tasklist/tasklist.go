// Package tasklist holds the ordered, 1-indexed task list and saves it after
// every mutation.
package tasklist

import (
	"fmt"
	"strings"

	"github.com/nibzard/monty-go/internal/todo"
)

// Saver persists the full list. storage.Store satisfies it.
type Saver interface {
	Save(tasks []*todo.Task) error
}

// IndexError reports a task number outside [1, Size].
type IndexError struct {
	Index int // 1-based number the caller asked for
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("task number %d does not exist (the list has %d tasks)", e.Index, e.Size)
}

// Option configures a List.
type Option func(*List)

// WithSaveErrorHandler sets the callback invoked when a save fails. Save
// failures never fail the mutation that triggered them.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(l *List) {
		l.onSaveErr = fn
	}
}

// List is an ordered task collection. It exclusively owns its tasks; every
// accessor hands out copies.
type List struct {
	tasks     []*todo.Task
	saver     Saver
	onSaveErr func(error)
}

// New returns a list holding tasks, persisted through saver. A nil saver
// disables persistence.
func New(tasks []*todo.Task, saver Saver, opts ...Option) *List {
	l := &List{
		tasks: make([]*todo.Task, 0, len(tasks)),
		saver: saver,
	}
	for _, t := range tasks {
		if t != nil {
			l.tasks = append(l.tasks, t)
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Size returns the number of tasks.
func (l *List) Size() int {
	return len(l.tasks)
}

// IsEmpty reports whether the list has no tasks.
func (l *List) IsEmpty() bool {
	return len(l.tasks) == 0
}

// Tasks returns a copy of every task in order.
func (l *List) Tasks() []todo.Task {
	out := make([]todo.Task, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = *t
	}
	return out
}

// Add appends task and saves.
func (l *List) Add(task *todo.Task) error {
	if task == nil {
		return &todo.ValidationError{Field: "task", Err: fmt.Errorf("must not be nil")}
	}
	l.tasks = append(l.tasks, task)
	l.save()
	return nil
}

// Get returns a copy of the task at the 1-based index.
func (l *List) Get(index int) (todo.Task, error) {
	t, err := l.at(index)
	if err != nil {
		return todo.Task{}, err
	}
	return *t, nil
}

func (l *List) at(index int) (*todo.Task, error) {
	if index < 1 || index > len(l.tasks) {
		return nil, &IndexError{Index: index, Size: len(l.tasks)}
	}
	return l.tasks[index-1], nil
}

// MarkDone marks the task at index done, saves and returns it.
func (l *List) MarkDone(index int) (todo.Task, error) {
	t, err := l.at(index)
	if err != nil {
		return todo.Task{}, err
	}
	t.MarkDone()
	l.save()
	return *t, nil
}

// MarkNotDone clears the done flag on the task at index, saves and returns it.
func (l *List) MarkNotDone(index int) (todo.Task, error) {
	t, err := l.at(index)
	if err != nil {
		return todo.Task{}, err
	}
	t.MarkNotDone()
	l.save()
	return *t, nil
}

// Delete removes the task at index, shifting later tasks down, saves and
// returns the removed task.
func (l *List) Delete(index int) (todo.Task, error) {
	t, err := l.at(index)
	if err != nil {
		return todo.Task{}, err
	}
	l.tasks = append(l.tasks[:index-1], l.tasks[index:]...)
	l.save()
	return *t, nil
}

// Find returns the tasks whose description contains keyword, ignoring case,
// in list order. It never saves.
func (l *List) Find(keyword string) []todo.Task {
	needle := strings.ToLower(keyword)
	matches := make([]todo.Task, 0)
	for _, t := range l.tasks {
		if strings.Contains(strings.ToLower(t.Description()), needle) {
			matches = append(matches, *t)
		}
	}
	return matches
}

func (l *List) save() {
	if l.saver == nil {
		return
	}
	if err := l.saver.Save(l.tasks); err != nil && l.onSaveErr != nil {
		l.onSaveErr(err)
	}
}
