// Package storage encodes task lists and persists them to a backing store.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/monty-go/internal/lineio"
	"github.com/nibzard/monty-go/internal/todo"
)

// Delimiter separates fields within a record.
const Delimiter = " | "

// Minimum field counts per record kind.
const (
	minFields         = 3
	minDeadlineFields = 4
	minEventFields    = 5
)

var (
	ErrTooFewFields = errors.New("too few fields")
	ErrUnknownKind  = errors.New("unknown task type")
	ErrBadDoneFlag  = errors.New("done flag must be 0 or 1")
)

// CorruptLineError describes a record that was skipped during decoding.
type CorruptLineError struct {
	Line int    // 1-based line number
	Text string // raw line contents
	Err  error
}

func (e *CorruptLineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

// Unwrap returns the underlying error.
func (e *CorruptLineError) Unwrap() error {
	return e.Err
}

// EncodeTask returns the single-line record for a task.
func EncodeTask(t *todo.Task) string {
	done := "0"
	if t.IsDone() {
		done = "1"
	}
	fields := []string{string(t.Kind()), done, t.Description()}
	switch t.Kind() {
	case todo.KindDeadline:
		fields = append(fields, t.By())
	case todo.KindEvent:
		fields = append(fields, t.From(), t.To())
	}
	return strings.Join(fields, Delimiter)
}

// Encode writes one record per task, in order.
func Encode(w io.Writer, tasks []*todo.Task) error {
	bw := bufio.NewWriter(w)
	for _, t := range tasks {
		if _, err := bw.WriteString(EncodeTask(t) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeLine parses a single non-blank record. Fields beyond those a kind
// needs are ignored.
func DecodeLine(line string) (*todo.Task, error) {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	if len(parts) < minFields {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(parts), minFields)
	}

	kind, ok := todo.ParseKind(parts[0])
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, strings.TrimSpace(parts[0]))
	}

	var done bool
	switch strings.TrimSpace(parts[1]) {
	case "0":
	case "1":
		done = true
	default:
		return nil, fmt.Errorf("%w, got %q", ErrBadDoneFlag, strings.TrimSpace(parts[1]))
	}

	return buildTask(kind, done, parts[2:])
}

// buildTask constructs a task from the fields that follow the done flag.
func buildTask(kind todo.Kind, done bool, fields []string) (*todo.Task, error) {
	var (
		task *todo.Task
		err  error
	)
	switch kind {
	case todo.KindToDo:
		task, err = todo.NewToDo(fields[0])
	case todo.KindDeadline:
		if len(fields) < minDeadlineFields-2 {
			return nil, fmt.Errorf("%w: deadline needs a due value", ErrTooFewFields)
		}
		task, err = todo.NewDeadline(fields[0], fields[1])
	case todo.KindEvent:
		if len(fields) < minEventFields-2 {
			return nil, fmt.Errorf("%w: event needs start and end values", ErrTooFewFields)
		}
		task, err = todo.NewEvent(fields[0], fields[1], fields[2])
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	if done {
		task.MarkDone()
	}
	return task, nil
}

// MaxRecordSize bounds a single record. Session input is limited to
// lineio.DefaultMaxLine, so every task a session creates fits.
const MaxRecordSize = 2 * lineio.DefaultMaxLine

// Decode reads records until EOF. Blank lines are ignored and malformed or
// oversized records are skipped and returned in skipped; only a read failure
// aborts.
func Decode(r io.Reader) (tasks []*todo.Task, skipped []*CorruptLineError, err error) {
	lr := lineio.NewReader(r, MaxRecordSize)
	for lineNo := 1; ; lineNo++ {
		line, readErr := lr.Next()
		switch {
		case errors.Is(readErr, io.EOF):
			return tasks, skipped, nil
		case errors.Is(readErr, lineio.ErrTooLong):
			skipped = append(skipped, &CorruptLineError{
				Line: lineNo,
				Err:  fmt.Errorf("%w (limit %d bytes)", readErr, lr.Max()),
			})
			continue
		case readErr != nil:
			return tasks, skipped, fmt.Errorf("read records: %w", readErr)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		task, lineErr := DecodeLine(line)
		if lineErr != nil {
			skipped = append(skipped, &CorruptLineError{Line: lineNo, Text: line, Err: lineErr})
			continue
		}
		tasks = append(tasks, task)
	}
}
