// Package loop runs an interactive session: it loads the saved list, turns
// each input line into a result and records the session history.
package loop

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/monty-go/internal/command"
	"github.com/nibzard/monty-go/internal/config"
	"github.com/nibzard/monty-go/internal/lineio"
	"github.com/nibzard/monty-go/internal/logging"
	"github.com/nibzard/monty-go/internal/storage"
	"github.com/nibzard/monty-go/internal/tasklist"
	"github.com/nibzard/monty-go/internal/todo"
)

// Renderer displays results.
type Renderer interface {
	Render(command.Result) error
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithStore uses store instead of opening the configured one. The loop
// takes ownership and closes it.
func WithStore(store storage.Store) Option {
	return func(l *Loop) {
		l.store = store
	}
}

// Loop manages one session.
type Loop struct {
	cfg     *config.Config
	store   storage.Store
	list    *tasklist.List
	history *logging.History
	logger  *log.Logger
	loadErr error
	closed  bool
}

// New opens the configured store, loads the task list and opens the session
// history. A list that cannot be loaded is replaced by an empty one; Start
// reports it.
func New(cfg *config.Config, opts ...Option) (*Loop, error) {
	l := &Loop{cfg: cfg}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}

	if l.store == nil {
		store, err := storage.Open(cfg.Store, cfg.DataFile, l.logger)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		l.store = store
	}

	tasks, err := l.store.Load()
	if err != nil {
		l.logger.Error("Failed to load tasks", "path", cfg.DataFile, "err", err)
		l.loadErr = err
		tasks = nil
	}
	l.list = tasklist.New(tasks, l.store, tasklist.WithSaveErrorHandler(l.onSaveError))

	if cfg.History && cfg.LogDir != "" {
		history, err := logging.NewHistory(cfg.LogDir, cfg.DataFile)
		if err != nil {
			// History is best effort; the session works without it.
			l.logger.Warn("Session history disabled", "err", err)
		} else {
			l.history = history
		}
	}

	return l, nil
}

func (l *Loop) onSaveError(err error) {
	l.logger.Warn("Failed to save tasks", "path", l.cfg.DataFile, "err", err)
}

// LoadError returns the error that replaced the saved list with an empty
// one, if any.
func (l *Loop) LoadError() error {
	return l.loadErr
}

// HistoryPath returns the session history file, or "" when history is off.
func (l *Loop) HistoryPath() string {
	if l.history == nil {
		return ""
	}
	return l.history.LogPath
}

// Tasks returns a snapshot of the current list.
func (l *Loop) Tasks() []todo.Task {
	return l.list.Tasks()
}

// Start returns the results shown before the first command: the welcome and,
// when loading failed, a loading error.
func (l *Loop) Start() []command.Result {
	l.record(logging.Event{Type: logging.EventSessionStart, Count: l.list.Size()})

	results := []command.Result{command.Welcome()}
	if l.loadErr != nil {
		results = append(results, command.LoadingError(l.loadErr))
	}
	return results
}

// Handle parses and executes one input line. Errors become command-error
// results; the session carries on.
func (l *Loop) Handle(line string) command.Result {
	result, err := l.execute(line)
	return l.finish(line, result, err)
}

// reject reports input that was never parsed, such as an oversized line.
func (l *Loop) reject(err error) command.Result {
	return l.finish("", command.Result{}, err)
}

func (l *Loop) finish(line string, result command.Result, err error) command.Result {
	if err != nil {
		l.logger.Debug("Command rejected", "input", line, "err", err)
		result = command.CommandError(err)
	}

	event := logging.Event{
		Type:   logging.EventCommand,
		Input:  line,
		Result: result.Kind.String(),
		Count:  l.list.Size(),
	}
	if err != nil {
		event.Error = err.Error()
	} else if result.Task.Kind() != "" {
		event.Task = result.Task.String()
	}
	l.record(event)

	return result
}

func (l *Loop) execute(line string) (command.Result, error) {
	cmd, err := command.Parse(line)
	if err != nil {
		return command.Result{}, err
	}
	return command.Execute(cmd, l.list)
}

func (l *Loop) record(event logging.Event) {
	if err := l.history.Record(event); err != nil {
		l.logger.Warn("Failed to record history", "err", err)
	}
}

// Run renders the start results, then reads lines from in until the exit
// command, end of input or cancellation of ctx. A line longer than
// lineio.DefaultMaxLine is reported as a command error and skipped.
//
// Reading happens on a separate goroutine. After ctx is cancelled Run
// returns at once, but that goroutine stays blocked in in.Read until the
// reader returns; callers that pass a long-lived reader should close it or
// make it return.
func (l *Loop) Run(ctx context.Context, in io.Reader, renderer Renderer) error {
	for _, result := range l.Start() {
		if err := renderer.Render(result); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	type input struct {
		line string
		err  error
	}
	lines := make(chan input)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		lr := lineio.NewReader(in, lineio.DefaultMaxLine)
		for {
			line, err := lr.Next()
			if err != nil && !errors.Is(err, lineio.ErrTooLong) {
				readErr <- err
				return
			}
			select {
			case lines <- input{line: line, err: err}:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}
			var result command.Result
			if next.err != nil {
				result = l.reject(fmt.Errorf("input %w (limit %d bytes)", next.err, lineio.DefaultMaxLine))
			} else {
				result = l.Handle(next.line)
			}
			if err := renderer.Render(result); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			if result.Exit {
				return nil
			}
		}
	}
}

// Close records the end of the session and releases the store and history.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	l.record(logging.Event{Type: logging.EventSessionEnd, Count: l.list.Size()})

	var errs []error
	if err := l.history.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close history: %w", err))
	}
	if err := l.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
