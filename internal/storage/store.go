package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/monty-go/internal/todo"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store loads and saves the full task list.
type Store interface {
	// Load returns the persisted tasks. A missing store yields an empty
	// list and no error; an unreadable store yields an empty list and a
	// *PersistenceError.
	Load() ([]*todo.Task, error)
	// Save replaces the persisted list with tasks.
	Save(tasks []*todo.Task) error
	Close() error
}

// PersistenceError reports a backing-store read or write failure.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Open returns the store for backend at path. Warnings about skipped
// records go to logger; a nil logger discards them.
func Open(backend, path string, logger *log.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(path, logger), nil
	case BackendSQLite:
		return OpenSQLite(path, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected %s|%s)", backend, BackendFile, BackendSQLite)
	}
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

func warnSkipped(logger *log.Logger, path string, skipped []*CorruptLineError) {
	for _, s := range skipped {
		logger.Warn("Skipping corrupted record", "path", path, "line", s.Line, "reason", s.Err)
	}
}
