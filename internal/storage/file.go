package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/monty-go/internal/todo"
)

// FileStore keeps the task list in a flat text file, one record per line.
type FileStore struct {
	path   string
	logger *log.Logger
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	return &FileStore{path: path, logger: orDiscard(logger)}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the backing file. Corrupted records are skipped with a warning.
func (s *FileStore) Load() ([]*todo.Task, error) {
	tasks, _, err := s.LoadWithReport()
	return tasks, err
}

// LoadWithReport behaves like Load and also returns the skipped records.
func (s *FileStore) LoadWithReport() ([]*todo.Task, []*CorruptLineError, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*todo.Task{}, nil, nil
		}
		return []*todo.Task{}, nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()

	tasks, skipped, err := Decode(f)
	warnSkipped(s.logger, s.path, skipped)
	if err != nil {
		return []*todo.Task{}, skipped, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	if tasks == nil {
		tasks = []*todo.Task{}
	}
	return tasks, skipped, nil
}

// Save overwrites the backing file with tasks, creating the parent
// directory when missing.
func (s *FileStore) Save(tasks []*todo.Task) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: fmt.Errorf("create data directory: %w", err)}
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Close is a no-op; the file is opened per operation.
func (s *FileStore) Close() error {
	return nil
}
