package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/nibzard/monty-go/internal/todo"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	position    INTEGER PRIMARY KEY,
	kind        TEXT    NOT NULL,
	done        INTEGER NOT NULL DEFAULT 0,
	description TEXT    NOT NULL,
	due         TEXT    NOT NULL DEFAULT '',
	starts      TEXT    NOT NULL DEFAULT '',
	ends        TEXT    NOT NULL DEFAULT ''
);`

// SQLiteStore keeps the task list in a single SQLite table ordered by
// position.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *log.Logger
	ready  bool
}

// OpenSQLite opens (lazily creating) the database at path.
func OpenSQLite(path string, logger *log.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, path: path, logger: orDiscard(logger)}, nil
}

func (s *SQLiteStore) ensureSchema() error {
	if s.ready {
		return nil
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	s.ready = true
	return nil
}

// Load reads every row in position order. Rows that fail validation are
// skipped with a warning.
func (s *SQLiteStore) Load() ([]*todo.Task, error) {
	tasks := []*todo.Task{}
	if err := s.ensureSchema(); err != nil {
		return tasks, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	rows, err := s.db.Query(`SELECT position, kind, done, description, due, starts, ends FROM tasks ORDER BY position`)
	if err != nil {
		return tasks, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	var skipped []*CorruptLineError
	for rows.Next() {
		var (
			position                       int
			kindTag                        string
			done                           int
			description, due, starts, ends string
		)
		if err := rows.Scan(&position, &kindTag, &done, &description, &due, &starts, &ends); err != nil {
			return []*todo.Task{}, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}

		task, rowErr := decodeRow(kindTag, done, description, due, starts, ends)
		if rowErr != nil {
			skipped = append(skipped, &CorruptLineError{
				Line: position,
				Text: fmt.Sprintf("%s|%d|%s|%s|%s|%s", kindTag, done, description, due, starts, ends),
				Err:  rowErr,
			})
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return []*todo.Task{}, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	warnSkipped(s.logger, s.path, skipped)
	return tasks, nil
}

func decodeRow(kindTag string, done int, description, due, starts, ends string) (*todo.Task, error) {
	kind, ok := todo.ParseKind(kindTag)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kindTag)
	}
	if done != 0 && done != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrBadDoneFlag, done)
	}

	var fields []string
	switch kind {
	case todo.KindToDo:
		fields = []string{description}
	case todo.KindDeadline:
		fields = []string{description, due}
	case todo.KindEvent:
		fields = []string{description, starts, ends}
	}
	return buildTask(kind, done == 1, fields)
}

// Save replaces the table contents with tasks inside one transaction.
func (s *SQLiteStore) Save(tasks []*todo.Task) error {
	if err := s.ensureSchema(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	stmt, err := tx.Prepare(`INSERT INTO tasks (position, kind, done, description, due, starts, ends) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer stmt.Close()

	for i, t := range tasks {
		done := 0
		if t.IsDone() {
			done = 1
		}
		if _, err := stmt.Exec(i+1, string(t.Kind()), done, t.Description(), t.By(), t.From(), t.To()); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: fmt.Errorf("insert task %d: %w", i+1, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
