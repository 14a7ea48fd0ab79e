// Package logging provides the diagnostic console logger and the per-session
// JSONL command history.
package logging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// History records the commands of one interactive session.
type History struct {
	Dir       string
	SessionID string
	LogPath   string
	file      *os.File
	events    *EventWriter
	now       func() time.Time
}

// NewHistory creates the history directory for dataFile and opens a fresh
// JSONL file for this session. Histories of different task files live in
// different directories under baseDir.
func NewHistory(baseDir, dataFile string) (*History, error) {
	logDir, err := FindLogDir(baseDir, dataFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	id := uuid.New()
	logPath := filepath.Join(logDir, sessionFileName(time.Now(), id))
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create history file: %w", err)
	}

	return &History{
		Dir:       logDir,
		SessionID: id.String(),
		LogPath:   logPath,
		file:      file,
		events:    NewEventWriter(file),
		now:       time.Now,
	}, nil
}

// Record stamps and appends an event. A nil History discards events.
func (h *History) Record(event Event) error {
	if h == nil || h.events == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now().UTC()
	}
	event.SessionID = h.SessionID
	return h.events.Write(event)
}

// Close closes the history file.
func (h *History) Close() error {
	if h == nil || h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	h.events = nil
	return err
}

func sessionFileName(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s.jsonl", at.UTC().Format("20060102-150405"), id.String()[:8])
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

// storeSlug names the history directory of one task file: the file's
// slugified name plus a short hash of its absolute path.
func storeSlug(dataFile string) string {
	name := strings.TrimSuffix(filepath.Base(dataFile), filepath.Ext(dataFile))
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(dataFile))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "tasks"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "tasks"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

// FindLogDir returns the history directory for a task file without
// creating it.
func FindLogDir(baseDir, dataFile string) (string, error) {
	if baseDir == "" {
		return "", errors.New("history base dir is empty")
	}
	if dataFile == "" {
		return "", errors.New("data file is empty")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	absData := dataFile
	if abs, err := filepath.Abs(dataFile); err == nil {
		absData = abs
	}

	return filepath.Join(resolveBaseDir(baseDir, cwd), storeSlug(absData)), nil
}

// FindLatestLog returns the most recently modified session file in logDir,
// or "" when there is none.
func FindLatestLog(logDir string) (string, error) {
	sessions, err := FindSessions(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if len(sessions) == 0 {
		return "", nil
	}
	return sessions[0].Path, nil
}

// SessionInfo describes one recorded session file.
type SessionInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// FindSessions lists session files in logDir, newest first.
func FindSessions(logDir string) ([]SessionInfo, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionInfo{
			Name:    strings.TrimSuffix(entry.Name(), ".jsonl"),
			Path:    filepath.Join(logDir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].ModTime.Equal(sessions[j].ModTime) {
			return sessions[i].Name > sessions[j].Name
		}
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// TailLog copies the last n lines of path to w (all lines when n <= 0).
// With follow set it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}
	return tailFollow(ctx, w, file)
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()
	if size == 0 {
		return nil
	}

	// A trailing newline terminates the last line rather than starting a new one.
	newlines := 0
	buf := make([]byte, chunk)
	for end := size; end > 0; {
		start := end - chunk
		if start < 0 {
			start = 0
		}
		read, err := file.ReadAt(buf[:end-start], start)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		for i := read - 1; i >= 0; i-- {
			pos := start + int64(i)
			if buf[i] != '\n' || pos == size-1 {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(pos+1, io.SeekStart)
				return err
			}
		}
		end = start
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow polls file for appended data like tail -f.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}
