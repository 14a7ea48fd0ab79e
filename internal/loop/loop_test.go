package loop

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/monty-go/internal/command"
	"github.com/nibzard/monty-go/internal/config"
	"github.com/nibzard/monty-go/internal/lineio"
	"github.com/nibzard/monty-go/internal/logging"
	"github.com/nibzard/monty-go/internal/storage"
	"github.com/nibzard/monty-go/internal/todo"
)

type recordingRenderer struct {
	results []command.Result
}

func (r *recordingRenderer) Render(result command.Result) error {
	r.results = append(r.results, result)
	return nil
}

func (r *recordingRenderer) kinds() []command.ResultKind {
	kinds := make([]command.ResultKind, len(r.results))
	for i, res := range r.results {
		kinds[i] = res.Kind
	}
	return kinds
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataFile: filepath.Join(t.TempDir(), "data", "tasks.txt"),
		Store:    storage.BackendFile,
	}
}

func newLoop(t *testing.T, cfg *config.Config, opts ...Option) *Loop {
	t.Helper()
	l, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRunSession(t *testing.T) {
	cfg := testConfig(t)
	l := newLoop(t, cfg)

	input := strings.Join([]string{
		"todo read book",
		"deadline return book /by June 6th",
		"list",
		"mark 1",
		"delete 2",
		"bye",
		"todo never reached",
	}, "\n")

	r := &recordingRenderer{}
	if err := l.Run(context.Background(), strings.NewReader(input), r); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []command.ResultKind{
		command.ResultWelcome,
		command.ResultTaskAdded,
		command.ResultTaskAdded,
		command.ResultTaskList,
		command.ResultTaskMarked,
		command.ResultTaskDeleted,
		command.ResultGoodbye,
	}
	got := r.kinds()
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %v, want %v", i, got[i], want[i])
		}
	}

	data, err := os.ReadFile(cfg.DataFile)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	if string(data) != "T | 1 | read book\n" {
		t.Errorf("data file = %q", data)
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	l := newLoop(t, testConfig(t))
	r := &recordingRenderer{}
	if err := l.Run(context.Background(), strings.NewReader("todo a\ntodo b"), r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.results) != 3 {
		t.Errorf("got %d results, want 3", len(r.results))
	}
	if len(l.Tasks()) != 2 {
		t.Errorf("got %d tasks, want 2", len(l.Tasks()))
	}
}

// blockingReader never returns, like an idle terminal.
type blockingReader struct{ done chan struct{} }

func (b blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, errors.New("closed")
}

func TestRunStopsOnCancel(t *testing.T) {
	l := newLoop(t, testConfig(t))
	in := blockingReader{done: make(chan struct{})}
	defer close(in.done)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := &recordingRenderer{}
	if err := l.Run(ctx, in, r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.results) != 1 || r.results[0].Kind != command.ResultWelcome {
		t.Errorf("results = %v", r.kinds())
	}
}

func TestHandleErrorsContinue(t *testing.T) {
	l := newLoop(t, testConfig(t))

	tests := []struct {
		line    string
		wantErr error
	}{
		{"blah", command.ErrUnknownCommand},
		{"", command.ErrEmptyCommand},
		{"todo", command.ErrEmptyDescription},
		{"deadline x", command.ErrMissingBy},
		{"event x /to y /from z", command.ErrFromAfterTo},
		{"mark two", command.ErrInvalidTaskNumber},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			result := l.Handle(tt.line)
			if result.Kind != command.ResultCommandError {
				t.Fatalf("kind = %v, want command_error", result.Kind)
			}
			if !strings.Contains(result.Message, tt.wantErr.Error()) {
				t.Errorf("message %q does not mention %q", result.Message, tt.wantErr)
			}
		})
	}

	result := l.Handle("mark 3")
	if result.Kind != command.ResultCommandError || !strings.Contains(result.Message, "does not exist") {
		t.Errorf("out of range mark = %+v", result)
	}

	if result := l.Handle("todo still works"); result.Kind != command.ResultTaskAdded || result.Count != 1 {
		t.Errorf("after errors: %+v", result)
	}
}

func TestStartLoadsExistingTasks(t *testing.T) {
	cfg := testConfig(t)
	content := "T | 1 | read book\nD | 0 | return book | June 6th\n"
	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DataFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l := newLoop(t, cfg)
	results := l.Start()
	if len(results) != 1 || results[0].Kind != command.ResultWelcome {
		t.Fatalf("Start = %+v", results)
	}
	tasks := l.Tasks()
	if len(tasks) != 2 || !tasks[0].IsDone() || tasks[1].By() != "June 6th" {
		t.Errorf("tasks = %v", tasks)
	}
}

func TestCorruptLinesSkipped(t *testing.T) {
	cfg := testConfig(t)
	content := "T | 1 | read book\nX | 0 | bogus\nT | 0\nE | 0 | meet | 2pm | 4pm\n"
	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DataFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	l := newLoop(t, cfg, WithLogger(logger))

	if l.LoadError() != nil {
		t.Fatalf("corrupt lines must not fail the load: %v", l.LoadError())
	}
	if got := len(l.Tasks()); got != 2 {
		t.Errorf("got %d tasks, want 2", got)
	}
	if strings.Count(buf.String(), "Skipping corrupted record") != 2 {
		t.Errorf("warnings = %q", buf.String())
	}
}

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load() ([]*todo.Task, error) { return nil, f.loadErr }
func (f *failingStore) Save([]*todo.Task) error   { f.saves++; return f.saveErr }
func (f *failingStore) Close() error               { return nil }

func TestLoadFailureStartsEmpty(t *testing.T) {
	loadErr := &storage.PersistenceError{Op: "load", Path: "tasks.txt", Err: os.ErrPermission}
	store := &failingStore{loadErr: loadErr}
	l := newLoop(t, testConfig(t), WithStore(store))

	results := l.Start()
	if len(results) != 2 {
		t.Fatalf("Start returned %d results, want 2", len(results))
	}
	if results[0].Kind != command.ResultWelcome || results[1].Kind != command.ResultLoadingError {
		t.Errorf("Start kinds = %v, %v", results[0].Kind, results[1].Kind)
	}
	var perr *storage.PersistenceError
	if !errors.As(l.LoadError(), &perr) || perr.Op != "load" {
		t.Errorf("LoadError = %v", l.LoadError())
	}
	if len(l.Tasks()) != 0 {
		t.Errorf("list not empty after failed load")
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	store := &failingStore{saveErr: errors.New("disk full")}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	l := newLoop(t, testConfig(t), WithStore(store), WithLogger(logger))

	result := l.Handle("todo read book")
	if result.Kind != command.ResultTaskAdded {
		t.Fatalf("kind = %v, want task_added", result.Kind)
	}
	if len(l.Tasks()) != 1 || store.saves != 1 {
		t.Errorf("tasks=%d saves=%d", len(l.Tasks()), store.saves)
	}
	if !strings.Contains(buf.String(), "Failed to save tasks") {
		t.Errorf("save failure not logged: %q", buf.String())
	}
}

func TestSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = storage.BackendSQLite
	cfg.DataFile = filepath.Join(t.TempDir(), "tasks.db")

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Handle("event standup /from 9am /to 9:15am")
	l.Handle("mark 1")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := newLoop(t, cfg)
	tasks := reopened.Tasks()
	if len(tasks) != 1 || !tasks[0].IsDone() || tasks[0].To() != "9:15am" {
		t.Errorf("tasks after reopen = %v", tasks)
	}
}

func TestHistoryEvents(t *testing.T) {
	cfg := testConfig(t)
	cfg.History = true
	cfg.LogDir = t.TempDir()

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := l.HistoryPath()
	if path == "" {
		t.Fatal("history not opened")
	}
	r := &recordingRenderer{}
	if err := l.Run(context.Background(), strings.NewReader("todo a\nnonsense\nbye\n"), r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var events []logging.Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev logging.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}

	wantTypes := []string{
		logging.EventSessionStart,
		logging.EventCommand,
		logging.EventCommand,
		logging.EventCommand,
		logging.EventSessionEnd,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %q, want %q", i, events[i].Type, want)
		}
	}
	if events[1].Task != "[T][ ] a" || events[1].Result != "task_added" {
		t.Errorf("add event = %+v", events[1])
	}
	if events[2].Error == "" || events[2].Result != "command_error" {
		t.Errorf("error event = %+v", events[2])
	}
	if events[4].Count != 1 {
		t.Errorf("end count = %d, want 1", events[4].Count)
	}
}

func TestCloseIdempotent(t *testing.T) {
	l, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestRunSkipsOversizedLine(t *testing.T) {
	cfg := testConfig(t)
	l := newLoop(t, cfg)

	long := "todo " + strings.Repeat("z", lineio.DefaultMaxLine)
	input := long + "\ntodo after\nlist\n"

	r := &recordingRenderer{}
	if err := l.Run(context.Background(), strings.NewReader(input), r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []command.ResultKind{
		command.ResultWelcome,
		command.ResultCommandError,
		command.ResultTaskAdded,
		command.ResultTaskList,
	}
	got := r.kinds()
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("results = %v, want %v", got, want)
		}
	}
	if !strings.Contains(r.results[1].Message, "too long") {
		t.Errorf("oversized line message = %q", r.results[1].Message)
	}
	if tasks := l.Tasks(); len(tasks) != 1 || tasks[0].Description() != "after" {
		t.Errorf("tasks = %v, want only \"after\"", tasks)
	}
}

func TestRunAcceptsLongLine(t *testing.T) {
	l := newLoop(t, testConfig(t))
	desc := strings.Repeat("w", 70*1024)

	r := &recordingRenderer{}
	if err := l.Run(context.Background(), strings.NewReader("todo "+desc+"\ntodo after\n"), r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	tasks := l.Tasks()
	if len(tasks) != 2 || tasks[0].Description() != desc {
		t.Fatalf("got %d tasks, want the long task then \"after\"", len(tasks))
	}
}

func TestLongRecordSurvivesSession(t *testing.T) {
	cfg := testConfig(t)
	long := strings.Repeat("q", 70*1024)
	content := "T | 0 | first\nT | 0 | " + long + "\nT | 1 | last\n"
	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.DataFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l := newLoop(t, cfg)
	if l.LoadError() != nil {
		t.Fatalf("LoadError: %v", l.LoadError())
	}
	if res := l.Handle("todo new"); res.Kind != command.ResultTaskAdded {
		t.Fatalf("Handle: %v", res.Kind)
	}

	data, err := os.ReadFile(cfg.DataFile)
	if err != nil {
		t.Fatal(err)
	}
	if want := content + "T | 0 | new\n"; string(data) != want {
		t.Errorf("saved file lost records: got %d bytes, want %d", len(data), len(want))
	}
}
