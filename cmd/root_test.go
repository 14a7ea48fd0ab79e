package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setup isolates HOME, the working directory and MONTY_* variables, and
// returns the working directory.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, env := range []string{
		"MONTY_DATA_FILE", "MONTY_STORE", "MONTY_LOG_DIR", "MONTY_HISTORY",
		"MONTY_LOG_LEVEL", "MONTY_LOG_FORMAT", "MONTY_LOG_TIMESTAMPS", "MONTY_LOG_CALLER",
	} {
		t.Setenv(env, "")
	}
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return work
}

type result struct {
	out    string
	errOut string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func writeTasks(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	t.Run("help flag", func(t *testing.T) {
		setup(t)
		r := runCLI(t, "", "-h")
		if r.err != nil {
			t.Fatalf("expected no error, got %v", r.err)
		}
		if !strings.Contains(r.out, "Usage:") {
			t.Errorf("help output missing usage: %q", r.out)
		}
	})

	t.Run("help command", func(t *testing.T) {
		setup(t)
		r := runCLI(t, "", "help")
		if r.err != nil || !strings.Contains(r.out, "-data") {
			t.Errorf("help: err=%v out=%q", r.err, r.out)
		}
	})

	t.Run("version", func(t *testing.T) {
		setup(t)
		for _, args := range [][]string{{"-version"}, {"-v"}, {"version"}} {
			r := runCLI(t, "", args...)
			if r.err != nil || r.out != "monty version dev\n" {
				t.Errorf("%v: err=%v out=%q", args, r.err, r.out)
			}
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		setup(t)
		r := runCLI(t, "", "frobnicate")
		if r.err == nil || !strings.Contains(r.err.Error(), "unknown command") {
			t.Errorf("expected unknown command error, got %v", r.err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		setup(t)
		r := runCLI(t, "", "-store", "redis", "ls")
		if r.err == nil || !strings.Contains(r.err.Error(), "unknown store") {
			t.Errorf("expected store error, got %v", r.err)
		}
	})
}

func TestRunSession(t *testing.T) {
	work := setup(t)

	stdin := "todo read book\ndeadline return book /by June 6th\nlist\nmark 1\ndelete 2\nbye\n"
	r := runCLI(t, stdin, "-history=false")
	if r.err != nil {
		t.Fatalf("run: %v", r.err)
	}

	for _, want := range []string{
		"Hello! I'm Monty",
		"Got it. I've added this task:",
		"Now you have 2 tasks in the list.",
		"1.[T][ ] read book",
		"2.[D][ ] return book (by: June 6th)",
		"Nice! I've marked this task as done:",
		"Noted. I've removed this task:",
		"Bye. Hope to see you again soon!",
	} {
		if !strings.Contains(r.out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	data, err := os.ReadFile(filepath.Join(work, "data", "tasks.txt"))
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	if string(data) != "T | 1 | read book\n" {
		t.Errorf("data file = %q", data)
	}
}

func TestRunFileShorthand(t *testing.T) {
	work := setup(t)
	path := filepath.Join(work, "mine.txt")
	writeTasks(t, path, "T | 0 | existing\n")

	r := runCLI(t, "list\n", "-history=false", "mine.txt")
	if r.err != nil {
		t.Fatalf("run: %v", r.err)
	}
	if !strings.Contains(r.out, "1.[T][ ] existing") {
		t.Errorf("output = %q", r.out)
	}
}

func TestRunLoadingError(t *testing.T) {
	work := setup(t)
	// A directory where the file should be cannot be read.
	if err := os.MkdirAll(filepath.Join(work, "data", "tasks.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	r := runCLI(t, "list\n", "-history=false")
	if r.err != nil {
		t.Fatalf("run: %v", r.err)
	}
	if !strings.Contains(r.out, "Error loading tasks from file. Starting with an empty task list.") {
		t.Errorf("loading error not shown: %q", r.out)
	}
	if !strings.Contains(r.out, "Your task list is empty.") {
		t.Errorf("list not empty: %q", r.out)
	}
}

func TestLsCommand(t *testing.T) {
	work := setup(t)
	writeTasks(t, filepath.Join(work, "data", "tasks.txt"),
		"T | 1 | read book\nD | 0 | return book | June 6th\nE | 0 | meeting | 2pm | 4pm\n")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"all", nil, []string{"1.[T][X] read book", "2.[D][ ] return book", "3.[E][ ] meeting"}, nil},
		{"done", []string{"-done"}, []string{"1.[T][X] read book"}, []string{"return book"}},
		{"pending", []string{"-pending"}, []string{"2.[D]", "3.[E]"}, []string{"read book"}},
		{"kind", []string{"-kind", "event"}, []string{"3.[E][ ] meeting (from: 2pm to: 4pm)"}, []string{"[T]", "[D]"}},
		{"kind tag", []string{"-kind", "D"}, []string{"2.[D]"}, []string{"[E]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", append([]string{"ls"}, tt.args...)...)
			if r.err != nil {
				t.Fatalf("ls: %v", r.err)
			}
			for _, want := range tt.want {
				if !strings.Contains(r.out, want) {
					t.Errorf("missing %q in %q", want, r.out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(r.out, notWant) {
					t.Errorf("unexpected %q in %q", notWant, r.out)
				}
			}
		})
	}

	if r := runCLI(t, "", "ls", "-done", "-pending"); r.err == nil {
		t.Error("expected error for -done with -pending")
	}
	if r := runCLI(t, "", "ls", "-kind", "chore"); r.err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestLsEmpty(t *testing.T) {
	setup(t)
	r := runCLI(t, "", "ls")
	if r.err != nil || !strings.Contains(r.out, "No tasks.") {
		t.Errorf("ls on missing file: err=%v out=%q", r.err, r.out)
	}
}

func TestExportImport(t *testing.T) {
	work := setup(t)
	writeTasks(t, filepath.Join(work, "data", "tasks.txt"),
		"T | 1 | read book\nE | 0 | meeting | 2pm | 4pm\n")

	exported := filepath.Join(work, "tasks.json")
	if r := runCLI(t, "", "export", "-o", exported); r.err != nil {
		t.Fatalf("export: %v", r.err)
	}

	other := filepath.Join(work, "other.txt")
	writeTasks(t, other, "T | 0 | existing\n")

	r := runCLI(t, "", "import", exported, other)
	if r.err != nil {
		t.Fatalf("import: %v", r.err)
	}
	if !strings.Contains(r.out, "Imported 2 tasks. Now you have 3 tasks in the list.") {
		t.Errorf("import output = %q", r.out)
	}
	data, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	want := "T | 0 | existing\nT | 1 | read book\nE | 0 | meeting | 2pm | 4pm\n"
	if string(data) != want {
		t.Errorf("after import = %q, want %q", data, want)
	}

	if r := runCLI(t, "", "import", "-replace", exported, other); r.err != nil {
		t.Fatalf("import -replace: %v", r.err)
	}
	data, err = os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "T | 1 | read book\nE | 0 | meeting | 2pm | 4pm\n" {
		t.Errorf("after replace = %q", data)
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	work := setup(t)
	bad := filepath.Join(work, "bad.json")
	writeTasks(t, bad, `{"version": 1, "tasks": [{"type": "deadline", "description": "x", "done": false}]}`)

	r := runCLI(t, "", "import", bad)
	if r.err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(work, "data", "tasks.txt")); !os.IsNotExist(err) {
		t.Error("rejected import must not write the task file")
	}
	if r := runCLI(t, "", "import"); r.err == nil {
		t.Error("expected error without a file")
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		work := setup(t)
		writeTasks(t, filepath.Join(work, "data", "tasks.txt"), "T | 0 | ok\n")
		r := runCLI(t, "", "-log-dir", t.TempDir(), "doctor")
		if r.err != nil {
			t.Fatalf("doctor: %v\n%s", r.err, r.out)
		}
		if !strings.Contains(r.out, "1 tasks") || !strings.Contains(r.out, "All checks passed.") {
			t.Errorf("output = %q", r.out)
		}
	})

	t.Run("corrupt records", func(t *testing.T) {
		work := setup(t)
		writeTasks(t, filepath.Join(work, "data", "tasks.txt"), "T | 0 | ok\nX | 0 | bad\n")
		r := runCLI(t, "", "doctor", "-v")
		if r.err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(r.out, "1 corrupted records") || !strings.Contains(r.out, "line 2") {
			t.Errorf("output = %q", r.out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		setup(t)
		r := runCLI(t, "", "-history=false", "doctor")
		if r.err != nil || !strings.Contains(r.out, "Not created yet") {
			t.Errorf("err=%v out=%q", r.err, r.out)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	work := setup(t)
	writeTasks(t, filepath.Join(work, "monty.toml"), `store = "sqlite"`)
	t.Setenv("MONTY_LOG_LEVEL", "info")

	r := runCLI(t, "", "config")
	if r.err != nil {
		t.Fatalf("config: %v", r.err)
	}
	for _, want := range []string{"monty.toml", `"sqlite"`, "project file", "environment", "default"} {
		if !strings.Contains(r.out, want) {
			t.Errorf("config output missing %q:\n%s", want, r.out)
		}
	}

	r = runCLI(t, "", "config", "-example")
	if r.err != nil || !strings.Contains(r.out, "data_file") {
		t.Errorf("config -example: err=%v out=%q", r.err, r.out)
	}
}

func TestHistoryAndTail(t *testing.T) {
	setup(t)
	logDir := t.TempDir()

	if r := runCLI(t, "", "-log-dir", logDir, "history"); r.err != nil || !strings.Contains(r.out, "No sessions recorded.") {
		t.Fatalf("history before sessions: err=%v out=%q", r.err, r.out)
	}

	if r := runCLI(t, "todo read book\nbye\n", "-log-dir", logDir); r.err != nil {
		t.Fatalf("run: %v", r.err)
	}

	r := runCLI(t, "", "-log-dir", logDir, "history")
	if r.err != nil || !strings.Contains(r.out, "Sessions in") {
		t.Fatalf("history: err=%v out=%q", r.err, r.out)
	}

	r = runCLI(t, "", "-log-dir", logDir, "tail", "-n", "2")
	if r.err != nil {
		t.Fatalf("tail: %v", r.err)
	}
	lines := strings.Split(strings.TrimSpace(r.out), "\n")
	if len(lines) != 2 {
		t.Fatalf("tail -n 2 printed %d lines: %q", len(lines), r.out)
	}
	if !strings.Contains(lines[0], `"input":"bye"`) || !strings.Contains(lines[1], `"type":"session_end"`) {
		t.Errorf("tail lines = %q", lines)
	}
}

func TestImportRejectsMultilineText(t *testing.T) {
	work := setup(t)
	dataFile := filepath.Join(work, "data", "tasks.txt")
	writeTasks(t, dataFile, "T | 0 | existing\n")
	doc := filepath.Join(work, "multi.json")
	writeTasks(t, doc, `{"version": 1, "tasks": [{"type": "todo", "description": "line one\nline two", "done": false}]}`)

	r := runCLI(t, "", "import", doc)
	if r.err == nil || !strings.Contains(r.err.Error(), "tasks[0].description") {
		t.Fatalf("expected description error, got %v", r.err)
	}
	data, err := os.ReadFile(dataFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "T | 0 | existing\n" {
		t.Errorf("task file changed: %q", data)
	}
}
