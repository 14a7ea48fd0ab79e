package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/monty-go/internal/export"
	"github.com/nibzard/monty-go/internal/logging"
	"github.com/nibzard/monty-go/internal/storage"
	"github.com/nibzard/monty-go/internal/todo"
)

// loadTasks opens the configured store and loads it. Unlike a session, a
// failed load is an error here.
func loadTasks(e *env) (storage.Store, []*todo.Task, error) {
	cfg := e.cfg.Config
	store, err := storage.Open(cfg.Store, cfg.DataFile, e.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	tasks, err := store.Load()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading tasks: %w", err)
	}
	return store, tasks, nil
}

// lsCommand prints the saved tasks with their list numbers.
func lsCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty ls", flag.ContinueOnError)
	done := fs.Bool("done", false, "Only completed tasks")
	pending := fs.Bool("pending", false, "Only open tasks")
	kindName := fs.String("kind", "", "Only tasks of this kind (todo|deadline|event)")
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}
	if *done && *pending {
		return fmt.Errorf("-done and -pending are mutually exclusive")
	}

	var kind todo.Kind
	if *kindName != "" {
		k, ok := kindByName(*kindName)
		if !ok {
			return fmt.Errorf("unknown kind %q (expected todo|deadline|event)", *kindName)
		}
		kind = k
	}

	store, tasks, err := loadTasks(e)
	if err != nil {
		return err
	}
	defer store.Close()

	shown := 0
	for i, t := range tasks {
		if *done && !t.IsDone() || *pending && t.IsDone() {
			continue
		}
		if kind != "" && t.Kind() != kind {
			continue
		}
		// Numbers match the session so they can be used with mark/delete.
		fmt.Fprintf(e.out, "%d.%s\n", i+1, t)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(e.out, "No tasks.")
	}
	return nil
}

func kindByName(name string) (todo.Kind, bool) {
	for _, k := range []todo.Kind{todo.KindToDo, todo.KindDeadline, todo.KindEvent} {
		if k.Name() == name {
			return k, true
		}
	}
	return todo.ParseKind(name)
}

// doctorCommand checks the configuration, the task store and the history
// directory.
func doctorCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "List every corrupted record")
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}
	cfg := e.cfg.Config
	w := e.out

	fmt.Fprintln(w, "Monty Doctor")
	fmt.Fprintln(w, "============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config:")
	if file := e.cfg.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "  ✅ Config file: %s\n", file)
	} else {
		fmt.Fprintln(w, "  ✅ Config file: none (defaults)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ Store: %s\n", cfg.Store)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Task file: %s\n", cfg.DataFile)
	if !checkTaskFile(e, *verbose) {
		allOK = false
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "History:")
	if !cfg.History {
		fmt.Fprintln(w, "  ✅ Disabled")
	} else if logDir, err := logging.FindLogDir(cfg.LogDir, cfg.DataFile); err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		allOK = false
	} else {
		sessions, err := logging.FindSessions(logDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintf(w, "  ✅ %s (no sessions yet)\n", logDir)
		case err != nil:
			fmt.Fprintf(w, "  ❌ %v\n", err)
			allOK = false
		default:
			fmt.Fprintf(w, "  ✅ %s (%d sessions)\n", logDir, len(sessions))
		}
	}
	fmt.Fprintln(w)

	if !allOK {
		fmt.Fprintln(w, "Some checks failed.")
		return fmt.Errorf("doctor checks failed")
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

func checkTaskFile(e *env, verbose bool) bool {
	cfg := e.cfg.Config
	w := e.out

	if cfg.Store == storage.BackendFile {
		if _, err := os.Stat(cfg.DataFile); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(w, "  ✅ Not created yet (starts empty)")
			return true
		}
		// Corrupt lines are reported here instead of logged.
		tasks, skipped, err := storage.NewFileStore(cfg.DataFile, nil).LoadWithReport()
		if err != nil {
			fmt.Fprintf(w, "  ❌ %v\n", err)
			return false
		}
		fmt.Fprintf(w, "  ✅ %d tasks\n", len(tasks))
		if len(skipped) == 0 {
			return true
		}
		fmt.Fprintf(w, "  ❌ %d corrupted records will be skipped\n", len(skipped))
		if verbose {
			for _, s := range skipped {
				fmt.Fprintf(w, "     %v\n", s)
			}
		}
		return false
	}

	store, tasks, err := loadTasks(e)
	if err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		return false
	}
	defer store.Close()
	fmt.Fprintf(w, "  ✅ %d tasks\n", len(tasks))
	return true
}

// exportCommand writes the saved tasks as a JSON document.
func exportCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty export", flag.ContinueOnError)
	output := fs.String("o", "", "Write the export to a file instead of stdout")
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}

	store, tasks, err := loadTasks(e)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot := make([]todo.Task, len(tasks))
	for i, t := range tasks {
		snapshot[i] = *t
	}

	var w io.Writer = e.out
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, snapshot); err != nil {
		return err
	}
	if *output != "" {
		fmt.Fprintf(e.errOut, "Exported %d tasks to %s\n", len(tasks), *output)
	}
	return nil
}

// importCommand adds the tasks of a JSON export to the saved list.
func importCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty import", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	replace := fs.Bool("replace", false, "Replace the saved list instead of appending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return fmt.Errorf("import requires a JSON file")
	}
	if len(remaining) > 2 {
		return fmt.Errorf("unexpected arguments: %v", remaining[2:])
	}
	if len(remaining) == 2 {
		e.cfg.SetDataFile(remaining[1])
	}

	f, err := os.Open(remaining[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	imported, err := export.Read(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", remaining[0], err)
	}

	store, tasks, err := loadTasks(e)
	if err != nil {
		return err
	}
	defer store.Close()

	if *replace {
		tasks = nil
	}
	tasks = append(tasks, imported...)
	if err := store.Save(tasks); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}

	fmt.Fprintf(e.out, "Imported %d tasks. Now you have %d tasks in the list.\n", len(imported), len(tasks))
	return nil
}
