// Package cmd implements the CLI command structure for monty.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/monty-go/internal/config"
	"github.com/nibzard/monty-go/internal/logging"
	"github.com/nibzard/monty-go/internal/loop"
	"github.com/nibzard/monty-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// env bundles the streams and settings a subcommand runs with.
type env struct {
	cfg    *config.ConfigWithSources
	logger *log.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Run executes the monty CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("monty", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		printUsage(fs, errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, out)
		return nil
	}
	if *showVersion {
		return versionCommand(out)
	}

	cfg := cws.Config
	e := &env{
		cfg:    cws,
		logger: logging.NewConsoleLoggerFromConfig(errOut, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
		in:     in,
		out:    out,
		errOut: errOut,
	}

	// No args or a leading flag means "run".
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return runCommand(ctx, e, remainingArgs)
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "ls":
		return lsCommand(e, remainingArgs)
	case "doctor":
		return doctorCommand(e, remainingArgs)
	case "export":
		return exportCommand(e, remainingArgs)
	case "import":
		return importCommand(e, remainingArgs)
	case "tail":
		return tailCommand(ctx, e, remainingArgs)
	case "history":
		return historyCommand(e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "version":
		return versionCommand(out)
	case "help":
		printUsage(fs, out)
		return nil
	default:
		// An existing file is shorthand for "run <file>".
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			return runCommand(ctx, e, append([]string{subcommand}, remainingArgs...))
		}
		fmt.Fprintf(errOut, "Unknown command: %s\n", subcommand)
		printUsage(fs, errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// parseFileArg parses subcommand flags and applies an optional trailing task
// file argument.
func parseFileArg(e *env, fs *flag.FlagSet, args []string) error {
	fs.SetOutput(e.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		e.cfg.SetDataFile(remaining[0])
	}
	return nil
}

func newLoop(e *env) (*loop.Loop, error) {
	l, err := loop.New(e.cfg.Config, loop.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("initializing session: %w", err)
	}
	return l, nil
}

// runCommand runs a session over stdin.
func runCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("monty run", flag.ContinueOnError)
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}

	l, err := newLoop(e)
	if err != nil {
		return err
	}
	defer l.Close()

	return l.Run(ctx, e.in, ui.NewConsoleRenderer(e.out))
}

// tuiCommand runs a session in the terminal UI.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("monty tui", flag.ContinueOnError)
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}

	l, err := newLoop(e)
	if err != nil {
		return err
	}
	defer l.Close()

	return ui.RunTUI(ctx, l)
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty config", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *example {
		fmt.Fprint(e.out, config.ExampleConfig())
		return nil
	}

	if file := e.cfg.GetConfigFile(); file != "" {
		fmt.Fprintf(e.out, "# config files: %s\n", strings.Join(e.cfg.Files, ", "))
	} else {
		fmt.Fprintln(e.out, "# no config file found")
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(e.out, "%-15s = %-40q # %s\n", field, e.cfg.Config.Value(field), e.cfg.Sources[field])
	}
	return nil
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "monty version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Monty - a line-oriented task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  monty [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run [file]             Start a session reading commands from stdin (default)")
	fmt.Fprintln(w, "  tui [file]             Start a session in the terminal UI")
	fmt.Fprintln(w, "  ls [file]              List saved tasks")
	fmt.Fprintln(w, "  doctor [file]          Check config, task file and history")
	fmt.Fprintln(w, "  export [file]          Write tasks as JSON")
	fmt.Fprintln(w, "  import <json> [file]   Add tasks from a JSON export")
	fmt.Fprintln(w, "  tail                   Show the latest session history")
	fmt.Fprintln(w, "  history                List recorded sessions")
	fmt.Fprintln(w, "  config                 Show effective configuration")
	fmt.Fprintln(w, "  version                Show version information")
	fmt.Fprintln(w, "  help                   Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session commands:")
	fmt.Fprintln(w, "  todo <description>")
	fmt.Fprintln(w, "  deadline <description> /by <when>")
	fmt.Fprintln(w, "  event <description> /from <start> /to <end>")
	fmt.Fprintln(w, "  list | mark <n> | unmark <n> | delete <n> | find <keyword> | bye")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -done      Only completed tasks")
	fmt.Fprintln(w, "  -pending   Only open tasks")
	fmt.Fprintln(w, "  -kind string")
	fmt.Fprintln(w, "        Only tasks of this kind (todo|deadline|event)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options:")
	fmt.Fprintln(w, "  -v    List every corrupted record")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export / Import Options:")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write the export to a file instead of stdout")
	fmt.Fprintln(w, "  -replace")
	fmt.Fprintln(w, "        Replace the saved list instead of appending")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, -follow")
	fmt.Fprintln(w, "        Follow the history (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
