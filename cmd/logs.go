package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nibzard/monty-go/internal/logging"
)

func historyDir(e *env) (string, error) {
	cfg := e.cfg.Config
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.DataFile)
	if err != nil {
		return "", fmt.Errorf("finding history directory: %w", err)
	}
	return logDir, nil
}

// tailCommand prints the latest session history.
func tailCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("monty tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the history (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the history (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}

	logDir, err := historyDir(e)
	if err != nil {
		return err
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest session: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(e.out, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(e.errOut, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(e.errOut, "(Ctrl+C to stop)")
	}

	return logging.TailLog(ctx, e.out, logPath, *n, *follow)
}

// historyCommand lists recorded sessions, newest first.
func historyCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("monty history", flag.ContinueOnError)
	if err := parseFileArg(e, fs, args); err != nil {
		return err
	}

	logDir, err := historyDir(e)
	if err != nil {
		return err
	}
	sessions, err := logging.FindSessions(logDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(e.out, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(e.out, "Sessions in %s:\n", logDir)
	for _, s := range sessions {
		fmt.Fprintf(e.out, "  %s  %s  %d bytes\n", s.Name, s.ModTime.Local().Format(time.DateTime), s.Size)
	}
	return nil
}
