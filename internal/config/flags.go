package config

import "flag"

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"data":           "data_file",
	"store":          "store",
	"log-dir":        "log_dir",
	"history":        "history",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args and records which
// flags were set. Flag defaults are the values loaded so far, so unset flags
// leave cfg unchanged.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("monty", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the task file")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend (file, sqlite)")

	// History
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Session history directory")
	fs.BoolVar(&cfg.History, "history", cfg.History, "Record session history")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
