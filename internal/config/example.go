package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# monty configuration file
# Values can be overridden by MONTY_* environment variables or CLI flags

# Task file (relative to the working directory; ~ and $VAR are expanded)
data_file = "data/tasks.txt"

# Storage backend: "file" (one task per line) or "sqlite".
# Without data_file, sqlite uses data/tasks.db.
store = "file"

# Session history directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.monty"

# Record every command of a session as JSON lines
history = true

# Diagnostic logging on stderr
log_level = "warn"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
