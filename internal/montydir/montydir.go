// Package montydir provides constants and helpers for where monty keeps its
// files.
package montydir

import "path/filepath"

const (
	// Dir is the data directory, relative to the project root.
	Dir = "data"

	// DefaultDataFile is the task file name inside Dir.
	DefaultDataFile = "tasks.txt"

	// DefaultSQLiteFile is the database file name inside Dir.
	DefaultSQLiteFile = "tasks.db"

	// DefaultConfigFile is the project config file name.
	DefaultConfigFile = "monty.toml"

	// HiddenConfigFile is the alternative, dot-prefixed project config file.
	HiddenConfigFile = ".monty.toml"

	// UserDir is the per-user directory under the home directory.
	UserDir = ".monty"

	// AppName names the per-user directory under the OS config dir.
	AppName = "monty"
)

// DataPath returns the default task file path within a work directory.
func DataPath(workDir string) string {
	return joinPath(workDir, DefaultDataFile)
}

// SQLitePath returns the default database path within a work directory.
func SQLitePath(workDir string) string {
	return joinPath(workDir, DefaultSQLiteFile)
}

// DirPath returns the data directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// ProjectConfigCandidates lists project config file paths in lookup order.
func ProjectConfigCandidates(workDir string) []string {
	names := []string{DefaultConfigFile, HiddenConfigFile}
	if workDir == "." || workDir == "" {
		return names
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(workDir, name)
	}
	return paths
}

func joinPath(workDir, file string) string {
	return filepath.Join(DirPath(workDir), file)
}
