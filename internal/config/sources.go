package config

import (
	"os"
	"path/filepath"

	"github.com/nibzard/monty-go/internal/montydir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range montydir.ProjectConfigCandidates("") {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// userConfigCandidates lists user-level config locations in lookup order:
// ~/.monty/monty.toml, then monty/monty.toml under the OS config directory.
func userConfigCandidates() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, montydir.UserDir, montydir.DefaultConfigFile))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, montydir.AppName, montydir.DefaultConfigFile))
	}
	return paths
}

func findUserConfigFile() string {
	for _, path := range userConfigCandidates() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.Store = DefaultStore
	cfg.LogDir = DefaultLogDir
	cfg.History = DefaultHistory
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}
