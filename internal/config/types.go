package config

import (
	"fmt"
	"strings"

	"github.com/nibzard/monty-go/internal/montydir"
	"github.com/nibzard/monty-go/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
	SourceArg      ConfigSource = "argument"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultDataFile  = montydir.Dir + "/" + montydir.DefaultDataFile
	DefaultStore     = storage.BackendFile
	DefaultLogDir    = "~/" + montydir.UserDir
	DefaultHistory   = true
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for monty.
type Config struct {
	// Storage
	DataFile string `toml:"data_file"`
	Store    string `toml:"store"`

	// Session history
	LogDir  string `toml:"log_dir"`
	History bool   `toml:"history"`

	// Diagnostic logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Computed
	ProjectRoot string `toml:"-"`
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Store {
	case storage.BackendFile, storage.BackendSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, storage.BackendFile, storage.BackendSQLite)
	}
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("data_file is empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// SetDataFile points the config at a task file given on the command line.
func (cws *ConfigWithSources) SetDataFile(path string) {
	cws.Config.DataFile = resolveDataFile(cws.Config.ProjectRoot, expandPath(path))
	cws.Sources["data_file"] = SourceArg
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// configFields returns the configurable field names for source tracking.
// The names match the TOML keys.
func configFields() []string {
	return []string{
		"data_file",
		"store",
		"log_dir",
		"history",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the display form of a field.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "store":
		return c.Store
	case "log_dir":
		return c.LogDir
	case "history":
		return fmt.Sprint(c.History)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	default:
		return ""
	}
}
