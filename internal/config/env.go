package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvDataFile      = "MONTY_DATA_FILE"
	EnvStore         = "MONTY_STORE"
	EnvLogDir        = "MONTY_LOG_DIR"
	EnvHistory       = "MONTY_HISTORY"
	EnvLogLevel      = "MONTY_LOG_LEVEL"
	EnvLogFormat     = "MONTY_LOG_FORMAT"
	EnvLogTimestamps = "MONTY_LOG_TIMESTAMPS"
	EnvLogCaller     = "MONTY_LOG_CALLER"
)

// loadFromEnv overrides config from MONTY_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(env, field string, target *bool) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		b, err := boolFromString(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*target = b
		sources[field] = SourceEnv
		return nil
	}

	setString(EnvDataFile, "data_file", &cfg.DataFile)
	setString(EnvStore, "store", &cfg.Store)
	setString(EnvLogDir, "log_dir", &cfg.LogDir)
	setString(EnvLogLevel, "log_level", &cfg.LogLevel)
	setString(EnvLogFormat, "log_format", &cfg.LogFormat)

	if err := setBool(EnvHistory, "history", &cfg.History); err != nil {
		return err
	}
	if err := setBool(EnvLogTimestamps, "log_timestamps", &cfg.LogTimestamps); err != nil {
		return err
	}
	return setBool(EnvLogCaller, "log_caller", &cfg.LogCaller)
}

// boolFromString accepts strconv booleans plus yes/no and on/off.
func boolFromString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
