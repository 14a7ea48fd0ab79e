// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.monty/monty.toml or OS-specific config directory)
// 3. Project config file (monty.toml or .monty.toml in the working directory)
// 4. Environment variables (MONTY_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.monty/monty.toml (preferred)
// - Windows: %APPDATA%\monty\monty.toml
// - macOS: ~/Library/Application Support/monty/monty.toml
// - Linux/BSD: $XDG_CONFIG_HOME/monty/monty.toml or ~/.config/monty/monty.toml
package config
