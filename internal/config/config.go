// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for jobdeck.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides, loaded from ~/.jobdeck/config.toml. A file watcher is available
// for picking up edits while the TUI is running.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values.
const (
	DefaultServerURL    = "http://localhost:8000"
	DefaultTimeoutSecs  = 30
	DefaultCookieName   = "sessionid"
	DefaultSidebarWidth = 28
)

// ErrInvalidServerURL indicates the configured base URL does not parse.
var ErrInvalidServerURL = errors.New("invalid server base URL")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete jobdeck configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`
}

// ServerConfig holds the backend connection settings.
type ServerConfig struct {
	// BaseURL is the JobDeck backend base URL.
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSecs is the timeout for non-streaming requests.
	// Response streams are unbounded and never subject to this timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// SessionCookieName is the name of the backend's auth cookie.
	SessionCookieName string `toml:"session_cookie_name"`
	// SessionCookie is the ambient credential sent on every request.
	SessionCookie string `toml:"session_cookie"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Enabled turns file logging on or off.
	Enabled bool `toml:"enabled"`
	// Path is the log file path (empty = ~/.jobdeck/jobdeck.log).
	Path string `toml:"path"`
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// UIConfig holds display settings.
type UIConfig struct {
	// SidebarWidth is the width of the session list sidebar in columns.
	SidebarWidth int `toml:"sidebar_width"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:            DefaultServerURL,
			RequestTimeoutSecs: DefaultTimeoutSecs,
			SessionCookieName:  DefaultCookieName,
		},
		Log: LogConfig{
			Enabled: true,
			Level:   "info",
		},
		UI: UIConfig{
			SidebarWidth: DefaultSidebarWidth,
		},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jobdeck", "config.toml")
}

// Load reads the configuration from path, applies environment overrides, and
// validates the result. A missing file is not an error: defaults plus
// overrides are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides applies JOBDECK_* environment variables over the file
// values. Environment wins so a cookie never has to be written to disk.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOBDECK_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("JOBDECK_SESSION_COOKIE"); v != "" {
		cfg.Server.SessionCookie = v
	}
	if v := os.Getenv("JOBDECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the configuration for usable values, clamping where a
// default is safer than a failure.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerURL, c.Server.BaseURL)
	}

	if c.Server.RequestTimeoutSecs <= 0 {
		c.Server.RequestTimeoutSecs = DefaultTimeoutSecs
	}
	if c.Server.SessionCookieName == "" {
		c.Server.SessionCookieName = DefaultCookieName
	}
	if c.UI.SidebarWidth < 16 {
		c.UI.SidebarWidth = DefaultSidebarWidth
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Log.Level = "info"
	}
	return nil
}

// RequestTimeout returns the non-streaming request timeout as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// LogPath returns the configured log file path, or the default next to the
// config file.
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "jobdeck.log"
	}
	return filepath.Join(home, ".jobdeck", "jobdeck.log")
}
