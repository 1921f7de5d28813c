// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for seraa.
//
// Configuration lives at ~/.seraa/config.toml, with sensible defaults and
// environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete seraa configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration
	API APIConfig `toml:"api"`

	// Prompt configuration
	Prompt PromptConfig `toml:"prompt"`

	// Memory configuration
	Memory MemoryConfig `toml:"memory"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains generation API settings.
type APIConfig struct {
	// BaseURL is the generation API endpoint base
	BaseURL string `toml:"base_url"`
	// Model is the generation model name
	Model string `toml:"model"`
	// TimeoutSecs is the timeout for non-streaming requests
	TimeoutSecs int `toml:"timeout_secs"`
	// StreamTimeoutSecs is the timeout for establishing streaming connections
	StreamTimeoutSecs int `toml:"stream_timeout_secs"`
	// RequestsPerMinute caps outgoing generation calls (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// PromptConfig controls prompt assembly.
type PromptConfig struct {
	// TimeZone is the IANA zone used for the prompt's current-time header
	TimeZone string `toml:"time_zone"`
	// TimeZoneLabel is the abbreviation appended to the header, e.g. "WIB"
	TimeZoneLabel string `toml:"time_zone_label"`
}

// MemoryConfig controls the reflection ("remember") operation.
type MemoryConfig struct {
	// ReflectionWindow is how many recent interactions feed a reflection
	ReflectionWindow int `toml:"reflection_window"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// ShowTimestamps displays message times in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-1.5-flash-latest",
			TimeoutSecs:       60,
			StreamTimeoutSecs: 10,
			RequestsPerMinute: 30,
		},
		Prompt: PromptConfig{
			TimeZone:      "Asia/Jakarta",
			TimeZoneLabel: "WIB",
		},
		Memory: MemoryConfig{
			ReflectionWindow: 10,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the seraa configuration directory (~/.seraa).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".seraa"), nil
}

// Path returns the config file path (~/.seraa/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir creates the configuration directory if needed.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from ~/.seraa/config.toml, falling back to
// defaults when absent. Environment overrides are applied last, then the
// result is validated.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path. A missing file
// is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.seraa/config.toml with owner-only
// permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to an explicit file path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# seraa configuration file")
	fmt.Fprintln(file, "# Generated by seraa - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SERAA_MODEL: overrides api.model
//   - SERAA_API_BASE_URL: overrides api.base_url
//   - SERAA_TIMEZONE: overrides prompt.time_zone
//   - SERAA_TIMEZONE_LABEL: overrides prompt.time_zone_label
//   - SERAA_THEME: overrides ui.theme
//   - SERAA_REQUESTS_PER_MINUTE: overrides api.requests_per_minute
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("SERAA_MODEL"); model != "" {
		c.API.Model = model
	}
	if base := os.Getenv("SERAA_API_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if tz := os.Getenv("SERAA_TIMEZONE"); tz != "" {
		c.Prompt.TimeZone = tz
	}
	if label := os.Getenv("SERAA_TIMEZONE_LABEL"); label != "" {
		c.Prompt.TimeZoneLabel = label
	}
	if theme := os.Getenv("SERAA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if rpm := os.Getenv("SERAA_REQUESTS_PER_MINUTE"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil && n >= 0 {
			c.API.RequestsPerMinute = n
		}
	}
}

// fillDefaults replaces zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.Model == "" {
		c.API.Model = def.API.Model
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.API.StreamTimeoutSecs <= 0 {
		c.API.StreamTimeoutSecs = def.API.StreamTimeoutSecs
	}
	if c.Prompt.TimeZone == "" {
		c.Prompt.TimeZone = def.Prompt.TimeZone
	}
	if c.Prompt.TimeZoneLabel == "" {
		c.Prompt.TimeZoneLabel = def.Prompt.TimeZoneLabel
	}
	if c.Memory.ReflectionWindow <= 0 {
		c.Memory.ReflectionWindow = def.Memory.ReflectionWindow
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme %q must be http or https", u.Scheme)
	}
	if strings.TrimSpace(c.API.Model) == "" {
		return fmt.Errorf("api.model must not be empty")
	}
	if _, err := time.LoadLocation(c.Prompt.TimeZone); err != nil {
		return fmt.Errorf("prompt.time_zone %q is not a valid IANA zone: %w", c.Prompt.TimeZone, err)
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q must be \"dark\" or \"light\"", c.UI.Theme)
	}
	return nil
}

// Timeout returns the non-streaming request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// StreamTimeout returns the streaming connection timeout as a duration.
func (c *Config) StreamTimeout() time.Duration {
	return time.Duration(c.API.StreamTimeoutSecs) * time.Second
}
