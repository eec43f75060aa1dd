// Package config provides configuration management for the pcetile server.
//
// Configuration is loaded exclusively from a JSON file at
// ~/.config/pcetile/config.json. No environment variables or
// auto-discovery mechanisms are used - all values must be explicitly
// configured or fall back to their documented defaults.
//
// Example config file:
//
//	{
//	  "temp_dir": "/tmp/pcetile",
//	  "timeout": 30,
//	  "log_level": "info",
//	  "log_file": "",
//	  "default_background_color": "#000000",
//	  "default_vram_base": 0,
//	  "default_bat_width": 32,
//	  "default_bat_height": 32
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ochrefield/pcetile/internal/colorops"
)

// Config holds the pcetile server configuration.
//
// All fields fall back to a documented default if unset in the config
// file:
//   - TempDir defaults to the OS temp dir + "pcetile"
//   - Timeout defaults to 30 seconds
//   - LogLevel defaults to "info"
//   - LogFile defaults to empty
//   - DefaultBackgroundColor defaults to "#000000"
//   - DefaultVRAMBase defaults to 0
//   - DefaultBATWidth/Height default to 32
type Config struct {
	// TempDir is a scratch directory; Load creates it and Validate checks
	// that it is writable.
	TempDir string `json:"temp_dir"`

	// Timeout is read from the config file and must be positive. No tool
	// applies it as a deadline on run_conversion.
	Timeout time.Duration `json:"timeout"`

	// LogLevel is the logging verbosity level.
	// Valid values: "debug", "info", "warn", "error"
	LogLevel string `json:"log_level"`

	// LogFile is read from the config file but not used: the logger built
	// in cmd/pcetile writes only to its console sink and opens no file.
	LogFile string `json:"log_file"`

	// DefaultBackgroundColor seeds run_conversion's background_color when
	// the caller doesn't supply one.
	DefaultBackgroundColor string `json:"default_background_color"`

	// DefaultVRAMBase is read from the config file. export_plain_text and
	// export_binaries do not read it; they use the caller's vram_base as
	// given.
	DefaultVRAMBase int `json:"default_vram_base"`

	// DefaultBATWidth/Height are read from the config file and must be
	// positive. The export tools do not read them; they use the caller's
	// bat_w/bat_h as given.
	DefaultBATWidth  int `json:"default_bat_width"`
	DefaultBATHeight int `json:"default_bat_height"`

	// EnableTiming enables per-request-ID timing logs for every registered
	// MCP tool call.
	EnableTiming bool `json:"enable_timing"`
}

// Default configuration values applied when fields are not specified in
// the config file.
const (
	DefaultTimeout                = 30 * time.Second
	DefaultLogLevel               = "info"
	DefaultBackgroundColorDefault = "#000000"
	DefaultBATWidthDefault        = 32
	DefaultBATHeightDefault       = 32
)

// Load loads configuration from the default config file at
// ~/.config/pcetile/config.json, filling unset fields with defaults. A
// missing config file is not an error: an all-defaults Config is returned.
func Load() (*Config, error) {
	cfg := &Config{
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
	}

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configJSON is a temporary struct for unmarshaling JSON with timeout as
// an int (seconds).
type configJSON struct {
	TempDir                string `json:"temp_dir"`
	Timeout                int    `json:"timeout"`
	LogLevel               string `json:"log_level"`
	LogFile                string `json:"log_file"`
	DefaultBackgroundColor string `json:"default_background_color"`
	DefaultVRAMBase        int    `json:"default_vram_base"`
	DefaultBATWidth        int    `json:"default_bat_width"`
	DefaultBATHeight       int    `json:"default_bat_height"`
	EnableTiming           bool   `json:"enable_timing"`
}

// loadFromFile loads configuration from the default config file location.
func (c *Config) loadFromFile() error {
	configPath := getConfigFilePath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cj configJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}

	c.TempDir = cj.TempDir
	if cj.Timeout > 0 {
		c.Timeout = time.Duration(cj.Timeout) * time.Second
	}
	c.LogLevel = cj.LogLevel
	c.LogFile = cj.LogFile
	c.DefaultBackgroundColor = cj.DefaultBackgroundColor
	c.DefaultVRAMBase = cj.DefaultVRAMBase
	c.DefaultBATWidth = cj.DefaultBATWidth
	c.DefaultBATHeight = cj.DefaultBATHeight
	c.EnableTiming = cj.EnableTiming

	return nil
}

// setDefaults fills in any unset configuration fields and creates the
// temp directory if it doesn't exist.
func (c *Config) setDefaults() error {
	if c.TempDir == "" {
		c.TempDir = filepath.Join(os.TempDir(), "pcetile")
	}
	if err := os.MkdirAll(c.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DefaultBackgroundColor == "" {
		c.DefaultBackgroundColor = DefaultBackgroundColorDefault
	}
	if c.DefaultBATWidth == 0 {
		c.DefaultBATWidth = DefaultBATWidthDefault
	}
	if c.DefaultBATHeight == 0 {
		c.DefaultBATHeight = DefaultBATHeightDefault
	}

	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	testFile := filepath.Join(c.TempDir, ".test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("temp directory is not writable: %w", err)
	}
	os.Remove(testFile)

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	if _, _, _, err := colorops.Parse(c.DefaultBackgroundColor); err != nil {
		return fmt.Errorf("invalid default_background_color: %w", err)
	}

	if c.DefaultBATWidth <= 0 || c.DefaultBATHeight <= 0 {
		return fmt.Errorf("default_bat_width/height must be positive, got %dx%d", c.DefaultBATWidth, c.DefaultBATHeight)
	}

	return nil
}

// getConfigFilePath is a function variable that returns the default
// config file path. Can be overridden in tests.
var getConfigFilePath = func() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "pcetile", "config.json")
}
