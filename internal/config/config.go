package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultServerURL     = "http://localhost:8080"
	DefaultCellWidth     = 10 // Pixels per terminal column
	DefaultCellHeight    = 20 // Pixels per terminal row
	DefaultPageCacheSize = 64
	DefaultReportTimeout = 10 // Seconds
	configFileName       = "config.json"
	configDirName        = "tome-t"
	stateDBName          = "state.db"
	logFileName          = "tome-t.log"
)

// Config holds the application configuration
type Config struct {
	ServerURL     string `json:"server_url"`
	CellWidth     int    `json:"cell_width,omitempty"`
	CellHeight    int    `json:"cell_height,omitempty"`
	PageCacheSize int    `json:"page_cache_size,omitempty"`
	ReportTimeout int    `json:"report_timeout_seconds,omitempty"`
	Theme         string `json:"theme,omitempty"`
	StateDB       string `json:"state_db,omitempty"`

	// Path to config file (not persisted)
	path string `json:"-"`
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from an explicit path
func LoadFrom(configPath string) (*Config, error) {
	cfg := &Config{
		ServerURL: DefaultServerURL,
		path:      configPath,
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		// Config doesn't exist, return defaults
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	cfg.path = configPath
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by an older or partial config file
func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.CellWidth <= 0 {
		c.CellWidth = DefaultCellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = DefaultCellHeight
	}
	if c.PageCacheSize <= 0 {
		c.PageCacheSize = DefaultPageCacheSize
	}
	if c.ReportTimeout <= 0 {
		c.ReportTimeout = DefaultReportTimeout
	}
	if c.StateDB == "" {
		c.StateDB = filepath.Join(filepath.Dir(c.path), stateDBName)
	}
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// SetServerURL updates the server URL and saves
func (c *Config) SetServerURL(url string) error {
	c.ServerURL = url
	return c.Save()
}

// SetTheme updates the theme and saves
func (c *Config) SetTheme(name string) error {
	c.Theme = name
	return c.Save()
}

// Path returns the config file location
func (c *Config) Path() string {
	return c.path
}

// LogPath returns the log file location, next to the config file
func (c *Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.path), logFileName)
}

// ReportTimeoutDuration returns the per-call timeout for progress reports
func (c *Config) ReportTimeoutDuration() time.Duration {
	return time.Duration(c.ReportTimeout) * time.Second
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}
