// Package config provides configuration for draftsync. Values come from
// environment variables with sensible defaults, plus a small JSON
// settings file that remembers last-used paths between runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultPort    = 8765
	DefaultDataDir = ".draftsync"

	// Environment variable names
	EnvPort        = "DRAFTSYNC_PORT"
	EnvDataDir     = "DRAFTSYNC_DATA_DIR"
	EnvProjectsDir = "DRAFTSYNC_PROJECTS_DIR"

	// Settings filename inside the data dir
	settingsFilename = "settings.json"
)

// Version information (set at build time via ldflags)
var Version = "0.1.0"

// Config holds the resolved runtime configuration.
type Config struct {
	port        int
	dataDir     string
	projectsDir string
}

// New builds a Config from defaults and environment overrides.
func New() (*Config, error) {
	cfg := &Config{
		port:    DefaultPort,
		dataDir: defaultDataDir(),
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: %d out of range", EnvPort, port)
		}
		cfg.port = port
	}
	if d := os.Getenv(EnvDataDir); d != "" {
		cfg.dataDir = d
	}
	if d := os.Getenv(EnvProjectsDir); d != "" {
		cfg.projectsDir = d
	}

	return cfg, nil
}

// Port is the local HTTP API port.
func (c *Config) Port() int { return c.port }

// DataDir is where settings (and future state) live.
func (c *Config) DataDir() string { return c.dataDir }

// ProjectsDir is an explicit override of the editor's projects folder;
// empty means auto-detect.
func (c *Config) ProjectsDir() string { return c.projectsDir }

// SettingsPath is the location of the persisted settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.dataDir, settingsFilename)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Settings are the values remembered between runs for the host UI.
type Settings struct {
	LastProjectPath string   `json:"lastProjectPath,omitempty"`
	LastSrtPath     string   `json:"lastSrtPath,omitempty"`
	SrtFolders      []string `json:"srtFolders,omitempty"`
}

// LoadSettings reads the settings file; a missing file yields zero-value
// settings.
func (c *Config) LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

// SaveSettings persists the settings, creating the data dir when needed.
func (c *Config) SaveSettings(s *Settings) error {
	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.SettingsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
