package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"jarvis-chat/internal/transcript"
)

// DefaultPath is where the config file is looked up when none is given
const DefaultPath = "~/.jarvis/config.toml"

// Config holds all application configuration
type Config struct {
	// Backend settings
	BackendURL         string `toml:"backend_url"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`

	// Session settings
	Greeting string `toml:"greeting"`

	// Logging settings
	LogFile string `toml:"log_file"`
	Verbose bool   `toml:"verbose"`

	// Display settings
	Plain       bool   `toml:"plain"`
	DownloadDir string `toml:"download_dir"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		// Backend defaults
		BackendURL:         "http://localhost:8000",
		RequestTimeoutSecs: 0, // no timeout, a hung call stays busy

		// Session defaults
		Greeting: transcript.DefaultGreeting,

		// Logging defaults
		LogFile: expandHome("~/.jarvis/jarvis.log"),
		Verbose: false,

		// Display defaults
		Plain:       false,
		DownloadDir: ".",
	}
}

// Load reads the TOML file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultPath
	}
	path = expandHome(path)

	if _, err := os.Stat(path); err == nil {
		if err := cfg.LoadTOML(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadTOML decodes a TOML file into the configuration
func (c *Config) LoadTOML(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	c.LogFile = expandHome(c.LogFile)
	c.DownloadDir = expandHome(c.DownloadDir)
	return nil
}

// ApplyEnvOverrides applies JARVIS_* environment variables
func (c *Config) ApplyEnvOverrides() error {
	if v := GetEnv("JARVIS_URL"); v != "" {
		c.BackendURL = v
	}
	if v := GetEnv("JARVIS_LOG_FILE"); v != "" {
		c.LogFile = expandHome(v)
	}
	if v := GetEnv("JARVIS_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JARVIS_TIMEOUT must be a number of seconds: %w", err)
		}
		c.RequestTimeoutSecs = secs
	}
	return nil
}

// RequestTimeout returns the HTTP timeout, zero meaning none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL must be http or https, got %q", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL has no host: %q", c.BackendURL)
	}
	if c.RequestTimeoutSecs < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	return nil
}

// expandHome expands the ~ in file paths to the user's home directory
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir := getHomeDir()
		return homeDir + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing
var GetEnv = os.Getenv
