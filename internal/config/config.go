// Package config handles configuration for eacassist.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
)

// Environment variables consulted for the backend URL, highest priority first
var APIURLEnvVars = []string{"EAC_API_URL", "API_URL", "NEXT_PUBLIC_API_URL"}

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name, e.g. "dark", "light", "notty"
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// APIURL is the backend root; /chat and /refresh are resolved against it.
	// An explicitly empty value leaves the client unconfigured.
	APIURL string `json:"api_url"`
	Skin   string `json:"skin"`
	// TimeoutSeconds bounds each backend request. Zero means the transport default.
	TimeoutSeconds  int            `json:"timeout_seconds"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	LogFile         string         `json:"log_file,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIURL:          models.DefaultAPIURL,
		Skin:            models.DefaultSkin.Name,
		TimeoutSeconds:  300,
		Verbose:         false,
		CopyToClipboard: false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".eacassist"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file used by interactive sessions
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "eacassist.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg, err := LoadConfigFile()
	if err != nil {
		return cfg, err
	}
	return ApplyEnv(cfg, os.Getenv), nil
}

// LoadConfigFile loads the configuration from disk only
func LoadConfigFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides the API URL from the first non-empty environment variable
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	for _, key := range APIURLEnvVars {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			cfg.APIURL = v
			break
		}
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive a session
func (c Config) Validate() error {
	if err := ValidateAPIURL(c.APIURL); err != nil {
		return err
	}
	if _, err := models.SkinFromName(c.Skin); err != nil {
		return err
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

// ValidateAPIURL checks a backend URL. An empty URL yields ErrUnconfigured.
func ValidateAPIURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apierrors.ErrUnconfigured
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api_url %q: missing host", raw)
	}
	return nil
}

// Timeout returns the request timeout, or zero for the transport default
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// setters for `config set`
var setters = map[string]func(*Config, string) error{
	"api_url": func(c *Config, v string) error {
		if err := ValidateAPIURL(v); err != nil {
			return err
		}
		c.APIURL = strings.TrimSpace(v)
		return nil
	},
	"skin": func(c *Config, v string) error {
		s, err := models.SkinFromName(v)
		if err != nil {
			return err
		}
		c.Skin = s.Name
		return nil
	},
	"timeout_seconds": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("timeout_seconds must be a non-negative integer, got %q", v)
		}
		c.TimeoutSeconds = n
		return nil
	},
	"verbose": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("verbose must be true or false, got %q", v)
		}
		c.Verbose = b
		return nil
	},
	"copy_to_clipboard": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false, got %q", v)
		}
		c.CopyToClipboard = b
		return nil
	},
	"log_file": func(c *Config, v string) error {
		c.LogFile = strings.TrimSpace(v)
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = strings.TrimSpace(v)
		return nil
	},
}

// Set updates a single key by name
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// Keys lists the keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
