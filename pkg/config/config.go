// Package config provides configuration management for the checkrev CLI tool
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Davincible/checkrev/pkg/codes"
	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	Version string       `json:"version" yaml:"version"`
	Search  SearchConfig `json:"search" yaml:"search"`
	Input   InputConfig  `json:"input" yaml:"input"`
	UI      UIConfig     `json:"ui" yaml:"ui"`
}

// SearchConfig contains the defaults shared by the search commands
type SearchConfig struct {
	DigestThreshold float64 `json:"digest_threshold" yaml:"digest_threshold"` // Default: 0.8
	SumsThreshold   float64 `json:"sums_threshold" yaml:"sums_threshold"`     // Default: 0.5
	CRCThreshold    float64 `json:"crc_threshold" yaml:"crc_threshold"`       // Default: 0.8
	Threads         int     `json:"threads" yaml:"threads"`                   // 0 = logical CPUs
	Parallel        bool    `json:"parallel" yaml:"parallel"`                 // Default: true
}

// InputConfig limits what the code reader accepts
type InputConfig struct {
	MaxMessageBytes int `json:"max_message_bytes" yaml:"max_message_bytes"` // Default: 19
	MaxCodes        int `json:"max_codes" yaml:"max_codes"`                 // Default: 65536
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor bool `json:"use_color" yaml:"use_color"` // Enable colored output
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a configuration manager for the default path. A missing file leaves
// the defaults in place; nothing is written until Save is called.
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerAt creates a configuration manager for an explicit path
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{configPath: configPath, config: DefaultConfig()}

	if err := cm.LoadConfig(); err != nil {
		return nil, err
	}
	applyEnv(cm.config)

	if err := cm.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Search: SearchConfig{
			DigestThreshold: 0.8,
			SumsThreshold:   0.5,
			CRCThreshold:    0.8,
			Threads:         0,
			Parallel:        true,
		},
		Input: InputConfig{
			MaxMessageBytes: 19,
			MaxCodes:        65536,
		},
		UI: UIConfig{
			UseColor: true,
		},
	}
}

// LoadConfig merges the file at the configured path over the current values. A missing file is
// not an error.
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	// YAML first, JSON for older files
	if err := yaml.Unmarshal(data, cm.config); err != nil {
		if jsonErr := json.Unmarshal(data, cm.config); jsonErr != nil {
			return fmt.Errorf("failed to parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

// SaveConfig saves the configuration to disk as YAML
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Init writes the default configuration unless a file already exists
func (cm *ConfigManager) Init(force bool) error {
	if _, err := os.Stat(cm.configPath); err == nil && !force {
		return fmt.Errorf("config %s already exists", cm.configPath)
	}
	cm.config = DefaultConfig()
	return cm.SaveConfig()
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// Path returns the configuration file path
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// Marshal renders the current configuration as YAML
func (cm *ConfigManager) Marshal() ([]byte, error) {
	return yaml.Marshal(cm.config)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	for name, t := range map[string]float64{
		"search.digest_threshold": c.Search.DigestThreshold,
		"search.sums_threshold":   c.Search.SumsThreshold,
		"search.crc_threshold":    c.Search.CRCThreshold,
	} {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, t)
		}
	}
	if c.Search.Threads < 0 {
		return fmt.Errorf("search.threads must not be negative, got %d", c.Search.Threads)
	}
	if c.Input.MaxMessageBytes <= 0 || c.Input.MaxMessageBytes > codes.Capacity {
		return fmt.Errorf("input.max_message_bytes must be in 1..%d, got %d", codes.Capacity, c.Input.MaxMessageBytes)
	}
	if c.Input.MaxCodes <= 0 {
		return fmt.Errorf("input.max_codes must be positive, got %d", c.Input.MaxCodes)
	}
	return nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("CHECKREV_THREADS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.Threads = i
		}
	}
	if v := os.Getenv("CHECKREV_NO_COLOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.UI.UseColor = !b
		}
	}
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	// Check for custom config path
	if customPath := os.Getenv("CHECKREV_CONFIG"); customPath != "" {
		return customPath, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "checkrev", "config.yaml"), nil
	}

	// Default to ~/.config/checkrev/config.yaml
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "checkrev", "config.yaml"), nil
}
