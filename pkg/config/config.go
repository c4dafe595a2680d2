/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the blm reader configuration
type Config struct {
	Reader  Reader  `yaml:"reader"`
	Cache   Cache   `yaml:"cache"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Reader controls how BLM files are scanned and indexed
type Reader struct {
	ChunkSize      int   `yaml:"chunk_size"`
	MaxProcessSize int64 `yaml:"max_process_size"`
	Preview        bool  `yaml:"preview"`
}

// Cache configures the persistent index cache
type Cache struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Server contains HTTP API configuration
type Server struct {
	Port   int    `yaml:"port"`
	Bind   string `yaml:"bind"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Reader: Reader{
			ChunkSize:      8192,
			MaxProcessSize: 1 << 20,
		},
		Cache: Cache{
			Dir: "./data/index-cache",
		},
		Server: Server{
			Port:   8080,
			Bind:   "127.0.0.1",
			APIKey: "auto",
		},
		Logging: Logging{
			Level:  "info",
			Format: "logfmt",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from the
// file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file carries the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Reader.ChunkSize <= 0 {
		return fmt.Errorf("invalid config: reader.chunk_size must be positive, got %d", c.Reader.ChunkSize)
	}
	if c.Reader.MaxProcessSize < 0 {
		return fmt.Errorf("invalid config: reader.max_process_size must not be negative, got %d", c.Reader.MaxProcessSize)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port out of range: %d", c.Server.Port)
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("invalid config: cache.dir is required when the cache is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid config: unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "logfmt", "json":
	default:
		return fmt.Errorf("invalid config: unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves
// it to configPath. A non-empty cacheDir overrides the default cache directory.
func BootstrapConfig(configPath string, cacheDir string) (*Config, error) {
	config := DefaultConfig()
	if cacheDir != "" {
		config.Cache.Dir = cacheDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./blm.yaml"
	}

	// For Linux/macOS, use ~/.config/blm/config.yaml
	configDir := filepath.Join(homeDir, ".config", "blm")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
