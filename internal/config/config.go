// Package config loads the server configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultPort          = 5000
	DefaultMaxMessageLen = 200
)

// Config holds the server settings read from config.yaml.
type Config struct {
	Port          int `yaml:"port"`
	MaxMessageLen int `yaml:"max_message_length"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:          DefaultPort,
		MaxMessageLen: DefaultMaxMessageLen,
	}
}

// Load reads the configuration from path. A missing file, unparseable
// content or an out-of-range value falls back to the default, field by
// field.
func Load(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	if raw.Port > 0 && raw.Port <= 65535 {
		cfg.Port = raw.Port
	}
	if raw.MaxMessageLen > 0 {
		cfg.MaxMessageLen = raw.MaxMessageLen
	}
	return cfg
}
