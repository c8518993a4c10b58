package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values applied before any file is read.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 8420
	DefaultMCPPath        = "/mcp"
	DefaultCallbackPath   = "/oauth/callback"
	DefaultTimeoutSeconds = 30
)

// DefaultConfig returns a configuration with all defaults applied. Provider
// and downstream settings have no sensible defaults and stay empty.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			PublicURL:    fmt.Sprintf("http://%s:%d", DefaultHost, DefaultPort),
			MCPPath:      DefaultMCPPath,
			CallbackPath: DefaultCallbackPath,
		},
		Downstream: DownstreamConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig reads and validates the YAML configuration at path. Values in
// the file override defaults; omitted fields keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}
