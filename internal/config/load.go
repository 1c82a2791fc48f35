package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration from the YAML file at path (skipped when
// path is empty), the defaults and the environment, and validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	defaults := Default()
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv builds the configuration from the file named by
// LEXKENDRA_CONFIG, if any.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfigFile))
}
