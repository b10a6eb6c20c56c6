// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the configuration for the coffer CLI.
type Config struct {
	// Environment identifies the deployment type (development, staging,
	// production) and selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Server configures the coffer endpoint.
	Server ServerConfig `yaml:"server"`

	// Upload configures default upload behavior.
	Upload UploadConfig `yaml:"upload"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Upload *UploadConfig `yaml:"upload,omitempty"`
}

// ServerConfig configures the coffer endpoint.
type ServerConfig struct {
	// URL is the base URL of the coffer server, e.g.
	// "http://coffer.internal:5984". Command-line flags and the
	// COFFER_SERVER environment variable take precedence over this.
	URL string `yaml:"url"`

	// PoolSize caps the idle connections kept alive per host.
	// Zero means the client default.
	PoolSize int `yaml:"pool_size"`

	// UserAgent overrides the User-Agent header sent with requests.
	// Empty means the client default.
	UserAgent string `yaml:"user_agent"`
}

// UploadConfig configures default upload behavior.
type UploadConfig struct {
	// Container is the container used when --container is not given.
	// Default: "default".
	Container string `yaml:"container"`
}

// Default returns the default configuration. These defaults make the
// CLI usable with nothing but a --server flag (or COFFER_SERVER); the
// config file exists for teams that want shared, versioned settings.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			PoolSize: 0,
		},
		Upload: UploadConfig{
			Container: "default",
		},
	}
}

// Load loads configuration from the file named by the COFFER_CONFIG
// environment variable. When COFFER_CONFIG is not set, the built-in
// defaults are returned: the CLI does not require a config file, and
// there is no automatic discovery.
func Load() (*Config, error) {
	configPath := os.Getenv("COFFER_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth for what it sets.
// Environment variables do not override config values; the only
// expansion performed is ${VAR} and ${VAR:-default} in the server URL,
// so one shared file can be portable across machines.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Apply environment-specific overrides (development/staging/production
	// sections in the file).
	cfg.applyEnvironmentOverrides()

	cfg.Server.URL = expandVars(cfg.Server.URL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching c.Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		if overrides.Server.URL != "" {
			c.Server.URL = overrides.Server.URL
		}
		if overrides.Server.PoolSize != 0 {
			c.Server.PoolSize = overrides.Server.PoolSize
		}
		if overrides.Server.UserAgent != "" {
			c.Server.UserAgent = overrides.Server.UserAgent
		}
	}

	if overrides.Upload != nil {
		if overrides.Upload.Container != "" {
			c.Upload.Container = overrides.Upload.Container
		}
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// process environment.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("server.pool_size must not be negative"))
	}

	if c.Upload.Container == "" {
		errs = append(errs, fmt.Errorf("upload.container is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
