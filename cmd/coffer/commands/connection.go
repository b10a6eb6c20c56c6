// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/coffer"
	"github.com/chinnucsk/coffercli/lib/config"
)

// ServerConnection manages the connection flags shared by all networked
// coffer commands. The server URL defaults to the COFFER_SERVER
// environment variable; an explicit --config file (or COFFER_CONFIG)
// provides values for whatever the flags leave unset.
type ServerConnection struct {
	ServerURL  string
	PoolSize   int
	ConfigPath string
}

// AddFlags registers --server, --pool-size, and --config on flagSet.
func (c *ServerConnection) AddFlags(flagSet *pflag.FlagSet) {
	serverDefault := os.Getenv("COFFER_SERVER")
	flagSet.StringVar(&c.ServerURL, "server", serverDefault, "coffer server base URL")
	flagSet.IntVar(&c.PoolSize, "pool-size", 0, "idle connections kept per host (0 = client default)")
	flagSet.StringVar(&c.ConfigPath, "config", "", "path to a YAML config file (default: $COFFER_CONFIG)")
}

// loadConfig loads the config file named by --config, falling back to
// COFFER_CONFIG, falling back to built-in defaults.
func (c *ServerConnection) loadConfig() (*config.Config, error) {
	if c.ConfigPath != "" {
		return config.LoadFile(c.ConfigPath)
	}
	return config.Load()
}

// connect loads configuration, applies flag overrides, and dials the
// server. The returned Config carries defaults (like the target
// container) that commands resolve after their own flags.
func (c *ServerConnection) connect(logger *slog.Logger) (*coffer.Connection, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	serverURL := cfg.Server.URL
	if c.ServerURL != "" {
		serverURL = c.ServerURL
	}
	if serverURL == "" {
		return nil, nil, fmt.Errorf("no server URL: set --server, COFFER_SERVER, or server.url in a config file")
	}

	poolSize := cfg.Server.PoolSize
	if c.PoolSize > 0 {
		poolSize = c.PoolSize
	}

	conn, err := coffer.Dial(coffer.Config{
		ServerURL: serverURL,
		PoolSize:  poolSize,
		UserAgent: cfg.Server.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return conn, cfg, nil
}

// resolveContainer picks the container for a blob command: the
// --container flag when set, otherwise the config default.
func resolveContainer(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Upload.Container
}
