// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the coffer CLI.
//
// Configuration is loaded from a single file specified by either the
// COFFER_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. Unlike a daemon, the CLI can be fully
// configured from flags alone, so a missing COFFER_CONFIG is not an
// error: [Load] then returns the built-in defaults.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. This lets one shared file point at a
// local coffer in development and the real deployment in production.
//
// Variable expansion is performed on the server URL after loading:
// ${VAR} and ${VAR:-default} patterns are expanded from the process
// environment. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Server and Upload sections
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other coffer packages.
package config
