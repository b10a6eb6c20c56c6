// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the coffer CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree by the commands package
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// The package also provides the shared output helpers used by subcommand
// implementations: [NewCommandLogger] builds a TTY-aware slog logger,
// [JSONOutput] adds a --json flag and conditional JSON emission, and
// [ExitError] signals a non-zero exit code for commands that have already
// printed their own output.
package cli
