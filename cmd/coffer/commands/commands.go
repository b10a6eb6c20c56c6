// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete coffer CLI command tree.
//
// Each subcommand lives in its own file and is constructed by a
// <name>Command() function returning a [cli.Command]. Networked
// commands share connection handling through [ServerConnection],
// which resolves the server URL and pool size from flags, the
// COFFER_SERVER environment variable, and an optional YAML config
// file, in that order of precedence.
package commands

import (
	"fmt"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/version"
)

// Root builds and returns the complete coffer CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "coffer",
		Description: `Coffer: content-addressed blob storage client.

Upload, fetch, and manage blobs in coffer containers. Blobs are
identified by references of the form <algorithm>-<hexdigest>
(e.g. sha256-9f86d08...), computed from the blob content.`,
		Subcommands: []*cli.Command{
			pingCommand(),
			containersCommand(),
			uploadCommand(),
			fetchCommand(),
			statCommand(),
			deleteCommand(),
			hashCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("coffer %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check that the server is reachable",
				Command:     "coffer ping --server http://localhost:5984",
			},
			{
				Description: "Upload a file and print its reference",
				Command:     "coffer upload report.pdf --container documents",
			},
			{
				Description: "Upload several files in one bulk request",
				Command:     "coffer upload *.log --container logs",
			},
			{
				Description: "Fetch a blob to a file",
				Command:     "coffer fetch sha256-9f86d081884c7d65 --container documents -o report.pdf",
			},
			{
				Description: "Hash a file locally without contacting a server",
				Command:     "coffer hash report.pdf",
			},
		},
	}
}
