// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

type fetchParams struct {
	ServerConnection
	Container  string
	OutputPath string
}

func fetchCommand() *cli.Command {
	var params fetchParams

	return &cli.Command{
		Name:    "fetch",
		Summary: "Download a blob by reference",
		Usage:   "coffer fetch <ref> [flags]",
		Description: `Download blob content by reference.

Writes to the named output file, or to stdout if -o is not set.
Content is streamed, not buffered, so arbitrarily large blobs are
fine either way.`,
		Examples: []cli.Example{
			{
				Description: "Fetch to a file",
				Command:     "coffer fetch sha256-9f86d081884c7d65 --container documents -o report.pdf",
			},
			{
				Description: "Fetch to stdout",
				Command:     "coffer fetch sha256-9f86d081884c7d65 --container documents > report.pdf",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
			params.AddFlags(flagSet)
			flagSet.StringVar(&params.Container, "container", "", "container holding the blob (default: from config)")
			flagSet.StringVarP(&params.OutputPath, "output", "o", "", "output file path (default: stdout)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("ref argument required\n\nUsage: coffer fetch <ref> [flags]")
			}
			ref, err := blobref.Parse(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger()

			conn, cfg, err := params.connect(logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			storage := conn.Storage(resolveContainer(params.Container, cfg))

			result, err := storage.Fetch(ctx, ref)
			if err != nil {
				return err
			}
			defer result.Content.Close()

			var output io.Writer
			if params.OutputPath != "" {
				file, err := os.Create(params.OutputPath)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer file.Close()
				output = file
			} else {
				output = os.Stdout
			}

			if _, err := io.Copy(output, result.Content); err != nil {
				return fmt.Errorf("writing content: %w", err)
			}
			return nil
		},
	}
}
