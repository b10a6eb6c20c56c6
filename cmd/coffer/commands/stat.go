// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

type statParams struct {
	ServerConnection
	cli.JSONOutput
	Container string
}

func statCommand() *cli.Command {
	var params statParams

	return &cli.Command{
		Name:    "stat",
		Summary: "Show blob size and existence without downloading",
		Usage:   "coffer stat <ref> [flags]",
		Description: `Check that a blob exists and report its size.

Sends a HEAD request; no content is transferred. Exits non-zero when
the blob is not in the container.`,
		Examples: []cli.Example{
			{
				Description: "Stat a blob",
				Command:     "coffer stat sha256-9f86d081884c7d65 --container documents",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("stat", pflag.ContinueOnError)
			params.ServerConnection.AddFlags(flagSet)
			params.JSONOutput.AddFlags(flagSet)
			flagSet.StringVar(&params.Container, "container", "", "container holding the blob (default: from config)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("ref argument required\n\nUsage: coffer stat <ref> [flags]")
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

			info, err := storage.Stat(ctx, ref)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(info); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "Ref:\t%s\n", info.Ref)
			fmt.Fprintf(writer, "Size:\t%d (%s)\n", info.Size, formatSize(info.Size))
			return writer.Flush()
		},
	}
}

// formatSize returns a human-readable size.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
