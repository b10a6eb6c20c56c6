// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

type deleteParams struct {
	ServerConnection
	Container string
}

func deleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a blob from a container",
		Usage:   "coffer delete <ref> [flags]",
		Description: `Delete a blob by reference.

Content addressing makes this safe to retry: deleting an absent blob
fails with not-found, and re-uploading restores the identical ref.`,
		Examples: []cli.Example{
			{
				Description: "Delete a blob",
				Command:     "coffer delete sha256-9f86d081884c7d65 --container documents",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			params.AddFlags(flagSet)
			flagSet.StringVar(&params.Container, "container", "", "container holding the blob (default: from config)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("ref argument required\n\nUsage: coffer delete <ref> [flags]")
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

			if err := storage.Delete(ctx, ref); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", ref)
			return nil
		},
	}
}
