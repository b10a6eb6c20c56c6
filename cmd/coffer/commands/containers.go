// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
)

type containersParams struct {
	ServerConnection
	cli.JSONOutput
}

func containersCommand() *cli.Command {
	var params containersParams

	return &cli.Command{
		Name:    "containers",
		Summary: "List containers on the server",
		Usage:   "coffer containers [flags]",
		Description: `List the containers the server exposes, one per line.

With --json, prints the container names as a JSON array.`,
		Examples: []cli.Example{
			{
				Description: "List containers",
				Command:     "coffer containers",
			},
			{
				Description: "List containers as JSON",
				Command:     "coffer containers --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("containers", pflag.ContinueOnError)
			params.ServerConnection.AddFlags(flagSet)
			params.JSONOutput.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger()

			conn, _, err := params.connect(logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			containers, err := conn.Containers(ctx)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(containers); done {
				return err
			}

			for _, name := range containers {
				fmt.Println(name)
			}
			return nil
		},
	}
}
