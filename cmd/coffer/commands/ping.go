// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
)

type pingParams struct {
	ServerConnection
}

func pingCommand() *cli.Command {
	var params pingParams

	return &cli.Command{
		Name:    "ping",
		Summary: "Check that the coffer server is reachable",
		Usage:   "coffer ping [flags]",
		Description: `Send a HEAD request to the server base URL.

Prints "ok" and exits 0 when the server answers, otherwise reports
the failure and exits non-zero.`,
		Examples: []cli.Example{
			{
				Description: "Ping a local coffer",
				Command:     "coffer ping --server http://localhost:5984",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ping", pflag.ContinueOnError)
			params.AddFlags(flagSet)
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

			if err := conn.Ping(ctx); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
