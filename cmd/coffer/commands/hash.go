// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

type hashParams struct {
	cli.JSONOutput
	Algorithm string
}

// hashResult pairs a computed reference with its input for --json output.
type hashResult struct {
	Ref  blobref.Ref `json:"ref"`
	Path string      `json:"path"`
}

func hashCommand() *cli.Command {
	var params hashParams

	return &cli.Command{
		Name:    "hash",
		Summary: "Compute blob references locally",
		Usage:   "coffer hash [file]... [flags]",
		Description: `Compute the blob reference of local content without contacting
a server.

Reads the named files, or stdin when no file is given (or the file
is "-"). Prints "<ref>  <file>" per input, sha256sum-style; for
stdin just the ref. The result is exactly the reference the upload
commands would derive for the same bytes.`,
		Examples: []cli.Example{
			{
				Description: "Hash a file",
				Command:     "coffer hash report.pdf",
			},
			{
				Description: "Hash stdin with BLAKE3",
				Command:     "tar cz src | coffer hash --algorithm blake3",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			params.JSONOutput.AddFlags(flagSet)
			flagSet.StringVar(&params.Algorithm, "algorithm", string(blobref.DefaultAlgorithm), "hash algorithm (sha256 or blake3)")
			return flagSet
		},
		Run: func(args []string) error {
			algorithm := blobref.Algorithm(params.Algorithm)

			if len(args) == 0 {
				args = []string{"-"}
			}

			results := make([]hashResult, 0, len(args))
			for _, path := range args {
				var ref blobref.Ref
				var err error
				if path == "-" {
					ref, err = blobref.FromReaderWith(algorithm, os.Stdin)
				} else {
					ref, err = blobref.FromFileWith(algorithm, path)
				}
				if err != nil {
					return err
				}
				results = append(results, hashResult{Ref: ref, Path: path})
			}

			if done, err := params.EmitJSON(results); done {
				return err
			}

			for _, result := range results {
				if result.Path == "-" {
					fmt.Println(result.Ref)
				} else {
					fmt.Printf("%s  %s\n", result.Ref, result.Path)
				}
			}
			return nil
		},
	}
}
