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
	"github.com/chinnucsk/coffercli/coffer"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

type uploadParams struct {
	ServerConnection
	cli.JSONOutput
	Container string
	Stdin     bool
	Ref       string
}

func uploadCommand() *cli.Command {
	var params uploadParams

	return &cli.Command{
		Name:    "upload",
		Summary: "Upload blobs to a container",
		Usage:   "coffer upload <file>... [flags]",
		Description: `Upload content to a coffer container.

One file is sent as a single chunked PUT. Several files are sent in
one bulk multipart request, which the server acknowledges per blob.
With --stdin, content is streamed from standard input under the
reference given by --ref, without buffering or local hashing.

The accepted blob references are printed to stdout, one per line.
When the server rejects some blobs of a bulk upload, the rejections
are reported on stderr and the command exits with code 1.`,
		Examples: []cli.Example{
			{
				Description: "Upload a file",
				Command:     "coffer upload report.pdf --container documents",
			},
			{
				Description: "Upload several files in one request",
				Command:     "coffer upload build.log test.log --container logs",
			},
			{
				Description: "Stream from stdin under a known reference",
				Command:     "tar cz src | coffer upload --stdin --ref sha256-9f86d081884c7d65 --container backups",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			params.ServerConnection.AddFlags(flagSet)
			params.JSONOutput.AddFlags(flagSet)
			flagSet.StringVar(&params.Container, "container", "", "target container (default: from config)")
			flagSet.BoolVar(&params.Stdin, "stdin", false, "read content from standard input")
			flagSet.StringVar(&params.Ref, "ref", "", "blob reference for --stdin content")
			return flagSet
		},
		Run: func(args []string) error {
			if params.Stdin {
				if len(args) > 0 {
					return fmt.Errorf("--stdin does not take file arguments")
				}
				if params.Ref == "" {
					return fmt.Errorf("--stdin requires --ref (content is not hashed locally)")
				}
			} else if len(args) == 0 {
				return fmt.Errorf("file arguments required\n\nUsage: coffer upload <file>... [flags]")
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger()

			conn, cfg, err := params.connect(logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			storage := conn.Storage(resolveContainer(params.Container, cfg))

			if params.Stdin {
				return uploadStdin(ctx, storage, params.Ref, &params.JSONOutput)
			}
			if len(args) == 1 {
				return uploadSingle(ctx, storage, args[0], &params.JSONOutput)
			}
			return uploadBulk(ctx, storage, args, &params.JSONOutput)
		},
	}
}

// uploadSingle sends one file as a single chunked PUT.
func uploadSingle(ctx context.Context, storage *coffer.Storage, path string, jsonOut *cli.JSONOutput) error {
	result, err := storage.UploadFile(ctx, path)
	if err != nil {
		return err
	}

	if done, err := jsonOut.EmitJSON(result); done {
		return err
	}
	fmt.Println(result.Ref)
	return nil
}

// uploadStdin streams standard input under a caller-supplied reference.
func uploadStdin(ctx context.Context, storage *coffer.Storage, rawRef string, jsonOut *cli.JSONOutput) error {
	ref, err := blobref.Parse(rawRef)
	if err != nil {
		return err
	}

	stream, err := storage.UploadStream(ctx, ref)
	if err != nil {
		return err
	}

	if _, err := io.Copy(stream, os.Stdin); err != nil {
		stream.Close()
		return fmt.Errorf("streaming stdin: %w", err)
	}

	result, err := stream.Commit()
	if err != nil {
		return err
	}

	if done, err := jsonOut.EmitJSON(result); done {
		return err
	}
	fmt.Println(result.Ref)
	return nil
}

// uploadBulk sends all files in one multipart request.
func uploadBulk(ctx context.Context, storage *coffer.Storage, paths []string, jsonOut *cli.JSONOutput) error {
	bulk, err := storage.BulkUpload(ctx)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if _, err := bulk.Send(coffer.FileSource{Path: path}); err != nil {
			bulk.Close()
			return err
		}
	}

	result, err := bulk.Finalize()
	if err != nil {
		return err
	}

	if done, err := jsonOut.EmitJSON(result); done {
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	for _, received := range result.Received {
		fmt.Println(received.Ref)
	}

	// Rejections are data, not a transport failure: report them and
	// exit non-zero so scripts notice.
	if len(result.Errors) > 0 {
		for _, rejection := range result.Errors {
			fmt.Fprintf(os.Stderr, "rejected: %s\n", rejection)
		}
		return &cli.ExitError{Code: 1}
	}
	return nil
}
