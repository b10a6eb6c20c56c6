// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chinnucsk/coffercli/cmd/coffer/cli"
	"github.com/chinnucsk/coffercli/lib/blobref"
)

// captureStdout runs fn with os.Stdout redirected into a pipe and
// returns everything fn wrote, plus fn's error.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	original := os.Stdout
	os.Stdout = writer

	runErr := fn()

	os.Stdout = original
	writer.Close()
	output, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	reader.Close()
	return string(output), runErr
}

// clearConnectionEnv blanks the connection environment variables so a
// developer's local settings cannot leak into test runs.
func clearConnectionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COFFER_SERVER", "")
	t.Setenv("COFFER_CONFIG", "")
}

// newSingleUploadServer answers any single-blob upload with a receipt
// derived from the body it received. Method and path of the last
// request land in the non-nil capture pointers.
func newSingleUploadServer(t *testing.T, gotMethod, gotPath *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if gotMethod != nil {
			*gotMethod = request.Method
		}
		if gotPath != nil {
			*gotPath = request.URL.Path
		}
		body, err := io.ReadAll(request.Body)
		if err != nil {
			t.Errorf("reading upload body: %v", err)
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}
		writer.WriteHeader(http.StatusCreated)
		fmt.Fprintf(writer, `{"received":[{"blobref":%q,"size":%d}]}`, blobref.FromBytes(body), len(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRootTree(t *testing.T) {
	root := Root()

	wantCommands := []string{"ping", "containers", "upload", "fetch", "stat", "delete", "hash", "version"}
	seen := map[string]bool{}
	for _, sub := range root.Subcommands {
		if sub.Name == "" {
			t.Error("subcommand with empty name")
		}
		if seen[sub.Name] {
			t.Errorf("duplicate subcommand %q", sub.Name)
		}
		seen[sub.Name] = true
		if sub.Summary == "" {
			t.Errorf("subcommand %q has no summary", sub.Name)
		}
		if sub.Run == nil && len(sub.Subcommands) == 0 {
			t.Errorf("subcommand %q has neither Run nor subcommands", sub.Name)
		}
	}
	for _, name := range wantCommands {
		if !seen[name] {
			t.Errorf("command tree missing %q", name)
		}
	}
}

func TestRootHelp(t *testing.T) {
	if err := Root().Execute([]string{"--help"}); err != nil {
		t.Errorf("--help failed: %v", err)
	}
	for _, sub := range Root().Subcommands {
		if err := Root().Execute([]string{sub.Name, "--help"}); err != nil {
			t.Errorf("%s --help failed: %v", sub.Name, err)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	err := Root().Execute([]string{"frobnicate"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("error %q does not name the unknown command", err.Error())
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"version"})
	})
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(output, "coffer ") {
		t.Errorf("version output %q does not start with 'coffer '", output)
	}
}

func TestHashCommand(t *testing.T) {
	path := writeTempFile(t, "content.txt", "hello world")
	wantRef := "sha256-b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"hash", path})
	})
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	want := fmt.Sprintf("%s  %s\n", wantRef, path)
	if output != want {
		t.Errorf("hash output = %q, want %q", output, want)
	}
}

func TestHashCommand_Blake3(t *testing.T) {
	path := writeTempFile(t, "content.txt", "hello world")

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"hash", "--algorithm", "blake3", path})
	})
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(output, "blake3-") {
		t.Errorf("hash output %q does not carry the blake3 prefix", output)
	}
}

func TestHashCommand_UnknownAlgorithm(t *testing.T) {
	path := writeTempFile(t, "content.txt", "hello world")

	err := Root().Execute([]string{"hash", "--algorithm", "md5", path})
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
	if !strings.Contains(err.Error(), "md5") {
		t.Errorf("error %q does not name the algorithm", err.Error())
	}
}

func TestHashCommand_JSON(t *testing.T) {
	path := writeTempFile(t, "content.txt", "abc")

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"hash", "--json", path})
	})
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	var results []struct {
		Ref  string `json:"ref"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(output), &results); err != nil {
		t.Fatalf("hash --json output is not valid JSON: %v\noutput: %s", err, output)
	}
	if len(results) != 1 || results[0].Path != path {
		t.Errorf("unexpected results: %+v", results)
	}
	if !strings.HasPrefix(results[0].Ref, "sha256-") {
		t.Errorf("ref %q does not carry the sha256 prefix", results[0].Ref)
	}
}

func TestPingCommand(t *testing.T) {
	clearConnectionEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"ping", "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if output != "ok\n" {
		t.Errorf("ping output = %q, want %q", output, "ok\n")
	}
}

func TestPingCommand_ServerFromEnv(t *testing.T) {
	clearConnectionEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	t.Setenv("COFFER_SERVER", server.URL)

	_, err := captureStdout(t, func() error {
		return Root().Execute([]string{"ping"})
	})
	if err != nil {
		t.Fatalf("ping with COFFER_SERVER failed: %v", err)
	}
}

func TestPingCommand_NoServer(t *testing.T) {
	clearConnectionEnv(t)

	err := Root().Execute([]string{"ping"})
	if err == nil {
		t.Fatal("expected error when no server URL is configured")
	}
	if !strings.Contains(err.Error(), "--server") {
		t.Errorf("error %q does not mention --server", err.Error())
	}
}

func TestContainersCommand(t *testing.T) {
	clearConnectionEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/containers" {
			t.Errorf("path = %q, want /containers", request.URL.Path)
		}
		fmt.Fprint(writer, `{"containers":["alpha","beta"]}`)
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"containers", "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("containers failed: %v", err)
	}
	if output != "alpha\nbeta\n" {
		t.Errorf("containers output = %q", output)
	}
}

func TestContainersCommand_JSON(t *testing.T) {
	clearConnectionEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{"containers":["alpha"]}`)
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"containers", "--server", server.URL, "--json"})
	})
	if err != nil {
		t.Fatalf("containers failed: %v", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(output), &names); err != nil {
		t.Fatalf("containers --json output is not valid JSON: %v\noutput: %s", err, output)
	}
	if len(names) != 1 || names[0] != "alpha" {
		t.Errorf("names = %v, want [alpha]", names)
	}
}

func TestUploadCommand_SingleFile(t *testing.T) {
	clearConnectionEnv(t)
	var gotMethod, gotPath string
	server := newSingleUploadServer(t, &gotMethod, &gotPath)

	path := writeTempFile(t, "blob.bin", "payload")
	wantRef := blobref.FromBytes([]byte("payload"))

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"upload", path, "--server", server.URL, "--container", "tub"})
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if output != string(wantRef)+"\n" {
		t.Errorf("upload output = %q, want %q", output, string(wantRef)+"\n")
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if want := "/tub/" + string(wantRef); gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestUploadCommand_Stdin(t *testing.T) {
	clearConnectionEnv(t)
	server := newSingleUploadServer(t, nil, nil)

	content := "streamed content"
	ref := blobref.FromBytes([]byte(content))

	inputPath := writeTempFile(t, "stdin.bin", content)
	input, err := os.Open(inputPath)
	if err != nil {
		t.Fatalf("opening stdin fixture: %v", err)
	}
	defer input.Close()
	originalStdin := os.Stdin
	os.Stdin = input
	defer func() { os.Stdin = originalStdin }()

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"upload", "--stdin", "--ref", string(ref), "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("upload --stdin failed: %v", err)
	}
	if output != string(ref)+"\n" {
		t.Errorf("output = %q, want %q", output, string(ref)+"\n")
	}
}

func TestUploadCommand_StdinRequiresRef(t *testing.T) {
	clearConnectionEnv(t)

	err := Root().Execute([]string{"upload", "--stdin", "--server", "http://localhost:1"})
	if err == nil {
		t.Fatal("expected error for --stdin without --ref")
	}
	if !strings.Contains(err.Error(), "--ref") {
		t.Errorf("error %q does not mention --ref", err.Error())
	}
}

func TestUploadCommand_NoArgs(t *testing.T) {
	clearConnectionEnv(t)

	err := Root().Execute([]string{"upload", "--server", "http://localhost:1"})
	if err == nil {
		t.Fatal("expected error for missing file arguments")
	}
	if !strings.Contains(err.Error(), "file arguments required") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestUploadCommand_Bulk(t *testing.T) {
	clearConnectionEnv(t)

	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotMethod = request.Method
		gotPath = request.URL.Path

		reader, err := request.MultipartReader()
		if err != nil {
			t.Errorf("not a multipart request: %v", err)
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		type entry struct {
			BlobRef string `json:"blobref"`
			Size    int64  `json:"size"`
		}
		received := []entry{}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("reading part: %v", err)
				writer.WriteHeader(http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(part)
			if err != nil {
				t.Errorf("reading part body: %v", err)
				writer.WriteHeader(http.StatusBadRequest)
				return
			}
			received = append(received, entry{BlobRef: part.FormName(), Size: int64(len(data))})
		}
		writer.WriteHeader(http.StatusCreated)
		json.NewEncoder(writer).Encode(map[string]any{"received": received, "errors": []any{}})
	}))
	t.Cleanup(server.Close)

	first := writeTempFile(t, "first.bin", "aa")
	second := writeTempFile(t, "second.bin", "b")
	firstRef := blobref.FromBytes([]byte("aa"))
	secondRef := blobref.FromBytes([]byte("b"))

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"upload", first, second, "--server", server.URL, "--container", "tub"})
	})
	if err != nil {
		t.Fatalf("bulk upload failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/tub" {
		t.Errorf("path = %q, want /tub", gotPath)
	}
	want := string(firstRef) + "\n" + string(secondRef) + "\n"
	if output != want {
		t.Errorf("output = %q, want %q", output, want)
	}
}

func TestUploadCommand_BulkRejection(t *testing.T) {
	clearConnectionEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		io.Copy(io.Discard, request.Body)
		writer.WriteHeader(http.StatusCreated)
		fmt.Fprint(writer, `{"received":[],"errors":[{"error":"quota exceeded"}]}`)
	}))
	t.Cleanup(server.Close)

	first := writeTempFile(t, "first.bin", "aa")
	second := writeTempFile(t, "second.bin", "b")

	_, err := captureStdout(t, func() error {
		return Root().Execute([]string{"upload", first, second, "--server", server.URL})
	})
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError for rejected blobs, got %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
}

func TestUploadCommand_ContainerFromConfig(t *testing.T) {
	clearConnectionEnv(t)
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPath = request.URL.Path
		body, _ := io.ReadAll(request.Body)
		writer.WriteHeader(http.StatusCreated)
		fmt.Fprintf(writer, `{"received":[{"blobref":%q,"size":%d}]}`, blobref.FromBytes(body), len(body))
	}))
	t.Cleanup(server.Close)

	configPath := writeTempFile(t, "coffer.yaml", "upload:\n  container: builds\n")
	path := writeTempFile(t, "blob.bin", "payload")

	_, err := captureStdout(t, func() error {
		return Root().Execute([]string{"upload", path, "--server", server.URL, "--config", configPath})
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/builds/") {
		t.Errorf("path = %q, want container from config file", gotPath)
	}
}

func TestFetchCommand(t *testing.T) {
	clearConnectionEnv(t)
	content := "fetched bytes"
	ref := blobref.FromBytes([]byte(content))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if want := "/tub/" + string(ref); request.URL.Path != want {
			t.Errorf("path = %q, want %q", request.URL.Path, want)
		}
		io.WriteString(writer, content)
	}))
	t.Cleanup(server.Close)

	outputPath := filepath.Join(t.TempDir(), "out.bin")
	_, err := captureStdout(t, func() error {
		return Root().Execute([]string{
			"fetch", string(ref),
			"--server", server.URL, "--container", "tub", "-o", outputPath,
		})
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	written, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if string(written) != content {
		t.Errorf("output file = %q, want %q", written, content)
	}
}

func TestFetchCommand_ToStdout(t *testing.T) {
	clearConnectionEnv(t)
	content := "to stdout"
	ref := blobref.FromBytes([]byte(content))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		io.WriteString(writer, content)
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"fetch", string(ref), "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if output != content {
		t.Errorf("stdout = %q, want %q", output, content)
	}
}

func TestFetchCommand_InvalidRef(t *testing.T) {
	clearConnectionEnv(t)

	err := Root().Execute([]string{"fetch", "not a ref", "--server", "http://localhost:1"})
	if !errors.Is(err, blobref.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestStatCommand(t *testing.T) {
	clearConnectionEnv(t)
	ref := blobref.FromBytes([]byte("stat me"))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodHead {
			t.Errorf("method = %q, want HEAD", request.Method)
		}
		writer.Header().Set("Content-Length", "2048")
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"stat", string(ref), "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !strings.Contains(output, string(ref)) {
		t.Errorf("output %q does not mention the ref", output)
	}
	if !strings.Contains(output, "2048") {
		t.Errorf("output %q does not mention the size", output)
	}
}

func TestDeleteCommand(t *testing.T) {
	clearConnectionEnv(t)
	ref := blobref.FromBytes([]byte("delete me"))

	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotMethod = request.Method
		writer.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	output, err := captureStdout(t, func() error {
		return Root().Execute([]string{"delete", string(ref), "--server", server.URL})
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if !strings.Contains(output, string(ref)) {
		t.Errorf("output %q does not confirm the deleted ref", output)
	}
}
