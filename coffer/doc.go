// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package coffer implements the client side of the Coffer blob-storage
// HTTP protocol.
//
// Content is addressed by blob reference (lib/blobref): a deterministic
// identifier derived from the content bytes. A Connection holds the
// pooled HTTP transport for one server; Storage binds a named container
// on that server and carries the upload, fetch, and delete operations.
//
// Uploads come in three shapes:
//
//   - Upload sends one complete blob in a single chunked PUT.
//   - UploadStream returns a live handle for one blob whose bytes are
//     produced incrementally; Commit delivers the server's verdict.
//   - BulkUpload multiplexes any number of blobs onto one chunked POST
//     using multipart framing. Blobs are submitted whole (Send) or
//     streamed through a sub-stream (OpenStream); Finalize delivers
//     the batch receipt listing accepted and rejected blobs.
//
// A bulk session is owned by a single goroutine and is single-use:
// at most one sub-stream is open at a time, and parts appear on the
// wire in submission order. Sessions hold an in-flight HTTP request;
// abandon them with Close to release it.
package coffer
