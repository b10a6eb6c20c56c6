// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobref computes and validates content-addressed blob
// references for the Coffer protocol.
//
// A blob reference is the canonical identifier of a blob, derived from
// the blob's bytes: the hash algorithm label, a dash, and the
// lowercase hex digest (e.g. "sha256-ba7816bf..."). Two byte-identical
// blobs always produce the same reference, regardless of whether the
// bytes were hashed from memory, from a file, or from any other
// reader.
//
// References travel in URL path segments and multipart part names, so
// every reference must pass Validate before it is placed on the wire.
// Validation is purely syntactic: it checks the grammar, not whether
// the digest matches any particular content.
package blobref
