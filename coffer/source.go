// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import "github.com/chinnucsk/coffercli/lib/blobref"

// BlobSource describes where a blob's content comes from. The set of
// variants is closed: BufferSource, FileSource, PrehashedSource, and
// StreamSource. The variant determines whether the client hashes the
// content before transmission (buffer, file) or trusts a reference the
// caller already holds (prehashed, stream).
type BlobSource interface {
	// blobSource restricts implementations to this package so that
	// consumer switches stay exhaustive.
	blobSource()
}

// BufferSource is a blob held fully in memory.
type BufferSource struct {
	Data []byte
}

// FileSource is a blob backed by a file on disk. The client hashes the
// file in one pass and streams its content in a second; the file must
// not change in between.
type FileSource struct {
	Path string
}

// PrehashedSource pairs content with a reference the caller has
// already computed. Bulk submission trusts the reference as-is and
// performs no validation on it.
type PrehashedSource struct {
	Ref  blobref.Ref
	Data []byte
}

// StreamSource tags an incrementally-delivered blob with its
// reference. It is never submitted directly: single uploads use
// Storage.UploadStream and bulk sessions use BulkUpload.OpenStream to
// obtain the live write handle.
type StreamSource struct {
	Ref blobref.Ref
}

func (BufferSource) blobSource()    {}
func (FileSource) blobSource()      {}
func (PrehashedSource) blobSource() {}
func (StreamSource) blobSource()    {}
