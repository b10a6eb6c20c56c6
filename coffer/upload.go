// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/chinnucsk/coffercli/lib/blobref"
)

// blobContentType is the service's content type for raw blob bytes,
// both on single PUTs and on each part of a bulk body.
const blobContentType = "data/octet-stream"

// Upload sends one complete blob identified by ref. The reference is
// validated before any network traffic; an invalid reference fails
// locally with blobref.ErrInvalid.
//
// BufferSource and FileSource are accepted; file content is streamed,
// never materialized. A PrehashedSource is rejected: it carries its
// own reference, so pass a BufferSource with its data under that
// reference, or submit it through a bulk session. A StreamSource is
// rejected; incremental delivery goes through UploadStream.
func (s *Storage) Upload(ctx context.Context, ref blobref.Ref, src BlobSource) (*UploadResult, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	switch src := src.(type) {
	case BufferSource:
		return s.putBlob(ctx, ref, bytes.NewReader(src.Data))
	case FileSource:
		file, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("coffer: opening %s for upload: %w", src.Path, err)
		}
		defer file.Close()
		return s.putBlob(ctx, ref, file)
	case PrehashedSource:
		return nil, fmt.Errorf("coffer: prehashed source carries its own reference; upload its data as a BufferSource, or Send it on a bulk session")
	case StreamSource:
		return nil, fmt.Errorf("coffer: stream sources are uploaded through UploadStream")
	default:
		return nil, fmt.Errorf("coffer: unknown blob source %T", src)
	}
}

// UploadBytes hashes data and uploads it under the derived reference.
func (s *Storage) UploadBytes(ctx context.Context, data []byte) (*UploadResult, error) {
	return s.Upload(ctx, blobref.FromBytes(data), BufferSource{Data: data})
}

// UploadFile hashes the file at path and uploads its content under the
// derived reference. The file is read twice (hash pass, then send
// pass) and must not change in between.
func (s *Storage) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	ref, err := blobref.FromFile(path)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, ref, FileSource{Path: path})
}

// putBlob issues the chunked PUT for one blob and reconciles the
// single-object receipt.
func (s *Storage) putBlob(ctx context.Context, ref blobref.Ref, content io.Reader) (*UploadResult, error) {
	request, err := s.newBlobRequest(ctx, ref, content)
	if err != nil {
		return nil, err
	}
	response, err := s.conn.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("coffer: upload of %s failed: %w", ref, err)
	}
	defer response.Body.Close()
	return reconcileSingle(response)
}

// newBlobRequest builds the PUT for one blob. The service expects
// chunked transfer framing, so ContentLength is forced unknown even
// for sources whose size the transport could infer.
func (s *Storage) newBlobRequest(ctx context.Context, ref blobref.Ref, content io.Reader) (*http.Request, error) {
	request, err := s.conn.newRequest(ctx, http.MethodPut, s.blobURL(ref), content)
	if err != nil {
		return nil, err
	}
	request.ContentLength = -1
	request.Header.Set("Content-Type", blobContentType)
	return request, nil
}
