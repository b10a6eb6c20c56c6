// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"context"
	"fmt"
	"io"

	"github.com/chinnucsk/coffercli/lib/blobref"
)

// StreamUpload is the live handle for one blob delivered incrementally
// through a single-object upload. Write pushes chunks to the wire;
// Commit signals end-of-blob and delivers the server's verdict. The
// handle is owned by one goroutine.
type StreamUpload struct {
	ref     blobref.Ref
	body    *io.PipeWriter
	outcome <-chan requestOutcome
	done    bool
}

// UploadStream starts a single-object upload for a blob whose bytes
// are produced incrementally. The reference is validated first. The
// PUT is in flight when UploadStream returns and does not block for
// the response; the returned handle accepts chunks until Commit. ctx
// must remain valid until Commit or Close.
//
// An abandoned handle holds an open request: Close releases it and is
// safe to defer alongside a normal Commit.
func (s *Storage) UploadStream(ctx context.Context, ref blobref.Ref) (*StreamUpload, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	reader, writer := io.Pipe()
	request, err := s.newBlobRequest(ctx, ref, reader)
	if err != nil {
		writer.Close()
		return nil, err
	}
	return &StreamUpload{
		ref:     ref,
		body:    writer,
		outcome: s.conn.startRequest(request),
	}, nil
}

// Ref returns the reference the upload was opened under.
func (u *StreamUpload) Ref() blobref.Ref { return u.ref }

// Write pushes one chunk of the blob. It blocks until the transport
// has consumed the bytes. A write error means the request has already
// ended; Commit returns the authoritative outcome.
func (u *StreamUpload) Write(p []byte) (int, error) {
	if u.done {
		return 0, ErrFinalized
	}
	n, err := u.body.Write(p)
	if err != nil {
		return n, fmt.Errorf("coffer: writing chunk of %s: %w", u.ref, err)
	}
	return n, nil
}

// Commit signals end-of-blob, awaits the response, and reconciles it
// into the UploadResult. The handle is spent afterwards.
func (u *StreamUpload) Commit() (*UploadResult, error) {
	if u.done {
		return nil, ErrFinalized
	}
	u.done = true
	u.body.Close()

	outcome := <-u.outcome
	if outcome.err != nil {
		return nil, fmt.Errorf("coffer: upload of %s failed: %w", u.ref, outcome.err)
	}
	defer outcome.response.Body.Close()
	return reconcileSingle(outcome.response)
}

// Close abandons the upload without a result, tearing down the
// in-flight request. It is a no-op after Commit and safe to defer.
func (u *StreamUpload) Close() error {
	if u.done {
		return nil
	}
	u.done = true
	u.body.CloseWithError(errAbandoned)

	outcome := <-u.outcome
	if outcome.response != nil {
		outcome.response.Body.Close()
	}
	return nil
}
