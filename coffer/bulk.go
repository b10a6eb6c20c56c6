// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/chinnucsk/coffercli/lib/blobref"
	"github.com/chinnucsk/coffercli/lib/netutil"
)

// BulkUpload is one bulk-upload session: any number of blobs
// multiplexed onto a single chunked POST as multipart parts, one part
// per blob, in exactly the order they were submitted. The body is
// built incrementally: parts reach the wire as submissions arrive,
// never pre-assembled.
//
// A session is owned by a single goroutine. It accepts whole blobs
// (Send) and at most one incrementally-delivered blob at a time
// (OpenStream); while a sub-stream is open every other session call
// fails with ErrStreamOpen. Finalize closes the body and returns the
// batch receipt; afterwards the session is spent. An abandoned session
// holds an open request: Close releases it and is safe to defer.
type BulkUpload struct {
	storage *Storage
	body    *io.PipeWriter
	parts   *multipart.Writer
	outcome <-chan requestOutcome

	// stream is the open sub-stream, or nil when the session is
	// accepting submissions.
	stream *BlobStream

	// failed poisons the session after a broken submission: a partial
	// part may be on the wire, so no further parts can be framed.
	failed error

	finalized bool
}

// BulkUpload begins a bulk-upload session against this container. The
// POST is in flight when BulkUpload returns. ctx must remain valid
// until Finalize or Close.
func (s *Storage) BulkUpload(ctx context.Context) (*BulkUpload, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}

	reader, writer := io.Pipe()
	parts := multipart.NewWriter(writer)
	request, err := s.conn.newRequest(ctx, http.MethodPost, s.url, reader)
	if err != nil {
		writer.Close()
		return nil, err
	}
	request.ContentLength = -1
	request.Header.Set("Content-Type", parts.FormDataContentType())

	s.conn.logger.Debug("bulk upload session opened", "container", s.name)
	return &BulkUpload{
		storage: s,
		body:    writer,
		parts:   parts,
		outcome: s.conn.startRequest(request),
	}, nil
}

// Send submits one whole blob and returns the reference it was framed
// under. A BufferSource or FileSource is hashed here; a
// PrehashedSource is framed under its caller-supplied reference with
// no validation, the deliberate escape hatch for references computed
// elsewhere. A StreamSource is rejected: incremental delivery goes
// through OpenStream.
//
// A submission that fails after its part has been opened leaves a
// truncated part on the wire; the session is poisoned and every later
// Send reports the same error. A failed file hash poisons the session
// the same way even though nothing was framed; callers treat a broken
// file submission as fatal for the batch.
func (b *BulkUpload) Send(src BlobSource) (blobref.Ref, error) {
	if err := b.checkAccepting(); err != nil {
		return "", err
	}

	switch src := src.(type) {
	case BufferSource:
		ref := blobref.FromBytes(src.Data)
		if err := b.writePart(ref, bytes.NewReader(src.Data)); err != nil {
			return "", err
		}
		return ref, nil
	case PrehashedSource:
		if err := b.writePart(src.Ref, bytes.NewReader(src.Data)); err != nil {
			return "", err
		}
		return src.Ref, nil
	case FileSource:
		return b.sendFile(src.Path)
	case StreamSource:
		return "", fmt.Errorf("coffer: stream sources are submitted through OpenStream")
	default:
		return "", fmt.Errorf("coffer: unknown blob source %T", src)
	}
}

// OpenStream begins an incrementally-delivered blob tagged with ref
// and returns its sub-stream. The reference is validated first. While
// the sub-stream is open, Send, OpenStream, and Finalize on the
// session fail with ErrStreamOpen; closing the sub-stream completes
// the blob and returns the session to the accepting state.
func (b *BulkUpload) OpenStream(ref blobref.Ref) (*BlobStream, error) {
	if err := b.checkAccepting(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	part, err := b.createPart(ref)
	if err != nil {
		return nil, err
	}
	stream := &BlobStream{session: b, part: part, ref: ref}
	b.stream = stream
	return stream, nil
}

// Finalize closes the multipart body, awaits the batch response, and
// reconciles it into a BulkResult. Accepted and rejected blobs are
// both data: a receipt with a non-empty error list is still a
// successful finalization. Any non-201 status or transport failure is
// returned as an error instead. The session is spent afterwards.
//
// Finalizing while a sub-stream is open fails with ErrStreamOpen and
// leaves the session intact.
func (b *BulkUpload) Finalize() (*BulkResult, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	if b.stream != nil {
		return nil, ErrStreamOpen
	}
	b.finalized = true

	if b.failed != nil {
		// The body is corrupt; the batch cannot be completed. Abort
		// the request, but prefer the server's verdict over the local
		// failure when one already arrived.
		b.body.CloseWithError(b.failed)
		outcome := <-b.outcome
		if outcome.err == nil {
			defer outcome.response.Body.Close()
			if outcome.response.StatusCode != http.StatusCreated {
				return nil, classifyStatus(outcome.response.StatusCode, netutil.ErrorBody(outcome.response.Body))
			}
		}
		return nil, b.failed
	}

	if err := b.parts.Close(); err != nil {
		b.body.CloseWithError(err)
	} else {
		b.body.Close()
	}

	outcome := <-b.outcome
	if outcome.err != nil {
		return nil, fmt.Errorf("coffer: bulk upload to %s failed: %w", b.storage.name, outcome.err)
	}
	defer outcome.response.Body.Close()
	result, err := reconcileBulk(outcome.response)
	if err != nil {
		return nil, err
	}
	b.storage.conn.logger.Debug("bulk upload finalized",
		"container", b.storage.name,
		"accepted", len(result.Received),
		"rejected", len(result.Errors))
	return result, nil
}

// Close abandons the session, tearing down the in-flight request and
// discarding its outcome. It is a no-op after Finalize and safe to
// defer.
func (b *BulkUpload) Close() error {
	if b.finalized {
		return nil
	}
	b.finalized = true
	if b.stream != nil {
		b.stream.closed = true
		b.stream = nil
	}
	b.body.CloseWithError(errAbandoned)

	outcome := <-b.outcome
	if outcome.response != nil {
		outcome.response.Body.Close()
	}
	return nil
}

// checkAccepting rejects submissions in any state other than idle.
// The terminal and sub-stream states take precedence over a poisoned
// session so that misuse is always reported as misuse.
func (b *BulkUpload) checkAccepting() error {
	if b.finalized {
		return ErrFinalized
	}
	if b.stream != nil {
		return ErrStreamOpen
	}
	if b.failed != nil {
		return b.failed
	}
	return nil
}

// fail poisons the session. The first failure sticks; every later
// submission reports it.
func (b *BulkUpload) fail(err error) error {
	if b.failed == nil {
		b.failed = err
	}
	return b.failed
}

func (b *BulkUpload) sendFile(path string) (blobref.Ref, error) {
	ref, err := blobref.FromFile(path)
	if err != nil {
		return "", b.fail(err)
	}
	file, err := os.Open(path)
	if err != nil {
		return "", b.fail(fmt.Errorf("coffer: opening %s for upload: %w", path, err))
	}
	defer file.Close()
	if err := b.writePart(ref, file); err != nil {
		return "", err
	}
	return ref, nil
}

// writePart frames one complete part: headers, content, ready for the
// next boundary. Failures poison the session.
func (b *BulkUpload) writePart(ref blobref.Ref, content io.Reader) error {
	part, err := b.createPart(ref)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return b.fail(fmt.Errorf("coffer: writing part %s: %w", ref, err))
	}
	return nil
}

// createPart opens a multipart part tagged with the reference. The
// part name doubles as the filename, which is what the service keys
// its receipt on. Failures poison the session: opening a part writes
// the preceding boundary, so a failure here can leave the body
// mid-frame.
func (b *BulkUpload) createPart(ref blobref.Ref) (io.Writer, error) {
	name := escapeQuotes(string(ref))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, name, name))
	header.Set("Content-Type", blobContentType)
	part, err := b.parts.CreatePart(header)
	if err != nil {
		return nil, b.fail(fmt.Errorf("coffer: framing part %s: %w", ref, err))
	}
	return part, nil
}

// quoteEscaper makes a reference safe inside a quoted-string header
// parameter. Validated references never need it; pre-hashed references
// are caller-supplied and may contain anything.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// BlobStream is the open sub-stream of a bulk session: the one
// multipart part currently accepting incremental bytes for a single
// blob. Write appends chunks in order; Close completes the blob and
// returns the session to the accepting state.
type BlobStream struct {
	session *BulkUpload
	part    io.Writer
	ref     blobref.Ref
	closed  bool
}

// Ref returns the reference the sub-stream was opened under.
func (st *BlobStream) Ref() blobref.Ref { return st.ref }

// Write appends one chunk to the blob. It blocks until the transport
// has consumed the bytes. A write error poisons the session: the part
// on the wire is truncated.
func (st *BlobStream) Write(p []byte) (int, error) {
	if st.closed {
		return 0, fmt.Errorf("coffer: sub-stream for %s is closed", st.ref)
	}
	n, err := st.part.Write(p)
	if err != nil {
		return n, st.session.fail(fmt.Errorf("coffer: writing part %s: %w", st.ref, err))
	}
	return n, nil
}

// Close completes the blob and returns the session to the accepting
// state. The part itself needs no trailer; the next part's boundary
// (or the closing boundary at Finalize) delimits it. Close is
// idempotent.
func (st *BlobStream) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	st.session.stream = nil
	return nil
}
