// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/chinnucsk/coffercli/lib/blobref"
	"github.com/chinnucsk/coffercli/lib/netutil"
)

// Storage is a handle on one named container. It is immutable and
// cheap to create; every request it issues goes through the owning
// Connection's transport.
type Storage struct {
	conn *Connection
	name string
	url  string
}

// Container returns the container name this handle is bound to.
func (s *Storage) Container() string { return s.name }

// blobURL returns the request URL for one blob. The ref has passed
// grammar validation, so it is URL-safe as-is.
func (s *Storage) blobURL(ref blobref.Ref) string {
	return s.url + "/" + string(ref)
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Ref  blobref.Ref `json:"ref"`
	Size int64       `json:"size"`
}

// Stat checks whether a blob exists and reports its size. A missing
// blob is a *RemoteError with KindNotFound.
func (s *Storage) Stat(ctx context.Context, ref blobref.Ref) (*BlobInfo, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	request, err := s.conn.newRequest(ctx, http.MethodHead, s.blobURL(ref), nil)
	if err != nil {
		return nil, err
	}
	response, err := s.conn.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("coffer: stat of %s failed: %w", ref, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	return &BlobInfo{Ref: ref, Size: response.ContentLength}, nil
}

// FetchResult holds the content stream from a fetch operation. The
// caller MUST close Content when done to release the underlying
// connection.
type FetchResult struct {
	Ref blobref.Ref

	// Size is the blob size declared by the server, or -1 when the
	// response did not carry one.
	Size int64

	// Content streams the blob bytes.
	Content io.ReadCloser
}

// Fetch downloads a blob. The content is returned as a stream rather
// than materialized; the caller MUST close FetchResult.Content when
// done.
func (s *Storage) Fetch(ctx context.Context, ref blobref.Ref) (*FetchResult, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	request, err := s.conn.newRequest(ctx, http.MethodGet, s.blobURL(ref), nil)
	if err != nil {
		return nil, err
	}
	response, err := s.conn.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("coffer: fetch of %s failed: %w", ref, err)
	}
	if response.StatusCode != http.StatusOK {
		defer response.Body.Close()
		return nil, classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	return &FetchResult{Ref: ref, Size: response.ContentLength, Content: response.Body}, nil
}

// Delete removes a blob from the container.
func (s *Storage) Delete(ctx context.Context, ref blobref.Ref) error {
	if err := s.conn.checkOpen(); err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	request, err := s.conn.newRequest(ctx, http.MethodDelete, s.blobURL(ref), nil)
	if err != nil {
		return err
	}
	response, err := s.conn.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("coffer: delete of %s failed: %w", ref, err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	return nil
}
