// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"errors"
	"fmt"
	"net/http"
)

// Protocol-misuse errors. These are detected locally, before any bytes
// reach the wire, and leave session state unchanged.
var (
	// ErrStreamOpen rejects whole-blob submission, stream opening, and
	// finalization while a sub-stream is accepting data. Close the open
	// BlobStream first.
	ErrStreamOpen = errors.New("coffer: a sub-stream is open")

	// ErrFinalized rejects operations on a session that has already
	// been finalized or closed. Sessions are single-use.
	ErrFinalized = errors.New("coffer: session already finalized")

	// ErrConnectionClosed rejects operations on a closed Connection.
	ErrConnectionClosed = errors.New("coffer: connection is closed")
)

// errAbandoned terminates the request-body pipe when a caller abandons
// an upload without finalizing.
var errAbandoned = errors.New("coffer: upload abandoned")

// ErrorKind classifies a non-success response from the server.
type ErrorKind string

const (
	KindUnauthorized  ErrorKind = "unauthorized"
	KindNotFound      ErrorKind = "not-found"
	KindConflict      ErrorKind = "conflict"
	KindServerFault   ErrorKind = "server-fault"
	KindRemoteFailure ErrorKind = "remote-failure"
)

// RemoteError is a non-success HTTP response from the Coffer server.
// Callers can use errors.As to extract the structured information:
//
//	var remoteErr *coffer.RemoteError
//	if errors.As(err, &remoteErr) {
//	    if remoteErr.Kind == coffer.KindConflict { ... }
//	}
type RemoteError struct {
	// Kind is the classified failure category.
	Kind ErrorKind
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the raw response body, carried verbatim for diagnostics.
	Body string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("coffer: %s (%d): %s", e.Kind, e.StatusCode, e.Body)
}

// IsKind checks whether err is a *RemoteError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind == kind
	}
	return false
}

// classifyStatus maps a non-success status to a RemoteError. The
// mapping is total: statuses without a dedicated kind classify as
// KindRemoteFailure.
func classifyStatus(statusCode int, body string) *RemoteError {
	kind := KindRemoteFailure
	switch {
	case statusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
	case statusCode == http.StatusNotFound:
		kind = KindNotFound
	case statusCode == http.StatusConflict:
		kind = KindConflict
	case statusCode >= 500:
		kind = KindServerFault
	}
	return &RemoteError{Kind: kind, StatusCode: statusCode, Body: body}
}
