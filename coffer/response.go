// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chinnucsk/coffercli/lib/blobref"
	"github.com/chinnucsk/coffercli/lib/netutil"
)

// UploadResult confirms server acceptance of one blob.
type UploadResult struct {
	Ref  blobref.Ref `json:"ref"`
	Size int64       `json:"size"`
}

// BulkResult is the outcome of a finalized bulk session. Received
// lists the accepted blobs in the order the server reported them;
// Errors carries the server's per-blob rejection descriptors verbatim.
// A non-empty Errors does not make finalization fail: partial success
// is data, not an error.
type BulkResult struct {
	Received []UploadResult    `json:"received"`
	Errors   []json.RawMessage `json:"errors"`
}

// receivedEntry and uploadReceipt mirror the service's response
// document. Decoding happens once, here; nothing else in the package
// looks up response fields by name.
type receivedEntry struct {
	BlobRef string `json:"blobref"`
	Size    int64  `json:"size"`
}

type uploadReceipt struct {
	Received []receivedEntry   `json:"received"`
	Errors   []json.RawMessage `json:"errors"`
}

func parseUploadReceipt(body []byte) (*uploadReceipt, error) {
	var receipt uploadReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("coffer: parsing upload receipt: %w", err)
	}
	return &receipt, nil
}

// singleResult extracts the one UploadResult a single-object upload
// must produce.
func (r *uploadReceipt) singleResult() (*UploadResult, error) {
	if len(r.Received) != 1 {
		return nil, fmt.Errorf("coffer: upload receipt lists %d blobs, want exactly 1", len(r.Received))
	}
	entry := r.Received[0]
	return &UploadResult{Ref: blobref.Ref(entry.BlobRef), Size: entry.Size}, nil
}

// bulkResult maps the receipt to the caller-facing batch outcome.
func (r *uploadReceipt) bulkResult() *BulkResult {
	result := &BulkResult{
		Received: make([]UploadResult, len(r.Received)),
		Errors:   r.Errors,
	}
	for i, entry := range r.Received {
		result.Received[i] = UploadResult{Ref: blobref.Ref(entry.BlobRef), Size: entry.Size}
	}
	return result
}

// reconcileSingle maps a completed single-object exchange to its
// UploadResult: 201 with a one-entry receipt, anything else a
// classified error carrying the response body.
func reconcileSingle(response *http.Response) (*UploadResult, error) {
	if response.StatusCode != http.StatusCreated {
		return nil, classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("coffer: reading upload receipt: %w", err)
	}
	receipt, err := parseUploadReceipt(body)
	if err != nil {
		return nil, err
	}
	return receipt.singleResult()
}

// reconcileBulk maps the finalize exchange to its BulkResult.
func reconcileBulk(response *http.Response) (*BulkResult, error) {
	if response.StatusCode != http.StatusCreated {
		return nil, classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("coffer: reading batch receipt: %w", err)
	}
	receipt, err := parseUploadReceipt(body)
	if err != nil {
		return nil, err
	}
	return receipt.bulkResult(), nil
}
