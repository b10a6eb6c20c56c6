// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package blobref

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Algorithm selects the hash function used to derive a reference.
type Algorithm string

const (
	// SHA256 is the default reference algorithm. Coffer servers
	// accept any algorithm label, but sha256 is what the reference
	// implementation and the wider blob-store ecosystem use.
	SHA256 Algorithm = "sha256"

	// BLAKE3 produces a 32-byte BLAKE3 digest. Faster than SHA-256
	// on large blobs; use it when both ends agree on the label.
	BLAKE3 Algorithm = "blake3"
)

// DefaultAlgorithm is used by the FromBytes/FromReader/FromFile
// shorthands that do not take an explicit algorithm.
const DefaultAlgorithm = SHA256

// newHash returns a fresh hash state for the algorithm.
func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", a)
	}
}

// FromBytes computes the reference of data with the default
// algorithm in one pass.
func FromBytes(data []byte) Ref {
	sum := sha256.Sum256(data)
	return formatRef(SHA256, sum[:])
}

// FromBytesWith computes the reference of data with an explicit
// algorithm.
func FromBytesWith(algorithm Algorithm, data []byte) (Ref, error) {
	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	h.Write(data)
	return formatRef(algorithm, h.Sum(nil)), nil
}

// FromReader computes the reference of everything readable from r
// with the default algorithm. Content is streamed through the hash
// state, so working memory stays constant regardless of content
// size. The result is identical to FromBytes of the same bytes.
func FromReader(r io.Reader) (Ref, error) {
	return FromReaderWith(DefaultAlgorithm, r)
}

// FromReaderWith is FromReader with an explicit algorithm.
func FromReaderWith(algorithm Algorithm, r io.Reader) (Ref, error) {
	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return formatRef(algorithm, h.Sum(nil)), nil
}

// FromFile computes the reference of the file at path with the
// default algorithm. The file is streamed through the hash function
// (via io.Copy) to keep memory usage constant regardless of file
// size.
func FromFile(path string) (Ref, error) {
	return FromFileWith(DefaultAlgorithm, path)
}

// FromFileWith is FromFile with an explicit algorithm.
func FromFileWith(algorithm Algorithm, path string) (Ref, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return formatRef(algorithm, h.Sum(nil)), nil
}

// formatRef renders the wire form: "<algorithm>-<lowercase hex>".
// Output always passes Validate: hex.EncodeToString emits lowercase
// and the algorithm labels are lowercase alphanumeric by construction.
func formatRef(algorithm Algorithm, digest []byte) Ref {
	return Ref(string(algorithm) + "-" + hex.EncodeToString(digest))
}
