// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package blobref

import (
	"errors"
	"fmt"
	"strings"
)

// Ref is a content-addressed blob reference: "<algorithm>-<digest>".
// The algorithm label is lowercase alphanumeric and starts with a
// letter; the digest is lowercase hex. A Ref is immutable: it is
// either produced by the hashing functions in this package (always
// valid) or supplied by a caller (validate before use).
type Ref string

// ErrInvalid is wrapped by every validation failure. Callers match it
// with errors.Is to distinguish a malformed reference from other
// failure modes without inspecting message text.
var ErrInvalid = errors.New("invalid blob reference")

// Parse validates s and returns it as a Ref.
func Parse(s string) (Ref, error) {
	r := Ref(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks that the reference matches the wire grammar:
// an algorithm label ([a-z][a-z0-9]*), a single dash, and a non-empty
// lowercase hex digest. Anything else is rejected, uppercase hex and
// empty components included.
func (r Ref) Validate() error {
	s := string(r)
	if s == "" {
		return fmt.Errorf("%w: empty string", ErrInvalid)
	}

	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return fmt.Errorf("%w %q: no algorithm separator", ErrInvalid, s)
	}
	if dash == 0 {
		return fmt.Errorf("%w %q: empty algorithm", ErrInvalid, s)
	}
	if dash == len(s)-1 {
		return fmt.Errorf("%w %q: empty digest", ErrInvalid, s)
	}

	algorithm, digest := s[:dash], s[dash+1:]
	if algorithm[0] < 'a' || algorithm[0] > 'z' {
		return fmt.Errorf("%w %q: algorithm must start with a lowercase letter", ErrInvalid, s)
	}
	for i := 1; i < len(algorithm); i++ {
		c := algorithm[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return fmt.Errorf("%w %q: invalid character %q in algorithm", ErrInvalid, s, c)
		}
	}
	for i := 0; i < len(digest); i++ {
		c := digest[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w %q: invalid character %q in digest", ErrInvalid, s, c)
		}
	}
	return nil
}

// String returns the reference in its wire form.
func (r Ref) String() string {
	return string(r)
}

// IsZero reports whether the Ref is the zero value (empty).
func (r Ref) IsZero() bool {
	return r == ""
}

// Algorithm returns the algorithm label, or "" if the reference has
// no separator. It does not validate the reference.
func (r Ref) Algorithm() string {
	s := string(r)
	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return ""
	}
	return s[:dash]
}

// Digest returns the hex digest portion, or "" if the reference has
// no separator. It does not validate the reference.
func (r Ref) Digest() string {
	s := string(r)
	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return ""
	}
	return s[dash+1:]
}
