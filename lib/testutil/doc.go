// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for coffer packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that individual tests do not
// need direct time.After calls when waiting on a channel, and cannot
// hang a test run when the expected send never happens.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no other coffer dependencies.
package testutil
