// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package catalog

import "errors"

// Sentinel errors for catalog operations.
var (
	ErrNotFound        = errors.New("movie not found")
	ErrDuplicate       = errors.New("movie with this imdbID already exists")
	ErrInvalidDocument = errors.New("invalid movie document")
)
