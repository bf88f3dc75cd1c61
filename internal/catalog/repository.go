// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package catalog

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Repository persists movies.
type Repository interface {
	// List returns every movie ordered by creation time.
	List(ctx context.Context) ([]*Movie, error)

	// Get retrieves a movie by ID, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id ulid.ULID) (*Movie, error)

	// Create stores a new movie. A second movie claiming the same imdbID
	// fails with an error wrapping ErrDuplicate.
	Create(ctx context.Context, movie *Movie) error

	// Replace overwrites the document and UpdatedAt of an existing movie and
	// fills in the stored CreatedAt.
	Replace(ctx context.Context, movie *Movie) error

	// Delete removes a movie by ID.
	Delete(ctx context.Context, id ulid.ULID) error
}
