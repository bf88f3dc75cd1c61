// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package postgres stores movie documents as JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/catalog"
	"github.com/marquee/marquee/internal/store"
)

// MovieRepository implements catalog.Repository using PostgreSQL.
type MovieRepository struct {
	pool store.Pool
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(pool store.Pool) *MovieRepository {
	return &MovieRepository{pool: pool}
}

// List returns every movie ordered by creation time.
func (r *MovieRepository) List(ctx context.Context) ([]*catalog.Movie, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document, created_at, updated_at
		FROM movies
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, oops.Code("MOVIE_LIST_FAILED").With("operation", "list movies").Wrap(err)
	}
	defer rows.Close()

	movies := make([]*catalog.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, oops.Code("MOVIE_LIST_FAILED").With("operation", "scan movie row").Wrap(err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MOVIE_LIST_FAILED").With("operation", "iterate movie rows").Wrap(err)
	}
	return movies, nil
}

// Get retrieves a movie by ID.
func (r *MovieRepository) Get(ctx context.Context, id ulid.ULID) (*catalog.Movie, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document, created_at, updated_at
		FROM movies
		WHERE id = $1
	`, id.String())

	movie, err := scanMovie(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MOVIE_NOT_FOUND").With("id", id.String()).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MOVIE_GET_FAILED").
			With("operation", "get movie").
			With("id", id.String()).
			Wrap(err)
	}
	return movie, nil
}

// Create inserts a movie.
func (r *MovieRepository) Create(ctx context.Context, movie *catalog.Movie) error {
	doc, err := json.Marshal(movie.Document)
	if err != nil {
		return oops.Code("MOVIE_ENCODE_FAILED").With("id", movie.ID.String()).Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO movies (id, imdb_id, title, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, movie.ID.String(), nullable(movie.IMDBID), movie.Title, doc, movie.CreatedAt, movie.UpdatedAt)
	if err != nil {
		return wrapWriteError("insert movie", movie, err)
	}
	return nil
}

// Replace overwrites an existing movie's document.
func (r *MovieRepository) Replace(ctx context.Context, movie *catalog.Movie) error {
	doc, err := json.Marshal(movie.Document)
	if err != nil {
		return oops.Code("MOVIE_ENCODE_FAILED").With("id", movie.ID.String()).Wrap(err)
	}

	err = r.pool.QueryRow(ctx, `
		UPDATE movies SET imdb_id = $2, title = $3, document = $4, updated_at = $5
		WHERE id = $1
		RETURNING created_at
	`, movie.ID.String(), nullable(movie.IMDBID), movie.Title, doc, movie.UpdatedAt).Scan(&movie.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("MOVIE_NOT_FOUND").With("id", movie.ID.String()).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return wrapWriteError("replace movie", movie, err)
	}
	return nil
}

// Delete removes a movie by ID.
func (r *MovieRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("MOVIE_DELETE_FAILED").
			With("operation", "delete movie").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MOVIE_NOT_FOUND").With("id", id.String()).Wrap(catalog.ErrNotFound)
	}
	return nil
}

func scanMovie(row pgx.Row) (*catalog.Movie, error) {
	var (
		idStr string
		doc   []byte
		movie catalog.Movie
	)
	if err := row.Scan(&idStr, &doc, &movie.CreatedAt, &movie.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add context
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("MOVIE_INVALID_ID").With("id", idStr).Wrap(err)
	}
	movie.ID = id

	if err := json.Unmarshal(doc, &movie.Document); err != nil {
		return nil, oops.Code("MOVIE_DECODE_FAILED").With("id", idStr).Wrap(err)
	}
	return &movie, nil
}

func wrapWriteError(operation string, movie *catalog.Movie, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("MOVIE_DUPLICATE_IMDB_ID").
			With("imdb_id", movie.IMDBID).
			Wrap(catalog.ErrDuplicate)
	}
	return oops.Code("MOVIE_WRITE_FAILED").
		With("operation", operation).
		With("id", movie.ID.String()).
		Wrap(err)
}

// nullable maps the empty string to SQL NULL so the partial unique index on
// imdb_id ignores movies without one.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Compile-time interface check.
var _ catalog.Repository = (*MovieRepository)(nil)
