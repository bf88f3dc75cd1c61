// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/store"
)

const identityColumns = `id, username, email_address, display_name, password_hash, password_salt, created_at, updated_at`

// IdentityRepository implements auth.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	pool store.Pool
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(pool store.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create inserts an identity. The identities_username_key constraint is the
// only uniqueness check; a collision is reported as auth.ErrDuplicateUsername.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		identity.ID.String(),
		identity.Username,
		identity.EmailAddress,
		identity.DisplayName,
		identity.PasswordHash,
		identity.PasswordSalt,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("IDENTITY_DUPLICATE").
				With("username", identity.Username).
				Wrap(auth.ErrDuplicateUsername)
		}
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "insert identity").
			With("identity_id", identity.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id.String())
	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With("identity_id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_FAILED").
			With("operation", "get identity by id").
			With("identity_id", id.String()).
			Wrap(err)
	}
	return identity, nil
}

// GetByUsername retrieves an identity by exact, case-sensitive username.
func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE username = $1`, username)
	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_FAILED").
			With("operation", "get identity by username").
			Wrap(err)
	}
	return identity, nil
}

// UpdateCredential replaces the stored hash and salt.
func (r *IdentityRepository) UpdateCredential(ctx context.Context, id ulid.ULID, passwordHash, passwordSalt string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE identities SET password_hash = $2, password_salt = $3, updated_at = $4
		WHERE id = $1
	`, id.String(), passwordHash, passwordSalt, time.Now().UTC())
	if err != nil {
		return oops.Code("IDENTITY_UPDATE_CREDENTIAL_FAILED").
			With("operation", "update credential").
			With("identity_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("IDENTITY_NOT_FOUND").With("identity_id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanIdentity scans one identity row. pgx.ErrNoRows is returned unwrapped.
func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var (
		idStr    string
		identity auth.Identity
	)
	err := row.Scan(
		&idStr,
		&identity.Username,
		&identity.EmailAddress,
		&identity.DisplayName,
		&identity.PasswordHash,
		&identity.PasswordSalt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add context
	}

	identity.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ID").With("id", idStr).Wrap(err)
	}
	return &identity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.IdentityRepository = (*IdentityRepository)(nil)
