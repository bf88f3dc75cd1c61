// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 64
)

// Identity is the authenticable principal behind a catalog user.
type Identity struct {
	ID           ulid.ULID
	Username     string
	EmailAddress string
	DisplayName  string
	// PasswordHash and PasswordSalt never leave the repository boundary.
	// The web layer renders identities through its own view type.
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewIdentity creates a validated Identity with a fresh ID.
// The credential must already be hashed.
func NewIdentity(username, emailAddress, displayName, passwordHash, passwordSalt string) (*Identity, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("IDENTITY_INVALID_CREDENTIAL").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Identity{
		ID:           ulid.Make(),
		Username:     username,
		EmailAddress: strings.TrimSpace(emailAddress),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername validates a username against rules.
// Usernames are case-sensitive and compared byte for byte, so the only
// constraints are length and the absence of whitespace and control characters.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Wrapf(ErrInvalidInput, "username cannot be empty")
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Wrapf(ErrInvalidInput, "username must be at most %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return oops.Code("AUTH_INVALID_USERNAME").
				Wrapf(ErrInvalidInput, "username cannot contain whitespace or control characters")
		}
	}
	return nil
}

// IdentityRepository manages identity persistence.
type IdentityRepository interface {
	// Create stores a new identity. Implementations enforce username
	// uniqueness and return an error wrapping ErrDuplicateUsername on collision.
	Create(ctx context.Context, identity *Identity) error

	// GetByID retrieves an identity by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Identity, error)

	// GetByUsername retrieves an identity by exact username.
	GetByUsername(ctx context.Context, username string) (*Identity, error)

	// UpdateCredential replaces the stored hash and salt.
	UpdateCredential(ctx context.Context, id ulid.ULID, passwordHash, passwordSalt string) error
}
