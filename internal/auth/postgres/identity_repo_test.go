// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/pkg/errutil"
)

var identityCols = []string{
	"id", "username", "email_address", "display_name",
	"password_hash", "password_salt", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestIdentityRepository_Create(t *testing.T) {
	ctx := context.Background()
	identity, err := auth.NewIdentity("alice", "a@x.io", "Alice", "$argon2id$h", "salt")
	require.NoError(t, err)

	tests := []struct {
		name      string
		execErr   error
		wantDup   bool
		wantCode  string
		wantError bool
	}{
		{name: "inserts row"},
		{
			name:      "unique violation is a duplicate username",
			execErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_username_key"},
			wantDup:   true,
			wantCode:  "IDENTITY_DUPLICATE",
			wantError: true,
		},
		{
			name:      "other errors are wrapped",
			execErr:   errors.New("connection refused"),
			wantCode:  "IDENTITY_CREATE_FAILED",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			exec := mock.ExpectExec("INSERT INTO identities").
				WithArgs(identity.ID.String(), "alice", "a@x.io", "Alice", "$argon2id$h", "salt",
					identity.CreatedAt, identity.UpdatedAt)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := NewIdentityRepository(mock).Create(ctx, identity)
			if !tt.wantError {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantDup, errors.Is(err, auth.ErrDuplicateUsername))
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestIdentityRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM identities WHERE username = \\$1").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(identityCols).
				AddRow(id.String(), "alice", "a@x.io", "Alice", "$argon2id$h", "salt", created, created))

		identity, err := NewIdentityRepository(mock).GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, identity.ID)
		assert.Equal(t, "alice", identity.Username)
		assert.Equal(t, "$argon2id$h", identity.PasswordHash)
		assert.Equal(t, created, identity.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM identities WHERE username = \\$1").
			WithArgs("Alice").
			WillReturnRows(pgxmock.NewRows(identityCols))

		_, err := NewIdentityRepository(mock).GetByUsername(ctx, "Alice")
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})

	t.Run("corrupt id", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM identities WHERE username = \\$1").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(identityCols).
				AddRow("not-a-ulid", "alice", "", "", "h", "s", created, created))

		_, err := NewIdentityRepository(mock).GetByUsername(ctx, "alice")
		require.Error(t, err)
		assert.False(t, errors.Is(err, auth.ErrNotFound))
	})
}

func TestIdentityRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()

	t.Run("not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM identities WHERE id = \\$1").
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows(identityCols))

		_, err := NewIdentityRepository(mock).GetByID(ctx, id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrNotFound))
		errutil.AssertErrorCode(t, err, "IDENTITY_NOT_FOUND")
	})

	t.Run("query error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM identities WHERE id = \\$1").
			WithArgs(id.String()).
			WillReturnError(errors.New("timeout"))

		_, err := NewIdentityRepository(mock).GetByID(ctx, id)
		require.Error(t, err)
		assert.False(t, errors.Is(err, auth.ErrNotFound))
		errutil.AssertErrorCode(t, err, "IDENTITY_GET_FAILED")
	})
}

func TestIdentityRepository_UpdateCredential(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()

	t.Run("updates", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec("UPDATE identities SET password_hash").
			WithArgs(id.String(), "$argon2id$new", "newsalt", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewIdentityRepository(mock).UpdateCredential(ctx, id, "$argon2id$new", "newsalt"))
	})

	t.Run("unknown identity", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec("UPDATE identities SET password_hash").
			WithArgs(id.String(), "$argon2id$new", "newsalt", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewIdentityRepository(mock).UpdateCredential(ctx, id, "$argon2id$new", "newsalt")
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})
}
