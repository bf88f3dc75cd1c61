// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/auth/authtest"
	"github.com/marquee/marquee/pkg/errutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newIssuerAt(t *testing.T, secret []byte, at *time.Time) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(secret, auth.WithTokenClock(func() time.Time { return *at }))
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	_, err := auth.NewTokenIssuer([]byte("short"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrSigning))
	errutil.AssertErrorCode(t, err, auth.CodeSigningError)
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	now := fixedNow
	issuer := newIssuerAt(t, testSecret, &now)
	identity, err := auth.NewIdentity("alice", "a@x.io", "Alice", "$argon2id$h", "s")
	require.NoError(t, err)

	raw, err := issuer.Issue(identity)
	require.NoError(t, err)
	assert.Len(t, strings.Split(raw, "."), 3)
	assert.NotContains(t, raw, "argon2id")

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, identity.ID.String(), claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, "a@x.io", claims.EmailAddress)
	assert.Equal(t, int64(604800), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())

	t.Run("valid until just before expiry", func(t *testing.T) {
		now = fixedNow.Add(auth.TokenValidity - time.Second)
		_, err := issuer.Verify(raw)
		assert.NoError(t, err)
	})

	t.Run("expired after the validity window", func(t *testing.T) {
		now = fixedNow.Add(auth.TokenValidity + time.Second)
		_, err := issuer.Verify(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrUnauthorized))
		errutil.AssertErrorContext(t, err, "reason", "token_expired")
	})
}

func TestTokenIssuer_VerifyRejects(t *testing.T) {
	now := fixedNow
	issuer := newIssuerAt(t, testSecret, &now)
	identity, err := auth.NewIdentity("alice", "", "", "$argon2id$h", "s")
	require.NoError(t, err)
	raw, err := issuer.Issue(identity)
	require.NoError(t, err)

	other := newIssuerAt(t, []byte("ffffffffffffffffffffffffffffffff"), &now)
	foreign, err := other.Issue(identity)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.TokenClaims{
		ID: identity.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.TokenClaims{
		ID: identity.ID.String(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"tampered payload", raw[:len(raw)-2] + "xx"},
		{"alg none", noneToken},
		{"missing expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, auth.ErrUnauthorized))
		})
	}
}

func TestTokenAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	issuer := newIssuerAt(t, testSecret, &now)
	identities := authtest.NewIdentityStore()
	authenticator := auth.NewTokenAuthenticator(issuer, identities)

	identity, err := auth.NewIdentity("alice", "", "", "$argon2id$h", "s")
	require.NoError(t, err)
	require.NoError(t, identities.Create(ctx, identity))
	raw, err := issuer.Issue(identity)
	require.NoError(t, err)

	t.Run("resolves identity", func(t *testing.T) {
		got, err := authenticator.Authenticate(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, got.ID)
	})

	t.Run("malformed subject", func(t *testing.T) {
		bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.TokenClaims{
			ID: "not-a-ulid",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = authenticator.Authenticate(ctx, bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrUnauthorized))
	})

	t.Run("store failure", func(t *testing.T) {
		identities.Err = errors.New("db down")
		defer func() { identities.Err = nil }()

		_, err := authenticator.Authenticate(ctx, raw)
		require.Error(t, err)
		assert.False(t, errors.Is(err, auth.ErrUnauthorized))
		errutil.AssertErrorCode(t, err, auth.CodeStoreUnavailable)
	})

	t.Run("identity removed after issue", func(t *testing.T) {
		identities.Remove(identity.ID)

		_, err := authenticator.Authenticate(ctx, raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrUnauthorized))
		errutil.AssertErrorContext(t, err, "reason", "unknown_identity")
	})
}
