// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token configuration.
const (
	TokenValidity   = 604800 * time.Second // seven days
	MinSecretLength = 32
)

// TokenClaims is the payload of an issued bearer token. The claim names are
// part of the client contract and must not change.
type TokenClaims struct {
	ID           string `json:"id"`
	DisplayName  string `json:"DisplayName"`
	Username     string `json:"username"`
	EmailAddress string `json:"EmailAddress"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens with a single secret.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithTokenClock replaces time.Now for issuing and verifying.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) { t.now = now }
}

// WithTokenValidity overrides TokenValidity.
func WithTokenValidity(d time.Duration) TokenOption {
	return func(t *TokenIssuer) { t.validity = d }
}

// NewTokenIssuer creates a TokenIssuer. A secret shorter than MinSecretLength
// is a signing error; the server refuses to start with one.
func NewTokenIssuer(secret []byte, opts ...TokenOption) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code(CodeSigningError).
			With("min_length", MinSecretLength).
			Wrapf(ErrSigning, "token secret must be at least %d bytes", MinSecretLength)
	}

	t := &TokenIssuer{
		secret:   append([]byte(nil), secret...),
		validity: TokenValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.validity <= 0 {
		return nil, oops.Code(CodeSigningError).Wrapf(ErrSigning, "token validity must be positive")
	}
	return t, nil
}

// Issue signs a token for the identity. The claims carry the identity's
// public profile; the credential never enters a token.
func (t *TokenIssuer) Issue(identity *Identity) (string, error) {
	if identity == nil {
		return "", oops.Code(CodeSigningError).Wrapf(ErrSigning, "identity is required")
	}

	now := t.now().UTC()
	claims := TokenClaims{
		ID:           identity.ID.String(),
		DisplayName:  identity.DisplayName,
		Username:     identity.Username,
		EmailAddress: identity.EmailAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.validity)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code(CodeSigningError).
			With("identity_id", identity.ID.String()).
			Wrapf(errors.Join(ErrSigning, err), "sign token")
	}
	return signed, nil
}

// Verify parses a raw token and checks its signature, algorithm and expiry.
// Every failure is reported as ErrUnauthorized.
func (t *TokenIssuer) Verify(raw string) (*TokenClaims, error) {
	if raw == "" {
		return nil, unauthorized("empty_token")
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, unauthorized("token_expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, unauthorized("bad_signature")
		default:
			return nil, unauthorized("malformed_token")
		}
	}
	if !token.Valid {
		return nil, unauthorized("invalid_token")
	}
	return claims, nil
}

// TokenAuthenticator resolves bearer tokens to the identity they name.
type TokenAuthenticator struct {
	issuer     *TokenIssuer
	identities IdentityRepository
}

// NewTokenAuthenticator creates a TokenAuthenticator.
func NewTokenAuthenticator(issuer *TokenIssuer, identities IdentityRepository) *TokenAuthenticator {
	return &TokenAuthenticator{issuer: issuer, identities: identities}
}

// Authenticate verifies the token and loads its identity. A token naming an
// identity that no longer exists is unauthorized.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, raw string) (*Identity, error) {
	claims, err := a.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(claims.ID)
	if err != nil {
		return nil, unauthorized("malformed_subject")
	}

	identity, err := a.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized("unknown_identity")
		}
		return nil, storeUnavailable("get identity by id", err)
	}
	return identity, nil
}
