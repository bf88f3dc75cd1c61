// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Sentinel errors for the authentication failure taxonomy. Service errors
// wrap these so callers can classify with errors.Is regardless of how many
// oops layers sit on top.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSigning            = errors.New("token signing unavailable")
)

// Error codes attached to classified failures.
const (
	CodeDuplicateUsername  = "AUTH_DUPLICATE_USERNAME"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUnauthorized       = "AUTH_UNAUTHORIZED"
	CodeSigningError       = "AUTH_SIGNING_ERROR"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
}

func unauthorized(reason string) error {
	return oops.Code(CodeUnauthorized).With("reason", reason).Wrap(ErrUnauthorized)
}

// storeUnavailable wraps a repository failure that is not a classified miss.
func storeUnavailable(operation string, err error) error {
	return oops.Code(CodeStoreUnavailable).With("operation", operation).Wrap(err)
}
