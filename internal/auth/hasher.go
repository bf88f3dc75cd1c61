// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// Parameters of credentials imported from the legacy store
// (PBKDF2-SHA256, hex encoded, the hex salt string is the PBKDF2 salt).
const (
	legacyIterations = 25000
	legacyMaxKeyLen  = 1024
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Wrapf(ErrInvalidInput, "password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an encoded hash of the password and its encoded salt.
	Hash(password string) (hash, salt string, err error)

	// Verify checks if the password matches the stored hash and salt.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash, salt string) (bool, error)

	// NeedsUpgrade returns true if the hash should be re-hashed with argon2id.
	NeedsUpgrade(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id.
// It also verifies legacy PBKDF2 credentials so they can be upgraded on login.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password.
// The hash is encoded as $argon2id$v=19$m=65536,t=1,p=4$<key>; the salt is
// returned separately, base64 encoded.
func (h *Argon2idHasher) Hash(password string) (string, string, error) {
	if password == "" {
		return "", "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, base64.RawStdEncoding.EncodeToString(salt), nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash, encodedSalt string) (bool, error) {
	if !strings.HasPrefix(encodedHash, "$") {
		return verifyLegacy(password, encodedHash, encodedSalt)
	}

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expectedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}
	if len(salt) == 0 {
		return false, oops.Code("AUTH_INVALID_SALT").Errorf("salt cannot be empty")
	}

	// Validate threads fits in uint8 to prevent silent truncation
	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	keyLen := len(expectedKey)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computedKey := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computedKey, expectedKey) == 1, nil
}

// NeedsUpgrade returns true if the hash is not argon2id (e.g., legacy PBKDF2).
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

// verifyLegacy checks a hex PBKDF2-SHA256 credential. The salt is used as
// the literal text it was stored as, not hex-decoded.
func verifyLegacy(password, hexHash, salt string) (bool, error) {
	expected, err := hex.DecodeString(hexHash)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").With("scheme", "pbkdf2").Wrap(err)
	}
	if len(expected) == 0 || len(expected) > legacyMaxKeyLen {
		return false, oops.Code("AUTH_INVALID_HASH").
			With("scheme", "pbkdf2").
			Errorf("invalid hash key length: %d", len(expected))
	}
	if salt == "" {
		return false, oops.Code("AUTH_INVALID_SALT").With("scheme", "pbkdf2").Errorf("salt cannot be empty")
	}

	computed := pbkdf2.Key([]byte(password), []byte(salt), legacyIterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
