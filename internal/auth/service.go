// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides registration, password login and cookie sessions.
type Service struct {
	identities IdentityRepository
	sessions   WebSessionRepository
	hasher     PasswordHasher
	logger     *slog.Logger
	sessionTTL time.Duration
	now        func() time.Time
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithLogger sets the logger used for failed logins and best-effort writes.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithSessionTTL overrides DefaultSessionTokenExpiry.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewAuthService creates a new Service.
func NewAuthService(identities IdentityRepository, sessions WebSessionRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if identities == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("identities repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}

	s := &Service{
		identities: identities,
		sessions:   sessions,
		hasher:     hasher,
		logger:     slog.Default(),
		sessionTTL: DefaultSessionTokenExpiry,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger cannot be nil")
	}
	if s.sessionTTL <= 0 {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("session_ttl", s.sessionTTL).Errorf("session TTL must be positive")
	}
	return s, nil
}

// dummyPasswordHash and dummyPasswordSalt are verified when a username is
// unknown so the response time does not reveal whether the account exists.
// They are not a credential and never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing equalisation
const (
	dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	dummyPasswordSalt = "AAAAAAAAAAAAAAAAAAAAAA"
)

// Registration carries the fields accepted when creating an identity.
type Registration struct {
	Username     string
	Password     string
	EmailAddress string
	DisplayName  string
}

// LoginResult is returned by a successful Login.
// Token is the plaintext session token; only its hash is persisted.
type LoginResult struct {
	Identity *Identity
	Session  *WebSession
	Token    string
}

// Register creates an identity with a freshly hashed credential.
// Username uniqueness is enforced by the repository, not checked here first.
func (s *Service) Register(ctx context.Context, reg Registration) (*Identity, error) {
	if err := ValidateUsername(reg.Username); err != nil {
		return nil, err
	}

	hash, salt, err := s.hasher.Hash(reg.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	identity, err := NewIdentity(reg.Username, reg.EmailAddress, reg.DisplayName, hash, salt)
	if err != nil {
		return nil, err
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			s.logger.InfoContext(ctx, "registration rejected", "username", reg.Username, "reason", "duplicate_username")
			return nil, oops.Code(CodeDuplicateUsername).
				With("username", reg.Username).
				Wrap(ErrDuplicateUsername)
		}
		return nil, storeUnavailable("create identity", err)
	}

	s.logger.InfoContext(ctx, "identity registered", "identity_id", identity.ID.String(), "username", identity.Username)
	return identity, nil
}

// Authenticate validates a username/password pair.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials;
// only the log line records which one occurred.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	identity, lookupErr := s.identities.GetByUsername(ctx, username)

	targetHash, targetSalt := dummyPasswordHash, dummyPasswordSalt
	identityExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, storeUnavailable("get identity by username", lookupErr)
		}
	} else {
		targetHash, targetSalt = identity.PasswordHash, identity.PasswordSalt
		identityExists = true
	}

	// Always verify, even against the dummy hash, to keep timing uniform.
	valid, verifyErr := s.hasher.Verify(password, targetHash, targetSalt)
	if verifyErr != nil {
		if !identityExists {
			s.logger.InfoContext(ctx, "login failed", "username", username, "reason", "unknown_user")
			return nil, invalidCredentials()
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("identity_id", identity.ID.String()).
			Wrap(verifyErr)
	}

	if !identityExists {
		s.logger.InfoContext(ctx, "login failed", "username", username, "reason", "unknown_user")
		return nil, invalidCredentials()
	}
	if !valid {
		s.logger.InfoContext(ctx, "login failed", "username", username, "reason", "bad_password")
		return nil, invalidCredentials()
	}

	if s.hasher.NeedsUpgrade(identity.PasswordHash) {
		s.upgradeCredential(ctx, identity, password)
	}

	return identity, nil
}

// upgradeCredential rehashes a legacy credential with argon2id. Failures are
// logged and otherwise ignored; the login still succeeds.
func (s *Service) upgradeCredential(ctx context.Context, identity *Identity, password string) {
	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "credential upgrade failed",
			"identity_id", identity.ID.String(),
			"operation", "hash password",
			"error", err)
		return
	}
	if err := s.identities.UpdateCredential(ctx, identity.ID, hash, salt); err != nil {
		s.logger.WarnContext(ctx, "credential upgrade failed",
			"identity_id", identity.ID.String(),
			"operation", "update credential",
			"error", err)
		return
	}
	identity.PasswordHash, identity.PasswordSalt = hash, salt
	s.logger.InfoContext(ctx, "credential upgraded", "identity_id", identity.ID.String())
}

// Login authenticates a username/password pair and creates a web session.
func (s *Service) Login(ctx context.Context, username, password, userAgent, ipAddress string) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	session, token, err := s.StartSession(ctx, identity, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Identity: identity, Session: session, Token: token}, nil
}

// StartSession creates a web session for an already authenticated identity.
// Returns the session and the plaintext token to deliver to the client.
func (s *Service) StartSession(ctx context.Context, identity *Identity, userAgent, ipAddress string) (*WebSession, string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	expiresAt := s.now().UTC().Add(s.sessionTTL)
	session, err := NewWebSession(identity.ID, tokenHash, userAgent, ipAddress, expiresAt)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create web session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", storeUnavailable("persist session", err)
	}

	return session, token, nil
}

// ResolveSession validates a session token and returns the identity it is
// bound to. Unknown, expired and orphaned sessions all yield ErrUnauthorized.
func (s *Service) ResolveSession(ctx context.Context, token string) (*Identity, *WebSession, error) {
	if token == "" {
		return nil, nil, unauthorized("empty_session_token")
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, unauthorized("unknown_session")
		}
		return nil, nil, storeUnavailable("get session by token hash", err)
	}

	now := s.now().UTC()
	if session.IsExpiredAt(now) {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete expired session",
				"session_id", session.ID.String(),
				"error", delErr)
		}
		return nil, nil, unauthorized("session_expired")
	}

	identity, err := s.identities.GetByID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, unauthorized("unknown_identity")
		}
		return nil, nil, storeUnavailable("get identity by id", err)
	}

	if err := s.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update session last seen",
			"session_id", session.ID.String(),
			"error", err)
	}

	return identity, session, nil
}

// Logout invalidates a web session. Deleting a session that is already gone
// is not an error.
func (s *Service) Logout(ctx context.Context, sessionID ulid.ULID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			With("session_id", sessionID.String()).
			Wrap(err)
	}
	return nil
}
