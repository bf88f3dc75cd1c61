// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package authtest provides in-memory repositories for tests that exercise
// the auth service end to end without a database.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/auth"
)

// IdentityStore is an in-memory auth.IdentityRepository.
type IdentityStore struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]auth.Identity
	byUsername map[string]ulid.ULID

	// Err, when set, is returned by every method.
	Err error
}

// NewIdentityStore creates an empty IdentityStore.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byID:       make(map[ulid.ULID]auth.Identity),
		byUsername: make(map[string]ulid.ULID),
	}
}

// Create implements auth.IdentityRepository.
func (s *IdentityStore) Create(_ context.Context, identity *auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byUsername[identity.Username]; ok {
		return oops.With("username", identity.Username).Wrap(auth.ErrDuplicateUsername)
	}
	s.byID[identity.ID] = *identity
	s.byUsername[identity.Username] = identity.ID
	return nil
}

// GetByID implements auth.IdentityRepository.
func (s *IdentityStore) GetByID(_ context.Context, id ulid.ULID) (*auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	identity, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &identity, nil
}

// GetByUsername implements auth.IdentityRepository.
func (s *IdentityStore) GetByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	s.mu.RLock()
	id, ok := s.byUsername[username]
	err := s.Err
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auth.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// UpdateCredential implements auth.IdentityRepository.
func (s *IdentityStore) UpdateCredential(_ context.Context, id ulid.ULID, passwordHash, passwordSalt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	identity, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	identity.PasswordHash = passwordHash
	identity.PasswordSalt = passwordSalt
	identity.UpdatedAt = time.Now().UTC()
	s.byID[id] = identity
	return nil
}

// Remove deletes an identity, leaving any sessions or tokens that name it
// dangling.
func (s *IdentityStore) Remove(id ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.byID[id]; ok {
		delete(s.byUsername, identity.Username)
		delete(s.byID, id)
	}
}

// SessionStore is an in-memory auth.WebSessionRepository.
type SessionStore struct {
	mu     sync.RWMutex
	byID   map[ulid.ULID]auth.WebSession
	byHash map[string]ulid.ULID
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:   make(map[ulid.ULID]auth.WebSession),
		byHash: make(map[string]ulid.ULID),
	}
}

// Create implements auth.WebSessionRepository.
func (s *SessionStore) Create(_ context.Context, session *auth.WebSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[session.ID] = *session
	s.byHash[session.TokenHash] = session.ID
	return nil
}

// GetByTokenHash implements auth.WebSessionRepository.
func (s *SessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*auth.WebSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	session := s.byID[id]
	return &session, nil
}

// UpdateLastSeen implements auth.WebSessionRepository.
func (s *SessionStore) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	session.LastSeenAt = lastSeen
	s.byID[id] = session
	return nil
}

// Delete implements auth.WebSessionRepository.
func (s *SessionStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(s.byHash, session.TokenHash)
	delete(s.byID, id)
	return nil
}

// DeleteExpired implements auth.WebSessionRepository.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, session := range s.byID {
		if session.ExpiresAt.Before(now) {
			delete(s.byHash, session.TokenHash)
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
