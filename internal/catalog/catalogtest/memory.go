// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package catalogtest provides an in-memory catalog.Repository.
package catalogtest

import (
	"context"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/catalog"
)

// MovieStore is an in-memory catalog.Repository.
type MovieStore struct {
	mu     sync.RWMutex
	movies map[ulid.ULID]catalog.Movie

	// Err, when set, is returned by every method.
	Err error
}

// NewMovieStore creates an empty MovieStore.
func NewMovieStore() *MovieStore {
	return &MovieStore{movies: make(map[ulid.ULID]catalog.Movie)}
}

// List implements catalog.Repository.
func (s *MovieStore) List(_ context.Context) ([]*catalog.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*catalog.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, &m)
	}
	slices.SortFunc(out, func(a, b *catalog.Movie) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})
	return out, nil
}

// Get implements catalog.Repository.
func (s *MovieStore) Get(_ context.Context, id ulid.ULID) (*catalog.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.movies[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &m, nil
}

// Create implements catalog.Repository.
func (s *MovieStore) Create(_ context.Context, movie *catalog.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.imdbTaken(movie.IMDBID, movie.ID) {
		return oops.With("imdb_id", movie.IMDBID).Wrap(catalog.ErrDuplicate)
	}
	s.movies[movie.ID] = *movie
	return nil
}

// Replace implements catalog.Repository.
func (s *MovieStore) Replace(_ context.Context, movie *catalog.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	existing, ok := s.movies[movie.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	if s.imdbTaken(movie.IMDBID, movie.ID) {
		return oops.With("imdb_id", movie.IMDBID).Wrap(catalog.ErrDuplicate)
	}
	movie.CreatedAt = existing.CreatedAt
	s.movies[movie.ID] = *movie
	return nil
}

// Delete implements catalog.Repository.
func (s *MovieStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.movies[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

func (s *MovieStore) imdbTaken(imdbID string, self ulid.ULID) bool {
	if imdbID == "" {
		return false
	}
	for id, m := range s.movies {
		if id != self && m.IMDBID == imdbID {
			return true
		}
	}
	return false
}
