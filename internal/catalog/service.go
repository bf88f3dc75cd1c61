// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service validates movie documents and hands them to a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a catalog Service.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("CATALOG_INVALID_CONFIG").Errorf("movie repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}, nil
}

// List returns every movie, oldest first.
func (s *Service) List(ctx context.Context) ([]*Movie, error) {
	movies, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.With("operation", "list movies").Wrap(err)
	}
	return movies, nil
}

// Find returns one movie by its string ID. A malformed ID is reported as
// not found, the same as an unknown one.
func (s *Service) Find(ctx context.Context, rawID string) (*Movie, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Add validates and stores a new movie.
func (s *Service) Add(ctx context.Context, doc Document) (*Movie, error) {
	movie := NewMovie(doc)
	if err := Validate(movie.Document); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "movie added", "movie_id", movie.ID.String(), "title", movie.Title)
	return movie, nil
}

// Update replaces the document of an existing movie. The ID and creation
// time are kept.
func (s *Service) Update(ctx context.Context, rawID string, doc Document) (*Movie, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	doc = doc.normalized()
	if err := Validate(doc); err != nil {
		return nil, err
	}

	movie := &Movie{ID: id, Document: doc, UpdatedAt: time.Now().UTC()}
	if err := s.repo.Replace(ctx, movie); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "movie updated", "movie_id", id.String())
	return movie, nil
}

// Delete removes a movie by its string ID.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "movie deleted", "movie_id", id.String())
	return nil
}

func parseID(raw string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code("MOVIE_NOT_FOUND").With("id", raw).Wrap(ErrNotFound)
	}
	return id, nil
}
