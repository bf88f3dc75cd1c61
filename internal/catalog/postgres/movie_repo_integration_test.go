// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/marquee/marquee/internal/catalog"
	"github.com/marquee/marquee/internal/catalog/postgres"
)

var _ = Describe("MovieRepository", func() {
	var (
		ctx  context.Context
		repo *postgres.MovieRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = postgres.NewMovieRepository(testPool)
		_, err := testPool.Exec(ctx, `TRUNCATE movies`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns an empty, non-nil list when the catalog is empty", func() {
		movies, err := repo.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(movies).NotTo(BeNil())
		Expect(movies).To(BeEmpty())
	})

	It("round-trips the full document", func() {
		movie := catalog.NewMovie(catalog.Document{
			Title:   "Alien",
			IMDBID:  "tt0078748",
			Ratings: catalog.RatingList{{Source: "Rotten Tomatoes", Value: "98%"}},
		})
		Expect(repo.Create(ctx, movie)).To(Succeed())

		got, err := repo.Get(ctx, movie.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Document).To(Equal(movie.Document))
		Expect(got.CreatedAt).To(BeTemporally("~", movie.CreatedAt, time.Millisecond))
	})

	It("lists movies oldest first", func() {
		first := catalog.NewMovie(catalog.Document{Title: "Heat"})
		second := catalog.NewMovie(catalog.Document{Title: "Ronin"})
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		Expect(repo.Create(ctx, second)).To(Succeed())
		Expect(repo.Create(ctx, first)).To(Succeed())

		movies, err := repo.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(movies).To(HaveLen(2))
		Expect(movies[0].ID).To(Equal(first.ID))
		Expect(movies[1].ID).To(Equal(second.ID))
	})

	It("rejects a second movie with the same imdbID", func() {
		Expect(repo.Create(ctx, catalog.NewMovie(catalog.Document{Title: "Alien", IMDBID: "tt0078748"}))).To(Succeed())

		err := repo.Create(ctx, catalog.NewMovie(catalog.Document{Title: "Alien again", IMDBID: "tt0078748"}))
		Expect(errors.Is(err, catalog.ErrDuplicate)).To(BeTrue())
	})

	It("allows any number of movies without an imdbID", func() {
		Expect(repo.Create(ctx, catalog.NewMovie(catalog.Document{Title: "Home video 1"}))).To(Succeed())
		Expect(repo.Create(ctx, catalog.NewMovie(catalog.Document{Title: "Home video 2"}))).To(Succeed())
	})

	It("replaces a document and keeps its creation time", func() {
		movie := catalog.NewMovie(catalog.Document{Title: "Alien"})
		Expect(repo.Create(ctx, movie)).To(Succeed())

		replacement := &catalog.Movie{
			ID:        movie.ID,
			Document:  catalog.Document{Title: "Aliens", Year: "1986"},
			UpdatedAt: time.Now().UTC(),
		}
		Expect(repo.Replace(ctx, replacement)).To(Succeed())
		Expect(replacement.CreatedAt).To(BeTemporally("~", movie.CreatedAt, time.Millisecond))

		got, err := repo.Get(ctx, movie.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Aliens"))
		Expect(got.Year).To(Equal("1986"))
	})

	It("reports missing movies as not found", func() {
		_, err := repo.Get(ctx, ulid.Make())
		Expect(errors.Is(err, catalog.ErrNotFound)).To(BeTrue())

		err = repo.Replace(ctx, &catalog.Movie{ID: ulid.Make(), Document: catalog.Document{Title: "x"}})
		Expect(errors.Is(err, catalog.ErrNotFound)).To(BeTrue())

		Expect(errors.Is(repo.Delete(ctx, ulid.Make()), catalog.ErrNotFound)).To(BeTrue())
	})
})
