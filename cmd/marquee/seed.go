// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marquee/marquee/internal/catalog"
	catalogpg "github.com/marquee/marquee/internal/catalog/postgres"
	"github.com/marquee/marquee/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// movieAdder is the part of catalog.Service seeding uses.
type movieAdder interface {
	Add(ctx context.Context, doc catalog.Document) (*catalog.Movie, error)
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load movies from a YAML file",
		Long: `Adds every movie in a YAML list to the catalog, applying pending
migrations first. Movies whose imdbID is already present are skipped, so
running the same file twice adds nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "YAML file containing a list of movies")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("file") //nolint:errcheck // flag defined above

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	docs, err := loadSeedFile(cfg.file)
	if err != nil {
		return err
	}

	url, err := databaseURL(cmd)
	if err != nil {
		return err
	}

	// cmd.Context() carries SIGINT/SIGTERM cancellation.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	if err := migrateUp(url); err != nil {
		return err
	}

	svc, err := catalog.NewService(catalogpg.NewMovieRepository(pool), slog.Default())
	if err != nil {
		return err
	}

	added, skipped, err := seedMovies(ctx, svc, docs)
	if err != nil {
		return err
	}
	cmd.Printf("Seeded %d movie(s), skipped %d already present\n", added, skipped)
	return nil
}

// loadSeedFile reads a YAML list of movie documents.
func loadSeedFile(path string) ([]catalog.Document, error) {
	if path == "" {
		return nil, oops.Code("SEED_FILE_REQUIRED").Errorf("--file is required")
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code("SEED_FILE_READ_FAILED").With("path", path).Wrap(err)
	}
	var docs []catalog.Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, oops.Code("SEED_FILE_INVALID").With("path", path).Wrap(err)
	}
	if len(docs) == 0 {
		return nil, oops.Code("SEED_FILE_INVALID").With("path", path).Errorf("seed file contains no movies")
	}
	return docs, nil
}

// seedMovies adds each document in order. Duplicates are counted and
// skipped; any other failure stops the run.
func seedMovies(ctx context.Context, svc movieAdder, docs []catalog.Document) (added, skipped int, err error) {
	for i, doc := range docs {
		if _, err := svc.Add(ctx, doc); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				skipped++
				continue
			}
			return added, skipped, oops.Code("SEED_FAILED").
				With("index", i).
				With("title", doc.Title).
				Wrap(err)
		}
		added++
	}
	return added, skipped, nil
}
