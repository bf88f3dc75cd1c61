// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package store owns the PostgreSQL connection pool and schema migrations
// shared by the auth and catalog repositories.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it as well.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connect defaults.
const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = 500 * time.Millisecond
)

type connectConfig struct {
	attempts uint64
	backoff  time.Duration
	logger   *slog.Logger
}

// ConnectOption configures Connect.
type ConnectOption func(*connectConfig)

// WithConnectAttempts sets how many times the initial ping is tried.
func WithConnectAttempts(n uint64) ConnectOption {
	return func(c *connectConfig) { c.attempts = n }
}

// WithConnectBackoff sets the base of the exponential backoff between pings.
func WithConnectBackoff(d time.Duration) ConnectOption {
	return func(c *connectConfig) { c.backoff = d }
}

// WithConnectLogger sets the logger used to report failed attempts.
func WithConnectLogger(l *slog.Logger) ConnectOption {
	return func(c *connectConfig) { c.logger = l }
}

// Connect opens a pgx pool and waits for the database to answer a ping,
// retrying with exponential backoff. Only startup retries; request-path
// store calls never do.
func Connect(ctx context.Context, databaseURL string, opts ...ConnectOption) (*pgxpool.Pool, error) {
	cfg := connectConfig{
		attempts: DefaultConnectAttempts,
		backoff:  DefaultConnectBackoff,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.attempts == 0 {
		cfg.attempts = 1
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	if err := pingWithRetry(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func pingWithRetry(ctx context.Context, p Pinger, cfg connectConfig) error {
	backoff := retry.WithMaxRetries(cfg.attempts-1, retry.NewExponential(cfg.backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := p.Ping(ctx); err != nil {
			cfg.logger.WarnContext(ctx, "database not ready",
				"attempt", attempt,
				"max_attempts", cfg.attempts,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
