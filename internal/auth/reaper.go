// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package auth

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReapInterval is how often expired sessions are purged.
const DefaultReapInterval = 10 * time.Minute

// SessionReaper periodically deletes expired web sessions.
type SessionReaper struct {
	sessions WebSessionRepository
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionReaper creates a SessionReaper. A non-positive interval falls back
// to DefaultReapInterval.
func NewSessionReaper(sessions WebSessionRepository, interval time.Duration, logger *slog.Logger) *SessionReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionReaper{sessions: sessions, interval: interval, logger: logger, now: time.Now}
}

// Run blocks, reaping on every tick until ctx is cancelled.
func (r *SessionReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// ReapOnce deletes sessions that have expired and returns how many were removed.
func (r *SessionReaper) ReapOnce(ctx context.Context) int64 {
	n, err := r.sessions.DeleteExpired(ctx, r.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			r.logger.WarnContext(ctx, "session reap failed", "error", err)
		}
		return 0
	}
	if n > 0 {
		r.logger.DebugContext(ctx, "expired sessions reaped", "count", n)
	}
	return n
}
