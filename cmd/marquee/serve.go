// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/marquee/marquee/internal/auth"
	authpg "github.com/marquee/marquee/internal/auth/postgres"
	"github.com/marquee/marquee/internal/catalog"
	catalogpg "github.com/marquee/marquee/internal/catalog/postgres"
	"github.com/marquee/marquee/internal/config"
	"github.com/marquee/marquee/internal/logging"
	"github.com/marquee/marquee/internal/observability"
	"github.com/marquee/marquee/internal/store"
	"github.com/marquee/marquee/internal/web"
	"github.com/marquee/marquee/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the REST API together with the observability endpoints.
Runs until interrupted, then drains in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "marquee",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		errutil.LogError(logger, "server exited with error", err)
		return err
	}
	return nil
}

// serve runs the API until ctx is cancelled or a listener fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := store.Connect(ctx, cfg.Database.URL,
		store.WithConnectAttempts(uint64(cfg.Database.ConnectAttempts)), //nolint:gosec // validated positive
		store.WithConnectLogger(logger))
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migrations applied")
	}

	identities := authpg.NewIdentityRepository(pool)
	sessions := authpg.NewWebSessionRepository(pool)

	authService, err := auth.NewAuthService(identities, sessions, auth.NewArgon2idHasher(),
		auth.WithLogger(logger),
		auth.WithSessionTTL(cfg.Auth.SessionTTL))
	if err != nil {
		return err
	}
	issuer, err := auth.NewTokenIssuer([]byte(cfg.Auth.TokenSigningSecret()),
		auth.WithTokenValidity(cfg.Auth.TokenValidity))
	if err != nil {
		return err
	}
	cookie, err := web.NewSessionCookie([]byte(cfg.Auth.SessionSigningSecret()), cfg.Auth.SessionTTL, cfg.Auth.CookieSecure)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalogpg.NewMovieRepository(pool), logger)
	if err != nil {
		return err
	}

	var (
		metrics *observability.Metrics
		obsErr  <-chan error
		obs     *observability.Server
	)
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, observability.PingCheck(pool), observability.WithLogger(logger))
		obsErr, err = obs.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		metrics = obs.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := web.NewRouter(web.Deps{
		Auth:    authService,
		Tokens:  issuer,
		Catalog: catalogService,
		Session: web.NewSessionStrategy(authService, cookie),
		Token:   web.NewTokenStrategy(auth.NewTokenAuthenticator(issuer, identities)),
		Metrics: metrics,
		Logger:  logger,
	}, web.Options{
		LegacyStatus:   cfg.HTTP.LegacyStatus,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		stopObservability(obs, cfg, logger)
		return err
	}

	api := web.NewServer(cfg.HTTP.Addr, router, logger)
	apiErr, err := api.Start()
	if err != nil {
		stopObservability(obs, cfg, logger)
		return err
	}

	reaperCtx, cancelReaper := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Go(func() {
		auth.NewSessionReaper(sessions, cfg.Auth.SessionSweep, logger).Run(reaperCtx)
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err, ok := <-apiErr:
		if ok && err != nil {
			runErr = oops.Code("API_SERVER_FAILED").Wrap(err)
		}
	case err, ok := <-obsErr:
		if ok && err != nil {
			runErr = oops.Code("OBSERVABILITY_SERVER_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := api.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "api server shutdown failed", err)
	}
	cancelReaper()
	wg.Wait()
	stopObservability(obs, cfg, logger)

	return runErr
}

func stopObservability(obs *observability.Server, cfg *config.Config, logger *slog.Logger) {
	if obs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := obs.Stop(ctx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}
}
