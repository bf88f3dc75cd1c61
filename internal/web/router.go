// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package web serves the marquee REST API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/catalog"
	"github.com/marquee/marquee/internal/observability"
)

// Deps are the collaborators the router dispatches to. Strategies are
// built by the caller; the router holds no registry of its own.
type Deps struct {
	Auth    *auth.Service
	Tokens  *auth.TokenIssuer
	Catalog *catalog.Service
	Session SessionStrategy
	Token   TokenStrategy
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Options tune router behaviour.
type Options struct {
	// LegacyStatus answers session-route failures with 200 {success:false}
	// and an empty catalog with 404.
	LegacyStatus   bool
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type handlers struct {
	deps Deps
	opts Options
}

// NewRouter builds the API engine.
func NewRouter(deps Deps, opts Options) (*gin.Engine, error) {
	switch {
	case deps.Auth == nil:
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth service is required")
	case deps.Tokens == nil:
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("token issuer is required")
	case deps.Catalog == nil:
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("catalog service is required")
	case deps.Session.cookie == nil || deps.Session.service == nil:
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("session strategy is required")
	case deps.Token.authenticator == nil:
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("token strategy is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	cors, err := CORS(opts.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Wrap(err)
	}
	engine.Use(
		Recovery(deps.Logger),
		AccessLog(deps.Logger, deps.Metrics),
		cors,
		Timeout(opts.RequestTimeout),
	)
	engine.NoRoute(func(c *gin.Context) {
		errorReply(c, http.StatusNotFound, errNotFoundPath)
	})

	h := &handlers{deps: deps, opts: opts}
	session := Guard(deps.Session, deps.Metrics, deps.Logger)
	jwt := Guard(deps.Token, deps.Metrics, deps.Logger)

	api := engine.Group("/api")
	api.POST("/register", h.register)
	api.POST("/login", h.login)
	api.GET("/logout", session, h.logout)
	api.POST("/token", session, h.issueToken)

	api.GET("/list", h.listMovies)
	api.GET("/find/:id", h.findMovie)
	api.POST("/add", jwt, h.addMovie)
	api.POST("/update/:id", jwt, h.updateMovie)
	api.DELETE("/delete/:id", jwt, h.deleteMovie)

	return engine, nil
}
