// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/observability"
	"github.com/marquee/marquee/pkg/errutil"
)

// Context keys set by Guard.
const (
	identityKey = "marquee.identity"
	sessionKey  = "marquee.session"
)

// Strategy names, also used as metric labels.
const (
	StrategyLocal   = "local"
	StrategySession = "session"
	StrategyJWT     = "jwt"
)

// Strategy authenticates a request. Rejections wrap auth.ErrUnauthorized;
// any other error is an internal failure.
type Strategy interface {
	Name() string
	Authenticate(c *gin.Context) (*auth.Identity, error)
}

// SessionStrategy authenticates the signed session cookie.
type SessionStrategy struct {
	service *auth.Service
	cookie  *SessionCookie
}

// NewSessionStrategy creates a SessionStrategy.
func NewSessionStrategy(service *auth.Service, cookie *SessionCookie) SessionStrategy {
	return SessionStrategy{service: service, cookie: cookie}
}

// Name implements Strategy.
func (SessionStrategy) Name() string { return StrategySession }

// Authenticate implements Strategy. The resolved session is stored on the
// context for logout.
func (s SessionStrategy) Authenticate(c *gin.Context) (*auth.Identity, error) {
	token, ok := s.cookie.Read(c)
	if !ok {
		return nil, rejected("no_valid_session_cookie")
	}
	identity, session, err := s.service.ResolveSession(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	c.Set(sessionKey, session)
	return identity, nil
}

// TokenStrategy authenticates an "Authorization: Bearer" header.
type TokenStrategy struct {
	authenticator *auth.TokenAuthenticator
}

// NewTokenStrategy creates a TokenStrategy.
func NewTokenStrategy(authenticator *auth.TokenAuthenticator) TokenStrategy {
	return TokenStrategy{authenticator: authenticator}
}

// Name implements Strategy.
func (TokenStrategy) Name() string { return StrategyJWT }

// Authenticate implements Strategy.
func (s TokenStrategy) Authenticate(c *gin.Context) (*auth.Identity, error) {
	raw, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, rejected("no_bearer_token")
	}
	return s.authenticator.Authenticate(c.Request.Context(), raw)
}

// bearerToken extracts the credentials of a Bearer authorization header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejected(reason string) error {
	return oops.Code(auth.CodeUnauthorized).With("reason", reason).Wrap(auth.ErrUnauthorized)
}

// Guard admits requests the strategy authenticates and stores the identity
// on the context. Rejections are 401; strategy failures are 500.
func Guard(s Strategy, metrics *observability.Metrics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := s.Authenticate(c)
		switch {
		case err == nil:
			metrics.RecordAuthAttempt(s.Name(), observability.ResultSuccess)
			c.Set(identityKey, identity)
			c.Next()
		case errors.Is(err, auth.ErrUnauthorized):
			metrics.RecordAuthAttempt(s.Name(), observability.ResultFailure)
			logger.DebugContext(c.Request.Context(), "request rejected",
				append([]any{"strategy", s.Name(), "route", c.FullPath()}, errutil.Attrs(err)...)...)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		default:
			metrics.RecordAuthAttempt(s.Name(), observability.ResultError)
			errutil.LogErrorContext(c.Request.Context(), logger, "authentication failed", err)
			abortInternal(c)
		}
	}
}

// IdentityFrom returns the identity a Guard attached to c.
func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok && identity != nil
}

// SessionFrom returns the session a SessionStrategy attached to c.
func SessionFrom(c *gin.Context) (*auth.WebSession, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*auth.WebSession)
	return session, ok && session != nil
}
