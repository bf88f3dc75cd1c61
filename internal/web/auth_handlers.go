// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marquee/marquee/internal/auth"
	"github.com/marquee/marquee/internal/observability"
	"github.com/marquee/marquee/pkg/errutil"
)

// registerRequest accepts JSON or form bodies.
type registerRequest struct {
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
	EmailAddress string `json:"EmailAddress" form:"EmailAddress"`
	FirstName    string `json:"FirstName" form:"FirstName"`
	LastName     string `json:"LastName" form:"LastName"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// register creates an identity and logs it in.
func (h *handlers) register(c *gin.Context) {
	ctx := c.Request.Context()

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.authFailure(c, http.StatusBadRequest, msgRegisterFailed)
		return
	}

	identity, err := h.deps.Auth.Register(ctx, auth.Registration{
		Username:     req.Username,
		Password:     req.Password,
		EmailAddress: req.EmailAddress,
		DisplayName:  strings.TrimSpace(req.FirstName + " " + req.LastName),
	})
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrDuplicateUsername):
		h.authFailure(c, http.StatusConflict, msgRegisterFailed)
		return
	case errors.Is(err, auth.ErrInvalidInput):
		h.authFailure(c, http.StatusBadRequest, msgRegisterFailed)
		return
	default:
		errutil.LogErrorContext(ctx, h.deps.Logger, "registration failed", err)
		abortInternal(c)
		return
	}

	_, token, err := h.deps.Auth.StartSession(ctx, identity, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		errutil.LogErrorContext(ctx, h.deps.Logger, "session start after registration failed", err)
		abortInternal(c)
		return
	}
	h.deps.Session.cookie.Write(c, token)

	view := newUserView(identity)
	c.JSON(http.StatusOK, authReply{Success: true, Msg: msgLoggedIn, User: &view})
}

// login checks a username/password pair and starts a session.
func (h *handlers) login(c *gin.Context) {
	ctx := c.Request.Context()

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.deps.Metrics.RecordAuthAttempt(StrategyLocal, observability.ResultFailure)
		h.authFailure(c, http.StatusBadRequest, msgLoginFailed)
		return
	}

	result, err := h.deps.Auth.Login(ctx, req.Username, req.Password, c.Request.UserAgent(), c.ClientIP())
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.deps.Metrics.RecordAuthAttempt(StrategyLocal, observability.ResultFailure)
		h.authFailure(c, http.StatusUnauthorized, msgLoginFailed)
		return
	default:
		h.deps.Metrics.RecordAuthAttempt(StrategyLocal, observability.ResultError)
		errutil.LogErrorContext(ctx, h.deps.Logger, "login failed", err)
		abortInternal(c)
		return
	}

	h.deps.Metrics.RecordAuthAttempt(StrategyLocal, observability.ResultSuccess)
	h.deps.Session.cookie.Write(c, result.Token)

	view := newUserView(result.Identity)
	c.JSON(http.StatusOK, authReply{Success: true, Msg: msgLoggedIn, User: &view})
}

// logout ends the current session.
func (h *handlers) logout(c *gin.Context) {
	session, ok := SessionFrom(c)
	if !ok {
		abortInternal(c)
		return
	}
	if err := h.deps.Auth.Logout(c.Request.Context(), session.ID); err != nil {
		errutil.LogErrorContext(c.Request.Context(), h.deps.Logger, "logout failed", err)
		abortInternal(c)
		return
	}
	h.deps.Session.cookie.Clear(c)
	c.JSON(http.StatusOK, authReply{Success: true, Msg: msgLoggedOut})
}

// issueToken mints a bearer token for the session's identity.
func (h *handlers) issueToken(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		abortInternal(c)
		return
	}
	token, err := h.deps.Tokens.Issue(identity)
	if err != nil {
		errutil.LogErrorContext(c.Request.Context(), h.deps.Logger, "token issue failed", err)
		abortInternal(c)
		return
	}
	h.deps.Metrics.RecordTokenIssued()
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
