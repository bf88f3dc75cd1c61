// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marquee/marquee/internal/auth"
)

// Reply messages kept from the original client contract.
const (
	msgRegisterFailed = "User not Registered Successfully!"
	msgLoggedIn       = "User Logged in Successfully!"
	msgLoginFailed    = "User Not Logged in Successfully!"
	msgLoggedOut      = "User Logged out Successfully!"

	errInternal     = "Internal server error"
	errNoMovies     = "No movies found"
	errNoMovie      = "No movie found"
	errMovieExists  = "Movie already exists"
	errNotFoundPath = "Not found"
)

// userView is the public rendering of an identity. The credential is never
// part of it.
type userView struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"emailAddress"`
	DisplayName  string    `json:"displayName"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func newUserView(identity *auth.Identity) userView {
	return userView{
		ID:           identity.ID.String(),
		Username:     identity.Username,
		EmailAddress: identity.EmailAddress,
		DisplayName:  identity.DisplayName,
		Created:      identity.CreatedAt,
		Updated:      identity.UpdatedAt,
	}
}

// authReply is the {success,msg,user} body of the session routes.
type authReply struct {
	Success bool      `json:"success"`
	Msg     string    `json:"msg"`
	User    *userView `json:"user,omitempty"`
}

// authFailure answers a rejected session-route request. In legacy mode the
// status is 200 and only the body says it failed.
func (h *handlers) authFailure(c *gin.Context, status int, msg string) {
	if h.opts.LegacyStatus {
		status = http.StatusOK
	}
	c.JSON(status, authReply{Success: false, Msg: msg})
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternal})
}

func errorReply(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
