// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/auth"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "connect.sid"

// SessionCookie signs, writes and reads the session cookie. The value is
// "<token>.<mac>" where mac is the unpadded base64url HMAC-SHA256 of the
// token under the session secret.
type SessionCookie struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

// NewSessionCookie creates a SessionCookie. maxAge should match the session
// TTL so the browser drops the cookie when the server forgets the session.
func NewSessionCookie(secret []byte, maxAge time.Duration, secure bool) (*SessionCookie, error) {
	if len(secret) < auth.MinSecretLength {
		return nil, oops.Code(auth.CodeSigningError).
			With("min_length", auth.MinSecretLength).
			Wrapf(auth.ErrSigning, "session secret must be at least %d bytes", auth.MinSecretLength)
	}
	if maxAge <= 0 {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("session cookie max age must be positive")
	}
	return &SessionCookie{
		secret: append([]byte(nil), secret...),
		maxAge: maxAge,
		secure: secure,
	}, nil
}

// Sign returns the cookie value for token.
func (s *SessionCookie) Sign(token string) string {
	return token + "." + s.mac(token)
}

// Open returns the token inside a signed value, or false when the value is
// malformed or its MAC does not match.
func (s *SessionCookie) Open(value string) (string, bool) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 || i == len(value)-1 {
		return "", false
	}
	token, mac := value[:i], value[i+1:]
	if !hmac.Equal([]byte(mac), []byte(s.mac(token))) {
		return "", false
	}
	return token, true
}

// Write sets the session cookie on the response.
func (s *SessionCookie) Write(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, s.Sign(token), int(s.maxAge.Seconds()), "/", "", s.secure, true)
}

// Clear expires the session cookie.
func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.secure, true)
}

// Read returns the verified token from the request cookie.
func (s *SessionCookie) Read(c *gin.Context) (string, bool) {
	value, err := c.Cookie(SessionCookieName)
	if err != nil || value == "" {
		return "", false
	}
	return s.Open(value)
}

func (s *SessionCookie) mac(token string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
