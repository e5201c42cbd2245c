package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/session"
)

const (
	// SessionHeader carries the session token for API clients.
	SessionHeader = "X-Session-Token"
	// SessionCookie carries the session token for browsers.
	SessionCookie = "laundry_session"

	sessionKey = "session"
)

// SessionLookup resolves a token to a live session.
type SessionLookup interface {
	Get(token string) (session.Session, error)
}

// Token extracts the session token from the header or, failing that, the
// cookie.
func Token(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(SessionHeader)); t != "" {
		return t
	}
	if t, err := c.Cookie(SessionCookie); err == nil {
		return t
	}
	return ""
}

// RequireSession aborts with 401 unless the request carries a live session.
func RequireSession(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sessions.Get(Token(c))
		if err != nil {
			if !errors.Is(err, session.ErrUnknownSession) {
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireRole aborts with 403 when the session belongs to another role. It
// must run after RequireSession.
func RequireRole(role laundry.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		if s.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "this page requires the " + string(role) + " role"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}
