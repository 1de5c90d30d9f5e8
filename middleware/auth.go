// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"carhub/session"

	"github.com/gin-gonic/gin"
)

// SessionCookie names the cookie carrying the opaque session id. The header
// fallback serves non-browser clients.
const (
	SessionCookie = "carhub_session"
	SessionHeader = "X-Session-ID"
)

// Context keys set for downstream handlers.
const (
	CtxSession   = "authSession"
	CtxToken     = "token"
	CtxSessionID = "sessionID"
)

// SessionID extracts the caller's session id from cookie or header.
func SessionID(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	return strings.TrimSpace(c.GetHeader(SessionHeader))
}

// SessionMiddleware rehydrates the auth session on every request. Anonymous
// callers pass through with nothing set; handlers that need credentials sit
// behind RequireAuth.
func SessionMiddleware(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionID(c)
		if id == "" {
			c.Next()
			return
		}
		sess, err := mgr.Current(c.Request.Context(), id)
		if err != nil || sess == nil {
			c.Next()
			return
		}
		c.Set(CtxSessionID, id)
		c.Set(CtxSession, sess)
		c.Set(CtxToken, sess.Token)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers, pointing them at the sign-in
// screen the way the browser client would be redirected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CtxToken); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Insufficient authorization",
				"redirect": "/signin",
			})
			return
		}
		c.Next()
	}
}

// Token returns the bearer token set by SessionMiddleware, empty for
// anonymous callers.
func Token(c *gin.Context) string {
	if v, exists := c.Get(CtxToken); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
