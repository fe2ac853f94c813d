package middleware

import (
	"net/http"
	"strings"

	"othello_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "othello_session"

	ContextSessionID = "session_id"
	ContextSide      = "side"
)

// Session authenticates the play session token from the Authorization header,
// the session cookie or the token query parameter, in that order.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}

		claims, err := service.ParseSessionToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(ContextSessionID, claims.SessionID)
		c.Set(ContextSide, string(claims.Side))
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	return c.Query("token")
}
