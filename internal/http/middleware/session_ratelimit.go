package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionRateLimit limits moves per play session using Redis.
// Requires Session middleware to run before this. Without Redis it is a no-op.
func SessionRateLimit(maxActions int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		sid := c.GetString(ContextSessionID)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "session_rl:" + sid + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allowRedis(c, key, maxActions, window, "session:"+c.FullPath()) {
			return
		}
		c.Next()
	}
}
