package handlers

import (
	"net/http"
	"strconv"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/http/middleware"
	"othello_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

// GetHistory lists finished games. scope=session limits it to the caller's
// session and needs a session token.
func (h *Handler) GetHistory(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	ctx := c.Request.Context()

	var (
		games []*domain.GameRecord
		err   error
	)
	if c.Query("scope") == "session" {
		sid := c.GetString(middleware.ContextSessionID)
		if sid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}
		games, err = h.History.BySession(ctx, sid, limit)
	} else {
		games, err = h.History.Recent(ctx, limit)
	}
	if err != nil {
		logger.Error("failed to load history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": games})
}
