package handlers

import (
	"context"
	"net/http"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/http/middleware"
	"othello_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

// HistoryStore reads the finished-game ledger.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]*domain.GameRecord, error)
	BySession(ctx context.Context, sessionID string, limit int) ([]*domain.GameRecord, error)
}

type Handler struct {
	Hub           *ws.Hub
	History       HistoryStore // nil when no database is configured
	DefaultSide   domain.Side
	AllowedOrigin string
}

func NewHandler(hub *ws.Hub, history HistoryStore, defaultSide domain.Side, allowedOrigin string) *Handler {
	return &Handler{
		Hub:           hub,
		History:       history,
		DefaultSide:   defaultSide,
		AllowedOrigin: allowedOrigin,
	}
}

// session looks up the play session named by the Session middleware.
func (h *Handler) session(c *gin.Context) (*ws.Session, bool) {
	sid := c.GetString(middleware.ContextSessionID)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return nil, false
	}
	s, err := h.Hub.Get(sid)
	if err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "session expired, start a new one"})
		return nil, false
	}
	return s, true
}
