package handlers

import (
	"net/http"

	"othello_webapp/internal/logger"
	"othello_webapp/internal/service"
	"othello_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func (h *Handler) WS(c *gin.Context) {
	// JWT from query
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	claims, err := service.ParseSessionToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	s, err := h.Hub.Get(claims.SessionID)
	if err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "session expired, start a new one"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "error", err)
		return
	}

	go ws.NewClient(conn, s).Run()
}
