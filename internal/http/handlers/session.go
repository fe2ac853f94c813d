package handlers

import (
	"net/http"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/http/middleware"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Side string `json:"side"`
}

type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Side      domain.Side `json:"side"`
	Token     string      `json:"token"`
}

// CreateSession opens a play session and returns its token, also set as a cookie.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}

	side := h.DefaultSide
	if req.Side != "" {
		parsed, err := domain.ParseSide(req.Side)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "side must be BLACK or WHITE"})
			return
		}
		side = parsed
	}

	s, err := h.Hub.Open(side)
	if err != nil {
		logger.Error("failed to open session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	token, err := service.GenerateSessionToken(s.ID, side)
	if err != nil {
		h.Hub.Close(s.ID)
		logger.Error("failed to sign session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, 24*3600, "/", "", false, true)
	c.JSON(http.StatusCreated, SessionResponse{SessionID: s.ID, Side: side, Token: token})
}

// CloseSession stops the caller's session.
func (h *Handler) CloseSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.Hub.Close(s.ID)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
