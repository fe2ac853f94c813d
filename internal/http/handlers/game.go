package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/turn"

	"github.com/gin-gonic/gin"
)

const viewTimeout = 3 * time.Second

type moveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// State returns the session's current view.
func (h *Handler) State(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respondView(c, s.View)
}

// Move forwards a click. The click is dropped by the controller when the
// cell is not interactable; the returned view shows what happened.
func (h *Handler) Move(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row and col required"})
		return
	}
	move := domain.MoveIntent{Row: *req.Row, Col: *req.Col}
	if !move.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cell is off the board"})
		return
	}

	s.Click(move.Row, move.Col)
	h.respondView(c, s.View)
}

// Reset starts a fresh game in the same session.
func (h *Handler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset()
	h.respondView(c, s.View)
}

func (h *Handler) respondView(c *gin.Context, view func(context.Context) (turn.View, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	v, err := view(ctx)
	if err != nil {
		if errors.Is(err, turn.ErrStopped) {
			c.JSON(http.StatusGone, gin.H{"error": "session closed"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session busy"})
		return
	}
	c.JSON(http.StatusOK, v)
}
