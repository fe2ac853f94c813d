package http

import (
	"time"

	"othello_webapp/internal/http/handlers"
	"othello_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Limits configures the API rate limiters.
type Limits struct {
	APIRequests   int
	APIWindow     time.Duration
	SessionMoves  int
	SessionWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, limits Limits) {
	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limits.APIRequests, limits.APIWindow))

	api.POST("/session", h.CreateSession)
	api.DELETE("/session", middleware.Session(), h.CloseSession)

	sessionRL := middleware.SessionRateLimit(limits.SessionMoves, limits.SessionWindow)
	api.GET("/state", middleware.Session(), h.State)
	api.POST("/move", middleware.Session(), sessionRL, h.Move)
	api.POST("/reset", middleware.Session(), sessionRL, h.Reset)

	api.GET("/history", optionalSession(), h.GetHistory)

	// WebSocket: token in query
	r.GET("/ws", h.WS)

	// Front end
	r.GET("/", handlers.Index)
}

// optionalSession runs the Session middleware only when a scoped query asks for it.
func optionalSession() gin.HandlerFunc {
	auth := middleware.Session()
	return func(c *gin.Context) {
		if c.Query("scope") == "session" {
			auth(c)
			return
		}
		c.Next()
	}
}
