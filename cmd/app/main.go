package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"othello_webapp/internal/config"
	"othello_webapp/internal/db"
	"othello_webapp/internal/engine"
	httpServer "othello_webapp/internal/http"
	"othello_webapp/internal/http/handlers"
	"othello_webapp/internal/http/middleware"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/migrations"
	"othello_webapp/internal/repository"
	"othello_webapp/internal/service"
	"othello_webapp/internal/turn"
	"othello_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineCfg := engine.Config{
		BaseURL: cfg.EngineURL,
		Timeout: cfg.EngineTimeout,
		Paths:   engine.DefaultPaths(),
	}
	engineCfg.Paths.Begin = cfg.EngineBeginPath

	// probe client for readiness; sessions get their own
	probe, err := engine.NewClient(engineCfg)
	if err != nil {
		logger.Fatal("invalid engine config", "error", err)
	}

	var (
		recorder turn.Recorder
		history  handlers.HistoryStore
		dbPing   handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer pool.Close()
			if _, err := db.Migrate(ctx, pool, migrations.FS); err != nil {
				logger.Fatal("failed to migrate database", "error", err)
			}
			repo := repository.NewGameHistoryRepository(pool)
			recorder, history = repo, repo
			dbPing = pool.Ping
		}
	}

	hub := ws.NewHub(ctx, ws.HubConfig{
		NewEngine: func() (turn.Engine, error) {
			return engine.NewClient(engineCfg)
		},
		Turn: turn.Options{
			ThinkDelay:         cfg.ThinkDelay,
			ClearMessageOnMove: cfg.ClearMessageOnMove,
			Messages:           cfg.TurnMessages(),
			Recorder:           recorder,
		},
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	hub.StartCleanup(time.Minute)

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	health := handlers.NewHealthHandler(version, hub.Len)
	health.Check("engine", true, probe.Ping)
	health.Check("redis", false, middleware.RedisReady)
	if dbPing != nil {
		health.Check("database", false, dbPing)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for a front end on a different domain
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewHandler(hub, history, cfg.HumanSide, cfg.AllowedOrigin)
	httpServer.RegisterRoutes(r, h, health, httpServer.Limits{
		APIRequests:   cfg.APIRateLimit,
		APIWindow:     time.Duration(cfg.APIRateWindow) * time.Second,
		SessionMoves:  cfg.APIRateLimit,
		SessionWindow: time.Duration(cfg.APIRateWindow) * time.Second,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "engine", cfg.EngineURL, "side", cfg.HumanSide)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
