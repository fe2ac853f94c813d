// Command tui plays one session against the engine in the terminal.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"othello_webapp/internal/config"
	"othello_webapp/internal/domain"
	"othello_webapp/internal/engine"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/tui"
	"othello_webapp/internal/turn"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()

	side := flag.String("side", string(cfg.HumanSide), "side to play (BLACK or WHITE)")
	engineURL := flag.String("engine", cfg.EngineURL, "engine base URL")
	logFile := flag.String("log", "", "write logs to this file (the terminal is taken by the board)")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.InitWriter(logOut, cfg.LogLevel, cfg.LogJSON)

	human, err := domain.ParseSide(*side)
	if err != nil {
		log.Fatal(err)
	}

	paths := engine.DefaultPaths()
	paths.Begin = cfg.EngineBeginPath
	eng, err := engine.NewClient(engine.Config{BaseURL: *engineURL, Timeout: cfg.EngineTimeout, Paths: paths})
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("open terminal: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := tui.New(screen)
	id := uuid.NewString()
	ctrl := turn.New(eng, app, turn.Options{
		SessionID:          id,
		Side:               human,
		ThinkDelay:         cfg.ThinkDelay,
		ClearMessageOnMove: cfg.ClearMessageOnMove,
		Messages:           cfg.TurnMessages(),
		Logger:             logger.With("session", id),
	})
	app.Attach(ctrl)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_ = ctrl.Run(runCtx)
	}()

	if err := app.Run(ctx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	<-ctrl.Done()
}
