package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/turn"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// EngineFactory builds the engine connection for a new session. Every session
// needs its own, because the engine keys games on its session cookie.
type EngineFactory func() (turn.Engine, error)

type HubConfig struct {
	NewEngine EngineFactory
	// Turn is the template for every controller; SessionID, Side and Logger
	// are filled per session.
	Turn        turn.Options
	IdleTimeout time.Duration
}

type Hub struct {
	cfg      HubConfig
	ctx      context.Context
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates a hub whose sessions live until ctx ends or they go idle.
func NewHub(ctx context.Context, cfg HubConfig) *Hub {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = time.Hour
	}
	return &Hub{
		cfg:      cfg,
		ctx:      ctx,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session for the given side and runs its controller.
func (h *Hub) Open(side domain.Side) (*Session, error) {
	eng, err := h.cfg.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("create engine client: %w", err)
	}

	id := uuid.NewString()
	s := newSession(id, side)

	opts := h.cfg.Turn
	opts.SessionID = id
	opts.Side = side
	opts.Logger = logger.With("session", id)
	s.Controller = turn.New(eng, s, opts)

	ctx, cancel := context.WithCancel(h.ctx)
	s.cancel = cancel

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	sessionsActive.Inc()

	go func() {
		_ = s.Controller.Run(ctx)
		h.remove(id, s)
	}()

	logger.Info("session opened", "session", id, "side", side)
	return s, nil
}

func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close stops one session.
func (h *Hub) Close(id string) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if ok {
		s.close()
	}
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.close()
	}
}

func (h *Hub) remove(id string, s *Session) {
	s.close()
	h.mu.Lock()
	if cur, ok := h.sessions[id]; ok && cur == s {
		delete(h.sessions, id)
		sessionsActive.Dec()
	}
	h.mu.Unlock()
	logger.Info("session closed", "session", id)
}

// StartCleanup closes idle sessions every interval until the hub context ends.
func (h *Hub) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.ctx.Done():
				return
			case now := <-ticker.C:
				if n := h.cleanupIdle(now); n > 0 {
					logger.Info("cleaned up idle sessions", "count", n)
				}
			}
		}
	}()
}

func (h *Hub) cleanupIdle(now time.Time) int {
	h.mu.RLock()
	var idle []*Session
	for _, s := range h.sessions {
		if since, ok := s.idleSince(); ok && now.Sub(since) > h.cfg.IdleTimeout {
			idle = append(idle, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range idle {
		s.close()
	}
	return len(idle)
}
