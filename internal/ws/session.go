package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/turn"
)

// Session is one play session: its controller plus the websocket clients
// watching it. It is the controller's Sink.
type Session struct {
	ID         string
	Side       domain.Side
	Controller *turn.Controller

	cancel    context.CancelFunc
	createdAt time.Time

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	last     []byte
	lastSeen time.Time
	closed   bool
}

func newSession(id string, side domain.Side) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Side:      side,
		clients:   make(map[*Client]struct{}),
		createdAt: now,
		lastSeen:  now,
	}
}

// Publish fans the view out to every attached client without blocking.
func (s *Session) Publish(v turn.View) {
	msg, err := json.Marshal(ViewMessage{Type: MsgView, View: v})
	if err != nil {
		logger.Error("failed to encode view", "session", s.ID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = msg
	for c := range s.clients {
		select {
		case c.Send <- msg:
		default:
			droppedViews.Inc()
		}
	}
}

// Attach registers c and sends it the latest view.
func (s *Session) Attach(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	s.lastSeen = time.Now()
	if s.last != nil {
		select {
		case c.Send <- s.last:
		default:
		}
	}
	return true
}

func (s *Session) Detach(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) Click(row, col int) {
	s.Touch()
	s.Controller.Click(row, col)
}

func (s *Session) Reset() {
	s.Touch()
	s.Controller.Reset()
}

func (s *Session) View(ctx context.Context) (turn.View, error) {
	s.Touch()
	return s.Controller.View(ctx)
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// idleSince reports when the session was last used, or false while clients are attached.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) > 0 {
		return time.Time{}, false
	}
	return s.lastSeen, true
}

// close stops the controller and drops every client connection.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := s.clients
	s.clients = make(map[*Client]struct{})
	s.mu.Unlock()

	s.cancel()
	for c := range clients {
		_ = c.Conn.Close()
	}
}
