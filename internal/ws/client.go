package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"othello_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 1024
	sendBuffer     = 64
)

// Client is one websocket connection attached to a session.
type Client struct {
	Conn    *websocket.Conn
	Send    chan []byte
	Session *Session

	done chan struct{}
	log  *slog.Logger
}

func NewClient(conn *websocket.Conn, s *Session) *Client {
	return &Client{
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Session: s,
		done:    make(chan struct{}),
		log:     logger.With("session", s.ID, "remote", conn.RemoteAddr().String()),
	}
}

// Run attaches the client and blocks until the connection closes.
func (c *Client) Run() {
	go c.writePump()

	if !c.Session.Attach(c) {
		c.log.Warn("session already closed")
		close(c.done)
		_ = c.Conn.Close()
		return
	}
	c.log.Debug("client attached")
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Session.Detach(c)
		close(c.done)
		_ = c.Conn.Close()
		c.log.Debug("client detached")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("invalid message")
		return
	}

	switch msg.Type {
	case MsgClick:
		c.Session.Click(msg.Row, msg.Col)
	case MsgReset:
		c.Session.Reset()
	case MsgPing:
		c.Session.Touch()
		b, _ := json.Marshal(PongPayload{Type: MsgPong})
		c.enqueue(b)
	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) sendError(text string) {
	b, _ := json.Marshal(ErrorPayload{Type: MsgError, Message: text})
	c.enqueue(b)
}

func (c *Client) enqueue(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		droppedViews.Inc()
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
