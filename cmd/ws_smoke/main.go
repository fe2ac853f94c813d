// Command ws_smoke opens a session against a running server, plays the first
// legal move over the websocket and waits for the turn to come back.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/turn"
	"othello_webapp/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	side := flag.String("side", "BLACK", "human side")
	timeout := flag.Duration("timeout", 15*time.Second, "overall deadline")
	flag.Parse()

	body, _ := json.Marshal(map[string]string{"side": *side})
	res, err := http.Post("http://"+*addr+"/api/session", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		log.Fatalf("create session: status %d", res.StatusCode)
	}
	var sess struct {
		SessionID string      `json:"session_id"`
		Side      domain.Side `json:"side"`
		Token     string      `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sess); err != nil {
		log.Fatalf("decode session: %v", err)
	}
	log.Printf("session %s as %s", sess.SessionID, sess.Side)

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://%s/ws?token=%s", *addr, url.QueryEscape(sess.Token))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(*timeout)
	next := func() turn.View {
		for {
			conn.SetReadDeadline(deadline)
			var msg ws.ViewMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Fatalf("read: %v", err)
			}
			if msg.Type != ws.MsgView {
				continue
			}
			log.Printf("view gen=%d phase=%s thinking=%v message=%q", msg.View.Generation, msg.View.Phase, msg.View.Thinking, msg.View.Message)
			return msg.View
		}
	}

	v := next()
	for len(v.Interactable) == 0 {
		if v.Phase == domain.PhaseGameOver && v.Outcome != "" {
			log.Printf("game over before any move: %s", v.Outcome)
			return
		}
		v = next()
	}

	move := v.Interactable[0]
	log.Printf("playing row=%d col=%d", move.Row, move.Col)
	if err := conn.WriteJSON(ws.ClientMessage{Type: ws.MsgClick, Row: move.Row, Col: move.Col}); err != nil {
		log.Fatalf("write: %v", err)
	}

	for {
		v = next()
		if v.Phase == domain.PhaseGameOver && v.Outcome != "" {
			log.Printf("game over: %s", v.Outcome)
			break
		}
		if v.Phase == domain.PhaseAwaitingHumanMove && len(v.Interactable) > 0 && !v.Thinking {
			log.Printf("turn returned with %d legal moves", len(v.Interactable))
			break
		}
	}

	log.Println("smoke test finished")
}
