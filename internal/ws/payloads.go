package ws

import "othello_webapp/internal/turn"

// client → server
type ClientMessage struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// server → client
type ViewMessage struct {
	Type string    `json:"type"`
	View turn.View `json:"view"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PongPayload struct {
	Type string `json:"type"`
}
