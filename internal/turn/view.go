package turn

import (
	"othello_webapp/internal/board"
	"othello_webapp/internal/domain"
)

// View is everything a front end needs to draw one session.
type View struct {
	SessionID      string              `json:"session_id"`
	Generation     uint64              `json:"generation"`
	Side           domain.Side         `json:"side"`
	Phase          domain.TurnPhase    `json:"phase"`
	Board          board.Grid          `json:"board"`
	ShowLegalMoves bool                `json:"show_legal_moves"`
	Interactable   []domain.MoveIntent `json:"interactable"`
	Thinking       bool                `json:"thinking"`
	Indicator      string              `json:"indicator,omitempty"`
	Message        string              `json:"message"`
	MessageVisible bool                `json:"message_visible"`
	Outcome        string              `json:"outcome,omitempty"`
}

// Sink receives every view the controller publishes. Publish runs on the
// controller loop and must not block.
type Sink interface {
	Publish(View)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(View)

func (f SinkFunc) Publish(v View) { f(v) }

func (c *Controller) view() View {
	s := c.s
	active := c.canAct()
	v := View{
		SessionID:      c.opts.SessionID,
		Generation:     s.gen,
		Side:           c.opts.Side,
		Phase:          s.phase,
		Board:          board.Project(s.snapshot, active),
		ShowLegalMoves: s.showLegal,
		Thinking:       s.thinking,
		Message:        s.message,
		MessageVisible: s.message != "",
		Outcome:        s.outcome,
	}
	if s.thinking {
		v.Indicator = c.opts.Messages.Thinking
	}
	if active {
		v.Interactable = s.snapshot.LegalMoves()
	}
	return v
}

func (c *Controller) publish() {
	if c.sink != nil {
		c.sink.Publish(c.view())
	}
}
