// Package turn drives one Othello session against a remote engine: it decides
// whose turn it is, paces the opponent, handles passes and ends the game.
//
// All session state is owned by the goroutine running Controller.Run. Engine
// calls and the pacing timer run elsewhere and report back as events tagged
// with the session generation (and, for board fetches, a sequence number), so
// a late reply can never touch a newer session or overwrite a newer board.
package turn

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/logger"
)

// Engine is the part of the engine contract the controller drives.
type Engine interface {
	Begin(ctx context.Context, side domain.Side) error
	FetchBoard(ctx context.Context) (domain.BoardSnapshot, error)
	SubmitMove(ctx context.Context, m domain.MoveIntent) (domain.MoveResult, error)
	TriggerOpponent(ctx context.Context) (domain.OpponentResult, error)
	FetchOutcome(ctx context.Context) (string, error)
	Reset(ctx context.Context) error
}

// Recorder stores finished games.
type Recorder interface {
	Create(ctx context.Context, rec *domain.GameRecord) error
}

// Messages are the texts shown in the message region.
type Messages struct {
	Thinking     string
	HumanPass    string
	OpponentPass string
	EngineError  string
}

func DefaultMessages() Messages {
	return Messages{
		Thinking:     "Opponent is deciding...",
		HumanPass:    "You have no legal move. Your opponent goes again.",
		OpponentPass: "Your opponent had no legal move. Your turn.",
		EngineError:  "Lost contact with the game engine. Reset to continue.",
	}
}

type Options struct {
	SessionID string
	Side      domain.Side
	// ThinkDelay paces the opponent; it is UX pacing, not a timeout.
	ThinkDelay         time.Duration
	ClearMessageOnMove bool
	Messages           Messages
	Recorder           Recorder
	Logger             *slog.Logger
}

var ErrStopped = errors.New("controller stopped")

type Controller struct {
	eng    Engine
	sink   Sink
	opts   Options
	log    *slog.Logger
	events chan event
	done   chan struct{}

	// owned by the Run goroutine
	loopCtx context.Context
	gen     uint64
	s       *session
}

// session is everything a reset throws away.
type session struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer

	started   bool
	phase     domain.TurnPhase
	showLegal bool
	thinking  bool
	message   string
	outcome   string

	snapshot     domain.BoardSnapshot
	boardIssued  uint64
	boardApplied uint64

	moveInFlight     bool
	outcomeRequested bool
}

func (s *session) boardCurrent() bool {
	return s.boardIssued > 0 && s.boardApplied == s.boardIssued
}

func (s *session) stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
}

func New(eng Engine, sink Sink, opts Options) *Controller {
	if opts.Messages == (Messages{}) {
		opts.Messages = DefaultMessages()
	}
	if opts.Side == "" {
		opts.Side = domain.SideBlack
	}
	log := opts.Logger
	if log == nil {
		log = logger.With("session", opts.SessionID)
	}
	return &Controller{
		eng:    eng,
		sink:   sink,
		opts:   opts,
		log:    log,
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
}

// Run starts the first session and processes events until ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.loopCtx = ctx
	c.newSession()
	c.begin()

	for {
		select {
		case <-ctx.Done():
			c.s.stop()
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// Click forwards a click on (row, col). It is ignored unless that cell is
// currently interactable.
func (c *Controller) Click(row, col int) {
	c.post(clickEvent{move: domain.MoveIntent{Row: row, Col: col}})
}

// Reset discards the session and starts a new one with the same side.
func (c *Controller) Reset() {
	c.post(resetEvent{})
}

// View returns the current view, answered from the loop.
func (c *Controller) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case c.events <- viewRequest{reply: reply}:
	case <-c.done:
		return View{}, ErrStopped
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-c.done:
		return View{}, ErrStopped
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// spawn runs an engine call off the loop and posts its result back.
func (c *Controller) spawn(call func(ctx context.Context) event) {
	ctx := c.s.ctx
	go func() {
		c.post(call(ctx))
	}()
}

func (c *Controller) newSession() {
	if c.s != nil {
		c.s.stop()
	}
	c.gen++
	ctx, cancel := context.WithCancel(c.loopCtx)
	phase := domain.InitialPhase(c.opts.Side)
	c.s = &session{
		gen:       c.gen,
		ctx:       ctx,
		cancel:    cancel,
		phase:     phase,
		showLegal: phase == domain.PhaseAwaitingHumanMove,
	}
	transitionsTotal.WithLabelValues(string(phase)).Inc()
	c.log.Info("session started", "generation", c.gen, "side", c.opts.Side, "phase", phase)
	c.publish()
}

func (c *Controller) begin() {
	gen, side := c.s.gen, c.opts.Side
	c.spawn(func(ctx context.Context) event {
		return beginDone{gen: gen, err: c.eng.Begin(ctx, side)}
	})
}

func (c *Controller) refreshBoard() {
	c.s.boardIssued++
	gen, seq := c.s.gen, c.s.boardIssued
	c.spawn(func(ctx context.Context) event {
		snap, err := c.eng.FetchBoard(ctx)
		return boardFetched{gen: gen, seq: seq, snapshot: snap, err: err}
	})
}

// canAct reports whether the human may click right now.
func (c *Controller) canAct() bool {
	s := c.s
	return s.started &&
		s.phase == domain.PhaseAwaitingHumanMove &&
		s.showLegal &&
		!s.moveInFlight &&
		s.boardCurrent()
}

func (c *Controller) interactable(m domain.MoveIntent) bool {
	return c.canAct() && m.Valid() && c.s.snapshot.IsLegal(m.Row, m.Col)
}

func (c *Controller) transition(to domain.TurnPhase) {
	if c.s.phase == to {
		return
	}
	c.log.Debug("phase change", "from", c.s.phase, "to", to)
	c.s.phase = to
	transitionsTotal.WithLabelValues(string(to)).Inc()
}

// stale reports (and counts) replies that belong to a previous session.
func (c *Controller) stale(gen uint64, kind string) bool {
	if gen == c.s.gen {
		return false
	}
	staleReplies.WithLabelValues(kind).Inc()
	c.log.Debug("dropped reply from previous session", "kind", kind, "reply_generation", gen)
	return true
}

// fail surfaces an engine failure. The phase is left untouched and nothing is
// retried; the user recovers with a reset.
func (c *Controller) fail(op string, err error) {
	c.log.Warn("engine request failed", "op", op, "error", err)
	c.s.message = c.opts.Messages.EngineError
	c.publish()
}

func (c *Controller) enterOpponentCycle() {
	s := c.s
	c.transition(domain.PhaseAwaitingOpponentMove)
	s.showLegal = false
	s.thinking = true
	c.publish()

	gen := s.gen
	s.timer = time.AfterFunc(c.opts.ThinkDelay, func() {
		c.post(thinkElapsed{gen: gen})
	})
}

func (c *Controller) handToHuman(message string) {
	s := c.s
	c.transition(domain.PhaseAwaitingHumanMove)
	s.showLegal = true
	s.thinking = false
	s.message = message
	c.publish()
}

func (c *Controller) enterGameOver() {
	s := c.s
	c.transition(domain.PhaseGameOver)
	s.showLegal = false
	s.thinking = false
	c.publish()
	c.requestOutcome()
}
