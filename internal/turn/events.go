package turn

import (
	"context"

	"othello_webapp/internal/domain"
)

type event interface{}

type clickEvent struct {
	move domain.MoveIntent
}

type resetEvent struct{}

type viewRequest struct {
	reply chan View
}

type beginDone struct {
	gen uint64
	err error
}

type resetDone struct {
	gen uint64
	err error
}

type boardFetched struct {
	gen      uint64
	seq      uint64
	snapshot domain.BoardSnapshot
	err      error
}

type moveSubmitted struct {
	gen    uint64
	result domain.MoveResult
	err    error
}

type thinkElapsed struct {
	gen uint64
}

type opponentMoved struct {
	gen    uint64
	result domain.OpponentResult
	err    error
}

type outcomeFetched struct {
	gen     uint64
	message string
	err     error
}

func (c *Controller) handle(ev event) {
	switch ev := ev.(type) {
	case viewRequest:
		ev.reply <- c.view()
	case clickEvent:
		c.onClick(ev)
	case resetEvent:
		c.onReset()
	case beginDone:
		c.onBegin(ev)
	case resetDone:
		c.onResetDone(ev)
	case boardFetched:
		c.onBoard(ev)
	case moveSubmitted:
		c.onMoveSubmitted(ev)
	case thinkElapsed:
		c.onThinkElapsed(ev)
	case opponentMoved:
		c.onOpponentMoved(ev)
	case outcomeFetched:
		c.onOutcome(ev)
	}
}

func (c *Controller) onClick(ev clickEvent) {
	if !c.interactable(ev.move) {
		ignoredClicks.Inc()
		c.log.Debug("click ignored", "row", ev.move.Row, "col", ev.move.Col, "phase", c.s.phase)
		return
	}
	s := c.s
	s.moveInFlight = true
	s.showLegal = false
	if c.opts.ClearMessageOnMove {
		s.message = ""
	}
	c.log.Info("human move", "row", ev.move.Row, "col", ev.move.Col)
	c.publish()

	gen, move := s.gen, ev.move
	c.spawn(func(ctx context.Context) event {
		res, err := c.eng.SubmitMove(ctx, move)
		return moveSubmitted{gen: gen, result: res, err: err}
	})
}

func (c *Controller) onReset() {
	c.log.Info("reset requested", "generation", c.s.gen)
	c.newSession()
	gen := c.s.gen
	c.spawn(func(ctx context.Context) event {
		return resetDone{gen: gen, err: c.eng.Reset(ctx)}
	})
}

func (c *Controller) onResetDone(ev resetDone) {
	if c.stale(ev.gen, "reset") {
		return
	}
	// The reset reply is advisory; Begin starts a fresh engine game either way.
	if ev.err != nil {
		resetFailures.Inc()
		c.log.Warn("engine reset failed, starting a new game anyway", "error", ev.err)
	}
	c.begin()
}

func (c *Controller) onBegin(ev beginDone) {
	if c.stale(ev.gen, "begin") {
		return
	}
	if ev.err != nil {
		c.fail("begin", ev.err)
		return
	}
	c.s.started = true
	c.refreshBoard()
	if c.s.phase == domain.PhaseAwaitingOpponentMove {
		c.enterOpponentCycle()
		return
	}
	c.publish()
}

func (c *Controller) onBoard(ev boardFetched) {
	if c.stale(ev.gen, "board") {
		return
	}
	s := c.s
	if ev.seq != s.boardIssued {
		staleReplies.WithLabelValues("board").Inc()
		c.log.Debug("dropped superseded board", "seq", ev.seq, "latest", s.boardIssued)
		return
	}
	if ev.err != nil {
		c.fail("fetch board", ev.err)
		return
	}
	s.snapshot = ev.snapshot
	s.boardApplied = ev.seq
	c.publish()
}

func (c *Controller) onMoveSubmitted(ev moveSubmitted) {
	if c.stale(ev.gen, "user_move") {
		return
	}
	s := c.s
	s.moveInFlight = false
	if ev.err != nil {
		s.showLegal = true
		c.fail("user move", ev.err)
		return
	}
	c.refreshBoard()
	if ev.result.GameOver {
		c.enterGameOver()
		return
	}
	c.enterOpponentCycle()
}

func (c *Controller) onThinkElapsed(ev thinkElapsed) {
	if c.stale(ev.gen, "timer") {
		return
	}
	s := c.s
	if s.phase != domain.PhaseAwaitingOpponentMove || s.moveInFlight {
		return
	}
	s.moveInFlight = true
	gen := s.gen
	c.spawn(func(ctx context.Context) event {
		res, err := c.eng.TriggerOpponent(ctx)
		return opponentMoved{gen: gen, result: res, err: err}
	})
}

func (c *Controller) onOpponentMoved(ev opponentMoved) {
	if c.stale(ev.gen, "agent_move") {
		return
	}
	s := c.s
	s.moveInFlight = false
	if ev.err != nil {
		s.thinking = false
		c.fail("agent move", ev.err)
		return
	}
	c.refreshBoard()

	res := ev.result
	c.log.Debug("opponent replied", "game_over", res.GameOver, "agent_moved", res.AgentMoved, "user_has_moves", res.UserHasMoves)
	switch {
	case res.GameOver:
		c.enterGameOver()
	case res.AgentMoved && res.UserHasMoves:
		c.handToHuman("")
	case res.AgentMoved:
		s.message = c.opts.Messages.HumanPass
		c.enterOpponentCycle()
	case !res.UserHasMoves:
		// neither side can move
		c.enterGameOver()
	default:
		c.handToHuman(c.opts.Messages.OpponentPass)
	}
}
