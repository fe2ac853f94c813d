package turn

import (
	"context"
	"time"

	"othello_webapp/internal/domain"
)

const recordTimeout = 5 * time.Second

// requestOutcome fetches the final outcome once per session.
func (c *Controller) requestOutcome() {
	s := c.s
	if s.outcomeRequested {
		return
	}
	s.outcomeRequested = true
	gen := s.gen
	c.spawn(func(ctx context.Context) event {
		msg, err := c.eng.FetchOutcome(ctx)
		return outcomeFetched{gen: gen, message: msg, err: err}
	})
}

func (c *Controller) onOutcome(ev outcomeFetched) {
	if c.stale(ev.gen, "outcome") {
		return
	}
	if ev.err != nil {
		c.fail("game outcome", ev.err)
		return
	}
	s := c.s
	s.outcome = ev.message
	s.message = ev.message
	gamesFinished.Inc()
	c.log.Info("game finished", "outcome", ev.message)
	c.publish()
	c.record(ev.message)
}

// record writes the finished game to the ledger without holding up the loop.
func (c *Controller) record(outcome string) {
	if c.opts.Recorder == nil {
		return
	}
	rec := &domain.GameRecord{
		SessionID: c.opts.SessionID,
		HumanSide: c.opts.Side,
		Outcome:   outcome,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := c.opts.Recorder.Create(ctx, rec); err != nil {
			c.log.Error("failed to record game", "error", err)
		}
	}()
}
