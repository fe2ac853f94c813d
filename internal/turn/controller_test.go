package turn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"othello_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testDelay = 10 * time.Millisecond

// fakeEngine scripts engine replies and records the calls it receives.
type fakeEngine struct {
	mu    sync.Mutex
	calls []string

	boards     []domain.BoardSnapshot
	boardCalls int
	boardGates map[int]chan struct{}

	moveResult domain.MoveResult
	moveErr    error
	moveGate   chan struct{}
	moves      []domain.MoveIntent

	agent    []domain.OpponentResult
	agentErr error

	outcome string

	resetErr    error
	beginErr    error
	beginFailsN int
}

func newFakeEngine(boards ...domain.BoardSnapshot) *fakeEngine {
	if len(boards) == 0 {
		boards = []domain.BoardSnapshot{openingBoard()}
	}
	return &fakeEngine{
		boards:     boards,
		boardGates: map[int]chan struct{}{},
		outcome:    "Game over. Black wins. Score: Black 40 - White 24",
	}
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeEngine) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeEngine) Begin(ctx context.Context, side domain.Side) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "begin")
	if f.beginFailsN > 0 {
		f.beginFailsN--
		return f.beginErr
	}
	return nil
}

func (f *fakeEngine) FetchBoard(ctx context.Context) (domain.BoardSnapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "board")
	f.boardCalls++
	n := f.boardCalls
	gate := f.boardGates[n]
	idx := n - 1
	if idx >= len(f.boards) {
		idx = len(f.boards) - 1
	}
	b := f.boards[idx]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.BoardSnapshot{}, ctx.Err()
		}
	}
	return b, nil
}

func (f *fakeEngine) SubmitMove(ctx context.Context, m domain.MoveIntent) (domain.MoveResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "user_move")
	f.moves = append(f.moves, m)
	gate, res, err := f.moveGate, f.moveResult, f.moveErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.MoveResult{}, ctx.Err()
		}
	}
	return res, err
}

func (f *fakeEngine) TriggerOpponent(ctx context.Context) (domain.OpponentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "agent_move")
	if f.agentErr != nil {
		return domain.OpponentResult{}, f.agentErr
	}
	if len(f.agent) == 0 {
		return domain.OpponentResult{AgentMoved: true, UserHasMoves: true}, nil
	}
	res := f.agent[0]
	f.agent = f.agent[1:]
	return res, nil
}

func (f *fakeEngine) FetchOutcome(ctx context.Context) (string, error) {
	f.record("outcome")
	return f.outcome, nil
}

func (f *fakeEngine) Reset(ctx context.Context) error {
	f.record("reset")
	return f.resetErr
}

type recordingSink struct {
	mu    sync.Mutex
	views []View
}

func (s *recordingSink) Publish(v View) {
	s.mu.Lock()
	s.views = append(s.views, v)
	s.mu.Unlock()
}

func (s *recordingSink) all() []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]View(nil), s.views...)
}

type fakeRecorder struct {
	got chan *domain.GameRecord
}

func (r *fakeRecorder) Create(ctx context.Context, rec *domain.GameRecord) error {
	r.got <- rec
	return nil
}

func openingBoard(legal ...domain.MoveIntent) domain.BoardSnapshot {
	var b domain.BoardSnapshot
	b[3][3], b[4][4] = domain.CellWhite, domain.CellWhite
	b[3][4], b[4][3] = domain.CellBlack, domain.CellBlack
	if len(legal) == 0 {
		legal = []domain.MoveIntent{{Row: 2, Col: 3}, {Row: 3, Col: 2}, {Row: 4, Col: 5}, {Row: 5, Col: 4}}
	}
	for _, m := range legal {
		b[m.Row][m.Col] = domain.CellLegal
	}
	return b
}

func start(t *testing.T, eng *fakeEngine, opts Options) (*Controller, *recordingSink) {
	t.Helper()
	if opts.ThinkDelay == 0 {
		opts.ThinkDelay = testDelay
	}
	if opts.SessionID == "" {
		opts.SessionID = "test-session"
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	sink := &recordingSink{}
	c := New(eng, sink, opts)
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})
	return c, sink
}

func waitFor(t *testing.T, c *Controller, what string, cond func(View) bool) View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last View
	for time.Now().Before(deadline) {
		v, err := c.View(context.Background())
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		if cond(v) {
			return v
		}
		last = v
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; last view: %+v", what, last)
	return View{}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func humanReady(v View) bool {
	return v.Phase == domain.PhaseAwaitingHumanMove && len(v.Interactable) > 0
}

func TestBlackHumanOpens(t *testing.T) {
	eng := newFakeEngine()
	c, sink := start(t, eng, Options{Side: domain.SideBlack})

	v := waitFor(t, c, "legal moves", humanReady)
	if len(v.Interactable) != 4 {
		t.Fatalf("expected 4 interactable cells, got %v", v.Interactable)
	}
	if len(v.Board.Affordances()) != 4 {
		t.Fatalf("expected 4 affordances on the board, got %d", len(v.Board.Affordances()))
	}
	if v.Thinking || v.MessageVisible {
		t.Fatalf("unexpected thinking/message state: %+v", v)
	}
	if first := sink.all()[0]; first.Phase != domain.PhaseAwaitingHumanMove {
		t.Fatalf("expected first view in human phase, got %s", first.Phase)
	}
	if n := eng.count("agent_move"); n != 0 {
		t.Fatalf("opponent must not be triggered when black opens, got %d calls", n)
	}
}

func TestClickSubmitsExactlyOneMove(t *testing.T) {
	eng := newFakeEngine()
	eng.moveGate = make(chan struct{})
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	waitFor(t, c, "legal moves", humanReady)

	c.Click(0, 0)
	c.Click(2, 3)
	c.Click(2, 3)
	c.Click(5, 4)
	waitUntil(t, "user move", func() bool { return eng.count("user_move") == 1 })

	v, err := c.View(context.Background())
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(v.Interactable) != 0 || len(v.Board.Affordances()) != 0 {
		t.Fatalf("board must be inert while a move is in flight: %+v", v)
	}
	c.Click(3, 2)
	if _, err := c.View(context.Background()); err != nil {
		t.Fatalf("view: %v", err)
	}
	if n := eng.count("user_move"); n != 1 {
		t.Fatalf("expected exactly one user move, got %d", n)
	}
	eng.mu.Lock()
	got := eng.moves[0]
	eng.mu.Unlock()
	if got != (domain.MoveIntent{Row: 2, Col: 3}) {
		t.Fatalf("unexpected move submitted: %+v", got)
	}

	close(eng.moveGate)
	waitFor(t, c, "hand back after opponent", func(v View) bool {
		return humanReady(v) && !v.Thinking
	})
	if n := eng.count("agent_move"); n != 1 {
		t.Fatalf("expected one opponent trigger, got %d", n)
	}
}

func TestWhiteHumanWaitsForOpponent(t *testing.T) {
	eng := newFakeEngine()
	c, sink := start(t, eng, Options{Side: domain.SideWhite})

	waitFor(t, c, "hand back", humanReady)

	views := sink.all()
	if views[0].Phase != domain.PhaseAwaitingOpponentMove {
		t.Fatalf("expected opponent to open, got %s", views[0].Phase)
	}
	sawThinking := false
	for _, v := range views {
		if v.Thinking {
			sawThinking = true
			if v.Indicator == "" {
				t.Fatalf("thinking view without indicator")
			}
			if len(v.Interactable) != 0 {
				t.Fatalf("board must be inert while the opponent thinks")
			}
		}
	}
	if !sawThinking {
		t.Fatalf("expected a thinking view before the opponent moved")
	}
	if n := eng.count("agent_move"); n != 1 {
		t.Fatalf("expected one opponent trigger, got %d", n)
	}
}

func TestHumanPassLetsOpponentGoAgain(t *testing.T) {
	eng := newFakeEngine()
	eng.agent = []domain.OpponentResult{
		{AgentMoved: true, UserHasMoves: false},
		{AgentMoved: true, UserHasMoves: false},
		{AgentMoved: true, UserHasMoves: true},
	}
	c, sink := start(t, eng, Options{Side: domain.SideWhite})

	v := waitFor(t, c, "hand back", humanReady)
	if v.MessageVisible {
		t.Fatalf("pass message should clear on hand back, got %q", v.Message)
	}
	if n := eng.count("agent_move"); n != 3 {
		t.Fatalf("expected three opponent triggers, got %d", n)
	}

	sawPass := false
	human := false
	for _, v := range sink.all() {
		if v.Message == DefaultMessages().HumanPass {
			sawPass = true
		}
		if v.Phase == domain.PhaseAwaitingHumanMove {
			human = true
		} else if human {
			t.Fatalf("phase went back to %s after reaching the human", v.Phase)
		}
	}
	if !sawPass {
		t.Fatalf("expected the pass message to be shown")
	}
}

func TestOpponentPassHandsBack(t *testing.T) {
	eng := newFakeEngine()
	eng.agent = []domain.OpponentResult{{AgentMoved: false, UserHasMoves: true}}
	c, _ := start(t, eng, Options{Side: domain.SideWhite})

	v := waitFor(t, c, "hand back", humanReady)
	if v.Message != DefaultMessages().OpponentPass || !v.MessageVisible {
		t.Fatalf("expected opponent pass message, got %q", v.Message)
	}
}

func TestNeitherSideCanMoveEndsGame(t *testing.T) {
	eng := newFakeEngine()
	eng.agent = []domain.OpponentResult{{AgentMoved: false, UserHasMoves: false}}
	c, _ := start(t, eng, Options{Side: domain.SideWhite})

	v := waitFor(t, c, "outcome", func(v View) bool { return v.Outcome != "" })
	if v.Phase != domain.PhaseGameOver {
		t.Fatalf("expected game over, got %s", v.Phase)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("agent_move"); n != 1 {
		t.Fatalf("expected a single opponent trigger, got %d", n)
	}
}

func TestGameOverFromOpponentReportsOnce(t *testing.T) {
	eng := newFakeEngine()
	eng.agent = []domain.OpponentResult{{GameOver: true}}
	rec := &fakeRecorder{got: make(chan *domain.GameRecord, 1)}
	c, _ := start(t, eng, Options{Side: domain.SideWhite, Recorder: rec})

	v := waitFor(t, c, "outcome", func(v View) bool { return v.Outcome != "" })
	if v.Message != eng.outcome || !v.MessageVisible {
		t.Fatalf("expected outcome in message region, got %q", v.Message)
	}
	if len(v.Interactable) != 0 || v.Thinking {
		t.Fatalf("finished game must be inert: %+v", v)
	}

	select {
	case got := <-rec.got:
		if got.Outcome != eng.outcome || got.HumanSide != domain.SideWhite || got.SessionID != "test-session" {
			t.Fatalf("unexpected record: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("game was not recorded")
	}

	c.Click(2, 3)
	time.Sleep(5 * testDelay)
	if n := eng.count("outcome"); n != 1 {
		t.Fatalf("expected one outcome fetch, got %d", n)
	}
	if n := eng.count("user_move"); n != 0 {
		t.Fatalf("clicks after game over must be ignored")
	}
}

func TestGameOverFromHumanMove(t *testing.T) {
	eng := newFakeEngine()
	eng.moveResult = domain.MoveResult{GameOver: true}
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	waitFor(t, c, "legal moves", humanReady)

	c.Click(4, 5)
	v := waitFor(t, c, "outcome", func(v View) bool { return v.Outcome != "" })
	if v.Phase != domain.PhaseGameOver {
		t.Fatalf("expected game over, got %s", v.Phase)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("agent_move"); n != 0 {
		t.Fatalf("opponent must not be triggered after game over, got %d", n)
	}
}

func TestSupersededBoardIsDiscarded(t *testing.T) {
	afterHuman := openingBoard(domain.MoveIntent{Row: 5, Col: 4})
	afterOpponent := openingBoard(domain.MoveIntent{Row: 3, Col: 2})
	eng := newFakeEngine(openingBoard(), afterHuman, afterOpponent)
	gate := make(chan struct{})
	eng.boardGates[2] = gate

	before := testutil.ToFloat64(staleReplies.WithLabelValues("board"))
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	waitFor(t, c, "legal moves", humanReady)

	c.Click(2, 3)
	waitFor(t, c, "board after opponent", func(v View) bool {
		return humanReady(v) && len(v.Interactable) == 1 && v.Interactable[0] == domain.MoveIntent{Row: 3, Col: 2}
	})

	close(gate)
	waitUntil(t, "stale board drop", func() bool {
		return testutil.ToFloat64(staleReplies.WithLabelValues("board")) == before+1
	})
	v, err := c.View(context.Background())
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(v.Interactable) != 1 || v.Interactable[0] != (domain.MoveIntent{Row: 3, Col: 2}) {
		t.Fatalf("older board overwrote newer one: %v", v.Interactable)
	}
}

func TestResetDropsInFlightMove(t *testing.T) {
	eng := newFakeEngine()
	eng.moveGate = make(chan struct{})
	before := testutil.ToFloat64(staleReplies.WithLabelValues("user_move"))
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	first := waitFor(t, c, "legal moves", humanReady)

	c.Click(2, 3)
	waitUntil(t, "user move", func() bool { return eng.count("user_move") == 1 })
	c.Reset()

	v := waitFor(t, c, "fresh session", func(v View) bool {
		return v.Generation > first.Generation && humanReady(v)
	})
	if v.MessageVisible || v.Outcome != "" {
		t.Fatalf("reset must clear message and outcome: %+v", v)
	}
	waitUntil(t, "stale move drop", func() bool {
		return testutil.ToFloat64(staleReplies.WithLabelValues("user_move")) == before+1
	})
	if n := eng.count("reset"); n != 1 {
		t.Fatalf("expected one engine reset, got %d", n)
	}
	if n := eng.count("begin"); n != 2 {
		t.Fatalf("expected begin per session, got %d", n)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("agent_move"); n != 0 {
		t.Fatalf("old session leaked an opponent trigger")
	}
}

func TestResetCancelsThinkingDelay(t *testing.T) {
	eng := newFakeEngine()
	c, _ := start(t, eng, Options{Side: domain.SideBlack, ThinkDelay: 50 * time.Millisecond})
	first := waitFor(t, c, "legal moves", humanReady)

	c.Click(2, 3)
	waitFor(t, c, "thinking", func(v View) bool { return v.Thinking })
	c.Reset()
	waitFor(t, c, "fresh session", func(v View) bool {
		return v.Generation > first.Generation && humanReady(v)
	})

	time.Sleep(150 * time.Millisecond)
	if n := eng.count("agent_move"); n != 0 {
		t.Fatalf("cancelled delay still triggered the opponent %d times", n)
	}
}

func TestMoveFailureStallsWithoutRetry(t *testing.T) {
	eng := newFakeEngine()
	eng.moveErr = errors.New("connection refused")
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	waitFor(t, c, "legal moves", humanReady)

	c.Click(2, 3)
	v := waitFor(t, c, "error message", func(v View) bool { return v.MessageVisible })
	if v.Message != DefaultMessages().EngineError {
		t.Fatalf("unexpected message %q", v.Message)
	}
	if v.Phase != domain.PhaseAwaitingHumanMove {
		t.Fatalf("failed move must keep the human phase, got %s", v.Phase)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("user_move"); n != 1 {
		t.Fatalf("failed move was retried: %d calls", n)
	}
	if n := eng.count("agent_move"); n != 0 {
		t.Fatalf("opponent triggered after failed move")
	}
}

func TestOpponentFailureStallsWithoutRetry(t *testing.T) {
	eng := newFakeEngine()
	eng.agentErr = errors.New("engine unavailable")
	c, _ := start(t, eng, Options{Side: domain.SideWhite})

	v := waitFor(t, c, "error message", func(v View) bool { return v.MessageVisible })
	if v.Phase != domain.PhaseAwaitingOpponentMove || v.Thinking {
		t.Fatalf("unexpected state after opponent failure: %+v", v)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("agent_move"); n != 1 {
		t.Fatalf("opponent trigger was retried: %d calls", n)
	}
}

func TestResetRecoversWhenEngineResetFails(t *testing.T) {
	eng := newFakeEngine()
	eng.resetErr = errors.New("status 404 Not Found")
	before := testutil.ToFloat64(resetFailures)
	c, _ := start(t, eng, Options{Side: domain.SideBlack})
	first := waitFor(t, c, "legal moves", humanReady)

	c.Reset()
	v := waitFor(t, c, "playable session after failed reset", func(v View) bool {
		return v.Generation > first.Generation && humanReady(v)
	})
	if v.MessageVisible {
		t.Fatalf("failed reset must not surface an error: %q", v.Message)
	}
	if got := testutil.ToFloat64(resetFailures); got != before+1 {
		t.Fatalf("expected reset failure counted, got %v want %v", got, before+1)
	}
	if n := eng.count("begin"); n != 2 {
		t.Fatalf("expected a new game begun after reset, got %d begins", n)
	}

	c.Click(2, 3)
	waitUntil(t, "user move", func() bool { return eng.count("user_move") == 1 })
}

func TestBeginFailureRecoversOnReset(t *testing.T) {
	eng := newFakeEngine()
	eng.beginErr = errors.New("engine unavailable")
	eng.beginFailsN = 1
	c, _ := start(t, eng, Options{Side: domain.SideBlack})

	stalled := waitFor(t, c, "error message", func(v View) bool { return v.MessageVisible })
	if stalled.Message != DefaultMessages().EngineError || len(stalled.Interactable) != 0 {
		t.Fatalf("unexpected state after begin failure: %+v", stalled)
	}
	time.Sleep(5 * testDelay)
	if n := eng.count("board"); n != 0 {
		t.Fatalf("board fetched without a begun game: %d", n)
	}

	c.Reset()
	v := waitFor(t, c, "playable session", func(v View) bool {
		return v.Generation > stalled.Generation && humanReady(v)
	})
	if v.MessageVisible {
		t.Fatalf("reset must clear the error: %q", v.Message)
	}
}

func TestViewAfterStop(t *testing.T) {
	eng := newFakeEngine()
	c := New(eng, nil, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	waitFor(t, c, "legal moves", humanReady)
	cancel()
	<-c.Done()

	if _, err := c.View(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	c.Click(2, 3) // must not block
}
