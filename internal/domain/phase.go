package domain

// TurnPhase - whose action the session is waiting on
type TurnPhase string

const (
	PhaseAwaitingHumanMove    TurnPhase = "awaiting_human_move"
	PhaseAwaitingOpponentMove TurnPhase = "awaiting_opponent_move"
	PhaseGameOver             TurnPhase = "game_over"
)

// InitialPhase derives the starting phase from the human's side: the
// opponent opens whenever the human plays second.
func InitialPhase(human Side) TurnPhase {
	if human.OpensGame() {
		return PhaseAwaitingHumanMove
	}
	return PhaseAwaitingOpponentMove
}

// MoveResult is the engine's reply to a submitted human move.
type MoveResult struct {
	GameOver bool
}

// OpponentResult is the engine's reply to an opponent-move trigger.
type OpponentResult struct {
	GameOver     bool
	AgentMoved   bool
	UserHasMoves bool
}
