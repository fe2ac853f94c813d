package domain

import "time"

// GameRecord - finished game entry in the history ledger
type GameRecord struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	HumanSide Side      `db:"human_side" json:"human_side"`
	Outcome   string    `db:"outcome" json:"outcome"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
