package repository

import (
	"context"

	"othello_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultHistoryLimit = 50

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

// Create stores a finished game and fills in its id and timestamp.
func (r *GameHistoryRepository) Create(ctx context.Context, rec *domain.GameRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_history (session_id, human_side, outcome)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rec.SessionID,
		string(rec.HumanSide),
		rec.Outcome,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// Recent returns the latest finished games across all sessions.
func (r *GameHistoryRepository) Recent(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, human_side, outcome, created_at
		 FROM game_history
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// BySession returns the finished games of one session, newest first.
func (r *GameHistoryRepository) BySession(ctx context.Context, sessionID string, limit int) ([]*domain.GameRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, human_side, outcome, created_at
		 FROM game_history
		 WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultHistoryLimit
	}
	return limit
}

func scanRecords(rows pgx.Rows) ([]*domain.GameRecord, error) {
	defer rows.Close()

	result := []*domain.GameRecord{}
	for rows.Next() {
		var (
			rec  domain.GameRecord
			side string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &side, &rec.Outcome, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.HumanSide = domain.Side(side)
		result = append(result, &rec)
	}
	return result, rows.Err()
}
