package leaderboarddb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// ErrMixedGames is returned when one RecordGame call spans several games.
var ErrMixedGames = errors.New("results belong to more than one game")

// Impl implements Repository over the game_results table.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) conn(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) RecordGame(ctx context.Context, db bun.IDB, rows []GameResult) error {
	if len(rows) == 0 {
		return nil
	}
	gameID := rows[0].GameID
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.GameID != gameID {
			return ErrMixedGames
		}
		names = append(names, row.ParticipantName)
	}

	conn := r.conn(db)
	if _, err := conn.NewDelete().
		Model((*GameResult)(nil)).
		Where("game_id = ?", gameID).
		Where("participant_name NOT IN (?)", bun.In(names)).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear stale results for game %s: %w", gameID, err)
	}

	if _, err := conn.NewInsert().
		Model(&rows).
		On("CONFLICT (game_id, participant_name) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("opponent_id = EXCLUDED.opponent_id").
		Set("is_user = EXCLUDED.is_user").
		Set("total = EXCLUDED.total").
		Set("winner = EXCLUDED.winner").
		Set("rounds = EXCLUDED.rounds").
		Set("target_score = EXCLUDED.target_score").
		Set("completed_at = EXCLUDED.completed_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert results for game %s: %w", gameID, err)
	}
	return nil
}

func (r *Impl) DeleteGames(ctx context.Context, db bun.IDB, gameIDs []string) (int, error) {
	if len(gameIDs) == 0 {
		return 0, nil
	}
	res, err := r.conn(db).NewDelete().
		Model((*GameResult)(nil)).
		Where("game_id IN (?)", bun.In(gameIDs)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted results: %w", err)
	}
	return int(n), nil
}

func (r *Impl) ListResults(ctx context.Context, db bun.IDB, filter ResultFilter) ([]GameResult, error) {
	var rows []GameResult
	q := r.conn(db).NewSelect().Model(&rows)
	if name := strings.TrimSpace(filter.Participant); name != "" {
		q = q.Where("LOWER(participant_name) = ?", strings.ToLower(name))
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if !filter.Since.IsZero() {
		q = q.Where("completed_at >= ?", filter.Since)
	}
	if err := q.Order("completed_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return rows, nil
}

var _ Repository = (*Impl)(nil)
