package leaderboarddb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository stores finished game results.
type Repository interface {
	// RecordGame replaces the stored rows of rows[0].GameID with rows.
	// Redelivering the same game leaves one row per participant.
	RecordGame(ctx context.Context, db bun.IDB, rows []GameResult) error
	// DeleteGames removes every row of the given games and reports how many
	// rows went.
	DeleteGames(ctx context.Context, db bun.IDB, gameIDs []string) (int, error)
	// ListResults returns matching rows oldest first.
	ListResults(ctx context.Context, db bun.IDB, filter ResultFilter) ([]GameResult, error)
}
