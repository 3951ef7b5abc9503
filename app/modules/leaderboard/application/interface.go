package leaderboardservice

import (
	"context"
	"time"

	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// Service records finished games and reports on them.
type Service interface {
	// RecordCompleted stores one row per participant. Recording the same
	// game again replaces its rows.
	RecordCompleted(ctx context.Context, payload scoreevents.GameCompletedPayloadV1) error
	// RevokeGames drops the rows of the listed games and reports how many
	// rows went.
	RevokeGames(ctx context.Context, payload scoreevents.GameResultsRevokedPayloadV1) (int, error)

	// Standings aggregates every participant, optionally for one kind.
	Standings(ctx context.Context, kind sharedtypes.GameKind) ([]Standing, error)
	// History lists a participant's games oldest first.
	History(ctx context.Context, participant, since string) ([]HistoryEntry, error)
	// HistoryChart renders cumulative wins over time as PNG.
	HistoryChart(ctx context.Context, participant string) ([]byte, error)
	// ExportXLSX writes a Standings and a Results sheet.
	ExportXLSX(ctx context.Context) ([]byte, error)
}

// Standing is one participant's aggregate record.
type Standing struct {
	Participant string    `json:"participant"`
	IsUser      bool      `json:"isUser"`
	Games       int       `json:"games"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Points      int       `json:"points"`
	WinRate     float64   `json:"winRate"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// HistoryEntry is one finished game from a participant's point of view.
type HistoryEntry struct {
	GameID      string               `json:"gameId"`
	Kind        sharedtypes.GameKind `json:"kind"`
	CompletedAt time.Time            `json:"completedAt"`
	Total       int                  `json:"total"`
	Winner      bool                 `json:"winner"`
	Rounds      int                  `json:"rounds"`
	TargetScore int                  `json:"targetScore"`
	Wins        int                  `json:"wins"`
}
