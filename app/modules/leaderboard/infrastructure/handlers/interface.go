package leaderboardhandlers

import (
	"context"

	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/handlerwrapper"
)

// Handlers defines the leaderboard event handlers.
type Handlers interface {
	// HandleGameCompleted records the result of a game that gained a winner.
	HandleGameCompleted(ctx context.Context, payload *scoreevents.GameCompletedPayloadV1) ([]handlerwrapper.Result, error)
	// HandleGameResultsRevoked drops results for reopened or deleted games.
	HandleGameResultsRevoked(ctx context.Context, payload *scoreevents.GameResultsRevokedPayloadV1) ([]handlerwrapper.Result, error)
}
