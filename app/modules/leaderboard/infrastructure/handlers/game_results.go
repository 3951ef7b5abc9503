package leaderboardhandlers

import (
	"context"
	"errors"

	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/handlerwrapper"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
)

// HandleGameCompleted stores the participants' results. A malformed result is
// logged and acknowledged; storage errors are returned for retry.
func (h *LeaderboardHandlers) HandleGameCompleted(
	ctx context.Context,
	payload *scoreevents.GameCompletedPayloadV1,
) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LeaderboardHandlers.HandleGameCompleted")
	defer span.End()

	err := h.service.RecordCompleted(ctx, *payload)
	if errors.Is(err, leaderboardservice.ErrInvalidResult) {
		h.logger.WarnContext(ctx, "Discarding game result",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", payload.GameID),
			attr.Error(err),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "Game result recorded",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", payload.GameID),
		attr.String("kind", string(payload.Kind)),
		attr.Int("participants", len(payload.Participants)),
	)
	return nil, nil
}

// HandleGameResultsRevoked removes results for games that lost their winner.
func (h *LeaderboardHandlers) HandleGameResultsRevoked(
	ctx context.Context,
	payload *scoreevents.GameResultsRevokedPayloadV1,
) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LeaderboardHandlers.HandleGameResultsRevoked")
	defer span.End()

	removed, err := h.service.RevokeGames(ctx, *payload)
	if errors.Is(err, leaderboardservice.ErrNoGamesToRevoke) {
		h.logger.WarnContext(ctx, "Discarding empty revocation",
			attr.ExtractCorrelationID(ctx),
			attr.String("reason", payload.Reason),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "Game results revoked",
		attr.ExtractCorrelationID(ctx),
		attr.Any("game_ids", payload.GameIDs),
		attr.String("reason", payload.Reason),
		attr.Int("rows_removed", removed),
	)
	return nil, nil
}
