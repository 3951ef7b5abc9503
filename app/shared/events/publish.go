package scoreevents

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Outbound is an event staged by a service operation, published once the
// operation's transaction has committed.
type Outbound struct {
	Topic   string
	Payload any
}

// Completed stages a GameCompletedV1 event.
func Completed(p GameCompletedPayloadV1) Outbound {
	return Outbound{Topic: GameCompletedV1, Payload: p}
}

// Revoked stages a GameResultsRevokedV1 event. It returns nothing when
// gameIDs is empty.
func Revoked(reason string, gameIDs ...string) []Outbound {
	if len(gameIDs) == 0 {
		return nil
	}
	return []Outbound{{
		Topic:   GameResultsRevokedV1,
		Payload: GameResultsRevokedPayloadV1{GameIDs: gameIDs, Reason: reason},
	}}
}

// Publish sends events in order. Failures are logged and do not stop the
// remaining events; the caller's write has already committed.
func Publish(ctx context.Context, publisher message.Publisher, logger *slog.Logger, events []Outbound) {
	if publisher == nil || len(events) == 0 {
		return
	}
	for _, ev := range events {
		msg, err := eventbus.NewJSONMessage(ctx, ev.Payload)
		if err == nil {
			err = publisher.Publish(ev.Topic, msg)
		}
		if err != nil {
			logger.ErrorContext(ctx, "Failed to publish event",
				attr.ExtractCorrelationID(ctx),
				attr.String("topic", ev.Topic),
				attr.Error(err),
			)
			continue
		}
		logger.InfoContext(ctx, "Event published",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", ev.Topic),
			attr.String("message_id", msg.UUID),
		)
	}
}
