// Package eventbus provides the watermill publisher/subscriber the modules
// exchange events over: an in-process GoChannel or NATS JetStream.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	DriverGoChannel = "gochannel"
	DriverNATS      = "nats"
)

// EventBus publishes and subscribes to topics.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects and configures the bus.
type Config struct {
	Driver        string
	URL           string
	NKeySeed      string
	StreamName    string
	SubjectPrefix string
	AckWait       time.Duration
	CloseTimeout  time.Duration
}

// New returns the bus selected by cfg.Driver. An empty driver means GoChannel.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	switch cfg.Driver {
	case "", DriverGoChannel:
		logger.InfoContext(ctx, "Using in-process event bus")
		return NewGoChannel(logger), nil
	case DriverNATS:
		logger.InfoContext(ctx, "Using NATS JetStream event bus", attr.String("nats_url", cfg.URL))
		return NewJetStream(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}
}

// NewGoChannel returns an in-process bus.
func NewGoChannel(logger *slog.Logger) EventBus {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(logger),
	)
}

// NewJSONMessage encodes payload as a watermill message carrying the
// correlation ID found on ctx.
func NewJSONMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	correlationID := attr.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set("content_type", "application/json")
	return msg, nil
}
