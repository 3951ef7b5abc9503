// Package handlerwrapper adapts typed event handlers to watermill handlers.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TopicMetadataKey carries the destination topic of an outgoing message.
const TopicMetadataKey = "topic"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the JSON payload into T, calls handler with a
// context carrying the message's correlation ID, and turns the returned
// results into messages tagged with their topic.
//
// Payloads that fail to decode are logged and acknowledged; redelivering them
// cannot succeed. Handler errors are returned so the router's retry
// middleware can act on them.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("handlerwrapper")
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = attr.WithCorrelationID(ctx, middleware.MessageCorrelationID(msg))

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode message payload, dropping",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, res := range results {
			if res.Topic == "" {
				logger.ErrorContext(ctx, "Handler result has no topic, dropping",
					attr.ExtractCorrelationID(ctx),
					attr.String("handler", handlerName),
				)
				continue
			}

			outMsg, err := eventbus.NewJSONMessage(ctx, res.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range res.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			outMsg.Metadata.Set(TopicMetadataKey, res.Topic)
			out = append(out, outMsg)
		}

		return out, nil
	}
}
