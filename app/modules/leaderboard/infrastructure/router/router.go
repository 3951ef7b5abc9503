package leaderboardrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	leaderboardhandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/handlers"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/handlerwrapper"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// LeaderboardRouter binds game lifecycle topics to the leaderboard handlers.
type LeaderboardRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewLeaderboardRouter creates a new instance of the router. Router metrics
// are skipped under APP_ENV=test.
func NewLeaderboardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *LeaderboardRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &LeaderboardRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the event handlers.
func (r *LeaderboardRouter) Configure(routerCtx context.Context, handlers leaderboardhandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware for Leaderboard")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// handlerDeps provides a scannable structure for the registerHandler helper.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler adds one typed handler. Messages it produces are published
// to the topic named in their metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "leaderboard." + topic
	wrapped := handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler)

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		nil,
		func(msg *message.Message) ([]*message.Message, error) {
			produced, err := wrapped(msg)
			if err != nil {
				return nil, err
			}
			for _, m := range produced {
				publishTopic := m.Metadata.Get(handlerwrapper.TopicMetadataKey)
				if publishTopic == "" || deps.publisher == nil {
					deps.logger.Error("router cannot publish handler output - MESSAGE DROPPED",
						attr.String("handler", handlerName),
						attr.String("msg_uuid", m.UUID),
					)
					continue
				}
				if err := deps.publisher.Publish(publishTopic, m); err != nil {
					return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
				}
			}
			return nil, nil
		},
	)
}

// RegisterHandlers binds the game lifecycle topics to their handlers.
func (r *LeaderboardRouter) RegisterHandlers(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Leaderboard Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, scoreevents.GameCompletedV1, handlers.HandleGameCompleted)
	registerHandler(deps, scoreevents.GameResultsRevokedV1, handlers.HandleGameResultsRevoked)

	return nil
}

// Close stops the router and cleans up resources.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}
