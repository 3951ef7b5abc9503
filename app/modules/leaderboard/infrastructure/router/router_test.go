package leaderboardrouter

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/handlerwrapper"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandlers struct {
	completed chan *scoreevents.GameCompletedPayloadV1
	revoked   chan *scoreevents.GameResultsRevokedPayloadV1
	results   []handlerwrapper.Result
}

func newFakeHandlers() *fakeHandlers {
	return &fakeHandlers{
		completed: make(chan *scoreevents.GameCompletedPayloadV1, 1),
		revoked:   make(chan *scoreevents.GameResultsRevokedPayloadV1, 1),
	}
}

func (f *fakeHandlers) HandleGameCompleted(ctx context.Context, payload *scoreevents.GameCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	f.completed <- payload
	return f.results, nil
}

func (f *fakeHandlers) HandleGameResultsRevoked(ctx context.Context, payload *scoreevents.GameResultsRevokedPayloadV1) ([]handlerwrapper.Result, error) {
	f.revoked <- payload
	return nil, nil
}

func startRouter(t *testing.T, handlers *fakeHandlers) (context.Context, eventbus.EventBus) {
	t.Helper()
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewGoChannel(logger)
	t.Cleanup(func() { _ = bus.Close() })

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	lr := NewLeaderboardRouter(logger, router, bus, bus, nil, prometheus.NewRegistry())
	assert.False(t, lr.metricsEnabled)
	require.NoError(t, lr.Configure(ctx, handlers))

	go func() { _ = router.Run(ctx) }()
	t.Cleanup(func() { _ = lr.Close() })

	select {
	case <-router.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}
	return ctx, bus
}

func TestRouterDeliversGameEvents(t *testing.T) {
	handlers := newFakeHandlers()
	ctx, bus := startRouter(t, handlers)

	msg, err := eventbus.NewJSONMessage(ctx, scoreevents.GameCompletedPayloadV1{GameID: "g1", Kind: "hearts"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(scoreevents.GameCompletedV1, msg))

	select {
	case got := <-handlers.completed:
		assert.Equal(t, "g1", got.GameID)
	case <-ctx.Done():
		t.Fatal("completed handler not called")
	}

	msg, err = eventbus.NewJSONMessage(ctx, scoreevents.GameResultsRevokedPayloadV1{GameIDs: []string{"g1"}, Reason: scoreevents.RevokeReasonGameReopened})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(scoreevents.GameResultsRevokedV1, msg))

	select {
	case got := <-handlers.revoked:
		assert.Equal(t, []string{"g1"}, got.GameIDs)
		assert.Equal(t, scoreevents.RevokeReasonGameReopened, got.Reason)
	case <-ctx.Done():
		t.Fatal("revoked handler not called")
	}
}

func TestRouterPublishesHandlerResults(t *testing.T) {
	handlers := newFakeHandlers()
	handlers.results = []handlerwrapper.Result{{Topic: "scorekeeper.test.echo.v1", Payload: map[string]string{"game": "g2"}}}
	ctx, bus := startRouter(t, handlers)

	echoes, err := bus.Subscribe(ctx, "scorekeeper.test.echo.v1")
	require.NoError(t, err)

	msg, err := eventbus.NewJSONMessage(attr.WithCorrelationID(ctx, "corr-9"), scoreevents.GameCompletedPayloadV1{GameID: "g2"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(scoreevents.GameCompletedV1, msg))

	select {
	case got := <-echoes:
		got.Ack()
		assert.JSONEq(t, `{"game":"g2"}`, string(got.Payload))
		assert.Equal(t, "scorekeeper.test.echo.v1", got.Metadata.Get(handlerwrapper.TopicMetadataKey))
	case <-ctx.Done():
		t.Fatal("handler output not published")
	}
}
