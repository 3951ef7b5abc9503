package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/nats-io/nkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "kafka"}, slog.Default())
	assert.ErrorContains(t, err, "unknown event bus driver")
}

func TestGoChannelRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus, err := New(ctx, Config{Driver: DriverGoChannel}, slog.Default())
	require.NoError(t, err)
	defer bus.Close()

	messages, err := bus.Subscribe(ctx, "scorekeeper.test.v1")
	require.NoError(t, err)

	msg, err := NewJSONMessage(attr.WithCorrelationID(ctx, "corr-1"), map[string]int{"total": 105})
	require.NoError(t, err)
	require.NoError(t, bus.Publish("scorekeeper.test.v1", msg))

	select {
	case got := <-messages:
		got.Ack()
		var payload map[string]int
		require.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, 105, payload["total"])
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(got))
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestNewJSONMessageGeneratesCorrelationID(t *testing.T) {
	msg, err := NewJSONMessage(context.Background(), struct{ A int }{A: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, middleware.MessageCorrelationID(msg))
	assert.Equal(t, "application/json", msg.Metadata.Get("content_type"))
	assert.JSONEq(t, `{"A":1}`, string(msg.Payload))
}

func TestNkeyOption(t *testing.T) {
	kp, err := nkeys.CreateUser()
	require.NoError(t, err)
	seed, err := kp.Seed()
	require.NoError(t, err)

	opt, err := nkeyOption(string(seed))
	require.NoError(t, err)
	assert.NotNil(t, opt)

	_, err = nkeyOption("not-a-seed")
	assert.Error(t, err)
}

func TestNatsOptionsWithSeed(t *testing.T) {
	opts, err := natsOptions(Config{}, slog.Default())
	require.NoError(t, err)
	base := len(opts)

	kp, err := nkeys.CreateUser()
	require.NoError(t, err)
	seed, err := kp.Seed()
	require.NoError(t, err)

	opts, err = natsOptions(Config{NKeySeed: string(seed)}, slog.Default())
	require.NoError(t, err)
	assert.Len(t, opts, base+1)
}
