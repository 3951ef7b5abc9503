// Package testutils holds helpers shared by package tests: an in-memory
// database and a recording message publisher.
package testutils

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
	kvmigrations "github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore/migrations"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewSQLiteDB opens an in-memory SQLite database with the kv migrations and
// any extra groups applied. The database is closed when the test ends.
func NewSQLiteDB(t *testing.T, groups ...database.MigrationGroup) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	all := append([]database.MigrationGroup{{Name: "kv", Migrations: kvmigrations.Migrations}}, groups...)
	require.NoError(t, database.Migrate(ctx, db, all...))
	return db
}

// PublishedMessage is one message captured by RecordingPublisher.
type PublishedMessage struct {
	Topic   string
	Message *message.Message
}

// RecordingPublisher is a message.Publisher that keeps what it is given.
// Err, when set, is returned from every Publish call.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage
	Err      error
}

func (p *RecordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.messages = append(p.messages, PublishedMessage{Topic: topic, Message: m})
	}
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Messages returns a copy of everything published so far.
func (p *RecordingPublisher) Messages() []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Topics returns the topic of each published message in order.
func (p *RecordingPublisher) Topics() []string {
	msgs := p.Messages()
	topics := make([]string, 0, len(msgs))
	for _, m := range msgs {
		topics = append(topics, m.Topic)
	}
	return topics
}

// DecodePayload unmarshals a captured message into T.
func DecodePayload[T any](t *testing.T, msg PublishedMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.Message.Payload, &out))
	return out
}

var _ message.Publisher = (*RecordingPublisher)(nil)
