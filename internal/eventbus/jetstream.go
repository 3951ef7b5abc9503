package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

const (
	defaultStreamName    = "SCOREKEEPER"
	defaultSubjectPrefix = "scorekeeper"
	streamMaxAge         = 7 * 24 * time.Hour
)

// JetStreamEventBus publishes and subscribes through NATS JetStream. The
// stream is provisioned once at startup; topics are subjects under the
// configured prefix.
type JetStreamEventBus struct {
	logger     *slog.Logger
	conn       *nc.Conn
	publisher  *nats.Publisher
	subscriber *nats.Subscriber
}

var _ EventBus = (*JetStreamEventBus)(nil)

// NewJetStream connects to NATS, ensures the stream exists and builds the
// watermill publisher and subscriber.
func NewJetStream(ctx context.Context, cfg Config, logger *slog.Logger) (*JetStreamEventBus, error) {
	if cfg.StreamName == "" {
		cfg.StreamName = defaultStreamName
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = defaultSubjectPrefix
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = 30 * time.Second
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	options, err := natsOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	conn, err := nc.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if err := ensureStream(ctx, conn, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream: nats.JetStreamConfig{
				Disabled:       false,
				AutoProvision:  false,
				PublishOptions: []nc.PubOpt{},
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:            cfg.URL,
			CloseTimeout:   cfg.CloseTimeout,
			AckWaitTimeout: cfg.AckWait,
			NatsOptions:    options,
			Unmarshaler:    marshaler,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverAll(),
					nc.AckExplicit(),
				},
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill NATS subscriber: %w", err)
	}

	return &JetStreamEventBus{
		logger:     logger,
		conn:       conn,
		publisher:  publisher,
		subscriber: subscriber,
	}, nil
}

func natsOptions(cfg Config, logger *slog.Logger) ([]nc.Option, error) {
	options := []nc.Option{
		nc.Name("card-scorekeeper"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
		nc.MaxReconnects(-1),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in NATS subscription",
					attr.String("subject", s.Subject),
					attr.String("queue", s.Queue),
					attr.Error(err),
				)
				return
			}
			logger.Error("Error in NATS connection", attr.Error(err))
		}),
	}

	if cfg.NKeySeed != "" {
		opt, err := nkeyOption(cfg.NKeySeed)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, nil
}

// nkeyOption authenticates with the user NKey derived from seed.
func nkeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive NATS nkey public key: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}

func ensureStream(ctx context.Context, conn *nc.Conn, cfg Config) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{cfg.SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    streamMaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to provision stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Publish publishes messages to topic.
func (b *JetStreamEventBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

// Subscribe subscribes to topic.
func (b *JetStreamEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

// Close closes the subscriber, the publisher and the provisioning connection.
func (b *JetStreamEventBus) Close() error {
	b.logger.Info("Stopping JetStream event bus")
	var firstErr error
	if err := b.subscriber.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close subscriber: %w", err)
	}
	if err := b.publisher.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close publisher: %w", err)
	}
	b.conn.Close()
	return firstErr
}
