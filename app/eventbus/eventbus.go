package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const durablePrefix = "betting-pool"

// EventBus is a watermill publisher/subscriber pair backed by NATS JetStream.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
}

var (
	_ message.Publisher  = (*EventBus)(nil)
	_ message.Subscriber = (*EventBus)(nil)
)

// NewEventBus connects to NATS, makes sure the streams exist and builds the
// watermill publisher and subscriber.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (*EventBus, error) {
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, natsOptions...)
	if err != nil {
		logger.Error("Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", attr.Error(err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	if err := InitializeStreams(ctx, js, logger); err != nil {
		natsConn.Close()
		return nil, err
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream: nats.JetStreamConfig{
				// streams are provisioned above with explicit subjects
				AutoProvision: false,
				TrackMsgId:    true,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:            natsURL,
			Unmarshaler:    marshaler,
			NatsOptions:    natsOptions,
			CloseTimeout:   30 * time.Second,
			AckWaitTimeout: 30 * time.Second,
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverAll(),
					nc.AckExplicit(),
				},
				DurablePrefix:     durablePrefix,
				DurableCalculator: DurableName,
			},
		},
		watermillLogger,
	)
	if err != nil {
		_ = publisher.Close()
		natsConn.Close()
		logger.Error("Failed to create Watermill subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &EventBus{
		publisher:  publisher,
		subscriber: subscriber,
		js:         js,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// Publish implements message.Publisher.
func (eb *EventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
		)
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message", attr.String("topic", topic), attr.Error(err))
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements message.Subscriber.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", attr.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return messages, nil
}

// JetStream exposes the JetStream handle, used by health checks.
func (eb *EventBus) JetStream() jetstream.JetStream {
	return eb.js
}

// Close closes all NATS and Watermill resources.
func (eb *EventBus) Close() error {
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", attr.Error(err))
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", attr.Error(err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return nil
}

// DurableName derives a consumer name from a topic. JetStream durable names
// may not contain '.', '*' or '>', which wildcard topics always do.
func DurableName(prefix, topic string) string {
	r := strings.NewReplacer(".", "_", "*", "all", ">", "rest")
	name := r.Replace(topic)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}
