package testutils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ResetJetStreamState purges all messages from the given streams.
func (env *TestEnvironment) ResetJetStreamState(ctx context.Context, streamNames ...string) error {
	if env.JetStream == nil {
		return fmt.Errorf("JetStream context is nil")
	}

	for _, streamName := range streamNames {
		stream, err := env.JetStream.Stream(ctx, streamName)
		if err != nil {
			if errors.Is(err, jetstream.ErrStreamNotFound) {
				continue
			}
			log.Printf("Warning: failed to access stream %s: %v", streamName, err)
			continue
		}
		if err := stream.Purge(ctx); err != nil {
			log.Printf("Warning: failed to purge stream %s: %v", streamName, err)
		}
	}
	return nil
}

// FetchMessage reads the first message on subject with an ephemeral consumer.
func (env *TestEnvironment) FetchMessage(ctx context.Context, streamName, subject string, timeout time.Duration) (jetstream.Msg, error) {
	consumer, err := env.JetStream.CreateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckNonePolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(timeout))
	if err != nil {
		return nil, err
	}
	for msg := range batch.Messages() {
		return msg, nil
	}
	if err := batch.Error(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no message on %s after %v", subject, timeout)
}
