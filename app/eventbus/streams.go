package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/nats-io/nats.go/jetstream"
)

// FixtureStream holds every fixture event.
const FixtureStream = "betting-fixtures"

// StreamConfigs lists the streams the service publishes to.
func StreamConfigs() []jetstream.StreamConfig {
	return []jetstream.StreamConfig{
		{
			Name:      FixtureStream,
			Subjects:  []string{"betting.fixture.>"},
			Retention: jetstream.LimitsPolicy,
			MaxAge:    30 * 24 * time.Hour,
			Storage:   jetstream.FileStorage,
		},
	}
}

// StreamManager is the subset of jetstream.JetStream used for provisioning.
type StreamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// InitializeStreams creates the streams, or adds missing subjects to
// streams that already exist.
func InitializeStreams(ctx context.Context, js StreamManager, logger *slog.Logger) error {
	for _, cfg := range StreamConfigs() {
		if err := ensureStream(ctx, js, cfg, logger); err != nil {
			return err
		}
	}
	return nil
}

func ensureStream(ctx context.Context, js StreamManager, cfg jetstream.StreamConfig, logger *slog.Logger) error {
	stream, err := js.Stream(ctx, cfg.Name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := js.CreateStream(ctx, cfg); err != nil {
			logger.Error("Failed to create JetStream stream", attr.String("stream", cfg.Name), attr.Error(err))
			return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		logger.Info("Created JetStream stream", attr.String("stream", cfg.Name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", cfg.Name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	missing := false
	for _, subject := range cfg.Subjects {
		if !slices.Contains(info.Config.Subjects, subject) {
			info.Config.Subjects = append(info.Config.Subjects, subject)
			missing = true
		}
	}
	if !missing {
		return nil
	}

	if _, err := js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream with new subjects: %w", err)
	}
	logger.Info("Stream updated with new subjects", attr.String("stream", cfg.Name))
	return nil
}
