package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/betting-pool/app/eventbus"
	"github.com/Black-And-White-Club/betting-pool/config"
	"github.com/Black-And-White-Club/betting-pool/db/bundb"
	"github.com/Black-And-White-Club/betting-pool/integration_tests/containers"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
)

// TestEnvironment holds the containers and connections shared by the
// integration tests of one package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	JetStream     jetstream.JetStream
	Config        *config.Config
	Observability *observability.Observability
}

// NewTestEnvironment starts Postgres and NATS, applies every migration and
// provisions the JetStream streams.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Observability: observability.NewNoop(),
	}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		Queue:    config.QueueConfig{MaxWorkers: 2},
	}

	db, err := bundb.Open(ctx, pgConnStr)
	if err != nil {
		return err
	}
	env.DB = db

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := bundb.Migrate(ctx, db, discard); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := bundb.MigrateRiver(ctx, pgConnStr); err != nil {
		return err
	}

	bus, err := eventbus.NewEventBus(ctx, natsURL, discard)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = bus
	env.JetStream = bus.JetStream()

	return nil
}

// Reset empties every table and the fixture stream between tests.
func (env *TestEnvironment) Reset() error {
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		return err
	}
	return env.ResetJetStreamState(env.Ctx, eventbus.FixtureStream)
}

// Cleanup tears down all resources created for testing.
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}
