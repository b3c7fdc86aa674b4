package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictionhandlers "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/handlers"
	predictionqueue "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/queue"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	predictionrouter "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/router"
	"github.com/Black-And-White-Club/betting-pool/config"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module owns match and table predictions, their scoring and the recompute
// queue fed by recorded results.
type Module struct {
	Repository predictiondb.Repository
	Service    *predictionservice.PredictionService
	Queue      *predictionqueue.Service
	Router     *predictionrouter.PredictionRouter

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// Deps are the collaborators owned by other modules.
type Deps struct {
	Fixtures  competitiondb.Repository
	Snapshots predictionservice.SnapshotReader
}

// NewPredictionModule creates the prediction module and registers its
// handlers on router. Until a deadline resolver is set on Service every user
// is cut off at kickoff.
func NewPredictionModule(
	ctx context.Context,
	cfg *config.Config,
	db *bun.DB,
	obs *observability.Observability,
	deps Deps,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "prediction.NewPredictionModule called")

	repo := predictiondb.NewRepository(db)
	service := predictionservice.NewPredictionService(repo, deps.Fixtures, deps.Snapshots, logger, obs.Metrics, obs.Tracer, db)

	queue, err := predictionqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.Metrics, service, cfg.Queue.MaxWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create recompute queue: %w", err)
	}

	handlers := predictionhandlers.NewPredictionHandlers(service, queue, logger)

	predictionRouter := predictionrouter.NewPredictionRouter(logger, router, subscriber, publisher, obs.Tracer, obs.Registry)
	if err := predictionRouter.Configure(ctx, handlers); err != nil {
		_ = queue.Stop(ctx)
		return nil, fmt.Errorf("failed to configure prediction router: %w", err)
	}

	return &Module{
		Repository: repo,
		Service:    service,
		Queue:      queue,
		Router:     predictionRouter,
		logger:     logger,
	}, nil
}

// Run starts the recompute queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) error {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.InfoContext(ctx, "Starting prediction module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if err := m.Queue.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Prediction module goroutine stopped")
	return nil
}

// Close stops the queue, letting running recomputes finish within timeout.
func (m *Module) Close(timeout time.Duration) error {
	m.logger.Info("Stopping prediction module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := m.Queue.Stop(ctx); err != nil {
		m.logger.Error("Error stopping recompute queue", attr.Error(err))
		return err
	}

	m.logger.Info("Prediction module stopped")
	return nil
}
