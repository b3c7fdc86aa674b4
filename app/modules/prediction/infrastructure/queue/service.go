package predictionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

const component = "river"

// QueueService defines the contract for recompute job scheduling.
type QueueService interface {
	// EnqueueRecompute queues a recompute of the fixture and returns the job ID.
	EnqueueRecompute(ctx context.Context, competitionID, fixtureID uuid.UUID, recordedAt time.Time) (int64, error)
	// GetFixtureJobs returns the recompute jobs of a fixture (for debugging)
	GetFixtureJobs(ctx context.Context, fixtureID uuid.UUID) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service schedules recompute jobs with River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics metrics.OperationMetrics
}

// NewService creates the River client and registers the recompute worker.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, m metrics.OperationMetrics, recomputer Recomputer, maxWorkers int) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_recompute_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", component)

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRecomputeWorker(ctxLogger, recomputer))

	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", component)
	m.RecordOperationDuration(ctx, "initialize_service", component, time.Since(start))
	ctxLogger.Info("Recompute queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: m,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", component)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", component)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", component)
	s.logger.Info("Recompute queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", component)
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", component)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", component)
	s.logger.Info("Recompute queue service stopped")
	return nil
}

// EnqueueRecompute inserts a recompute job. A job with identical arguments
// is not inserted twice; River returns the existing one.
func (s *Service) EnqueueRecompute(ctx context.Context, competitionID, fixtureID uuid.UUID, recordedAt time.Time) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_recompute", component)

	job := FixtureRecomputeJob{
		CompetitionID: competitionID.String(),
		FixtureID:     fixtureID.String(),
		RecordedAt:    recordedAt.UTC(),
	}
	res, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue: QueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue recompute job",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("fixture_id", fixtureID),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, "enqueue_recompute", component)
		return 0, fmt.Errorf("failed to enqueue recompute job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_recompute", component)
	s.metrics.RecordOperationDuration(ctx, "enqueue_recompute", component, time.Since(start))
	s.logger.InfoContext(ctx, "Recompute job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("fixture_id", fixtureID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}

// GetFixtureJobs lists recompute jobs of a fixture, newest first.
func (s *Service) GetFixtureJobs(ctx context.Context, fixtureID uuid.UUID) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64     `bun:"id"`
		Kind        string    `bun:"kind"`
		State       string    `bun:"state"`
		CreatedAt   time.Time `bun:"created_at"`
		Attempt     int16     `bun:"attempt"`
		MaxAttempts int16     `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "created_at", "attempt", "max_attempts").
		Where("kind = ?", FixtureRecomputeJob{}.Kind()).
		Where("args->>'fixture_id' = ?", fixtureID.String()).
		Order("created_at DESC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query recompute jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		out[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			FixtureID:   fixtureID.String(),
			State:       job.State,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue table is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	if err := s.db.NewSelect().Table("river_job").ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
