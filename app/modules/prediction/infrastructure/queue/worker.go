package predictionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Recomputer is the part of the prediction service the worker drives.
type Recomputer interface {
	RecomputeFixture(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error)
}

// RecomputeWorker runs FixtureRecomputeJob.
type RecomputeWorker struct {
	river.WorkerDefaults[FixtureRecomputeJob]

	recomputer Recomputer
	logger     *slog.Logger
	now        func() time.Time
}

// NewRecomputeWorker creates the worker.
func NewRecomputeWorker(logger *slog.Logger, recomputer Recomputer) *RecomputeWorker {
	return &RecomputeWorker{
		recomputer: recomputer,
		logger:     logger,
		now:        time.Now,
	}
}

// Work recomputes the fixture. Errors are returned so River retries.
func (w *RecomputeWorker) Work(ctx context.Context, job *river.Job[FixtureRecomputeJob]) error {
	fixtureID, err := uuid.Parse(job.Args.FixtureID)
	if err != nil {
		// a malformed job can never succeed
		return river.JobCancel(fmt.Errorf("invalid fixture id %q: %w", job.Args.FixtureID, err))
	}

	summary, err := w.recomputer.RecomputeFixture(ctx, fixtureID, w.now())
	if err != nil {
		w.logger.ErrorContext(ctx, "Fixture recompute failed",
			attr.String("fixture_id", job.Args.FixtureID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return err
	}

	w.logger.InfoContext(ctx, "Fixture recomputed",
		attr.String("fixture_id", job.Args.FixtureID),
		attr.Int("predictions", summary.Predictions),
		attr.Int("changed", summary.Changed),
	)
	return nil
}

// Timeout bounds a single recompute.
func (w *RecomputeWorker) Timeout(*river.Job[FixtureRecomputeJob]) time.Duration {
	return time.Minute
}
