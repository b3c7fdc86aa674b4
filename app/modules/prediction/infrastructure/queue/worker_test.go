package predictionqueue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecomputer struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeRecomputer) RecomputeFixture(_ context.Context, fixtureID uuid.UUID, _ time.Time) (*predictionservice.RecomputeSummary, error) {
	f.calls = append(f.calls, fixtureID)
	if f.err != nil {
		return nil, f.err
	}
	return &predictionservice.RecomputeSummary{Fixtures: 1, Predictions: 4, Changed: 2}, nil
}

func newJob(args FixtureRecomputeJob) *river.Job[FixtureRecomputeJob] {
	return &river.Job[FixtureRecomputeJob]{JobRow: &rivertype.JobRow{ID: 1, Attempt: 1}, Args: args}
}

func TestRecomputeWorker(t *testing.T) {
	fixtureID := uuid.New()

	t.Run("recomputes the fixture", func(t *testing.T) {
		rec := &fakeRecomputer{}
		w := NewRecomputeWorker(slog.Default(), rec)
		err := w.Work(context.Background(), newJob(FixtureRecomputeJob{FixtureID: fixtureID.String()}))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fixtureID}, rec.calls)
	})

	t.Run("failure is returned for retry", func(t *testing.T) {
		rec := &fakeRecomputer{err: errors.New("deadlock detected")}
		w := NewRecomputeWorker(slog.Default(), rec)
		err := w.Work(context.Background(), newJob(FixtureRecomputeJob{FixtureID: fixtureID.String()}))
		assert.ErrorIs(t, err, rec.err)
	})

	t.Run("malformed fixture id is cancelled", func(t *testing.T) {
		rec := &fakeRecomputer{}
		w := NewRecomputeWorker(slog.Default(), rec)
		err := w.Work(context.Background(), newJob(FixtureRecomputeJob{FixtureID: "nope"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid fixture id")
		assert.Empty(t, rec.calls)
	})
}

func TestFixtureRecomputeJobKind(t *testing.T) {
	assert.Equal(t, "fixture_recompute", FixtureRecomputeJob{}.Kind())
}
