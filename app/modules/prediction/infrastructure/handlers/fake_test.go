package predictionhandlers

import (
	"context"
	"time"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// ------------------------
// Fake Prediction Service
// ------------------------

type FakePredictionService struct {
	trace []string

	RecomputeFixtureFunc func(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error)
}

func NewFakePredictionService() *FakePredictionService {
	return &FakePredictionService{trace: []string{}}
}

func (f *FakePredictionService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePredictionService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePredictionService) SubmitMatchPrediction(ctx context.Context, req predictionservice.SubmitMatchPredictionRequest, now time.Time) (*predictionservice.MatchPredictionInfo, error) {
	f.record("SubmitMatchPrediction")
	return &predictionservice.MatchPredictionInfo{}, nil
}

func (f *FakePredictionService) DeleteMatchPrediction(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) error {
	f.record("DeleteMatchPrediction")
	return nil
}

func (f *FakePredictionService) ListUserPredictions(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) ([]predictionservice.MatchPredictionInfo, error) {
	f.record("ListUserPredictions")
	return nil, nil
}

func (f *FakePredictionService) RecomputeFixture(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error) {
	f.record("RecomputeFixture")
	if f.RecomputeFixtureFunc != nil {
		return f.RecomputeFixtureFunc(ctx, fixtureID, now)
	}
	return &predictionservice.RecomputeSummary{Fixtures: 1}, nil
}

func (f *FakePredictionService) RecomputeCompetition(ctx context.Context, competitionID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error) {
	f.record("RecomputeCompetition")
	return &predictionservice.RecomputeSummary{}, nil
}

func (f *FakePredictionService) SubmitTablePrediction(ctx context.Context, req predictionservice.SubmitTablePredictionRequest, now time.Time) (*predictionservice.TablePredictionInfo, error) {
	f.record("SubmitTablePrediction")
	return &predictionservice.TablePredictionInfo{}, nil
}

func (f *FakePredictionService) GetTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictionservice.TablePredictionInfo, error) {
	f.record("GetTablePrediction")
	return &predictionservice.TablePredictionInfo{}, nil
}

func (f *FakePredictionService) ScoreTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondomain.TableScore, error) {
	f.record("ScoreTablePrediction")
	return &predictiondomain.TableScore{}, nil
}

var _ predictionservice.Service = (*FakePredictionService)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	Calls []uuid.UUID
	JobID int64
	Err   error
}

func (f *FakeScheduler) EnqueueRecompute(_ context.Context, _ uuid.UUID, fixtureID uuid.UUID, _ time.Time) (int64, error) {
	f.Calls = append(f.Calls, fixtureID)
	return f.JobID, f.Err
}
