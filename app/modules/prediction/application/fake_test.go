package predictionservice

import (
	"context"
	"sync"
	"time"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Prediction Repo
// ------------------------

type FakePredictionRepo struct {
	mu    sync.Mutex
	trace []string

	UpsertMatchPredictionFunc      func(ctx context.Context, db bun.IDB, prediction *predictiondb.MatchPrediction) error
	GetMatchPredictionFunc         func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) (*predictiondb.MatchPrediction, error)
	DeleteMatchPredictionFunc      func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) error
	ListFixturePredictionsFunc     func(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) ([]predictiondb.MatchPrediction, error)
	ListCompetitionPredictionsFunc func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.MatchPrediction, error)
	ListUserPredictionsFunc        func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) ([]predictiondb.MatchPrediction, error)
	UpdatePointsFunc               func(ctx context.Context, db bun.IDB, predictions []predictiondb.MatchPrediction) error
	AcquireFixtureLockFunc         func(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) error
	GetTablePredictionFunc         func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondb.TablePrediction, error)
	ListTablePredictionsFunc       func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.TablePrediction, error)
	ReplaceTablePredictionFunc     func(ctx context.Context, db bun.IDB, prediction *predictiondb.TablePrediction) error
}

func NewFakePredictionRepo() *FakePredictionRepo {
	return &FakePredictionRepo{
		trace: []string{},
	}
}

func (f *FakePredictionRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakePredictionRepo) UpsertMatchPrediction(ctx context.Context, db bun.IDB, prediction *predictiondb.MatchPrediction) error {
	f.record("UpsertMatchPrediction")
	if f.UpsertMatchPredictionFunc != nil {
		return f.UpsertMatchPredictionFunc(ctx, db, prediction)
	}
	return nil
}

func (f *FakePredictionRepo) GetMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) (*predictiondb.MatchPrediction, error) {
	f.record("GetMatchPrediction")
	if f.GetMatchPredictionFunc != nil {
		return f.GetMatchPredictionFunc(ctx, db, userID, fixtureID)
	}
	return nil, predictiondb.ErrNotFound
}

func (f *FakePredictionRepo) DeleteMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) error {
	f.record("DeleteMatchPrediction")
	if f.DeleteMatchPredictionFunc != nil {
		return f.DeleteMatchPredictionFunc(ctx, db, userID, fixtureID)
	}
	return nil
}

func (f *FakePredictionRepo) ListFixturePredictions(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) ([]predictiondb.MatchPrediction, error) {
	f.record("ListFixturePredictions")
	if f.ListFixturePredictionsFunc != nil {
		return f.ListFixturePredictionsFunc(ctx, db, fixtureID)
	}
	return nil, nil
}

func (f *FakePredictionRepo) ListCompetitionPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.MatchPrediction, error) {
	f.record("ListCompetitionPredictions")
	if f.ListCompetitionPredictionsFunc != nil {
		return f.ListCompetitionPredictionsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakePredictionRepo) ListUserPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) ([]predictiondb.MatchPrediction, error) {
	f.record("ListUserPredictions")
	if f.ListUserPredictionsFunc != nil {
		return f.ListUserPredictionsFunc(ctx, db, competitionID, userID)
	}
	return nil, nil
}

func (f *FakePredictionRepo) UpdatePoints(ctx context.Context, db bun.IDB, predictions []predictiondb.MatchPrediction) error {
	f.record("UpdatePoints")
	if f.UpdatePointsFunc != nil {
		return f.UpdatePointsFunc(ctx, db, predictions)
	}
	return nil
}

func (f *FakePredictionRepo) AcquireFixtureLock(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) error {
	f.record("AcquireFixtureLock")
	if f.AcquireFixtureLockFunc != nil {
		return f.AcquireFixtureLockFunc(ctx, db, fixtureID)
	}
	return nil
}

func (f *FakePredictionRepo) GetTablePrediction(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondb.TablePrediction, error) {
	f.record("GetTablePrediction")
	if f.GetTablePredictionFunc != nil {
		return f.GetTablePredictionFunc(ctx, db, competitionID, userID)
	}
	return nil, predictiondb.ErrNotFound
}

func (f *FakePredictionRepo) ListTablePredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.TablePrediction, error) {
	f.record("ListTablePredictions")
	if f.ListTablePredictionsFunc != nil {
		return f.ListTablePredictionsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakePredictionRepo) ReplaceTablePrediction(ctx context.Context, db bun.IDB, prediction *predictiondb.TablePrediction) error {
	f.record("ReplaceTablePrediction")
	if f.ReplaceTablePredictionFunc != nil {
		return f.ReplaceTablePredictionFunc(ctx, db, prediction)
	}
	return nil
}

func (f *FakePredictionRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ predictiondb.Repository = (*FakePredictionRepo)(nil)

// ------------------------
// Fake Fixture Reader
// ------------------------

type FakeFixtureReader struct {
	Competition  *competitiondb.Competition
	Teams        []competitiondb.Team
	Fixtures     map[uuid.UUID]*competitiondb.Fixture
	FirstKickoff time.Time
	Err          error
}

func (f *FakeFixtureReader) GetCompetition(_ context.Context, _ bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Competition == nil || f.Competition.UUID != competitionID {
		return nil, competitiondb.ErrNotFound
	}
	return f.Competition, nil
}

func (f *FakeFixtureReader) ListTeams(_ context.Context, _ bun.IDB, _ uuid.UUID) ([]competitiondb.Team, error) {
	return f.Teams, f.Err
}

func (f *FakeFixtureReader) GetFixture(_ context.Context, _ bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	fixture, ok := f.Fixtures[fixtureID]
	if !ok {
		return nil, competitiondb.ErrNotFound
	}
	return fixture, nil
}

func (f *FakeFixtureReader) ListFixtures(_ context.Context, _ bun.IDB, _ uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []competitiondb.Fixture
	for _, fixture := range f.Fixtures {
		if filter.ConcludedOnly && fixture.HomeGoals == nil {
			continue
		}
		out = append(out, *fixture)
	}
	return out, nil
}

func (f *FakeFixtureReader) FirstFixtureStart(_ context.Context, _ bun.IDB, _ uuid.UUID) (time.Time, error) {
	if f.FirstKickoff.IsZero() {
		return time.Time{}, competitiondb.ErrNotFound
	}
	return f.FirstKickoff, nil
}

var _ FixtureReader = (*FakeFixtureReader)(nil)

// ------------------------
// Fake Snapshot Reader
// ------------------------

type FakeSnapshotReader struct {
	Snapshot *standingsdomain.Snapshot
	Err      error
}

func (f *FakeSnapshotReader) LatestSnapshot(_ context.Context, _ bun.IDB, _ uuid.UUID) (*standingsdomain.Snapshot, error) {
	return f.Snapshot, f.Err
}

// ------------------------
// Fake Deadline Resolver
// ------------------------

type FakeDeadlineResolver struct {
	Deadline time.Time
	Err      error
}

func (f *FakeDeadlineResolver) DeadlineFor(_ context.Context, user sharedtypes.UserID, _ uuid.UUID) (time.Time, bool, error) {
	if f.Err != nil {
		return time.Time{}, false, f.Err
	}
	return f.Deadline, !user.IsAnonymous(), nil
}
