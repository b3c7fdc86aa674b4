package leaderboardservice

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Fixture Reader
// ------------------------

type FakeFixtureReader struct {
	trace []string

	Competition  *competitiondb.Competition
	Fixtures     []competitiondb.Fixture
	Participants []competitiondb.Participant
	ListErr      error
}

func (f *FakeFixtureReader) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeFixtureReader) GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error) {
	f.record("GetCompetition")
	if f.Competition == nil || f.Competition.UUID != competitionID {
		return nil, competitiondb.ErrNotFound
	}
	return f.Competition, nil
}

func (f *FakeFixtureReader) GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error) {
	f.record("GetFixture")
	for i := range f.Fixtures {
		if f.Fixtures[i].UUID == fixtureID {
			return &f.Fixtures[i], nil
		}
	}
	return nil, competitiondb.ErrNotFound
}

// ListFixtures honours StartsBefore only, which is all the leaderboard uses.
func (f *FakeFixtureReader) ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error) {
	f.record("ListFixtures")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []competitiondb.Fixture
	for _, fx := range f.Fixtures {
		if fx.CompetitionUUID != competitionID {
			continue
		}
		if !filter.StartsBefore.IsZero() && !fx.StartTime.Before(filter.StartsBefore) {
			continue
		}
		out = append(out, fx)
	}
	return out, nil
}

func (f *FakeFixtureReader) ListParticipants(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Participant, error) {
	f.record("ListParticipants")
	return f.Participants, nil
}

func (f *FakeFixtureReader) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Prediction Reader
// ------------------------

type FakePredictionReader struct {
	Matches []predictiondb.MatchPrediction
	Tables  []predictiondb.TablePrediction
}

func (f *FakePredictionReader) ListCompetitionPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.MatchPrediction, error) {
	return f.Matches, nil
}

func (f *FakePredictionReader) ListTablePredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.TablePrediction, error) {
	return f.Tables, nil
}

// ------------------------
// Fake Snapshot Reader
// ------------------------

type FakeSnapshotReader struct {
	Snapshot *standingsdomain.Snapshot
	Calls    int
}

func (f *FakeSnapshotReader) LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdomain.Snapshot, error) {
	f.Calls++
	return f.Snapshot, nil
}
