package predictionservice

import (
	"context"
	"time"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service defines the prediction operations.
type Service interface {
	SubmitMatchPrediction(ctx context.Context, req SubmitMatchPredictionRequest, now time.Time) (*MatchPredictionInfo, error)
	DeleteMatchPrediction(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) error
	ListUserPredictions(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) ([]MatchPredictionInfo, error)

	// RecomputeFixture re-grades every prediction of a fixture in one
	// transaction. It is idempotent and ignores deadlines.
	RecomputeFixture(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*RecomputeSummary, error)
	RecomputeCompetition(ctx context.Context, competitionID uuid.UUID, now time.Time) (*RecomputeSummary, error)

	SubmitTablePrediction(ctx context.Context, req SubmitTablePredictionRequest, now time.Time) (*TablePredictionInfo, error)
	GetTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*TablePredictionInfo, error)
	ScoreTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondomain.TableScore, error)
}

// FixtureReader is the part of the competition store predictions depend on.
type FixtureReader interface {
	GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error)
	ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Team, error)
	GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error)
	ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error)
	FirstFixtureStart(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (time.Time, error)
}

// SnapshotReader supplies the latest standings of a competition. A missing
// snapshot is reported as (nil, nil).
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdomain.Snapshot, error)
}

// DeadlineResolver returns a user's personal cutoff for a fixture. ok is
// false for anonymous users.
type DeadlineResolver interface {
	DeadlineFor(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID) (deadline time.Time, ok bool, err error)
}
