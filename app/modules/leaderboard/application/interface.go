package leaderboardservice

import (
	"context"
	"time"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service defines the leaderboard and deadline operations.
type Service interface {
	// GetLeaderboard ranks the participants using fixtures that started
	// strictly before asOf.
	GetLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) (*LeaderboardView, error)

	// DeadlineFor returns the personal submission deadline of a user for a
	// fixture. ok is false for anonymous users.
	DeadlineFor(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID) (deadline time.Time, ok bool, err error)
	FixtureDeadline(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) (*DeadlineInfo, error)
	DeadlinesForFixture(ctx context.Context, fixtureID uuid.UUID) (*FixtureDeadlines, error)

	PointsHistory(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]PointsSeries, error)
	RenderPointsChart(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error)
	ExportLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error)
}

// FixtureReader is the slice of the competition store the leaderboard reads.
type FixtureReader interface {
	GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error)
	GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error)
	ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error)
	ListParticipants(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Participant, error)
}

// PredictionReader lists the stored predictions of a competition.
type PredictionReader interface {
	ListCompetitionPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.MatchPrediction, error)
	ListTablePredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]predictiondb.TablePrediction, error)
}

// SnapshotReader supplies the latest standings. A missing snapshot is
// reported as (nil, nil).
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdomain.Snapshot, error)
}
