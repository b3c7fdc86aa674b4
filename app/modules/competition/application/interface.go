package competitionservice

import (
	"context"
	"time"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// Service defines the competition operations: setup, fixtures and results.
type Service interface {
	CreateCompetition(ctx context.Context, req CreateCompetitionRequest) (*CompetitionInfo, error)
	GetCompetition(ctx context.Context, competitionID uuid.UUID) (*CompetitionInfo, error)
	// ListCompetitions lists a season's competitions; an empty season selects
	// the latest one.
	ListCompetitions(ctx context.Context, season string) ([]CompetitionInfo, error)
	AddParticipant(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID, displayName string) error

	ScheduleFixture(ctx context.Context, req ScheduleFixtureRequest) (*FixtureInfo, error)
	GetFixture(ctx context.Context, fixtureID uuid.UUID) (*FixtureInfo, error)
	ListFixtures(ctx context.Context, competitionID uuid.UUID) ([]FixtureInfo, error)
	// ImportFixtures creates fixtures from a .csv or .xlsx file. Team names are
	// resolved against the competition's teams; rows carrying a score are
	// stored as concluded.
	// A recompute that cannot be scheduled for an imported result is reported
	// alongside the summary.
	ImportFixtures(ctx context.Context, competitionID uuid.UUID, fileName string, data []byte, now time.Time) (*ImportSummary, error)

	// RecordFixtureResult stores (or corrects) a result and announces it so
	// cached prediction points get recomputed.
	RecordFixtureResult(ctx context.Context, fixtureID uuid.UUID, homeGoals, awayGoals int, now time.Time) (*FixtureInfo, error)
}

// RecomputeScheduler enqueues a fixture recompute without going through the
// event bus.
type RecomputeScheduler interface {
	EnqueueRecompute(ctx context.Context, competitionID, fixtureID uuid.UUID, recordedAt time.Time) (int64, error)
}
