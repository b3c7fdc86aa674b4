package competitiondb

import (
	"context"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for competition persistence.
type Repository interface {
	// Competitions
	CreateCompetition(ctx context.Context, db bun.IDB, competition *Competition) error
	GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*Competition, error)
	ListCompetitions(ctx context.Context, db bun.IDB, season string) ([]Competition, error)
	LatestSeason(ctx context.Context, db bun.IDB) (string, error)
	UpdateRules(ctx context.Context, db bun.IDB, competitionID uuid.UUID, rules competitiondomain.RuleConfig) error

	// Teams
	UpsertTeam(ctx context.Context, db bun.IDB, team *Team) error
	AddTeamToCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID, teamID sharedtypes.TeamID) error
	ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]Team, error)

	// Participants
	AddParticipant(ctx context.Context, db bun.IDB, participant *Participant) error
	ListParticipants(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]Participant, error)

	// Fixtures
	CreateFixture(ctx context.Context, db bun.IDB, fixture *Fixture) error
	GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*Fixture, error)
	ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter FixtureFilter) ([]Fixture, error)
	UpdateFixtureResult(ctx context.Context, db bun.IDB, fixtureID uuid.UUID, homeGoals, awayGoals int, recordedAt time.Time) error
	FirstFixtureStart(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (time.Time, error)
}
