package competitiondb

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Team is a club that can take part in competitions.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID        sharedtypes.TeamID `bun:"id,pk,autoincrement"`
	Name      string             `bun:"name,notnull,unique"`
	Short     string             `bun:"short"`
	CreatedAt time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Competition is one season of a league together with its scoring rules.
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:c"`

	UUID       uuid.UUID                    `bun:"uuid,pk,type:uuid"`
	Name       string                       `bun:"name,notnull"`
	Season     string                       `bun:"season,notnull"`
	Rules      competitiondomain.RuleConfig `bun:"rules,type:jsonb,notnull"`
	PrizeBands competitiondomain.PrizeBands `bun:"prize_bands,type:jsonb"`
	CreatedAt  time.Time                    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time                    `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// CompetitionTeam links a team to a competition.
type CompetitionTeam struct {
	bun.BaseModel `bun:"table:competition_teams,alias:ct"`

	CompetitionUUID uuid.UUID          `bun:"competition_uuid,pk,type:uuid"`
	TeamID          sharedtypes.TeamID `bun:"team_id,pk"`
}

// Participant is a user playing the pool of a competition.
type Participant struct {
	bun.BaseModel `bun:"table:competition_participants,alias:cp"`

	CompetitionUUID uuid.UUID          `bun:"competition_uuid,pk,type:uuid"`
	UserID          sharedtypes.UserID `bun:"user_id,pk"`
	DisplayName     string             `bun:"display_name,notnull"`
	JoinedAt        time.Time          `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
}

// Fixture is a scheduled match. Goals stay NULL until the result is recorded.
type Fixture struct {
	bun.BaseModel `bun:"table:fixtures,alias:f"`

	UUID             uuid.UUID          `bun:"uuid,pk,type:uuid"`
	CompetitionUUID  uuid.UUID          `bun:"competition_uuid,type:uuid,notnull"`
	HomeTeamID       sharedtypes.TeamID `bun:"home_team_id,notnull"`
	AwayTeamID       sharedtypes.TeamID `bun:"away_team_id,notnull"`
	StartTime        time.Time          `bun:"start_time,notnull"`
	HomeGoals        *int               `bun:"home_goals"`
	AwayGoals        *int               `bun:"away_goals"`
	ResultRecordedAt *time.Time         `bun:"result_recorded_at"`
	CreatedAt        time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row to the domain fixture.
func (f *Fixture) ToDomain() competitiondomain.Fixture {
	return competitiondomain.Fixture{
		ID:            f.UUID,
		CompetitionID: f.CompetitionUUID,
		HomeTeamID:    f.HomeTeamID,
		AwayTeamID:    f.AwayTeamID,
		StartTime:     f.StartTime,
		HomeGoals:     f.HomeGoals,
		AwayGoals:     f.AwayGoals,
	}
}

// FixtureFilter narrows fixture listings. Zero values disable a condition.
type FixtureFilter struct {
	StartsFrom    time.Time
	StartsBefore  time.Time
	ConcludedOnly bool
}
