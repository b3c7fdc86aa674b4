package competitionservice

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// TeamInput names a team to create or reuse when setting up a competition.
type TeamInput struct {
	Name  string `json:"name"`
	Short string `json:"short"`
}

// CreateCompetitionRequest sets up a competition with its teams and rules.
type CreateCompetitionRequest struct {
	Name       string                       `json:"name"`
	Season     string                       `json:"season"`
	Rules      competitiondomain.RuleConfig `json:"rules"`
	PrizeBands map[string]string            `json:"prize_bands"`
	Teams      []TeamInput                  `json:"teams"`

	// ReferenceTeam, if set, names the team whose perspective orients the
	// tie-breakers. It overrides Rules.ReferenceTeamID once teams have IDs.
	ReferenceTeam string `json:"reference_team"`
}

// ScheduleFixtureRequest creates a fixture.
type ScheduleFixtureRequest struct {
	CompetitionID uuid.UUID          `json:"competition_id"`
	HomeTeamID    sharedtypes.TeamID `json:"home_team_id"`
	AwayTeamID    sharedtypes.TeamID `json:"away_team_id"`
	StartTime     time.Time          `json:"start_time"`
}

// ImportSummary reports what a fixture import created.
type ImportSummary struct {
	Created     int `json:"created"`
	WithResults int `json:"with_results"`
}

// TeamInfo is the public view of a team.
type TeamInfo struct {
	ID    sharedtypes.TeamID `json:"id"`
	Name  string             `json:"name"`
	Short string             `json:"short"`
}

// CompetitionInfo is the public view of a competition.
type CompetitionInfo struct {
	ID         uuid.UUID                    `json:"id"`
	Name       string                       `json:"name"`
	Season     string                       `json:"season"`
	Rules      competitiondomain.RuleConfig `json:"rules"`
	PrizeBands competitiondomain.PrizeBands `json:"prize_bands"`
	Teams      []TeamInfo                   `json:"teams"`
}

// FixtureInfo is the public view of a fixture.
type FixtureInfo struct {
	ID            uuid.UUID                 `json:"id"`
	CompetitionID uuid.UUID                 `json:"competition_id"`
	HomeTeamID    sharedtypes.TeamID        `json:"home_team_id"`
	AwayTeamID    sharedtypes.TeamID        `json:"away_team_id"`
	StartTime     time.Time                 `json:"start_time"`
	HomeGoals     *int                      `json:"home_goals,omitempty"`
	AwayGoals     *int                      `json:"away_goals,omitempty"`
	Outcome       competitiondomain.Outcome `json:"outcome"`
	Result        string                    `json:"result,omitempty"`
}

func toTeamInfo(t competitiondb.Team) TeamInfo {
	return TeamInfo{ID: t.ID, Name: t.Name, Short: t.Short}
}

func toCompetitionInfo(c *competitiondb.Competition, teams []competitiondb.Team) CompetitionInfo {
	info := CompetitionInfo{
		ID:         c.UUID,
		Name:       c.Name,
		Season:     c.Season,
		Rules:      c.Rules,
		PrizeBands: c.PrizeBands,
		Teams:      make([]TeamInfo, 0, len(teams)),
	}
	for _, t := range teams {
		info.Teams = append(info.Teams, toTeamInfo(t))
	}
	return info
}

func toFixtureInfo(f *competitiondb.Fixture) FixtureInfo {
	d := f.ToDomain()
	return FixtureInfo{
		ID:            f.UUID,
		CompetitionID: f.CompetitionUUID,
		HomeTeamID:    f.HomeTeamID,
		AwayTeamID:    f.AwayTeamID,
		StartTime:     f.StartTime,
		HomeGoals:     f.HomeGoals,
		AwayGoals:     f.AwayGoals,
		Outcome:       d.Outcome(),
		Result:        d.Result(),
	}
}
