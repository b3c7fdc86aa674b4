package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new competition repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateCompetition inserts a competition, assigning a UUID when missing.
func (r *Impl) CreateCompetition(ctx context.Context, db bun.IDB, competition *Competition) error {
	db = r.resolveDB(db)
	if competition.UUID == uuid.Nil {
		competition.UUID = uuid.New()
	}
	if _, err := db.NewInsert().Model(competition).Exec(ctx); err != nil {
		return fmt.Errorf("competitiondb.CreateCompetition: %w", err)
	}
	return nil
}

// GetCompetition retrieves a competition by UUID.
func (r *Impl) GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*Competition, error) {
	db = r.resolveDB(db)
	competition := new(Competition)
	err := db.NewSelect().
		Model(competition).
		Where("uuid = ?", competitionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetCompetition: %w", err)
	}
	return competition, nil
}

// ListCompetitions lists competitions, optionally restricted to one season.
func (r *Impl) ListCompetitions(ctx context.Context, db bun.IDB, season string) ([]Competition, error) {
	db = r.resolveDB(db)
	var competitions []Competition
	q := db.NewSelect().Model(&competitions).Order("season DESC", "name ASC")
	if season != "" {
		q = q.Where("season = ?", season)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("competitiondb.ListCompetitions: %w", err)
	}
	return competitions, nil
}

// LatestSeason returns the season of the competition with the latest fixture.
func (r *Impl) LatestSeason(ctx context.Context, db bun.IDB) (string, error) {
	db = r.resolveDB(db)
	var season string
	err := db.NewSelect().
		TableExpr("fixtures AS f").
		Join("JOIN competitions AS c ON c.uuid = f.competition_uuid").
		ColumnExpr("c.season").
		OrderExpr("f.start_time DESC").
		Limit(1).
		Scan(ctx, &season)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("competitiondb.LatestSeason: %w", err)
	}
	return season, nil
}

// UpdateRules replaces the scoring configuration of a competition.
func (r *Impl) UpdateRules(ctx context.Context, db bun.IDB, competitionID uuid.UUID, rules competitiondomain.RuleConfig) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Competition)(nil)).
		Set("rules = ?", rules).
		Set("updated_at = current_timestamp").
		Where("uuid = ?", competitionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpdateRules: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// UpsertTeam creates a team or refreshes its short name, keyed by name.
func (r *Impl) UpsertTeam(ctx context.Context, db bun.IDB, team *Team) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(team).
		On("CONFLICT (name) DO UPDATE").
		Set("short = EXCLUDED.short").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpsertTeam: %w", err)
	}
	return nil
}

// AddTeamToCompetition links a team to a competition. Linking twice is a no-op.
func (r *Impl) AddTeamToCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID, teamID sharedtypes.TeamID) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&CompetitionTeam{CompetitionUUID: competitionID, TeamID: teamID}).
		On("CONFLICT (competition_uuid, team_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.AddTeamToCompetition: %w", err)
	}
	return nil
}

// ListTeams returns the teams of a competition ordered by name.
func (r *Impl) ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]Team, error) {
	db = r.resolveDB(db)
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Join("JOIN competition_teams AS ct ON ct.team_id = t.id").
		Where("ct.competition_uuid = ?", competitionID).
		Order("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListTeams: %w", err)
	}
	return teams, nil
}

// AddParticipant registers a user, refreshing the display name when present.
func (r *Impl) AddParticipant(ctx context.Context, db bun.IDB, participant *Participant) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(participant).
		On("CONFLICT (competition_uuid, user_id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.AddParticipant: %w", err)
	}
	return nil
}

// ListParticipants returns every participant of a competition.
func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]Participant, error) {
	db = r.resolveDB(db)
	var participants []Participant
	err := db.NewSelect().
		Model(&participants).
		Where("competition_uuid = ?", competitionID).
		Order("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListParticipants: %w", err)
	}
	return participants, nil
}

// CreateFixture inserts a fixture, assigning a UUID when missing.
func (r *Impl) CreateFixture(ctx context.Context, db bun.IDB, fixture *Fixture) error {
	db = r.resolveDB(db)
	if fixture.UUID == uuid.Nil {
		fixture.UUID = uuid.New()
	}
	if _, err := db.NewInsert().Model(fixture).Exec(ctx); err != nil {
		return fmt.Errorf("competitiondb.CreateFixture: %w", err)
	}
	return nil
}

// GetFixture retrieves a fixture by UUID.
func (r *Impl) GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*Fixture, error) {
	db = r.resolveDB(db)
	fixture := new(Fixture)
	err := db.NewSelect().
		Model(fixture).
		Where("uuid = ?", fixtureID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetFixture: %w", err)
	}
	return fixture, nil
}

// ListFixtures lists a competition's fixtures in kickoff order.
func (r *Impl) ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter FixtureFilter) ([]Fixture, error) {
	db = r.resolveDB(db)
	var fixtures []Fixture
	q := db.NewSelect().
		Model(&fixtures).
		Where("competition_uuid = ?", competitionID).
		Order("start_time ASC", "uuid ASC")
	if !filter.StartsFrom.IsZero() {
		q = q.Where("start_time >= ?", filter.StartsFrom)
	}
	if !filter.StartsBefore.IsZero() {
		q = q.Where("start_time < ?", filter.StartsBefore)
	}
	if filter.ConcludedOnly {
		q = q.Where("home_goals IS NOT NULL").Where("away_goals IS NOT NULL")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("competitiondb.ListFixtures: %w", err)
	}
	return fixtures, nil
}

// UpdateFixtureResult stores the goals of a fixture.
func (r *Impl) UpdateFixtureResult(ctx context.Context, db bun.IDB, fixtureID uuid.UUID, homeGoals, awayGoals int, recordedAt time.Time) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Fixture)(nil)).
		Set("home_goals = ?", homeGoals).
		Set("away_goals = ?", awayGoals).
		Set("result_recorded_at = ?", recordedAt).
		Set("updated_at = ?", recordedAt).
		Where("uuid = ?", fixtureID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpdateFixtureResult: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("competitiondb.UpdateFixtureResult: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// FirstFixtureStart returns the earliest kickoff of a competition.
func (r *Impl) FirstFixtureStart(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (time.Time, error) {
	db = r.resolveDB(db)
	var start sql.NullTime
	err := db.NewSelect().
		Model((*Fixture)(nil)).
		ColumnExpr("MIN(start_time)").
		Where("competition_uuid = ?", competitionID).
		Scan(ctx, &start)
	if err != nil {
		return time.Time{}, fmt.Errorf("competitiondb.FirstFixtureStart: %w", err)
	}
	if !start.Valid {
		return time.Time{}, ErrNotFound
	}
	return start.Time, nil
}
