package competitionservice

import (
	"context"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Competition Repo
// ------------------------

type FakeCompetitionRepo struct {
	trace []string

	CreateCompetitionFunc    func(ctx context.Context, db bun.IDB, competition *competitiondb.Competition) error
	GetCompetitionFunc       func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error)
	ListCompetitionsFunc     func(ctx context.Context, db bun.IDB, season string) ([]competitiondb.Competition, error)
	LatestSeasonFunc         func(ctx context.Context, db bun.IDB) (string, error)
	UpdateRulesFunc          func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, rules competitiondomain.RuleConfig) error
	UpsertTeamFunc           func(ctx context.Context, db bun.IDB, team *competitiondb.Team) error
	AddTeamToCompetitionFunc func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, teamID sharedtypes.TeamID) error
	ListTeamsFunc            func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Team, error)
	AddParticipantFunc       func(ctx context.Context, db bun.IDB, participant *competitiondb.Participant) error
	ListParticipantsFunc     func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Participant, error)
	CreateFixtureFunc        func(ctx context.Context, db bun.IDB, fixture *competitiondb.Fixture) error
	GetFixtureFunc           func(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error)
	ListFixturesFunc         func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error)
	UpdateFixtureResultFunc  func(ctx context.Context, db bun.IDB, fixtureID uuid.UUID, homeGoals, awayGoals int, recordedAt time.Time) error
	FirstFixtureStartFunc    func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (time.Time, error)
}

func NewFakeCompetitionRepo() *FakeCompetitionRepo {
	return &FakeCompetitionRepo{
		trace: []string{},
	}
}

func (f *FakeCompetitionRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeCompetitionRepo) CreateCompetition(ctx context.Context, db bun.IDB, competition *competitiondb.Competition) error {
	f.record("CreateCompetition")
	if f.CreateCompetitionFunc != nil {
		return f.CreateCompetitionFunc(ctx, db, competition)
	}
	return nil
}

func (f *FakeCompetitionRepo) GetCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*competitiondb.Competition, error) {
	f.record("GetCompetition")
	if f.GetCompetitionFunc != nil {
		return f.GetCompetitionFunc(ctx, db, competitionID)
	}
	return nil, competitiondb.ErrNotFound
}

func (f *FakeCompetitionRepo) ListCompetitions(ctx context.Context, db bun.IDB, season string) ([]competitiondb.Competition, error) {
	f.record("ListCompetitions")
	if f.ListCompetitionsFunc != nil {
		return f.ListCompetitionsFunc(ctx, db, season)
	}
	return nil, nil
}

func (f *FakeCompetitionRepo) LatestSeason(ctx context.Context, db bun.IDB) (string, error) {
	f.record("LatestSeason")
	if f.LatestSeasonFunc != nil {
		return f.LatestSeasonFunc(ctx, db)
	}
	return "", competitiondb.ErrNotFound
}

func (f *FakeCompetitionRepo) UpdateRules(ctx context.Context, db bun.IDB, competitionID uuid.UUID, rules competitiondomain.RuleConfig) error {
	f.record("UpdateRules")
	if f.UpdateRulesFunc != nil {
		return f.UpdateRulesFunc(ctx, db, competitionID, rules)
	}
	return nil
}

func (f *FakeCompetitionRepo) UpsertTeam(ctx context.Context, db bun.IDB, team *competitiondb.Team) error {
	f.record("UpsertTeam")
	if f.UpsertTeamFunc != nil {
		return f.UpsertTeamFunc(ctx, db, team)
	}
	return nil
}

func (f *FakeCompetitionRepo) AddTeamToCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID, teamID sharedtypes.TeamID) error {
	f.record("AddTeamToCompetition")
	if f.AddTeamToCompetitionFunc != nil {
		return f.AddTeamToCompetitionFunc(ctx, db, competitionID, teamID)
	}
	return nil
}

func (f *FakeCompetitionRepo) ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Team, error) {
	f.record("ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakeCompetitionRepo) AddParticipant(ctx context.Context, db bun.IDB, participant *competitiondb.Participant) error {
	f.record("AddParticipant")
	if f.AddParticipantFunc != nil {
		return f.AddParticipantFunc(ctx, db, participant)
	}
	return nil
}

func (f *FakeCompetitionRepo) ListParticipants(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Participant, error) {
	f.record("ListParticipants")
	if f.ListParticipantsFunc != nil {
		return f.ListParticipantsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakeCompetitionRepo) CreateFixture(ctx context.Context, db bun.IDB, fixture *competitiondb.Fixture) error {
	f.record("CreateFixture")
	if f.CreateFixtureFunc != nil {
		return f.CreateFixtureFunc(ctx, db, fixture)
	}
	return nil
}

func (f *FakeCompetitionRepo) GetFixture(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, error) {
	f.record("GetFixture")
	if f.GetFixtureFunc != nil {
		return f.GetFixtureFunc(ctx, db, fixtureID)
	}
	return nil, competitiondb.ErrNotFound
}

func (f *FakeCompetitionRepo) ListFixtures(ctx context.Context, db bun.IDB, competitionID uuid.UUID, filter competitiondb.FixtureFilter) ([]competitiondb.Fixture, error) {
	f.record("ListFixtures")
	if f.ListFixturesFunc != nil {
		return f.ListFixturesFunc(ctx, db, competitionID, filter)
	}
	return nil, nil
}

func (f *FakeCompetitionRepo) UpdateFixtureResult(ctx context.Context, db bun.IDB, fixtureID uuid.UUID, homeGoals, awayGoals int, recordedAt time.Time) error {
	f.record("UpdateFixtureResult")
	if f.UpdateFixtureResultFunc != nil {
		return f.UpdateFixtureResultFunc(ctx, db, fixtureID, homeGoals, awayGoals, recordedAt)
	}
	return nil
}

func (f *FakeCompetitionRepo) FirstFixtureStart(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (time.Time, error) {
	f.record("FirstFixtureStart")
	if f.FirstFixtureStartFunc != nil {
		return f.FirstFixtureStartFunc(ctx, db, competitionID)
	}
	return time.Time{}, competitiondb.ErrNotFound
}

// --- Accessors for assertions ---

func (f *FakeCompetitionRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ competitiondb.Repository = (*FakeCompetitionRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	Topics   []string
	Messages []*message.Message
	Err      error
}

func (p *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	if p.Err != nil {
		return p.Err
	}
	p.Topics = append(p.Topics, topic)
	p.Messages = append(p.Messages, messages...)
	return nil
}

// ------------------------
// Fake Recompute Scheduler
// ------------------------

type enqueuedRecompute struct {
	CompetitionID uuid.UUID
	FixtureID     uuid.UUID
	RecordedAt    time.Time
}

type FakeRecomputeScheduler struct {
	Enqueued []enqueuedRecompute
	Err      error
}

func (f *FakeRecomputeScheduler) EnqueueRecompute(ctx context.Context, competitionID, fixtureID uuid.UUID, recordedAt time.Time) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.Enqueued = append(f.Enqueued, enqueuedRecompute{CompetitionID: competitionID, FixtureID: fixtureID, RecordedAt: recordedAt})
	return int64(len(f.Enqueued)), nil
}

var _ RecomputeScheduler = (*FakeRecomputeScheduler)(nil)
