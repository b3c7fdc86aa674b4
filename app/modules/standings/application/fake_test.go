package standingsservice

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	standingsdb "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Standings Repo
// ------------------------

type FakeStandingsRepo struct {
	trace []string

	SaveSnapshotFunc       func(ctx context.Context, db bun.IDB, snapshot *standingsdb.Snapshot) error
	LatestSnapshotFunc     func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdb.Snapshot, error)
	GetSnapshotByRoundFunc func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, round int) (*standingsdb.Snapshot, error)
	ListRoundsFunc         func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]int, error)
}

func NewFakeStandingsRepo() *FakeStandingsRepo {
	return &FakeStandingsRepo{trace: []string{}}
}

func (f *FakeStandingsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStandingsRepo) SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *standingsdb.Snapshot) error {
	f.record("SaveSnapshot")
	if f.SaveSnapshotFunc != nil {
		return f.SaveSnapshotFunc(ctx, db, snapshot)
	}
	return nil
}

func (f *FakeStandingsRepo) LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdb.Snapshot, error) {
	f.record("LatestSnapshot")
	if f.LatestSnapshotFunc != nil {
		return f.LatestSnapshotFunc(ctx, db, competitionID)
	}
	return nil, standingsdb.ErrNotFound
}

func (f *FakeStandingsRepo) GetSnapshotByRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, round int) (*standingsdb.Snapshot, error) {
	f.record("GetSnapshotByRound")
	if f.GetSnapshotByRoundFunc != nil {
		return f.GetSnapshotByRoundFunc(ctx, db, competitionID, round)
	}
	return nil, standingsdb.ErrNotFound
}

func (f *FakeStandingsRepo) ListRounds(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]int, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakeStandingsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ standingsdb.Repository = (*FakeStandingsRepo)(nil)

// ------------------------
// Fake Team Reader
// ------------------------

type FakeTeamReader struct {
	Teams []competitiondb.Team
	Err   error
}

func (f *FakeTeamReader) ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Team, error) {
	return f.Teams, f.Err
}
