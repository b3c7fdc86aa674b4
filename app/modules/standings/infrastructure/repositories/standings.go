package standingsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new standings repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// SaveSnapshot upserts the snapshot header on (competition_uuid, round) and
// replaces its positions.
func (r *Impl) SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *Snapshot) error {
	db = r.resolveDB(db)
	if snapshot.UUID == uuid.Nil {
		snapshot.UUID = uuid.New()
	}
	if snapshot.RecordedAt.IsZero() {
		snapshot.RecordedAt = time.Now().UTC()
	}

	_, err := db.NewInsert().
		Model(snapshot).
		On("CONFLICT (competition_uuid, round) DO UPDATE").
		Set("top_scorers = EXCLUDED.top_scorers").
		Set("most_assists = EXCLUDED.most_assists").
		Set("recorded_at = EXCLUDED.recorded_at").
		Returning("uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.SaveSnapshot: header: %w", err)
	}

	_, err = db.NewDelete().
		Model((*SnapshotPosition)(nil)).
		Where("snapshot_uuid = ?", snapshot.UUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.SaveSnapshot: clear positions: %w", err)
	}

	if len(snapshot.Positions) == 0 {
		return nil
	}
	for _, p := range snapshot.Positions {
		p.SnapshotUUID = snapshot.UUID
	}
	if _, err := db.NewInsert().Model(&snapshot.Positions).Exec(ctx); err != nil {
		return fmt.Errorf("standingsdb.SaveSnapshot: insert positions: %w", err)
	}
	return nil
}

// LatestSnapshot returns the snapshot with the highest round.
func (r *Impl) LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*Snapshot, error) {
	db = r.resolveDB(db)
	snapshot := new(Snapshot)
	err := db.NewSelect().
		Model(snapshot).
		Relation("Positions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ssp.position ASC")
		}).
		Where("ss.competition_uuid = ?", competitionID).
		Order("ss.round DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("standingsdb.LatestSnapshot: %w", err)
	}
	return snapshot, nil
}

// GetSnapshotByRound returns the snapshot of one round.
func (r *Impl) GetSnapshotByRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, round int) (*Snapshot, error) {
	db = r.resolveDB(db)
	snapshot := new(Snapshot)
	err := db.NewSelect().
		Model(snapshot).
		Relation("Positions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ssp.position ASC")
		}).
		Where("ss.competition_uuid = ?", competitionID).
		Where("ss.round = ?", round).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("standingsdb.GetSnapshotByRound: %w", err)
	}
	return snapshot, nil
}

// ListRounds returns the recorded rounds of a competition.
func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]int, error) {
	db = r.resolveDB(db)
	var rounds []int
	err := db.NewSelect().
		Model((*Snapshot)(nil)).
		Column("round").
		Where("competition_uuid = ?", competitionID).
		Order("round ASC").
		Scan(ctx, &rounds)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.ListRounds: %w", err)
	}
	return rounds, nil
}
