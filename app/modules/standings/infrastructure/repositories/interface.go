package standingsdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for standings persistence.
type Repository interface {
	// SaveSnapshot stores the snapshot of a round, replacing an earlier
	// snapshot of the same round. Run it inside a transaction.
	SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *Snapshot) error
	LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*Snapshot, error)
	GetSnapshotByRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, round int) (*Snapshot, error)
	// ListRounds returns the recorded rounds in ascending order.
	ListRounds(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]int, error)
}
