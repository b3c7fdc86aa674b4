package adapters

import (
	"context"
	"errors"

	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	standingsdb "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SnapshotReaderAdapter adapts the standings repository to the prediction
// service SnapshotReader port.
type SnapshotReaderAdapter struct {
	repo standingsdb.Repository
}

// NewSnapshotReaderAdapter constructs a new adapter.
func NewSnapshotReaderAdapter(repo standingsdb.Repository) *SnapshotReaderAdapter {
	return &SnapshotReaderAdapter{repo: repo}
}

func (a *SnapshotReaderAdapter) LatestSnapshot(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (*standingsdomain.Snapshot, error) {
	row, err := a.repo.LatestSnapshot(ctx, db, competitionID)
	if err != nil {
		if errors.Is(err, standingsdb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToDomain(), nil
}
