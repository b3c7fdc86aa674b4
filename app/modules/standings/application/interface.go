package standingsservice

import (
	"context"
	"time"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service defines the standings operations.
type Service interface {
	RecordSnapshot(ctx context.Context, req RecordSnapshotRequest, now time.Time) (*standingsdomain.Snapshot, error)
	// ImportSnapshot records a snapshot read from an .xlsx sheet. Team names
	// are resolved against the competition's teams.
	ImportSnapshot(ctx context.Context, competitionID uuid.UUID, round int, fileName string, data []byte, now time.Time) (*standingsdomain.Snapshot, error)
	LatestSnapshot(ctx context.Context, competitionID uuid.UUID) (*standingsdomain.Snapshot, error)
	SnapshotForRound(ctx context.Context, competitionID uuid.UUID, round int) (*standingsdomain.Snapshot, error)
	ListRounds(ctx context.Context, competitionID uuid.UUID) ([]int, error)
}

// TeamReader lists the teams of a competition.
type TeamReader interface {
	ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]competitiondb.Team, error)
}
