package leaderboard

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	leaderboardservice "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/application"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/uptrace/bun"
)

// Module builds rankings and deadlines from the other modules' stores. It
// owns no tables.
type Module struct {
	Service *leaderboardservice.LeaderboardService
}

// NewLeaderboardModule creates the leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	db *bun.DB,
	obs *observability.Observability,
	fixtures competitiondb.Repository,
	predictions predictiondb.Repository,
	snapshots leaderboardservice.SnapshotReader,
) *Module {
	obs.Logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	return &Module{
		Service: leaderboardservice.NewLeaderboardService(fixtures, predictions, snapshots, obs.Logger, obs.Metrics, obs.Tracer, db),
	}
}
