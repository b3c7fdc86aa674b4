package standings

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	standingsservice "github.com/Black-And-White-Club/betting-pool/app/modules/standings/application"
	standingsadapters "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/adapters"
	standingsdb "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/uptrace/bun"
)

// Module owns the actual league table snapshots.
type Module struct {
	Repository standingsdb.Repository
	Service    *standingsservice.StandingsService
	// Snapshots exposes the latest snapshot to scoring modules.
	Snapshots *standingsadapters.SnapshotReaderAdapter
}

// NewStandingsModule creates the standings module. Team names are resolved
// against the competition store.
func NewStandingsModule(
	ctx context.Context,
	db *bun.DB,
	obs *observability.Observability,
	teams competitiondb.Repository,
) *Module {
	obs.Logger.InfoContext(ctx, "standings.NewStandingsModule called")

	repo := standingsdb.NewRepository(db)
	return &Module{
		Repository: repo,
		Service:    standingsservice.NewStandingsService(repo, teams, obs.Logger, obs.Metrics, obs.Tracer, db),
		Snapshots:  standingsadapters.NewSnapshotReaderAdapter(repo),
	}
}
