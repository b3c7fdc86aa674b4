package competition

import (
	"context"
	"time"

	competitionservice "github.com/Black-And-White-Club/betting-pool/app/modules/competition/application"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/uptrace/bun"
)

// Module owns competitions, teams, participants and fixtures.
type Module struct {
	Repository competitiondb.Repository
	Service    *competitionservice.CompetitionService
}

// NewCompetitionModule creates the competition module. Recorded results are
// published through publisher; naive kickoff times in imports are read in
// loc.
func NewCompetitionModule(
	ctx context.Context,
	db *bun.DB,
	obs *observability.Observability,
	publisher eventbus.Publisher,
	loc *time.Location,
) *Module {
	obs.Logger.InfoContext(ctx, "competition.NewCompetitionModule called")

	repo := competitiondb.NewRepository(db)
	service := competitionservice.NewCompetitionService(repo, publisher, obs.Logger, obs.Metrics, obs.Tracer, db).
		WithLocation(loc)

	return &Module{
		Repository: repo,
		Service:    service,
	}
}
