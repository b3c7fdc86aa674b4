package predictiondb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for prediction persistence.
type Repository interface {
	// Match predictions
	UpsertMatchPrediction(ctx context.Context, db bun.IDB, prediction *MatchPrediction) error
	GetMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) (*MatchPrediction, error)
	DeleteMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) error
	ListFixturePredictions(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) ([]MatchPrediction, error)
	ListCompetitionPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]MatchPrediction, error)
	ListUserPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) ([]MatchPrediction, error)

	// UpdatePoints writes the cached points of every prediction in one
	// statement, keyed by ID.
	UpdatePoints(ctx context.Context, db bun.IDB, predictions []MatchPrediction) error

	// AcquireFixtureLock takes a transaction-scoped advisory lock for the
	// fixture. Must be called within a transaction.
	AcquireFixtureLock(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) error

	// Table predictions
	GetTablePrediction(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) (*TablePrediction, error)
	ListTablePredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]TablePrediction, error)
	// ReplaceTablePrediction stores the header and swaps the full position set.
	ReplaceTablePrediction(ctx context.Context, db bun.IDB, prediction *TablePrediction) error
}
