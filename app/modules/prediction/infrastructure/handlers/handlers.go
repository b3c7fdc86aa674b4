package predictionhandlers

import (
	"context"
	"log/slog"
	"time"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	"github.com/google/uuid"
)

// RecomputeScheduler queues fixture recomputes.
type RecomputeScheduler interface {
	EnqueueRecompute(ctx context.Context, competitionID, fixtureID uuid.UUID, recordedAt time.Time) (int64, error)
}

// PredictionHandlers implements the Handlers interface.
type PredictionHandlers struct {
	service   predictionservice.Service
	scheduler RecomputeScheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewPredictionHandlers creates the handlers. With a nil scheduler results
// are recomputed inline.
func NewPredictionHandlers(service predictionservice.Service, scheduler RecomputeScheduler, logger *slog.Logger) *PredictionHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionHandlers{
		service:   service,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}
