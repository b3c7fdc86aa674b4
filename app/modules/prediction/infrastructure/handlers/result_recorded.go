package predictionhandlers

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/Black-And-White-Club/betting-pool/pkg/handlerwrapper"
	"github.com/google/uuid"
)

// HandleFixtureResultRecorded queues a recompute of the fixture and emits
// FixtureRecomputeRequestedV1 for the competition.
func (h *PredictionHandlers) HandleFixtureResultRecorded(ctx context.Context, payload *competitiondomain.FixtureResultRecordedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}
	if payload.FixtureID == uuid.Nil || payload.CompetitionID == uuid.Nil {
		h.logger.WarnContext(ctx, "Ignoring result event without identifiers", attr.ExtractCorrelationID(ctx))
		return nil, nil
	}

	var jobID int64
	if h.scheduler != nil {
		id, err := h.scheduler.EnqueueRecompute(ctx, payload.CompetitionID, payload.FixtureID, payload.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("enqueue recompute: %w", err)
		}
		jobID = id
	} else {
		if _, err := h.service.RecomputeFixture(ctx, payload.FixtureID, h.now()); err != nil {
			return nil, fmt.Errorf("recompute fixture: %w", err)
		}
	}

	competitionID := payload.CompetitionID.String()
	return []handlerwrapper.Result{{
		Topic: eventbus.FormatCompetitionScopedTopic(competitiondomain.FixtureRecomputeRequestedV1, competitionID),
		Payload: competitiondomain.FixtureRecomputeRequestedPayloadV1{
			CompetitionID: payload.CompetitionID,
			FixtureID:     payload.FixtureID,
			JobID:         jobID,
			RequestedAt:   h.now().UTC(),
		},
		Metadata: map[string]string{eventbus.CompetitionIDKey: competitionID},
	}}, nil
}
