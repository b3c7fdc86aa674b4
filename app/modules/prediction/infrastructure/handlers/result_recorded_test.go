package predictionhandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/google/uuid"
)

func TestPredictionHandlers_HandleFixtureResultRecorded(t *testing.T) {
	competitionID := uuid.New()
	fixtureID := uuid.New()
	wantTopic := eventbus.FormatCompetitionScopedTopic(competitiondomain.FixtureRecomputeRequestedV1, competitionID.String())
	payload := &competitiondomain.FixtureResultRecordedPayloadV1{
		CompetitionID: competitionID,
		FixtureID:     fixtureID,
		HomeGoals:     2,
		AwayGoals:     0,
		RecordedAt:    time.Date(2025, 8, 16, 17, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name         string
		payload      *competitiondomain.FixtureResultRecordedPayloadV1
		scheduler    *FakeScheduler
		setupService func(*FakePredictionService)
		wantErr      bool
		wantLen      int
		wantJobID    int64
		wantTrace    []string
	}{
		{
			name:      "queues a recompute job",
			payload:   payload,
			scheduler: &FakeScheduler{JobID: 42},
			wantLen:   1,
			wantJobID: 42,
			wantTrace: []string{},
		},
		{
			name:      "recomputes inline without a queue",
			payload:   payload,
			wantLen:   1,
			wantTrace: []string{"RecomputeFixture"},
		},
		{
			name:      "enqueue failure is retried",
			payload:   payload,
			scheduler: &FakeScheduler{Err: errors.New("pool closed")},
			wantErr:   true,
			wantTrace: []string{},
		},
		{
			name:    "inline failure is retried",
			payload: payload,
			setupService: func(f *FakePredictionService) {
				f.RecomputeFixtureFunc = func(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error) {
					return nil, errors.New("deadlock")
				}
			},
			wantErr:   true,
			wantTrace: []string{"RecomputeFixture"},
		},
		{
			name:      "nil payload",
			wantErr:   true,
			wantTrace: []string{},
		},
		{
			name:      "missing identifiers are dropped",
			payload:   &competitiondomain.FixtureResultRecordedPayloadV1{},
			scheduler: &FakeScheduler{},
			wantTrace: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakePredictionService()
			if tt.setupService != nil {
				tt.setupService(svc)
			}
			var h *PredictionHandlers
			if tt.scheduler != nil {
				h = NewPredictionHandlers(svc, tt.scheduler, slog.Default())
			} else {
				h = NewPredictionHandlers(svc, nil, slog.Default())
			}

			res, err := h.HandleFixtureResultRecorded(context.Background(), tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got error %v, want error %v", err, tt.wantErr)
			}
			if len(res) != tt.wantLen {
				t.Fatalf("got %d results, want %d", len(res), tt.wantLen)
			}
			if len(res) > 0 {
				if res[0].Topic != wantTopic {
					t.Errorf("got topic %s, want %s", res[0].Topic, wantTopic)
				}
				requested, ok := res[0].Payload.(competitiondomain.FixtureRecomputeRequestedPayloadV1)
				if !ok {
					t.Fatalf("unexpected payload type %T", res[0].Payload)
				}
				if requested.FixtureID != fixtureID || requested.JobID != tt.wantJobID {
					t.Errorf("unexpected payload %+v", requested)
				}
			}
			if got := svc.Trace(); len(got) != len(tt.wantTrace) {
				t.Errorf("got trace %v, want %v", got, tt.wantTrace)
			}
		})
	}
}
