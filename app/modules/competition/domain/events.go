package competitiondomain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	FixtureStreamName = "betting-fixtures"
)

const (
	// FixtureResultRecordedV1 is published, competition scoped, whenever a
	// fixture's goals are created or corrected.
	FixtureResultRecordedV1 = "betting.fixture.result.recorded.v1"

	// FixtureRecomputeRequestedV1 is emitted once a recompute job is queued.
	FixtureRecomputeRequestedV1 = "betting.fixture.recompute.requested.v1"
)

// FixtureResultRecordedPayloadV1 carries a recorded or corrected result.
type FixtureResultRecordedPayloadV1 struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	FixtureID     uuid.UUID `json:"fixture_id"`
	HomeGoals     int       `json:"home_goals"`
	AwayGoals     int       `json:"away_goals"`
	Corrected     bool      `json:"corrected"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// FixtureRecomputeRequestedPayloadV1 records that a recompute was queued.
type FixtureRecomputeRequestedPayloadV1 struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	FixtureID     uuid.UUID `json:"fixture_id"`
	JobID         int64     `json:"job_id"`
	RequestedAt   time.Time `json:"requested_at"`
}
