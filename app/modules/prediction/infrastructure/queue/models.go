package predictionqueue

import "time"

// QueueName is the River queue recompute jobs run on.
const QueueName = "recompute"

// FixtureRecomputeJob re-grades the predictions of one fixture. RecordedAt
// is part of the unique key so a correction queues a fresh job while a
// redelivered event does not.
type FixtureRecomputeJob struct {
	CompetitionID string    `json:"competition_id"`
	FixtureID     string    `json:"fixture_id"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Kind returns the job type identifier for River
func (FixtureRecomputeJob) Kind() string { return "fixture_recompute" }

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	FixtureID   string `json:"fixture_id"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
