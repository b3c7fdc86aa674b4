package leaderboardservice

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// LeaderboardView is a ranked leaderboard of one competition.
type LeaderboardView struct {
	CompetitionID uuid.UUID               `json:"competition_id"`
	Name          string                  `json:"name"`
	Season        string                  `json:"season"`
	AsOf          time.Time               `json:"as_of"`
	Rows          []leaderboarddomain.Row `json:"rows"`
}

// DeadlineInfo is the caller's window for one fixture. Deadline is nil for
// anonymous callers.
type DeadlineInfo struct {
	FixtureID uuid.UUID          `json:"fixture_id"`
	UserID    sharedtypes.UserID `json:"user_id,omitempty"`
	StartTime time.Time          `json:"start_time"`
	Deadline  *time.Time         `json:"deadline,omitempty"`
	Rank      int                `json:"rank,omitempty"`
	CanSubmit bool               `json:"can_submit"`
}

// UserDeadline is one entry of a fixture's deadline table.
type UserDeadline struct {
	UserID      sharedtypes.UserID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Rank        int                `json:"rank"`
	Deadline    time.Time          `json:"deadline"`
}

// FixtureDeadlines lists the deadlines of every ranked user. Users not on
// the list may submit until StartTime.
type FixtureDeadlines struct {
	FixtureID uuid.UUID      `json:"fixture_id"`
	StartTime time.Time      `json:"start_time"`
	Deadlines []UserDeadline `json:"deadlines"`
}

// HistoryPoint is a user's cumulative match points after one fixture.
type HistoryPoint struct {
	FixtureID uuid.UUID `json:"fixture_id"`
	At        time.Time `json:"at"`
	Points    int       `json:"points"`
}

// PointsSeries is the cumulative points history of one user.
type PointsSeries struct {
	UserID      sharedtypes.UserID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Points      []HistoryPoint     `json:"points"`
}
