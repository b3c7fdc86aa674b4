package leaderboarddomain

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

const (
	// MaxDeadlineOffset is the offset before kickoff at which no rank is
	// ever asked to commit.
	MaxDeadlineOffset = 60 * time.Minute
	// deadlineStep is taken off the offset for every pair of ranks.
	deadlineStep = 10 * time.Minute
)

// DeadlineOffset is how long before kickoff a user at rank must submit:
// 60 - ceil(rank/2)*10 minutes, never negative. Leaders commit earliest.
// Ranks below 1 are treated as unranked and get no offset.
func DeadlineOffset(rank int) time.Duration {
	if rank < 1 {
		return 0
	}
	steps := (rank + 1) / 2
	offset := MaxDeadlineOffset - time.Duration(steps)*deadlineStep
	if offset < 0 {
		return 0
	}
	return offset
}

// DeadlineAt returns the personal deadline for a fixture starting at start.
// Unranked users may submit until kickoff.
func DeadlineAt(start time.Time, rank int, ranked bool) time.Time {
	if !ranked {
		return start
	}
	return start.Add(-DeadlineOffset(rank))
}

// Deadlines maps every participant to their deadline for a fixture
// starting at start. rows must be the leaderboard as of start; participants
// not on it may submit until kickoff.
func Deadlines(rows []Row, participants []Participant, start time.Time) map[sharedtypes.UserID]time.Time {
	out := make(map[sharedtypes.UserID]time.Time, len(participants))
	for _, p := range participants {
		out[p.UserID] = start
	}
	for _, r := range rows {
		out[r.UserID] = DeadlineAt(start, r.Rank, true)
	}
	return out
}

// CanSubmit reports whether now is at or before deadline.
func CanSubmit(deadline, now time.Time) bool {
	return !now.After(deadline)
}
