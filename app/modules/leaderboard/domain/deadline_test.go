package leaderboarddomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineOffset(t *testing.T) {
	tests := []struct {
		rank int
		want time.Duration
	}{
		{rank: 1, want: 50 * time.Minute},
		{rank: 2, want: 50 * time.Minute},
		{rank: 3, want: 40 * time.Minute},
		{rank: 4, want: 40 * time.Minute},
		{rank: 9, want: 10 * time.Minute},
		{rank: 10, want: 10 * time.Minute},
		{rank: 11, want: 0},
		{rank: 40, want: 0},
		{rank: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeadlineOffset(tt.rank), "rank %d", tt.rank)
	}
}

func TestDeadlineMonotone(t *testing.T) {
	start := time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC)
	for r := 1; r < 30; r++ {
		better := DeadlineAt(start, r, true)
		worse := DeadlineAt(start, r+1, true)
		assert.False(t, better.After(worse), "rank %d deadline %v after rank %d deadline %v", r, better, r+1, worse)
		assert.False(t, worse.After(start))
	}
}

func TestDeadlines(t *testing.T) {
	start := time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC)
	rows := []Row{{UserID: "a", Rank: 1}, {UserID: "b", Rank: 1}, {UserID: "c", Rank: 3}}

	got := Deadlines(rows, participants("a", "b", "c", "late"), start)
	assert.Len(t, got, 4)
	assert.Equal(t, start.Add(-50*time.Minute), got["a"])
	assert.Equal(t, start.Add(-50*time.Minute), got["b"])
	assert.Equal(t, start.Add(-40*time.Minute), got["c"])
	assert.Equal(t, start, got["late"], "participant without a graded prediction submits until kickoff")
	assert.Equal(t, start, DeadlineAt(start, 0, false))
}

func TestCanSubmit(t *testing.T) {
	deadline := time.Date(2025, 5, 1, 18, 10, 0, 0, time.UTC)
	assert.True(t, CanSubmit(deadline, deadline))
	assert.True(t, CanSubmit(deadline, deadline.Add(-time.Second)))
	assert.False(t, CanSubmit(deadline, deadline.Add(time.Nanosecond)))
}
