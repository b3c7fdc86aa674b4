package competitiondomain

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		home *int
		away *int
		want Outcome
	}{
		{"home win", intPtr(2), intPtr(1), OutcomeHome},
		{"draw", intPtr(1), intPtr(1), OutcomeDraw},
		{"goalless draw", intPtr(0), intPtr(0), OutcomeDraw},
		{"away win", intPtr(0), intPtr(3), OutcomeAway},
		{"missing home", nil, intPtr(1), OutcomeUndecided},
		{"missing away", intPtr(1), nil, OutcomeUndecided},
		{"not played", nil, nil, OutcomeUndecided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeOf(tt.home, tt.away); got != tt.want {
				t.Fatalf("OutcomeOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFixtureResult(t *testing.T) {
	start := time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC)
	f := Fixture{StartTime: start}

	if f.Concluded() {
		t.Fatalf("fixture without goals must not be concluded")
	}
	if f.Result() != "" {
		t.Fatalf("expected empty result, got %q", f.Result())
	}

	f.HomeGoals, f.AwayGoals = intPtr(2), intPtr(1)
	if !f.Concluded() || f.Result() != "2-1" || f.Outcome() != OutcomeHome {
		t.Fatalf("unexpected fixture state: %q %s", f.Result(), f.Outcome())
	}
}

func TestFixtureHasStarted(t *testing.T) {
	start := time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC)
	f := Fixture{StartTime: start}

	if f.HasStarted(start.Add(-time.Second)) {
		t.Fatalf("fixture must not have started before kickoff")
	}
	if !f.HasStarted(start) {
		t.Fatalf("fixture must count as started at kickoff")
	}
	if !f.HasStarted(start.Add(time.Minute)) {
		t.Fatalf("fixture must count as started after kickoff")
	}
}

func TestValidateGoals(t *testing.T) {
	if err := ValidateGoals(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateGoals(-1, 0); !errors.Is(err, ErrNegativeGoals) {
		t.Fatalf("expected ErrNegativeGoals, got %v", err)
	}
}
