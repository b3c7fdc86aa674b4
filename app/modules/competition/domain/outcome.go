package competitiondomain

import (
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// Outcome is the three-way classification of a match result.
type Outcome string

const (
	OutcomeHome      Outcome = "HOME"
	OutcomeDraw      Outcome = "DRAW"
	OutcomeAway      Outcome = "AWAY"
	OutcomeUndecided Outcome = "UNDECIDED"
)

// OutcomeOf classifies a result. Missing goals mean the match is undecided.
func OutcomeOf(homeGoals, awayGoals *int) Outcome {
	if homeGoals == nil || awayGoals == nil {
		return OutcomeUndecided
	}
	return OutcomeOfGoals(*homeGoals, *awayGoals)
}

// OutcomeOfGoals classifies a result where both goal counts are known.
func OutcomeOfGoals(homeGoals, awayGoals int) Outcome {
	switch {
	case homeGoals > awayGoals:
		return OutcomeHome
	case homeGoals == awayGoals:
		return OutcomeDraw
	default:
		return OutcomeAway
	}
}

// FormatResult renders a result as "H-A".
func FormatResult(homeGoals, awayGoals int) string {
	return fmt.Sprintf("%d-%d", homeGoals, awayGoals)
}

// Fixture is a scheduled match between two teams of a competition.
type Fixture struct {
	ID            uuid.UUID
	CompetitionID uuid.UUID
	HomeTeamID    sharedtypes.TeamID
	AwayTeamID    sharedtypes.TeamID
	StartTime     time.Time
	HomeGoals     *int
	AwayGoals     *int
}

// Outcome returns the fixture's outcome class.
func (f Fixture) Outcome() Outcome {
	return OutcomeOf(f.HomeGoals, f.AwayGoals)
}

// Concluded reports whether both goal counts are recorded.
func (f Fixture) Concluded() bool {
	return f.HomeGoals != nil && f.AwayGoals != nil
}

// HasStarted reports whether kickoff is at or before now.
func (f Fixture) HasStarted(now time.Time) bool {
	return !f.StartTime.After(now)
}

// Result renders the recorded result, or "" while undecided.
func (f Fixture) Result() string {
	if !f.Concluded() {
		return ""
	}
	return FormatResult(*f.HomeGoals, *f.AwayGoals)
}

// ValidateGoals rejects negative goal counts.
func ValidateGoals(homeGoals, awayGoals int) error {
	if homeGoals < 0 || awayGoals < 0 {
		return fmt.Errorf("%w: %d-%d", ErrNegativeGoals, homeGoals, awayGoals)
	}
	return nil
}
