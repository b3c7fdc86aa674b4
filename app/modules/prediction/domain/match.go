package predictiondomain

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// Match scoring points.
const (
	PointsOutcome   = 3
	PointsDrawScore = 1
	PointsExactHome = 1
	PointsExactAway = 1
	PointsExactBoth = 1

	// MaxMatchPoints is reachable by any exact score. The draw-score point
	// and the exact points never combine.
	MaxMatchPoints = 6
)

// updatedTolerance absorbs the gap between created_at and updated_at
// defaults written by the same insert.
const updatedTolerance = time.Second

// MatchPrediction is a user's predicted score for one fixture. Points is the
// cached grade, zero until the fixture is concluded.
type MatchPrediction struct {
	UserID    sharedtypes.UserID `json:"user_id"`
	FixtureID uuid.UUID          `json:"fixture_id"`
	HomeGoals int                `json:"home_goals"`
	AwayGoals int                `json:"away_goals"`
	Points    int                `json:"points"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsUpdated reports whether the prediction was edited after it was created.
func (p MatchPrediction) IsUpdated() bool {
	return p.UpdatedAt.Sub(p.CreatedAt) > updatedTolerance
}

// Outcome is the predicted outcome class.
func (p MatchPrediction) Outcome() competitiondomain.Outcome {
	return competitiondomain.OutcomeOfGoals(p.HomeGoals, p.AwayGoals)
}

// ScoreMatchPrediction grades a prediction against a fixture at instant now.
// Fixtures that have not started or have no result score 0.
//
// A draw prediction whose home goals miss the actual home goals earns the
// draw-score point; an exact draw earns the exact-score points instead.
func ScoreMatchPrediction(p MatchPrediction, f competitiondomain.Fixture, now time.Time) int {
	if f.StartTime.After(now) {
		return 0
	}
	actual := f.Outcome()
	if actual == competitiondomain.OutcomeUndecided {
		return 0
	}
	home, away := *f.HomeGoals, *f.AwayGoals

	points := 0
	if p.Outcome() == actual {
		points += PointsOutcome
		if actual == competitiondomain.OutcomeDraw && p.HomeGoals != home {
			points += PointsDrawScore
		}
	}
	if p.HomeGoals == home {
		points += PointsExactHome
	}
	if p.AwayGoals == away {
		points += PointsExactAway
	}
	if p.HomeGoals == home && p.AwayGoals == away {
		points += PointsExactBoth
	}
	return points
}
