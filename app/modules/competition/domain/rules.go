package competitiondomain

import (
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

// RuleSet selects how table predictions are graded.
type RuleSet string

const (
	// RuleSetDistance penalises every predicted team by its positional error.
	RuleSetDistance RuleSet = "distance"
	// RuleSetBand only grades the top and bottom bands of the table.
	RuleSetBand RuleSet = "band"
)

const (
	DefaultBandSize      = 4
	DefaultPointsCorrect = 3
	DefaultPointsAlmost  = 1
	DefaultBonusPoints   = 6
)

// RuleConfig is the scoring configuration attached to a competition.
type RuleConfig struct {
	RuleSet       RuleSet `json:"rule_set"`
	BandSize      int     `json:"band_size"`
	PointsCorrect int     `json:"points_correct"`
	PointsAlmost  int     `json:"points_almost"`
	BonusPoints   int     `json:"bonus_points"`

	// ReferenceTeamID orients the goal-difference tie-breakers. Fixtures where
	// it plays at home are read from the home side, all others from the away side.
	ReferenceTeamID sharedtypes.TeamID `json:"reference_team_id"`

	// PredictedPositions, when set, is the subset of table positions a table
	// prediction must cover. Empty means every position.
	PredictedPositions []int `json:"predicted_positions,omitempty"`
}

// DefaultRuleConfig returns the band rule with the default point values.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		RuleSet:       RuleSetBand,
		BandSize:      DefaultBandSize,
		PointsCorrect: DefaultPointsCorrect,
		PointsAlmost:  DefaultPointsAlmost,
		BonusPoints:   DefaultBonusPoints,
	}
}

// WithDefaults fills unset fields from DefaultRuleConfig. A zero config
// becomes the default band rule.
func (c RuleConfig) WithDefaults() RuleConfig {
	d := DefaultRuleConfig()
	if c.RuleSet == "" {
		c.RuleSet = d.RuleSet
	}
	if c.RuleSet == RuleSetBand && c.BandSize == 0 {
		c.BandSize = d.BandSize
	}
	if c.PointsCorrect == 0 && c.PointsAlmost == 0 {
		c.PointsCorrect = d.PointsCorrect
		c.PointsAlmost = d.PointsAlmost
	}
	if c.BonusPoints == 0 {
		c.BonusPoints = d.BonusPoints
	}
	return c
}

// Validate checks the configuration is usable.
func (c RuleConfig) Validate() error {
	switch c.RuleSet {
	case RuleSetDistance:
	case RuleSetBand:
		if c.BandSize <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidBandSize, c.BandSize)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleSet, c.RuleSet)
	}

	if c.PointsCorrect < 0 || c.PointsAlmost < 0 || c.BonusPoints < 0 {
		return ErrNegativePoints
	}

	seen := make(map[int]struct{}, len(c.PredictedPositions))
	for _, p := range c.PredictedPositions {
		if p <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPositions, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %d repeated", ErrInvalidPositions, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// ExpectedPositions returns the positions a table prediction must cover for
// a competition of teamCount teams.
func (c RuleConfig) ExpectedPositions(teamCount int) []int {
	if len(c.PredictedPositions) > 0 {
		out := make([]int, len(c.PredictedPositions))
		copy(out, c.PredictedPositions)
		return out
	}
	out := make([]int, teamCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
