package competitiondomain

import "errors"

var (
	ErrNegativeGoals        = errors.New("goal counts must not be negative")
	ErrSameTeam             = errors.New("a team cannot play itself")
	ErrUnknownRuleSet       = errors.New("unknown table rule set")
	ErrInvalidBandSize      = errors.New("band size must be positive")
	ErrNegativePoints       = errors.New("point values must not be negative")
	ErrInvalidPositions     = errors.New("predicted positions must be unique and positive")
	ErrInvalidPrizeBand     = errors.New("invalid prize band")
	ErrOverlappingPrizes    = errors.New("prize bands overlap")
	ErrTeamNotInCompetition = errors.New("team does not belong to the competition")
	ErrMissingName          = errors.New("competition name and season are required")
	ErrUnknownReferenceTeam = errors.New("reference team is not part of the competition")
)
