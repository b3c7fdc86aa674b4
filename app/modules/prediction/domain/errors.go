package predictiondomain

import (
	"errors"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

// Guard violations. Match started and deadline passed are kept apart because
// the deadline depends on the user's rank.
var (
	ErrMatchStarted          = errors.New("match has already started")
	ErrDeadlinePassed        = errors.New("personal prediction deadline has passed")
	ErrTablePredictionClosed = errors.New("table predictions closed at the first kickoff")
	ErrAnonymous             = sharedtypes.ErrAnonymous
)

// Validation errors for table predictions. Several may be joined.
var (
	ErrDuplicateTeam        = errors.New("team predicted in more than one position")
	ErrDuplicatePosition    = errors.New("position predicted more than once")
	ErrWrongTeamCount       = errors.New("wrong number of predicted positions")
	ErrPositionOutOfRange   = errors.New("position out of range")
	ErrTeamNotInCompetition = competitiondomain.ErrTeamNotInCompetition
	ErrNegativeGoals        = competitiondomain.ErrNegativeGoals
)
