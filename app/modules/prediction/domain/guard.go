package predictiondomain

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

// CheckMatchMutation guards creating, editing and deleting a match
// prediction. deadline is the user's personal cutoff for the fixture.
// Recompute never goes through this check.
func CheckMatchMutation(user sharedtypes.UserID, f competitiondomain.Fixture, deadline, now time.Time) error {
	if user.IsAnonymous() {
		return ErrAnonymous
	}
	if f.HasStarted(now) {
		return ErrMatchStarted
	}
	if now.After(deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// CheckTableMutation guards table prediction writes. They close when the
// competition's first fixture kicks off; a zero firstKickoff means no
// fixture is scheduled yet.
func CheckTableMutation(user sharedtypes.UserID, firstKickoff, now time.Time) error {
	if user.IsAnonymous() {
		return ErrAnonymous
	}
	if !firstKickoff.IsZero() && !firstKickoff.After(now) {
		return ErrTablePredictionClosed
	}
	return nil
}
