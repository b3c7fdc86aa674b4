package sharedtypes

import (
	"errors"
	"strings"
)

// ErrAnonymous is returned when an operation requires an identified user.
var ErrAnonymous = errors.New("an authenticated user is required")

// UserID is the opaque identity of a pool participant.
type UserID string

// String returns the raw identity.
func (u UserID) String() string {
	return string(u)
}

// IsAnonymous reports whether the identity is missing.
func (u UserID) IsAnonymous() bool {
	return strings.TrimSpace(string(u)) == ""
}

// TeamID identifies a team.
type TeamID int64

// NotAvailable is displayed in place of predicted names when a user has no
// table prediction.
const NotAvailable = "N/A"
