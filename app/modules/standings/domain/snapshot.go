package standingsdomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

var (
	ErrInvalidRound     = errors.New("round must be positive")
	ErrEmptySnapshot    = errors.New("snapshot has no positions")
	ErrBrokenSequence   = errors.New("snapshot positions must run 1..N without gaps")
	ErrRepeatedTeam     = errors.New("team listed twice in snapshot")
	ErrSnapshotNotFound = errors.New("no standings snapshot")
)

// Position is one row of a league table.
type Position struct {
	Position int                `json:"position"`
	TeamID   sharedtypes.TeamID `json:"team_id"`
}

// Snapshot is the authoritative league table after a round. The highest
// round of a competition is its latest snapshot.
type Snapshot struct {
	ID            uuid.UUID  `json:"id"`
	CompetitionID uuid.UUID  `json:"competition_id"`
	Round         int        `json:"round"`
	Positions     []Position `json:"positions"`
	TopScorers    []string   `json:"top_scorers"`
	MostAssists   []string   `json:"most_assists"`
	RecordedAt    time.Time  `json:"recorded_at"`
}

// Normalize sorts positions and cleans the designation lists.
func (s *Snapshot) Normalize() {
	slices.SortFunc(s.Positions, func(a, b Position) int {
		return cmp.Compare(a.Position, b.Position)
	})
	s.TopScorers = SplitNames(s.TopScorers...)
	s.MostAssists = SplitNames(s.MostAssists...)
}

// Validate checks the table is a complete 1..N ordering of distinct teams.
func (s *Snapshot) Validate() error {
	if s.Round <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRound, s.Round)
	}
	if len(s.Positions) == 0 {
		return ErrEmptySnapshot
	}
	seen := make(map[sharedtypes.TeamID]struct{}, len(s.Positions))
	sorted := slices.Clone(s.Positions)
	slices.SortFunc(sorted, func(a, b Position) int { return cmp.Compare(a.Position, b.Position) })
	for i, p := range sorted {
		if p.Position != i+1 {
			return fmt.Errorf("%w: found %d at row %d", ErrBrokenSequence, p.Position, i+1)
		}
		if _, dup := seen[p.TeamID]; dup {
			return fmt.Errorf("%w: %d", ErrRepeatedTeam, p.TeamID)
		}
		seen[p.TeamID] = struct{}{}
	}
	return nil
}

// PositionOf returns the table position of team, or false when absent.
func (s *Snapshot) PositionOf(team sharedtypes.TeamID) (int, bool) {
	for _, p := range s.Positions {
		if p.TeamID == team {
			return p.Position, true
		}
	}
	return 0, false
}

// Size is the number of teams in the table.
func (s *Snapshot) Size() int {
	return len(s.Positions)
}

// SplitNames flattens comma separated designations into trimmed, non-empty
// names, keeping input order.
func SplitNames(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if name := strings.TrimSpace(part); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
