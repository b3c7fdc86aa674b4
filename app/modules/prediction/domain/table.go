package predictiondomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// TablePosition is one predicted (position, team) pair.
type TablePosition struct {
	Position int                `json:"position"`
	TeamID   sharedtypes.TeamID `json:"team_id"`
}

// TablePrediction is a user's predicted league table for a competition.
type TablePrediction struct {
	UserID        sharedtypes.UserID `json:"user_id"`
	CompetitionID uuid.UUID          `json:"competition_id"`
	Positions     []TablePosition    `json:"positions"`
	TopScorers    []string           `json:"top_scorers"`
	MostAssists   []string           `json:"most_assists"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Sorted returns the positions ordered by position.
func (p TablePrediction) Sorted() []TablePosition {
	out := slices.Clone(p.Positions)
	slices.SortFunc(out, func(a, b TablePosition) int { return cmp.Compare(a.Position, b.Position) })
	return out
}

// ValidateTablePrediction checks a prediction against the competition's
// teams and rules. Every problem found is reported, joined.
func ValidateTablePrediction(p TablePrediction, teams []sharedtypes.TeamID, rules competitiondomain.RuleConfig) error {
	expected := rules.ExpectedPositions(len(teams))
	allowed := make(map[int]struct{}, len(expected))
	for _, pos := range expected {
		allowed[pos] = struct{}{}
	}
	members := make(map[sharedtypes.TeamID]struct{}, len(teams))
	for _, t := range teams {
		members[t] = struct{}{}
	}

	var errs []error
	if len(p.Positions) != len(expected) {
		errs = append(errs, fmt.Errorf("%w: got %d, want %d", ErrWrongTeamCount, len(p.Positions), len(expected)))
	}

	seenTeams := make(map[sharedtypes.TeamID]struct{}, len(p.Positions))
	seenPositions := make(map[int]struct{}, len(p.Positions))
	for _, tp := range p.Positions {
		if _, ok := allowed[tp.Position]; !ok {
			errs = append(errs, fmt.Errorf("%w: %d", ErrPositionOutOfRange, tp.Position))
		}
		if _, dup := seenPositions[tp.Position]; dup {
			errs = append(errs, fmt.Errorf("%w: %d", ErrDuplicatePosition, tp.Position))
		}
		seenPositions[tp.Position] = struct{}{}

		if _, ok := members[tp.TeamID]; !ok {
			errs = append(errs, fmt.Errorf("%w: team %d", ErrTeamNotInCompetition, tp.TeamID))
		}
		if _, dup := seenTeams[tp.TeamID]; dup {
			errs = append(errs, fmt.Errorf("%w: team %d", ErrDuplicateTeam, tp.TeamID))
		}
		seenTeams[tp.TeamID] = struct{}{}
	}
	return errors.Join(errs...)
}

// TableScore is the grade of one table prediction.
type TableScore struct {
	Points      int `json:"points"`
	BonusPoints int `json:"bonus_points"`
	// Available is false when the prediction or the snapshot is missing.
	Available   bool     `json:"available"`
	TopScorers  []string `json:"top_scorers"`
	MostAssists []string `json:"most_assists"`
}

// Total is table points plus bonus points.
func (s TableScore) Total() int {
	return s.Points + s.BonusPoints
}

func unavailableScore(p *TablePrediction) TableScore {
	score := TableScore{
		TopScorers:  []string{sharedtypes.NotAvailable},
		MostAssists: []string{sharedtypes.NotAvailable},
	}
	if p != nil {
		score.TopScorers = displayNames(p.TopScorers)
		score.MostAssists = displayNames(p.MostAssists)
	}
	return score
}

func displayNames(names []string) []string {
	if len(names) == 0 {
		return []string{sharedtypes.NotAvailable}
	}
	return slices.Clone(names)
}

// ScoreTablePrediction grades p against snap under rules. A nil prediction
// or snapshot scores zero and never fails.
func ScoreTablePrediction(p *TablePrediction, snap *standingsdomain.Snapshot, rules competitiondomain.RuleConfig) TableScore {
	if p == nil || snap == nil || snap.Size() == 0 {
		return unavailableScore(p)
	}

	score := TableScore{
		Available:   true,
		TopScorers:  displayNames(p.TopScorers),
		MostAssists: displayNames(p.MostAssists),
	}
	switch rules.RuleSet {
	case competitiondomain.RuleSetDistance:
		score.Points = scoreDistance(p, snap)
	default:
		score.Points = scoreBand(p, snap, rules)
	}
	score.BonusPoints = rules.BonusPoints * (countMatches(p.TopScorers, snap.TopScorers) + countMatches(p.MostAssists, snap.MostAssists))
	return score
}

// scoreDistance sums -|predicted - actual| over the predicted teams. Teams
// missing from the snapshot contribute nothing.
func scoreDistance(p *TablePrediction, snap *standingsdomain.Snapshot) int {
	total := 0
	for _, tp := range p.Positions {
		actual, ok := snap.PositionOf(tp.TeamID)
		if !ok {
			continue
		}
		total -= abs(tp.Position - actual)
	}
	return total
}

type band int

const (
	bandTop band = iota
	bandBottom
)

var bands = [...]band{bandTop, bandBottom}

// inBand reports whether position lies in the top or bottom K of an n-team
// table. With 2K > n the bands overlap and a position can be in both.
func inBand(b band, position, k, n int) bool {
	if position < 1 || position > n {
		return false
	}
	if b == bandTop {
		return position <= k
	}
	return position > n-k
}

func scoreBand(p *TablePrediction, snap *standingsdomain.Snapshot, rules competitiondomain.RuleConfig) int {
	n, k := snap.Size(), rules.BandSize
	total := 0
	for _, tp := range p.Positions {
		actual, ok := snap.PositionOf(tp.TeamID)
		if !ok {
			continue
		}
		for _, b := range bands {
			if !inBand(b, tp.Position, k, n) || !inBand(b, actual, k, n) {
				continue
			}
			if actual == tp.Position {
				total += rules.PointsCorrect
			} else {
				total += rules.PointsAlmost
			}
			break
		}
	}
	return total
}

// countMatches counts predicted names found in the designation, comparing
// case-insensitively after trimming.
func countMatches(predicted, designated []string) int {
	if len(predicted) == 0 || len(designated) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(designated))
	for _, d := range designated {
		set[foldName(d)] = struct{}{}
	}
	n := 0
	for _, name := range predicted {
		key := foldName(name)
		if key == "" {
			continue
		}
		if _, ok := set[key]; ok {
			n++
		}
	}
	return n
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
