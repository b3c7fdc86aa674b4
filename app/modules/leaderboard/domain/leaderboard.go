package leaderboarddomain

import (
	"cmp"
	"slices"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

// Participant is a user entitled to a row on the leaderboard.
type Participant struct {
	UserID      sharedtypes.UserID
	DisplayName string
}

// GradedPrediction is a match prediction together with the fixture it was
// made on. Points is the cached grade.
type GradedPrediction struct {
	Prediction predictiondomain.MatchPrediction
	Fixture    competitiondomain.Fixture
}

// Input is everything a leaderboard computation reads. It is a snapshot of
// the stored state; ComputeLeaderboard never touches storage.
type Input struct {
	AsOf         time.Time
	Rules        competitiondomain.RuleConfig
	PrizeBands   competitiondomain.PrizeBands
	Participants []Participant
	Predictions  []GradedPrediction
	// TableScores holds the graded table prediction of each user. Users
	// without an entry score zero table and bonus points.
	TableScores map[sharedtypes.UserID]predictiondomain.TableScore
}

// Row is one user's line on the leaderboard.
type Row struct {
	UserID      sharedtypes.UserID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	// Predictions counts predictions on fixtures that kicked off before the
	// cutoff, concluded or not.
	Predictions      int      `json:"total_bets"`
	MatchPoints      int      `json:"match_points"`
	TablePoints      int      `json:"table_points"`
	BonusPoints      int      `json:"bonus_points"`
	Total            int      `json:"total_points"`
	GoalDiffError    int      `json:"goal_diff"`
	GoalsScoredError int      `json:"goals_scored_diff"`
	Rank             int      `json:"rank"`
	Prize            string   `json:"prize,omitempty"`
	TopScorers       []string `json:"top_scorers"`
	MostAssists      []string `json:"most_assists"`
}

// ComputeLeaderboard ranks the participants at instant in.AsOf.
//
// Only fixtures that started strictly before AsOf count. A user appears once
// they hold at least one prediction on such a fixture with a recorded result.
// Rows are ordered by total descending, then by the absolute goal-difference
// error and the absolute goals-scored error ascending. Equal keys share a
// rank and consume the positions after it (1, 1, 3).
func ComputeLeaderboard(in Input) []Row {
	names := make(map[sharedtypes.UserID]string, len(in.Participants))
	for _, p := range in.Participants {
		names[p.UserID] = p.DisplayName
	}

	rows := make(map[sharedtypes.UserID]*Row)
	graded := make(map[sharedtypes.UserID]bool)
	for _, gp := range in.Predictions {
		user := gp.Prediction.UserID
		name, ok := names[user]
		if !ok || !gp.Fixture.StartTime.Before(in.AsOf) {
			continue
		}
		row, ok := rows[user]
		if !ok {
			row = &Row{UserID: user, DisplayName: name}
			rows[user] = row
		}
		row.Predictions++
		if !gp.Fixture.Concluded() {
			continue
		}
		graded[user] = true
		row.MatchPoints += gp.Prediction.Points
		gd, gs := tieBreakErrors(gp.Prediction, gp.Fixture, in.Rules.ReferenceTeamID)
		row.GoalDiffError += gd
		row.GoalsScoredError += gs
	}

	out := make([]Row, 0, len(graded))
	for user, row := range rows {
		if !graded[user] {
			continue
		}
		if score, ok := in.TableScores[user]; ok {
			row.TablePoints = score.Points
			row.BonusPoints = score.BonusPoints
			row.TopScorers = score.TopScorers
			row.MostAssists = score.MostAssists
		} else {
			row.TopScorers = []string{sharedtypes.NotAvailable}
			row.MostAssists = []string{sharedtypes.NotAvailable}
		}
		row.Total = row.MatchPoints + row.TablePoints + row.BonusPoints
		out = append(out, *row)
	}

	slices.SortFunc(out, func(a, b Row) int {
		if c := compareKey(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	assignRanks(out, in.PrizeBands)
	return out
}

// tieBreakErrors returns the signed goal-difference and goals-scored errors
// of one graded prediction, read from the reference team's side when it
// plays at home and from the away side otherwise.
func tieBreakErrors(p predictiondomain.MatchPrediction, f competitiondomain.Fixture, reference sharedtypes.TeamID) (int, int) {
	home, away := *f.HomeGoals, *f.AwayGoals
	if f.HomeTeamID == reference {
		return (p.HomeGoals - p.AwayGoals) - (home - away), p.HomeGoals - home
	}
	return (p.AwayGoals - p.HomeGoals) - (away - home), p.AwayGoals - away
}

func compareKey(a, b Row) int {
	return cmp.Or(
		cmp.Compare(b.Total, a.Total),
		cmp.Compare(abs(a.GoalDiffError), abs(b.GoalDiffError)),
		cmp.Compare(abs(a.GoalsScoredError), abs(b.GoalsScoredError)),
	)
}

func assignRanks(rows []Row, prizes competitiondomain.PrizeBands) {
	for i := range rows {
		if i > 0 && compareKey(rows[i-1], rows[i]) == 0 {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
		rows[i].Prize = prizes.LabelFor(rows[i].Rank)
	}
}

// RankOf returns the rank of user, or false when the user has no row.
func RankOf(rows []Row, user sharedtypes.UserID) (int, bool) {
	for _, r := range rows {
		if r.UserID == user {
			return r.Rank, true
		}
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
