package predictionservice

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// SubmitMatchPredictionRequest creates or edits a match prediction.
type SubmitMatchPredictionRequest struct {
	UserID    sharedtypes.UserID `json:"-"`
	FixtureID uuid.UUID          `json:"fixture_id"`
	HomeGoals int                `json:"home_goals"`
	AwayGoals int                `json:"away_goals"`
}

// SubmitTablePredictionRequest replaces a user's table prediction.
type SubmitTablePredictionRequest struct {
	UserID        sharedtypes.UserID               `json:"-"`
	CompetitionID uuid.UUID                        `json:"competition_id"`
	Positions     []predictiondomain.TablePosition `json:"positions"`
	TopScorers    []string                         `json:"top_scorers"`
	MostAssists   []string                         `json:"most_assists"`
}

// MatchPredictionInfo is the public view of a match prediction.
type MatchPredictionInfo struct {
	UserID    sharedtypes.UserID        `json:"user_id"`
	FixtureID uuid.UUID                 `json:"fixture_id"`
	HomeGoals int                       `json:"home_goals"`
	AwayGoals int                       `json:"away_goals"`
	Outcome   competitiondomain.Outcome `json:"outcome"`
	Points    int                       `json:"points"`
	Updated   bool                      `json:"updated"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// TablePredictionInfo is the public view of a table prediction.
type TablePredictionInfo struct {
	UserID        sharedtypes.UserID               `json:"user_id"`
	CompetitionID uuid.UUID                        `json:"competition_id"`
	Positions     []predictiondomain.TablePosition `json:"positions"`
	TopScorers    []string                         `json:"top_scorers"`
	MostAssists   []string                         `json:"most_assists"`
	UpdatedAt     time.Time                        `json:"updated_at"`
}

// RecomputeSummary reports a recompute run.
type RecomputeSummary struct {
	Fixtures    int `json:"fixtures"`
	Predictions int `json:"predictions"`
	Changed     int `json:"changed"`
}

func toMatchPredictionInfo(m *predictiondb.MatchPrediction) MatchPredictionInfo {
	d := m.ToDomain()
	return MatchPredictionInfo{
		UserID:    d.UserID,
		FixtureID: d.FixtureID,
		HomeGoals: d.HomeGoals,
		AwayGoals: d.AwayGoals,
		Outcome:   d.Outcome(),
		Points:    d.Points,
		Updated:   d.IsUpdated(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toTablePredictionInfo(t *predictiondb.TablePrediction) TablePredictionInfo {
	d := t.ToDomain()
	return TablePredictionInfo{
		UserID:        d.UserID,
		CompetitionID: d.CompetitionID,
		Positions:     d.Positions,
		TopScorers:    d.TopScorers,
		MostAssists:   d.MostAssists,
		UpdatedAt:     d.UpdatedAt,
	}
}
