package predictiondb

import (
	"time"

	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MatchPrediction is a stored match prediction. Points caches the grade
// written by the last recompute.
type MatchPrediction struct {
	bun.BaseModel `bun:"table:match_predictions,alias:mp"`

	ID              int64              `bun:"id,pk,autoincrement"`
	UserID          sharedtypes.UserID `bun:"user_id,notnull"`
	FixtureUUID     uuid.UUID          `bun:"fixture_uuid,type:uuid,notnull"`
	CompetitionUUID uuid.UUID          `bun:"competition_uuid,type:uuid,notnull"`
	HomeGoals       int                `bun:"home_goals,notnull"`
	AwayGoals       int                `bun:"away_goals,notnull"`
	Points          int                `bun:"points,notnull,default:0"`
	CreatedAt       time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row to the domain prediction.
func (m *MatchPrediction) ToDomain() predictiondomain.MatchPrediction {
	return predictiondomain.MatchPrediction{
		UserID:    m.UserID,
		FixtureID: m.FixtureUUID,
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
		Points:    m.Points,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// TablePrediction is the header row of a user's predicted table.
type TablePrediction struct {
	bun.BaseModel `bun:"table:table_predictions,alias:tp"`

	ID              int64                      `bun:"id,pk,autoincrement"`
	UserID          sharedtypes.UserID         `bun:"user_id,notnull"`
	CompetitionUUID uuid.UUID                  `bun:"competition_uuid,type:uuid,notnull"`
	TopScorers      []string                   `bun:"top_scorers,array"`
	MostAssists     []string                   `bun:"most_assists,array"`
	CreatedAt       time.Time                  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time                  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	Positions       []*TablePredictionPosition `bun:"rel:has-many,join:id=prediction_id"`
}

// TablePredictionPosition is one predicted (position, team) row.
type TablePredictionPosition struct {
	bun.BaseModel `bun:"table:table_prediction_positions,alias:tpp"`

	PredictionID int64              `bun:"prediction_id,pk"`
	Position     int                `bun:"position,pk"`
	TeamID       sharedtypes.TeamID `bun:"team_id,notnull"`
}

// ToDomain converts the header and its positions to the domain prediction.
func (t *TablePrediction) ToDomain() predictiondomain.TablePrediction {
	out := predictiondomain.TablePrediction{
		UserID:        t.UserID,
		CompetitionID: t.CompetitionUUID,
		TopScorers:    t.TopScorers,
		MostAssists:   t.MostAssists,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Positions:     make([]predictiondomain.TablePosition, 0, len(t.Positions)),
	}
	for _, p := range t.Positions {
		out.Positions = append(out.Positions, predictiondomain.TablePosition{Position: p.Position, TeamID: p.TeamID})
	}
	out.Positions = out.Sorted()
	return out
}
