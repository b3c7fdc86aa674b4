package predictiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new prediction repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// UpsertMatchPrediction creates a prediction or replaces its goals, keeping
// created_at and the cached points.
func (r *Impl) UpsertMatchPrediction(ctx context.Context, db bun.IDB, prediction *MatchPrediction) error {
	db = r.resolveDB(db)
	if prediction.UpdatedAt.IsZero() {
		prediction.UpdatedAt = time.Now().UTC()
	}
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = prediction.UpdatedAt
	}
	_, err := db.NewInsert().
		Model(prediction).
		On("CONFLICT (user_id, fixture_uuid) DO UPDATE").
		Set("home_goals = EXCLUDED.home_goals").
		Set("away_goals = EXCLUDED.away_goals").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, points, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.UpsertMatchPrediction: %w", err)
	}
	return nil
}

// GetMatchPrediction retrieves a user's prediction for a fixture.
func (r *Impl) GetMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) (*MatchPrediction, error) {
	db = r.resolveDB(db)
	prediction := new(MatchPrediction)
	err := db.NewSelect().
		Model(prediction).
		Where("user_id = ?", userID).
		Where("fixture_uuid = ?", fixtureID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("predictiondb.GetMatchPrediction: %w", err)
	}
	return prediction, nil
}

// DeleteMatchPrediction removes a user's prediction for a fixture.
func (r *Impl) DeleteMatchPrediction(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, fixtureID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*MatchPrediction)(nil)).
		Where("user_id = ?", userID).
		Where("fixture_uuid = ?", fixtureID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.DeleteMatchPrediction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("predictiondb.DeleteMatchPrediction: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFixturePredictions returns every prediction for a fixture, ordered by ID.
func (r *Impl) ListFixturePredictions(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) ([]MatchPrediction, error) {
	db = r.resolveDB(db)
	var predictions []MatchPrediction
	err := db.NewSelect().
		Model(&predictions).
		Where("fixture_uuid = ?", fixtureID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("predictiondb.ListFixturePredictions: %w", err)
	}
	return predictions, nil
}

// ListCompetitionPredictions returns every match prediction of a competition.
func (r *Impl) ListCompetitionPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]MatchPrediction, error) {
	db = r.resolveDB(db)
	var predictions []MatchPrediction
	err := db.NewSelect().
		Model(&predictions).
		Where("competition_uuid = ?", competitionID).
		Order("user_id ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("predictiondb.ListCompetitionPredictions: %w", err)
	}
	return predictions, nil
}

// ListUserPredictions returns a user's predictions within a competition.
func (r *Impl) ListUserPredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) ([]MatchPrediction, error) {
	db = r.resolveDB(db)
	var predictions []MatchPrediction
	err := db.NewSelect().
		Model(&predictions).
		Where("competition_uuid = ?", competitionID).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("predictiondb.ListUserPredictions: %w", err)
	}
	return predictions, nil
}

// UpdatePoints bulk-updates cached points by primary key.
func (r *Impl) UpdatePoints(ctx context.Context, db bun.IDB, predictions []MatchPrediction) error {
	if len(predictions) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model(&predictions).
		Column("points").
		Bulk().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.UpdatePoints: %w", err)
	}
	return nil
}

// AcquireFixtureLock serializes recomputes of one fixture.
func (r *Impl) AcquireFixtureLock(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) error {
	db = r.resolveDB(db)
	// hashtext() gives a stable int4 key for the uuid text
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "fixture:"+fixtureID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.AcquireFixtureLock: %w", err)
	}
	return nil
}

// GetTablePrediction loads a user's table prediction with its positions.
func (r *Impl) GetTablePrediction(ctx context.Context, db bun.IDB, competitionID uuid.UUID, userID sharedtypes.UserID) (*TablePrediction, error) {
	db = r.resolveDB(db)
	prediction := new(TablePrediction)
	err := db.NewSelect().
		Model(prediction).
		Relation("Positions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tpp.position ASC")
		}).
		Where("tp.competition_uuid = ?", competitionID).
		Where("tp.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("predictiondb.GetTablePrediction: %w", err)
	}
	return prediction, nil
}

// ListTablePredictions loads every table prediction of a competition.
func (r *Impl) ListTablePredictions(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]TablePrediction, error) {
	db = r.resolveDB(db)
	var predictions []TablePrediction
	err := db.NewSelect().
		Model(&predictions).
		Relation("Positions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tpp.position ASC")
		}).
		Where("tp.competition_uuid = ?", competitionID).
		Order("tp.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("predictiondb.ListTablePredictions: %w", err)
	}
	return predictions, nil
}

// ReplaceTablePrediction upserts the header and replaces all positions.
// Run it inside a transaction so readers never see a partial set.
func (r *Impl) ReplaceTablePrediction(ctx context.Context, db bun.IDB, prediction *TablePrediction) error {
	db = r.resolveDB(db)
	if prediction.UpdatedAt.IsZero() {
		prediction.UpdatedAt = time.Now().UTC()
	}
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = prediction.UpdatedAt
	}

	_, err := db.NewInsert().
		Model(prediction).
		On("CONFLICT (user_id, competition_uuid) DO UPDATE").
		Set("top_scorers = EXCLUDED.top_scorers").
		Set("most_assists = EXCLUDED.most_assists").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.ReplaceTablePrediction: header: %w", err)
	}

	_, err = db.NewDelete().
		Model((*TablePredictionPosition)(nil)).
		Where("prediction_id = ?", prediction.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictiondb.ReplaceTablePrediction: clear positions: %w", err)
	}

	if len(prediction.Positions) == 0 {
		return nil
	}
	for _, p := range prediction.Positions {
		p.PredictionID = prediction.ID
	}
	if _, err := db.NewInsert().Model(&prediction.Positions).Exec(ctx); err != nil {
		return fmt.Errorf("predictiondb.ReplaceTablePrediction: insert positions: %w", err)
	}
	return nil
}
