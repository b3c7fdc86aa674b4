package predictionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating match and table prediction tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS match_predictions (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(255) NOT NULL,
					fixture_uuid UUID NOT NULL REFERENCES fixtures(uuid) ON DELETE CASCADE,
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					home_goals INTEGER NOT NULL CHECK (home_goals >= 0),
					away_goals INTEGER NOT NULL CHECK (away_goals >= 0),
					points INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, fixture_uuid)
				);
				CREATE INDEX IF NOT EXISTS idx_match_predictions_fixture ON match_predictions(fixture_uuid);
				CREATE INDEX IF NOT EXISTS idx_match_predictions_competition_user ON match_predictions(competition_uuid, user_id);
			`); err != nil {
				return fmt.Errorf("failed to create match_predictions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS table_predictions (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(255) NOT NULL,
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					top_scorers TEXT[] NOT NULL DEFAULT '{}',
					most_assists TEXT[] NOT NULL DEFAULT '{}',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, competition_uuid)
				);
			`); err != nil {
				return fmt.Errorf("failed to create table_predictions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS table_prediction_positions (
					prediction_id BIGINT NOT NULL REFERENCES table_predictions(id) ON DELETE CASCADE,
					position INTEGER NOT NULL CHECK (position > 0),
					team_id BIGINT NOT NULL REFERENCES teams(id),
					PRIMARY KEY (prediction_id, position),
					UNIQUE (prediction_id, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create table_prediction_positions table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping prediction tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"table_prediction_positions", "table_predictions", "match_predictions"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+";"); err != nil {
					return fmt.Errorf("failed to drop %s table: %w", table, err)
				}
			}
			return nil
		})
	})
}
