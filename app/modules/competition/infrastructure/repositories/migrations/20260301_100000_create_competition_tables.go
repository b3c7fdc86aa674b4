package competitionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating teams, competitions and fixtures tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS teams (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL UNIQUE,
					short VARCHAR(4) NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create teams table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competitions (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(100) NOT NULL,
					season VARCHAR(20) NOT NULL,
					rules JSONB NOT NULL,
					prize_bands JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (name, season)
				);
				CREATE INDEX IF NOT EXISTS idx_competitions_season ON competitions(season);
			`); err != nil {
				return fmt.Errorf("failed to create competitions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competition_teams (
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					team_id BIGINT NOT NULL REFERENCES teams(id),
					PRIMARY KEY (competition_uuid, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create competition_teams table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competition_participants (
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					user_id TEXT NOT NULL,
					display_name VARCHAR(100) NOT NULL,
					joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (competition_uuid, user_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create competition_participants table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS fixtures (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					home_team_id BIGINT NOT NULL REFERENCES teams(id),
					away_team_id BIGINT NOT NULL REFERENCES teams(id),
					start_time TIMESTAMPTZ NOT NULL,
					home_goals SMALLINT CHECK (home_goals >= 0),
					away_goals SMALLINT CHECK (away_goals >= 0),
					result_recorded_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (home_team_id <> away_team_id)
				);
				CREATE INDEX IF NOT EXISTS idx_fixtures_competition_start ON fixtures(competition_uuid, start_time);
			`); err != nil {
				return fmt.Errorf("failed to create fixtures table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping teams, competitions and fixtures tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"fixtures", "competition_participants", "competition_teams", "competitions", "teams"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+";"); err != nil {
					return fmt.Errorf("failed to drop %s table: %w", table, err)
				}
			}
			return nil
		})
	})
}
