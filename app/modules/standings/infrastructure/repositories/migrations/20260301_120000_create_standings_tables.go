package standingsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating standings snapshot tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS standings_snapshots (
					uuid UUID PRIMARY KEY,
					competition_uuid UUID NOT NULL REFERENCES competitions(uuid) ON DELETE CASCADE,
					round INTEGER NOT NULL CHECK (round > 0),
					top_scorers TEXT[] NOT NULL DEFAULT '{}',
					most_assists TEXT[] NOT NULL DEFAULT '{}',
					recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (competition_uuid, round)
				);
			`); err != nil {
				return fmt.Errorf("failed to create standings_snapshots: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS standings_snapshot_positions (
					snapshot_uuid UUID NOT NULL REFERENCES standings_snapshots(uuid) ON DELETE CASCADE,
					position INTEGER NOT NULL CHECK (position > 0),
					team_id BIGINT NOT NULL REFERENCES teams(id),
					PRIMARY KEY (snapshot_uuid, position),
					UNIQUE (snapshot_uuid, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create standings_snapshot_positions: %w", err)
			}

			fmt.Println("Standings tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping standings snapshot tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"standings_snapshot_positions", "standings_snapshots"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		})
	})
}
