package testutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// appTables lists every table the modules own, children first.
var appTables = []string{
	"standings_snapshot_positions",
	"standings_snapshots",
	"table_prediction_positions",
	"table_predictions",
	"match_predictions",
	"fixtures",
	"competition_participants",
	"competition_teams",
	"competitions",
	"teams",
}

// CleanupDatabase truncates the module tables and the River job table.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	if err := TruncateTables(ctx, db, appTables...); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("failed to cleanup river jobs: %w", err)
		}
	}
	return nil
}

// TruncateTables truncates the named tables.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf(`"%s"`, table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CountRecomputeJobs counts River jobs of kind in any state.
func CountRecomputeJobs(ctx context.Context, db *bun.DB, kind string) (int, error) {
	return db.NewSelect().TableExpr("river_job").Where("kind = ?", kind).Count(ctx)
}
