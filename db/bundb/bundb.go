// Package bundb opens the Postgres connection and runs schema migrations.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	competitionmigrations "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories/migrations"
	predictionmigrations "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories/migrations"
	standingsmigrations "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations pairs a module name with its migration set.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists module migrations in dependency order: predictions and
// standings reference competition tables.
func Modules() []ModuleMigrations {
	return []ModuleMigrations{
		{Name: "competition", Migrations: competitionmigrations.Migrations},
		{Name: "prediction", Migrations: predictionmigrations.Migrations},
		{Name: "standings", Migrations: standingsmigrations.Migrations},
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// NewMigrator returns a migrator that keeps its bookkeeping in per-module
// tables so modules can be rolled back independently.
func NewMigrator(db *bun.DB, m ModuleMigrations) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName(m.Name+"_migrations"),
		migrate.WithLocksTableName(m.Name+"_migration_locks"),
	)
}

// Migrate initializes and applies every module's pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for _, m := range Modules() {
		migrator := NewMigrator(db, m)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", m.Name, err)
		}
		if err := migrator.Lock(ctx); err != nil {
			return fmt.Errorf("lock %s migrations: %w", m.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		unlockErr := migrator.Unlock(ctx)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", m.Name, err)
		}
		if unlockErr != nil {
			return fmt.Errorf("unlock %s migrations: %w", m.Name, unlockErr)
		}

		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", attr.String("module", m.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module",
				attr.String("module", m.Name),
				attr.String("group", group.String()),
			)
		}
	}
	return nil
}

// MigrateRiver applies River's own schema migrations.
func MigrateRiver(ctx context.Context, dsn string) (int, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return 0, fmt.Errorf("failed to run river migrations: %w", err)
	}
	return len(res.Versions), nil
}
