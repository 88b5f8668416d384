package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations collects the schema steps; each file registers one from its init.
var Migrations = migrate.NewMigrations()

func execSQL(stmt string) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
}
