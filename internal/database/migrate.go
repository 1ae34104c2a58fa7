package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations holds the embedded SQL files, registered by their
// <version>_<name>.up.sql / .down.sql names.
var Migrations = migrate.NewMigrations()

func init() {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	if err := Migrations.Discover(sub); err != nil {
		panic(err)
	}
}

// Migrate applies every pending migration against the database at dsn and
// returns how many were applied in this run.
func Migrate(ctx context.Context, dsn string) (int, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return 0, fmt.Errorf("init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return 0, fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	if group.IsZero() {
		return 0, nil
	}
	for _, m := range group.Migrations {
		log.WithField("migration", m.Name).Info("migration applied")
	}
	return len(group.Migrations), nil
}
