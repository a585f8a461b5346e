// Package storage opens the PostgreSQL pool and applies schema migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/storage/migrations"
)

// Connect opens a pool and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "storage.Connect"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperr.Wrap(op, err)
	}
	return pool, nil
}

// Migrate applies pending migrations from the embedded schema.
func Migrate(dsn string, log *slog.Logger) error {
	const (
		op                 = "storage.Migrate"
		driverName         = "pgx"
		databaseDriverName = "postgres"
	)

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return apperr.Wrap(op, err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return apperr.Wrap(op, err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return apperr.Wrap(op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, databaseDriverName, driver)
	if err != nil {
		return apperr.Wrap(op, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("migrations up to date")
			return nil
		}
		return apperr.Wrap(op, err)
	}

	log.Info("migrations applied successfully")
	return nil
}
