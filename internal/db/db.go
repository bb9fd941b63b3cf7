// Package db opens the postgres store used when database.driver is postgres.
package db

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const applicationName = "sctp02-crud-mongo"

// New connects using the discrete host, credential and TLS settings in cfg.
// sslmode "disable" (or empty) turns TLS off; any other value keeps it on.
func New(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	opts := []pgdriver.Option{
		pgdriver.WithAddr(net.JoinHostPort(cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithApplicationName(applicationName),
		pgdriver.WithInsecure(cfg.SSLMode == "" || cfg.SSLMode == "disable"),
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(seconds(cfg.ConnectTimeout)))
	}

	return open(ctx, cfg, opts...)
}

// NewWithDSN connects with a postgres:// URL and default pool limits.
func NewWithDSN(ctx context.Context, dsn string) (*bun.DB, error) {
	return open(ctx, config.DatabaseConfig{}, pgdriver.WithDSN(dsn))
}

func open(ctx context.Context, pool config.DatabaseConfig, opts ...pgdriver.Option) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))

	maxOpen := cmp.Or(pool.MaxOpenConns, 25)
	maxIdle := cmp.Or(pool.MaxIdleConns, 10)
	lifetime := seconds(cmp.Or(pool.ConnMaxLifetime, 300))
	idleTime := seconds(cmp.Or(pool.ConnMaxIdleTime, 60))

	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetMaxIdleConns(maxIdle)
	sqldb.SetConnMaxLifetime(lifetime)
	sqldb.SetConnMaxIdleTime(idleTime)

	database := bun.NewDB(sqldb, pgdialect.New())
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	slog.Info("database connected successfully",
		"driver", config.DriverPostgres,
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime", lifetime,
		"conn_max_idle_time", idleTime,
	)
	return database, nil
}

func Close(database *bun.DB) {
	if database != nil {
		_ = database.Close()
	}
}

// RunMigrations creates the tables for models in one transaction. Existing
// tables are left untouched.
func RunMigrations(ctx context.Context, database *bun.DB, models ...interface{}) error {
	err := database.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range models {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("database migrations completed successfully", "tables", len(models))
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
