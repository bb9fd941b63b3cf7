// Package testdb provides a postgres container for repository tests.
package testdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/config"
	"github.com/akkm9120/sctp02-crud-mongo/internal/db"
	"github.com/akkm9120/sctp02-crud-mongo/testing/testenv"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

var shared = testenv.NewShared(startPostgres)

const (
	databaseName = "fake_school"
	username     = "school"
	password     = "school"
)

type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
	// Config holds discrete connection settings for the mapped port.
	Config config.DatabaseConfig
}

// SetupSharedPostgres returns the package's postgres container, starting
// it on first use. Tests sharing it must not run in parallel; truncate
// with CleanupTables between subtests.
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return shared.Get(t)
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(databaseName),
		postgres.WithUsername(username),
		postgres.WithPassword(password),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("postgres port: %w", err)
	}

	database, err := db.NewWithDSN(ctx, dsn)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	return &PostgresContainer{
		Container: container,
		DB:        database,
		DSN:       dsn,
		Config: config.DatabaseConfig{
			Driver:   config.DriverPostgres,
			Host:     host,
			Port:     port.Port(),
			Name:     databaseName,
			User:     username,
			Password: password,
			SSLMode:  "disable",
		},
	}, nil
}

func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()

	db.Close(pc.DB)
	testenv.Terminate(t, pc.Container)
}

// RunMigrations creates tables through the same path the service uses at
// startup.
func (pc *PostgresContainer) RunMigrations(t *testing.T, models ...interface{}) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), pc.DB, models...))
}

func CleanupTables(t *testing.T, database *bun.DB, tables ...string) {
	t.Helper()

	_, err := database.NewTruncateTable().
		Table(tables...).
		Cascade().
		Exec(context.Background())
	require.NoError(t, err, "failed to truncate %v", tables)
}
