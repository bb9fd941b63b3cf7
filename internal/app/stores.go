package app

import (
	"context"
	"fmt"

	"github.com/akkm9120/sctp02-crud-mongo/internal/auth"
	"github.com/akkm9120/sctp02-crud-mongo/internal/config"
	"github.com/akkm9120/sctp02-crud-mongo/internal/db"
	"github.com/akkm9120/sctp02-crud-mongo/internal/health"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/mongodb"
	"github.com/akkm9120/sctp02-crud-mongo/internal/student"
	"github.com/akkm9120/sctp02-crud-mongo/internal/subject"
)

// Stores holds one repository per collection, all backed by the same
// connection.
type Stores struct {
	Students student.Repository
	Subjects subject.Repository
	Users    auth.UserRepository
	Pinger   health.Pinger
	close    func(ctx context.Context) error
}

// Close releases the underlying connection.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, m *metrics.Metrics) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, m)
	case config.DriverMongo:
		return openMongo(ctx, cfg, m)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, m *metrics.Metrics) (*Stores, error) {
	client, database, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Students: student.NewMongoRepository(database, m),
		Subjects: subject.NewMongoRepository(database, m),
		Users:    auth.NewMongoRepository(database, m),
		Pinger: health.PingFunc(func(ctx context.Context) error {
			return mongodb.Ping(ctx, client)
		}),
		close: func(ctx context.Context) error {
			return mongodb.Disconnect(ctx, client)
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, m *metrics.Metrics) (*Stores, error) {
	database, err := db.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx, database, (*student.Student)(nil), (*subject.Subject)(nil), (*auth.User)(nil)); err != nil {
		db.Close(database)
		return nil, err
	}

	return &Stores{
		Students: student.NewRepository(database, m),
		Subjects: subject.NewRepository(database, m),
		Users:    auth.NewRepository(database, m),
		Pinger:   health.PingFunc(database.PingContext),
		close: func(context.Context) error {
			return database.Close()
		},
	}, nil
}
