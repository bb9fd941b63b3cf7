package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"github.com/uptrace/bun"
)

const collection = "users"

var ErrUserNotFound = fmt.Errorf("user %w", store.ErrNotFound)

type UserRepository interface {
	// FindByEmail returns the first user with exactly this email or
	// ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) (store.InsertResult, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) UserRepository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("u.email = ?", email).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), nil)
		return nil, ErrUserNotFound
	}

	r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) Insert(ctx context.Context, user *User) (store.InsertResult, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}
	return store.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}
