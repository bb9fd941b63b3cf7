package subject

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const collection = "subjects"

type Repository interface {
	Find(ctx context.Context) ([]Subject, error)
	// FindByName returns the first subject named name or ErrSubjectNotFound.
	FindByName(ctx context.Context, name string) (*Subject, error)
	Insert(ctx context.Context, subject *Subject) (store.InsertResult, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Find(ctx context.Context) ([]Subject, error) {
	start := time.Now()
	subjects := make([]Subject, 0)
	err := r.db.NewSelect().Model(&subjects).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "find", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*Subject, error) {
	start := time.Now()
	subject := new(Subject)
	err := r.db.NewSelect().
		Model(subject).
		Where("sub.subject_name = ?", name).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), nil)
		return nil, ErrSubjectNotFound
	}

	r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return subject, nil
}

func (r *repository) Insert(ctx context.Context, subject *Subject) (store.InsertResult, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(subject).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}
	return store.InsertResult{Acknowledged: true, InsertedID: subject.ID}, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Subject)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", collection, time.Since(start), err)

	return err
}
