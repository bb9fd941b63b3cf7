package student

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const collection = "students"

// Repository is the store adapter for the students collection.
// Replace and Delete report success when no document has the id.
type Repository interface {
	Find(ctx context.Context, filter Filter) ([]Student, error)
	Insert(ctx context.Context, student *Student) (store.InsertResult, error)
	Replace(ctx context.Context, id string, student *Student) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

// NewRepository returns the postgres-backed repository. Subjects are kept
// in a JSONB column.
func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Find(ctx context.Context, filter Filter) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)

	q := r.db.NewSelect().Model(&students)
	if filter.Name != "" {
		q = q.Where("s.name ILIKE ?", "%"+store.EscapeLike(filter.Name)+"%")
	}
	if filter.Subject != "" {
		contains, err := json.Marshal([]map[string]string{{"name": filter.Subject}})
		if err != nil {
			return nil, err
		}
		q = q.Where("s.subjects @> ?::jsonb", string(contains))
	}

	err := q.Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "find", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *repository) Insert(ctx context.Context, student *Student) (store.InsertResult, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}
	return store.InsertResult{Acknowledged: true, InsertedID: student.ID}, nil
}

func (r *repository) Replace(ctx context.Context, id string, student *Student) error {
	// A malformed id cannot match a uuid primary key.
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	start := time.Now()
	student.ID = id
	_, err := r.db.NewUpdate().
		Model(student).
		Column("name", "age", "subjects", "date_enrolled").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", collection, time.Since(start), err)

	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Student)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", collection, time.Since(start), err)

	return err
}
