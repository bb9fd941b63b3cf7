package student

import (
	"context"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"github.com/google/uuid"
)

const resource = "student"

// Layouts accepted for dateEnrolled, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Service interface {
	ListStudents(ctx context.Context, filter Filter) ([]Student, error)
	CreateStudent(ctx context.Context, req StudentRequest) (store.InsertResult, error)
	ReplaceStudent(ctx context.Context, id string, req StudentRequest) (*Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	events *events.Emitter
	now    func() time.Time
	newID  func() string
}

func NewService(repo Repository, emitter *events.Emitter) Service {
	return &service{
		repo:   repo,
		events: emitter,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *service) ListStudents(ctx context.Context, filter Filter) ([]Student, error) {
	return s.repo.Find(ctx, filter)
}

func (s *service) CreateStudent(ctx context.Context, req StudentRequest) (store.InsertResult, error) {
	student := s.build(req)

	result, err := s.repo.Insert(ctx, student)
	if err != nil {
		return store.InsertResult{}, err
	}

	s.events.Emit(ctx, events.StudentCreated, resource, result.InsertedID)
	return result, nil
}

func (s *service) ReplaceStudent(ctx context.Context, id string, req StudentRequest) (*Student, error) {
	student := s.build(req)

	if err := s.repo.Replace(ctx, id, student); err != nil {
		return nil, err
	}
	student.ID = id

	s.events.Emit(ctx, events.StudentReplaced, resource, id)
	return student, nil
}

func (s *service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, events.StudentDeleted, resource, id)
	return nil
}

// build turns a validated request into a document. Every subject gets a
// fresh id; ids from earlier versions of the document are not reused.
func (s *service) build(req StudentRequest) *Student {
	subjects := make([]SubjectEntry, 0, len(req.Subjects))
	for _, name := range req.Subjects {
		subjects = append(subjects, SubjectEntry{ID: s.newID(), Name: name})
	}

	return &Student{
		Name:         req.Name,
		Age:          req.Age,
		Subjects:     subjects,
		DateEnrolled: ParseDateEnrolled(req.DateEnrolled, s.now()),
	}
}

// ParseDateEnrolled parses value with the accepted layouts and falls back
// to now when value is empty or unparseable.
func ParseDateEnrolled(value string, now time.Time) time.Time {
	if value != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC()
			}
		}
	}
	return now.UTC()
}
