package subject

import (
	"context"
	"errors"
	"fmt"

	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"
)

const resource = "subject"

type Service interface {
	ListSubjects(ctx context.Context) ([]Subject, error)
	CreateSubject(ctx context.Context, name string) (store.InsertResult, error)
	// DeleteSubject removes the first subject named name. A name that
	// matches nothing is not an error.
	DeleteSubject(ctx context.Context, name string) error
}

type service struct {
	repo   Repository
	events *events.Emitter
}

func NewService(repo Repository, emitter *events.Emitter) Service {
	return &service{
		repo:   repo,
		events: emitter,
	}
}

func (s *service) ListSubjects(ctx context.Context) ([]Subject, error) {
	return s.repo.Find(ctx)
}

func (s *service) CreateSubject(ctx context.Context, name string) (store.InsertResult, error) {
	result, err := s.repo.Insert(ctx, &Subject{SubjectName: name})
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("failed to insert subject: %w", err)
	}

	s.events.Emit(ctx, events.SubjectCreated, resource, result.InsertedID)
	return result, nil
}

func (s *service) DeleteSubject(ctx context.Context, name string) error {
	subject, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, ErrSubjectNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find subject: %w", err)
	}

	if err := s.repo.Delete(ctx, subject.ID); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.events.Emit(ctx, events.SubjectDeleted, resource, subject.ID)
	return nil
}
