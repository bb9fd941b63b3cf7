package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"golang.org/x/crypto/bcrypt"
)

const resource = "user"

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// dummyPassword is hashed once per Service so that a login for an unknown
// email pays for the same bcrypt comparison as a wrong password.
const dummyPassword = "sctp02-crud-mongo/unknown-user"

type Service struct {
	repo      UserRepository
	tokens    *TokenManager
	cost      int
	events    *events.Emitter
	dummyHash []byte
	compare   func(hash, password []byte) error
}

func NewService(repo UserRepository, tokens *TokenManager, cost int, emitter *events.Emitter) *Service {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)

	// Cannot fail with a short password and a cost inside the valid range.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)

	return &Service{
		repo:      repo,
		tokens:    tokens,
		cost:      cost,
		events:    emitter,
		dummyHash: dummyHash,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// Signup stores a new account. Emails are not checked for uniqueness.
func (s *Service) Signup(ctx context.Context, email, password string) (store.InsertResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return store.InsertResult{}, ErrPasswordTooLong
		}
		return store.InsertResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.repo.Insert(ctx, &User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("failed to insert user: %w", err)
	}

	s.events.Emit(ctx, events.UserSignedUp, resource, result.InsertedID)
	return result, nil
}

// Login returns a signed token. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = s.compare(s.dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID, user.Email)
}
