// Package testenv holds the lifecycle shared by the container-backed test
// helpers: one container per test binary, skipped under -short.
package testenv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const startTimeout = 3 * time.Minute

// Shared starts a resource on first use and hands the same value to every
// later caller in the package. A failed start is remembered and fails
// every caller.
type Shared[T any] struct {
	once  sync.Once
	start func(ctx context.Context) (T, error)
	value T
	err   error
}

func NewShared[T any](start func(ctx context.Context) (T, error)) *Shared[T] {
	return &Shared[T]{start: start}
}

func (s *Shared[T]) Get(t *testing.T) T {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		s.value, s.err = s.start(ctx)
	})
	require.NoError(t, s.err, "failed to start shared container")

	return s.value
}

// Terminate stops container, logging rather than failing the test.
func Terminate(t *testing.T, container testcontainers.Container) {
	t.Helper()

	if err := testcontainers.TerminateContainer(container); err != nil {
		t.Logf("failed to terminate container: %s", err)
	}
}
