package testenv_test

import (
	"context"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/testing/testenv"

	"github.com/stretchr/testify/assert"
)

func TestShared(t *testing.T) {
	starts := 0
	shared := testenv.NewShared(func(ctx context.Context) (string, error) {
		starts++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "start must be bounded")
		return "nats://127.0.0.1:4222", nil
	})

	t.Run("StartsOnFirstUse", func(t *testing.T) {
		assert.Equal(t, "nats://127.0.0.1:4222", shared.Get(t))
	})

	t.Run("ReusesValue", func(t *testing.T) {
		assert.Equal(t, "nats://127.0.0.1:4222", shared.Get(t))
		assert.Equal(t, 1, starts)
	})

	t.Run("TerminateNil", func(t *testing.T) {
		assert.NotPanics(t, func() { testenv.Terminate(t, nil) })
	})
}
