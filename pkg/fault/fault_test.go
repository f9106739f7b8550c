package fault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/pkg/fault"
)

func TestNew(t *testing.T) {
	b := fault.New(false)
	require.NotNil(t, b)
	assert.Nil(t, b.Failure())
	assert.Empty(t, b.Recovered())
}

func TestFail(t *testing.T) {
	b := fault.New(false)

	b.Fail(assert.AnError)
	assert.ErrorIs(t, b.Failure(), assert.AnError)

	// a second Fail does not overwrite the first failure, it's folded into recoverable.
	second := assert.AnError
	b.Fail(second)
	assert.Len(t, b.Recovered(), 1)
}

func TestAddRecoverable(t *testing.T) {
	ctx := context.Background()

	t.Run("not failFast", func(t *testing.T) {
		b := fault.New(false)
		b.AddRecoverable(ctx, assert.AnError)
		b.AddRecoverable(ctx, assert.AnError)

		assert.Nil(t, b.Failure())
		assert.Len(t, b.Recovered(), 2)
	})

	t.Run("failFast promotes first error", func(t *testing.T) {
		b := fault.New(true)
		b.AddRecoverable(ctx, assert.AnError)

		assert.ErrorIs(t, b.Failure(), assert.AnError)
		assert.Len(t, b.Recovered(), 1)
	})

	t.Run("nil error is a no-op", func(t *testing.T) {
		b := fault.New(false)
		b.AddRecoverable(ctx, nil)

		assert.Empty(t, b.Recovered())
	})
}

func TestAddSkip(t *testing.T) {
	ctx := context.Background()
	b := fault.New(false)

	b.AddSkip(ctx, fault.Skipped{Namespace: "stock", ID: "123", Reason: "non-numeric quantity"})

	skipped := b.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "stock", skipped[0].Namespace)
	assert.Equal(t, 1, b.Len())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, fault.Wrap(nil, "no error"))
	assert.Error(t, fault.Wrap(assert.AnError, "wrapped"))
}
