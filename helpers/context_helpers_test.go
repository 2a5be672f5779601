package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreContext(t *testing.T) {
	called := false
	err := IgnoreContext(t.Context(), func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	called = false
	err = IgnoreContext(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
