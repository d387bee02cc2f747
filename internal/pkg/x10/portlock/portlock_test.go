package portlock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/log"
)

func TestLockAcquireRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cm17a.lock")
	lock := New(log.NewNopLogger(), path)
	assert.Equal(t, path, lock.Path())

	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())

	// Can be acquired again
	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
}

func TestLockWaitsForHolder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cm17a.lock")
	holder := New(log.NewNopLogger(), path)
	require.NoError(t, holder.Acquire(context.Background()))

	released := make(chan struct{})
	go func() {
		defer close(released)
		time.Sleep(600 * time.Millisecond)
		assert.NoError(t, holder.Release())
	}()

	// The second lock waits until the holder releases
	waiter := New(log.NewDebugLogger(), path)
	start := time.Now()
	require.NoError(t, waiter.Acquire(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	require.NoError(t, waiter.Release())
	<-released
}
