package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napieracademy/sitemap-manager/internal/lock"
	"github.com/napieracademy/sitemap-manager/internal/testhelpers"
)

func newLock(t *testing.T) (*lock.RunLock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return lock.NewRunLock(client, time.Minute, testhelpers.NewTestLogger()), mr
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	l, mr := newLock(t)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, "run-1"))
	assert.True(t, mr.Exists("sitemap:generation:lock"))

	require.NoError(t, l.Release(ctx, "run-1"))
	assert.False(t, mr.Exists("sitemap:generation:lock"))
}

func TestAcquire_HeldByAnotherRun(t *testing.T) {
	t.Parallel()

	l, _ := newLock(t)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, "run-1"))
	assert.ErrorIs(t, l.Acquire(ctx, "run-2"), lock.ErrAlreadyRunning)
}

func TestRelease_OnlyByOwner(t *testing.T) {
	t.Parallel()

	l, mr := newLock(t)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, "run-1"))

	// A stale owner must not free somebody else's lock.
	require.NoError(t, l.Release(ctx, "run-0"))
	assert.True(t, mr.Exists("sitemap:generation:lock"))
}

func TestAcquire_AfterExpiry(t *testing.T) {
	t.Parallel()

	l, mr := newLock(t)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, "run-1"))
	mr.FastForward(2 * time.Minute)

	assert.NoError(t, l.Acquire(ctx, "run-2"))
}

func TestNilClientIsLockless(t *testing.T) {
	t.Parallel()

	l := lock.NewRunLock(nil, time.Minute, testhelpers.NewTestLogger())
	ctx := context.Background()

	assert.NoError(t, l.Acquire(ctx, "run-1"))
	assert.NoError(t, l.Acquire(ctx, "run-2"))
	assert.NoError(t, l.Release(ctx, "run-1"))
}

func TestAcquire_BrokenRedisDegrades(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	l := lock.NewRunLock(client, time.Minute, testhelpers.NewTestLogger())

	mr.Close()

	assert.NoError(t, l.Acquire(context.Background(), "run-1"))
}
