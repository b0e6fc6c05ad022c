// Package lock provides the Redis-backed run lock that keeps two generation
// runs from racing each other on the canonical artifact and the stats row.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/napieracademy/sitemap-manager/internal/logger"
)

// lockKey is the Redis key holding the in-progress marker.
const lockKey = "sitemap:generation:lock"

// ErrAlreadyRunning means another generation run holds the lock.
var ErrAlreadyRunning = errors.New("a generation run is already in progress")

// RunLock serializes generation runs via SET NX with a TTL. A nil client
// degrades to lockless operation: a missing Redis must not block sitemap
// generation, it only loses the concurrency guard.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRunLock(client *redis.Client, ttl time.Duration, log logger.Logger) *RunLock {
	return &RunLock{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Acquire takes the lock for this run, identified by runID. Returns
// ErrAlreadyRunning when held by another run.
func (l *RunLock) Acquire(ctx context.Context, runID string) error {
	if l.client == nil {
		l.logger.Warn("Redis not configured, generation run is unlocked")
		return nil
	}

	ok, err := l.client.SetNX(ctx, lockKey, runID, l.ttl).Result()
	if err != nil {
		// A broken Redis degrades to lockless rather than blocking the run.
		l.logger.Warn("Run lock unavailable, continuing without it",
			logger.Error(err),
		)
		return nil
	}
	if !ok {
		return ErrAlreadyRunning
	}

	return nil
}

// Release frees the lock if this run still owns it. The compare is done in
// a script so an expired-and-reacquired lock is never released by the old
// owner.
func (l *RunLock) Release(ctx context.Context, runID string) error {
	if l.client == nil {
		return nil
	}

	const releaseScript = `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`

	if err := l.client.Eval(ctx, releaseScript, []string{lockKey}, runID).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
