package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRunLockHeld means another process owns the rebuild run.
	ErrRunLockHeld = errors.New("rebuild lock held by another process")
	// ErrRunLockUnavailable means the lock backend is not connected yet.
	ErrRunLockUnavailable = errors.New("rebuild lock backend not connected")
)

// RunLock serializes rebuild runs across processes sharing the same store.
type RunLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

const rebuildLockKey = "lock:balance_rebuild"

// RedisRunLock keeps the lock alive with periodic refreshes while the run is in flight.
// The client is resolved on every Acquire so redis may connect after the scheduler starts.
type RedisRunLock struct {
	client func() *redislock.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedisRunLock(client func() *redislock.Client, ttl time.Duration, logger *logrus.Logger) *RedisRunLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &RedisRunLock{client: client, ttl: ttl, logger: logger}
}

func (l *RedisRunLock) Acquire(ctx context.Context) (func(), error) {
	client := l.client()
	if client == nil {
		return nil, ErrRunLockUnavailable
	}
	lock, err := client.Obtain(ctx, rebuildLockKey, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrRunLockHeld
	}
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(l.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.WithoutCancel(ctx), l.ttl, nil); err != nil {
					l.logger.WithFields(logrus.Fields{
						"field": "RedisRunLock",
						"key":   rebuildLockKey,
					}).Warn("failed to refresh redis lock: " + err.Error())
					return
				}
			}
		}
	}()

	release := func() {
		close(done)
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WithFields(logrus.Fields{
				"field": "RedisRunLock",
				"key":   rebuildLockKey,
			}).Warn("failed to release redis lock: " + err.Error())
		}
	}
	return release, nil
}
