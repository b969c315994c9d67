package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/store"
)

// Release gives up a lock obtained from a Locker. It is always safe to call.
type Release func()

// Locker serializes edits of a single transaction id across requests and
// instances. Acquire fails with store.ErrConcurrentEdit when another holder
// keeps the lock past the retry budget.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

func TransactionKey(id int64) string {
	return fmt.Sprintf("storeledger:tx:%d", id)
}

type Noop struct{}

func (Noop) Acquire(_ context.Context, _ string) (Release, error) {
	return func() {}, nil
}

// Local is an in-process Locker for single instance deployments.
type Local struct {
	mu    sync.Mutex
	held  map[string]struct{}
	wait  time.Duration
	tries int
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{}), wait: 50 * time.Millisecond, tries: 10}
}

func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	for attempt := 0; ; attempt++ {
		l.mu.Lock()
		if _, busy := l.held[key]; !busy {
			l.held[key] = struct{}{}
			l.mu.Unlock()
			return func() {
				l.mu.Lock()
				delete(l.held, key)
				l.mu.Unlock()
			}, nil
		}
		l.mu.Unlock()

		if attempt >= l.tries {
			return nil, store.ErrConcurrentEdit
		}
		select {
		case <-ctx.Done():
			return nil, store.ErrConcurrentEdit
		case <-time.After(l.wait):
		}
	}
}

// Redis is a best-effort distributed Locker. When redis itself fails the
// edit proceeds unlocked with a warning, so an outage never blocks writes.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, log logrus.FieldLogger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Redis{client: redislock.New(client), ttl: ttl, log: log.WithField("component", "lock")}
}

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	lk, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 10),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, store.ErrConcurrentEdit
	}
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("error obtaining redis lock; proceeding without lock")
		return func() {}, nil
	}

	return func() {
		// The request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.log.WithError(err).WithField("key", key).Warn("failed to release redis lock")
		}
	}, nil
}
