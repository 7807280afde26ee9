// Package lock provides exclusive sections keyed by string. Services use them to
// serialize check-then-insert sequences and aggregate recomputes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker acquires an exclusive section for key. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker serializes callers within one process. An entry lives only while
// some caller holds or waits for its key.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

type keyMutex struct {
	sync.Mutex
	refs int
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyMutex)}
}

// Lock blocks until key is free.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &keyMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			l.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}, nil
}

// held reports how many keys currently have an entry.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes callers across processes sharing one redis.
// A lease expires after TTL so a crashed holder cannot block others forever.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker creates a RedisLocker with the given lease.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		prefix: "lock:",
		ttl:    ttl,
		retry:  25 * time.Millisecond,
	}
}

// Lock polls SETNX until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.New().String()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	return func() {
		// The caller's context may already be cancelled; release regardless.
		err := releaseScript.Run(context.Background(), l.rdb, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}
