package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WriteLock serializes read-modify-write cycles on the record store.
type WriteLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalWriteLock serializes writers inside one process.
type LocalWriteLock struct {
	ch chan struct{}
}

func NewLocalWriteLock() *LocalWriteLock {
	return &LocalWriteLock{ch: make(chan struct{}, 1)}
}

func (l *LocalWriteLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-l.ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisWriteLock serializes writers across processes sharing one Redis.
type RedisWriteLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisWriteLock(client *redis.Client, key string) *RedisWriteLock {
	return &RedisWriteLock{
		client: client,
		key:    key,
		ttl:    30 * time.Second,
		poll:   100 * time.Millisecond,
	}
}

func (l *RedisWriteLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire write lock %s: %w", l.key, err)
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// The caller's context may already be cancelled.
					if err := releaseScript.Run(context.Background(), l.client, []string{l.key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
						log.Printf("Warning: failed to release write lock %s: %v", l.key, err)
					}
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
