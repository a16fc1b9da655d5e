package locker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Locker hands out best-effort exclusive leases keyed by name. release is
// always safe to call; it is a no-op when the lease was not acquired.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return func() {}, false, err
	}
	if !ok {
		return func() {}, false, nil
	}
	release := func() {
		// Detached from ctx so a cancelled request still frees the lease.
		releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
	}
	return release, true, nil
}

// LocalLocker is an in-process Locker over go-cache. Used when Redis is
// not reachable and in tests. mu makes the owner check and delete on
// release atomic with respect to Acquire.
type LocalLocker struct {
	mu    sync.Mutex
	store *cache.Cache
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{store: cache.New(10*time.Minute, time.Minute)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()

	l.mu.Lock()
	err := l.store.Add(key, token, ttl)
	l.mu.Unlock()
	if err != nil {
		return func() {}, false, nil
	}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if current, found := l.store.Get(key); found && current == token {
			l.store.Delete(key)
		}
	}
	return release, true, nil
}

// FallbackLocker tries the primary locker and degrades to the secondary
// when the primary errors (e.g. Redis down).
type FallbackLocker struct {
	primary   Locker
	secondary Locker
	onError   func(err error)
}

func NewFallbackLocker(primary, secondary Locker, onError func(err error)) *FallbackLocker {
	return &FallbackLocker{primary: primary, secondary: secondary, onError: onError}
}

func (l *FallbackLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	release, ok, err := l.primary.Acquire(ctx, key, ttl)
	if err == nil {
		return release, ok, nil
	}
	if l.onError != nil {
		l.onError(err)
	}
	return l.secondary.Acquire(ctx, key, ttl)
}
