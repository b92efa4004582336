package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func lockers(t *testing.T) map[string]Locker {
	_, client := setupTestRedis(t)
	return map[string]Locker{
		"redis": NewRedisLocker(client, Options{Expiry: 2 * time.Second, Tries: 50, RetryDelay: 10 * time.Millisecond}),
		"local": NewLocalLocker(),
	}
}

func TestWithLocks_RunsFunction(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			executed := false
			err := l.WithLocks(context.Background(), []string{"lock:spp:a", "lock:spp:b"}, func(context.Context) error {
				executed = true
				return nil
			})

			require.NoError(t, err)
			assert.True(t, executed)
		})
	}
}

func TestWithLocks_PropagatesError(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			err := l.WithLocks(context.Background(), []string{"lock:spp:a"}, func(context.Context) error {
				return assert.AnError
			})

			assert.ErrorIs(t, err, assert.AnError)
		})
	}
}

func TestWithLocks_RejectsBadInput(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			err := l.WithLocks(context.Background(), []string{"ok", " "}, func(context.Context) error { return nil })
			assert.ErrorIs(t, err, ErrEmptyKey)

			err = l.WithLocks(context.Background(), []string{"ok"}, nil)
			assert.ErrorIs(t, err, ErrNilFn)
		})
	}
}

func TestWithLocks_MutualExclusion(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var inside, maxInside atomic.Int32
			var wg sync.WaitGroup

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					// Overlapping key sets in different orders.
					keys := []string{"lock:spp:x", "lock:spp:y"}
					if i%2 == 0 {
						keys = []string{"lock:spp:y", "lock:spp:x"}
					}
					err := l.WithLocks(context.Background(), keys, func(context.Context) error {
						n := inside.Add(1)
						for {
							m := maxInside.Load()
							if n <= m || maxInside.CompareAndSwap(m, n) {
								break
							}
						}
						time.Sleep(5 * time.Millisecond)
						inside.Add(-1)
						return nil
					})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			assert.Equal(t, int32(1), maxInside.Load(), "critical section must never run concurrently")
		})
	}
}

func TestLocalLocker_WaiterHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = l.WithLocks(context.Background(), []string{"lock:spp:a", "lock:spp:b"}, func(context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	ran := false
	err := l.WithLocks(ctx, []string{"lock:spp:b"}, func(context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
	assert.Less(t, time.Since(start), time.Second, "waiter must not block until the holder finishes")

	close(done)
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return len(l.locks) == 0
	}, time.Second, 5*time.Millisecond, "abandoned wait must not leak a key")

	err = l.WithLocks(context.Background(), []string{"lock:spp:b"}, func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestRedisLocker_ReleasesKeys(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedisLocker(client, DefaultOptions())

	err := l.WithLocks(context.Background(), []string{"lock:spp:released"}, func(context.Context) error {
		assert.True(t, mr.Exists("lock:spp:released"), "key should exist while held")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:spp:released"), "key should be deleted after release")
}

func TestNormalizeKeys(t *testing.T) {
	keys, err := normalizeKeys([]string{"c", "a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
