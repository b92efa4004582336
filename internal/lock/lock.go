// Package lock provides keyed advisory locks used to serialize SPP payment
// creation per student. RedisLocker coordinates across API instances with the
// RedLock algorithm; LocalLocker only protects a single process.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"bendahara/internal/logger"
)

var (
	// ErrEmptyKey is returned when a blank lock key is requested.
	ErrEmptyKey = errors.New("lock key cannot be empty")
	// ErrNilFn is returned when WithLocks is called without a function.
	ErrNilFn = errors.New("lock function is nil")
)

// Locker runs fn while holding every key. Keys are deduplicated and acquired
// in sorted order so two callers with overlapping key sets cannot deadlock.
type Locker interface {
	WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// Options tunes RedisLocker.
type Options struct {
	// Expiry is how long a key is held before auto-expiring.
	Expiry time.Duration
	// Tries is the number of acquisition attempts per key.
	Tries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultOptions suits request-scoped critical sections that finish within a
// couple of datastore round trips.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      20,
		RetryDelay: 100 * time.Millisecond,
	}
}

// RedisLocker implements Locker on top of redsync.
type RedisLocker struct {
	rs   *redsync.Redsync
	opts Options
}

// NewRedisLocker creates a RedisLocker backed by client.
func NewRedisLocker(client redis.UniversalClient, opts Options) *RedisLocker {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultOptions().Expiry
	}
	if opts.Tries < 1 {
		opts.Tries = DefaultOptions().Tries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = DefaultOptions().RetryDelay
	}
	return &RedisLocker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// WithLocks implements Locker.
func (l *RedisLocker) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	ordered, err := normalizeKeys(keys)
	if err != nil {
		return err
	}

	held := make([]*redsync.Mutex, 0, len(ordered))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			if ok, err := held[i].UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
				logger.Get().Warnw("failed to release lock", "key", held[i].Name(), "error", err)
			}
		}
	}()

	for _, key := range ordered {
		mutex := l.rs.NewMutex(key,
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)
		if err := mutex.LockContext(ctx); err != nil {
			logger.Get().Warnw("failed to acquire lock", "key", key, "error", err)
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		held = append(held, mutex)
	}

	return fn(ctx)
}

// LocalLocker implements Locker with in-process mutexes. It is used when no
// Redis address is configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

// refMutex is a one-slot channel so a waiter can give up when its context ends.
type refMutex struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*refMutex)}
}

// WithLocks implements Locker. A caller blocked on a held key returns
// ctx.Err() once its context is done.
func (l *LocalLocker) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	ordered, err := normalizeKeys(keys)
	if err != nil {
		return err
	}

	for _, key := range ordered {
		m := l.acquireRef(key)
		select {
		case m.ch <- struct{}{}:
			defer l.unlock(key, m)
		case <-ctx.Done():
			l.dropRef(key, m)
			return ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (l *LocalLocker) acquireRef(key string) *refMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{ch: make(chan struct{}, 1)}
		l.locks[key] = m
	}
	m.refs++
	return m
}

func (l *LocalLocker) unlock(key string, m *refMutex) {
	<-m.ch
	l.dropRef(key, m)
}

func (l *LocalLocker) dropRef(key string, m *refMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.locks, key)
	}
}

func normalizeKeys(keys []string) ([]string, error) {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return nil, ErrEmptyKey
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
