// Package ratelimit implements a sliding-window admission gate.
//
// A Limiter counts the attempts recorded for a key inside the trailing window
// and refuses once the limit is reached. Refused attempts are not recorded.
// History lives in a Store, so the same limiter can run against process memory
// or a shared Redis instance.
package ratelimit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
)

// Store keeps per-key attempt history.
type Store interface {
	// Get returns the recorded timestamps for key in ascending order.
	Get(ctx context.Context, key string) ([]time.Time, error)
	// Set replaces the history for key. ttl is a hint for how long the
	// history stays relevant.
	Set(ctx context.Context, key string, history []time.Time, ttl time.Duration) error
	// Prune drops timestamps at or before cutoff.
	Prune(ctx context.Context, key string, cutoff time.Time) error
}

// Locker is implemented by stores shared between processes. The limiter holds
// the returned lock around each check-and-record.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

const stripes = 64

// Limiter serializes check-and-record per key and delegates storage to a Store.
type Limiter struct {
	store Store
	now   func() time.Time
	mu    [stripes]sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a Limiter backed by store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.mu[h.Sum32()%stripes]
}

// Check admits one attempt for key if fewer than limit attempts were recorded
// within (now-window, now]. Otherwise it returns common.ErrRateLimitExceeded
// and records nothing.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return fmt.Errorf("ratelimit: invalid limit %d per %s", limit, window)
	}

	m := l.stripe(key)
	m.Lock()
	defer m.Unlock()

	if locker, ok := l.store.(Locker); ok {
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("ratelimit: lock %q: %w", key, err)
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}

	now := l.now()
	cutoff := now.Add(-window)

	if err := l.store.Prune(ctx, key, cutoff); err != nil {
		return fmt.Errorf("ratelimit: prune %q: %w", key, err)
	}
	history, err := l.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("ratelimit: get %q: %w", key, err)
	}

	recent := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= limit {
		return common.ErrRateLimitExceeded
	}

	recent = append(recent, now)
	if err := l.store.Set(ctx, key, recent, window); err != nil {
		return fmt.Errorf("ratelimit: record %q: %w", key, err)
	}
	return nil
}

// Key joins a client address and an action scope into a limiter key.
func Key(clientIP, scope string) string {
	return clientIP + ":" + scope
}
