package ratelimit

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxKeys bounds the number of distinct keys a MemoryStore tracks.
const DefaultMaxKeys = 500

// MemoryStore keeps history in process memory. Once more than maxKeys keys
// are tracked an older key is evicted; callers must not rely on which one.
type MemoryStore struct {
	cache *lru.Cache[string, []time.Time]
}

// NewMemoryStore returns a store capped at maxKeys (DefaultMaxKeys if <= 0).
func NewMemoryStore(maxKeys int) (*MemoryStore, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	cache, err := lru.New[string, []time.Time](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]time.Time, error) {
	history, ok := s.cache.Peek(key)
	if !ok {
		return nil, nil
	}
	out := make([]time.Time, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, history []time.Time, _ time.Duration) error {
	stored := make([]time.Time, len(history))
	copy(stored, history)
	s.cache.Add(key, stored)
	return nil
}

func (s *MemoryStore) Prune(_ context.Context, key string, cutoff time.Time) error {
	history, ok := s.cache.Peek(key)
	if !ok {
		return nil
	}
	kept := history[:0:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		s.cache.Remove(key)
		return nil
	}
	if len(kept) != len(history) {
		s.cache.Add(key, kept)
	}
	return nil
}

// Len reports how many keys are tracked.
func (s *MemoryStore) Len() int { return s.cache.Len() }
