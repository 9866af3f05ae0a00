// Package cache backs the auth gate's profile lookups with either an
// in-process TTL map or redis.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte cache whose entries share one TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// DefaultMaxEntries bounds Memory when no explicit cap is given.
const DefaultMaxEntries = 10_000

// Memory is an in-process TTL map for single-instance deployments. Expired
// entries are dropped lazily on Get and swept when the map reaches its cap.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry
	now        func() time.Time
}

type entry struct {
	val       []byte
	expiresAt time.Time
}

func New(ttl time.Duration) *Memory {
	return NewBounded(ttl, DefaultMaxEntries)
}

func NewBounded(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
		now:        time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}

	return e.val, true, nil
}

func (c *Memory) Set(_ context.Context, key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
	}

	c.entries[key] = entry{val: val, expiresAt: now.Add(c.ttl)}

	return nil
}

// Len reports the number of entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweepLocked drops expired entries, and if the map is still full, the
// entry closest to expiry.
func (c *Memory) sweepLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.expiresAt
		}
	}

	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
