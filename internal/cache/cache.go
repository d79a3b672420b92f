package cache

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how stale a membership answer can be when a reader
// races a mutation in another process. Same-process mutations invalidate
// explicitly and never wait out the TTL.
const DefaultTTL = 60 * time.Second

const sweepInterval = 5 * time.Minute

type entry struct {
	value     bool
	expiresAt time.Time
}

// Cache memoizes boolean membership lookups. Two concurrent misses may
// both compute; the computes are cheap idempotent reads so that is fine.
type Cache struct {
	entries map[string]entry
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func New() *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries: make(map[string]entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the background sweep. Lookups self-invalidate on read,
// so the sweep only bounds memory growth.
func (c *Cache) Start() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Cache) Stop() {
	c.cancel()
}

func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() (bool, error)) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Now().Before(e.expiresAt) {
		return e.value, nil
	}

	value, err := compute()

	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	return value, nil
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePattern removes every entry whose key starts with prefix.
// Mutation paths use it to drop all cached answers for a team or user
// in one call.
func (c *Cache) InvalidatePattern(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("Membership cache sweep removed %d expired entries", removed)
	}
}

// Global cache instance
var globalCache *Cache

// Initialize creates and starts the global cache
func Initialize() {
	globalCache = New()
	globalCache.Start()
}

// Shutdown stops the global cache
func Shutdown() {
	if globalCache != nil {
		globalCache.Stop()
	}
}

func GetOrCompute(key string, ttl time.Duration, compute func() (bool, error)) (bool, error) {
	if globalCache == nil {
		return compute()
	}
	return globalCache.GetOrCompute(key, ttl, compute)
}

func Invalidate(key string) {
	if globalCache != nil {
		globalCache.Invalidate(key)
	}
}

func InvalidatePattern(prefix string) {
	if globalCache != nil {
		globalCache.InvalidatePattern(prefix)
	}
}
