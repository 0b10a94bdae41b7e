package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appbilling "github.com/schoolpay/backend/internal/application/billing"
	"github.com/schoolpay/backend/internal/domain/billing"
)

// statsEntry holds a cached stats value with its expiration time.
type statsEntry struct {
	stats     billing.FeeStats
	expiresAt time.Time
}

// InMemoryStatsCache implements StatsCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	entries   map[string]statsEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStatsCache creates a new in-memory stats cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryStatsCache() *InMemoryStatsCache {
	c := &InMemoryStatsCache{
		entries:  make(map[string]statsEntry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached stats for a key, or false when absent or expired
func (c *InMemoryStatsCache) Get(ctx context.Context, key string) (*billing.FeeStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		return nil, false // Expired, treat as a miss
	}

	stats := e.stats
	return &stats, true
}

// Set stores stats under a key with a TTL
func (c *InMemoryStatsCache) Set(ctx context.Context, key string, stats *billing.FeeStats, ttl time.Duration) {
	if stats == nil || ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = statsEntry{
		stats:     *stats,
		expiresAt: time.Now().Add(ttl),
	}
}

// InvalidateSchool removes every cached stats entry belonging to a school
func (c *InMemoryStatsCache) InvalidateSchool(ctx context.Context, schoolID uuid.UUID) {
	prefix := appbilling.StatsCacheSchoolPrefix(schoolID)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryStatsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryStatsCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryStatsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryStatsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryStatsCache implements StatsCache
var _ appbilling.StatsCache = (*InMemoryStatsCache)(nil)
