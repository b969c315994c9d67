package cache

import (
	"context"
	"sync"
	"time"

	"storeledger/backend/internal/domain"
)

// MemoryStatisticsCache is a process-local cache for single instance
// deployments and tests.
type MemoryStatisticsCache struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	generations map[int64]int64
	now         func() time.Time
}

type memoryEntry struct {
	value     domain.Statistics
	expiresAt time.Time
}

func NewMemoryStatisticsCache() *MemoryStatisticsCache {
	return &MemoryStatisticsCache{
		entries:     make(map[string]memoryEntry),
		generations: make(map[int64]int64),
		now:         time.Now,
	}
}

func (c *MemoryStatisticsCache) Get(_ context.Context, key string) (*domain.Statistics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *MemoryStatisticsCache) Set(_ context.Context, key string, value *domain.Statistics, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)
	entry := memoryEntry{value: *value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

// sweep drops expired entries. Keys of an old generation are never read
// again, so expiry on Get alone would keep them forever.
func (c *MemoryStatisticsCache) sweep(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryStatisticsCache) Generation(_ context.Context, storeID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[storeID], nil
}

func (c *MemoryStatisticsCache) Bump(_ context.Context, storeID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[storeID]++
	return nil
}
