package cache

import (
	"context"
	"sync"
	"time"

	repo "storefront/internal/repository"
)

type memoryEntry struct {
	value     repo.CachedRole
	expiresAt time.Time
}

// プロセス内のロールキャッシュ。REDIS_ADDRが無いとき用。
type MemoryRoleCache struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryRoleCache) Get(_ context.Context, userID int64) (repo.CachedRole, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return repo.CachedRole{}, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, userID)
		return repo.CachedRole{}, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryRoleCache) Set(_ context.Context, userID int64, v repo.CachedRole, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = memoryEntry{value: v, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryRoleCache) Invalidate(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
	return nil
}
