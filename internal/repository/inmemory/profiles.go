package inmemory

import (
	"sync"
	"time"

	profilesdomain "telicommunity-go/internal/domain/profiles"
)

type ProfileCache struct {
	mu    sync.RWMutex
	items map[string]profileItem
	now   func() time.Time
}

type profileItem struct {
	value     profilesdomain.Profile
	expiresAt time.Time
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{
		items: make(map[string]profileItem),
		now:   time.Now,
	}
}

func (c *ProfileCache) Get(userID string) (*profilesdomain.Profile, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *ProfileCache) Set(userID string, profile *profilesdomain.Profile, ttl time.Duration) {
	if profile == nil || ttl <= 0 {
		c.Delete(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = profileItem{
		value:     *profile,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *ProfileCache) Delete(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}
