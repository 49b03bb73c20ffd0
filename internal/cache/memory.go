package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nugrahasurya/greenflights/internal/models"
)

type memoryEntry struct {
	data      []byte
	timestamp time.Time
}

// MemoryCache is the default backend: a map with lazy expiry, checked on
// read rather than swept. Entry count is bounded by distinct recent search
// fingerprints, so no eviction beyond TTL is needed.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	key := Fingerprint(req)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(entry.data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *MemoryCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[Fingerprint(req)] = memoryEntry{data: data, timestamp: c.now()}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
