package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheEntry struct {
	Value  []byte
	Expiry time.Time
}

// TrackingCache is an in-process stand-in for Redis that counts hits and writes.
type TrackingCache struct {
	mu       sync.Mutex
	data     map[string]CacheEntry
	Hits     int
	SetCalls int
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{
		data: make(map[string]CacheEntry),
	}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	entry, exists := c.data[key]
	if exists && time.Now().Before(entry.Expiry) {
		c.Hits++
	}
	c.mu.Unlock()

	if !exists || !time.Now().Before(entry.Expiry) {
		return redis.Nil
	}
	return json.Unmarshal(entry.Value, dest)
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	c.data[key] = CacheEntry{Value: b, Expiry: time.Now().Add(exp)}
	return nil
}

func (c *TrackingCache) Close() error {
	return nil
}

func (c *TrackingCache) Stats() (hits, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Hits, c.SetCalls
}
