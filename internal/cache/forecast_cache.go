package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/datalyr/foresight-go/internal/forecast"
)

// ForecastCacheEntry is the Redis envelope for a cached forecast result.
type ForecastCacheEntry struct {
	// Fingerprint identifies the exact input the result was computed from.
	Fingerprint string `json:"fingerprint"`
	// Method is the forecasting method that produced the result.
	Method string `json:"method"`
	// Result is the serialized forecast result.
	Result json.RawMessage `json:"result"`
	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time `json:"expires_at"`
}

// ForecastCacheStats holds statistics about the forecast cache.
type ForecastCacheStats struct {
	// Hits is the number of successful lookups across both tiers.
	Hits int64 `json:"hits"`
	// HotHits is the subset of hits served from the in-process LRU tier.
	HotHits int64 `json:"hot_hits"`
	// Misses is the number of failed lookups.
	Misses int64 `json:"misses"`
	// Sets is the number of entries stored.
	Sets int64 `json:"sets"`
	// Expired is the number of entries dropped because their TTL passed.
	Expired int64 `json:"expired"`
	// HotEntries is the current number of entries in the LRU tier.
	HotEntries int `json:"hot_entries"`
}

// hotEntry is an LRU tier entry. Results are treated as immutable once
// cached; callers must not modify what Get returns.
type hotEntry struct {
	result    *forecast.Result
	expiresAt time.Time
}

// ForecastCache caches forecast results keyed by input fingerprint. Lookups
// go through an in-process LRU tier first and fall back to Redis, so repeat
// requests skip recomputation even across process restarts. The Redis client
// may be nil, in which case only the LRU tier is used.
type ForecastCache struct {
	hot    *lru.Cache[string, hotEntry]
	redis  redis.Cmdable
	ttl    time.Duration
	prefix string
	stats  ForecastCacheStats
	mu     sync.RWMutex
}

// NewForecastCache creates a two-tier forecast cache.
//
// Parameters:
//
//	client: The Redis client interface, nil for LRU-only operation.
//	ttl: How long cached results stay valid.
//	hotSize: Capacity of the in-process LRU tier.
//	prefix: Key prefix for Redis entries.
//
// Returns:
//
//	*ForecastCache: The initialized cache.
//	error: Error if the LRU tier cannot be created.
func NewForecastCache(client redis.Cmdable, ttl time.Duration, hotSize int, prefix string) (*ForecastCache, error) {
	hot, err := lru.New[string, hotEntry](hotSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU tier: %w", err)
	}

	return &ForecastCache{
		hot:    hot,
		redis:  client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

// Get retrieves a cached forecast result by fingerprint.
//
// Parameters:
//
//	ctx: Context.
//	fingerprint: Input fingerprint of the forecast request.
//
// Returns:
//
//	*forecast.Result: The cached result.
//	bool: True on a cache hit.
func (c *ForecastCache) Get(ctx context.Context, fingerprint string) (*forecast.Result, bool) {
	if entry, ok := c.hot.Get(fingerprint); ok {
		if time.Now().Before(entry.expiresAt) {
			c.mu.Lock()
			c.stats.Hits++
			c.stats.HotHits++
			c.mu.Unlock()
			return entry.result, true
		}
		c.hot.Remove(fingerprint)
		c.mu.Lock()
		c.stats.Expired++
		c.mu.Unlock()
	}

	if c.redis == nil {
		c.recordMiss()
		return nil, false
	}

	key := c.prefix + fingerprint
	data, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		c.recordMiss()
		return nil, false
	}
	if err != nil {
		log.Printf("Redis error getting forecast %s: %v", fingerprint, err)
		c.recordMiss()
		return nil, false
	}

	var entry ForecastCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		log.Printf("Error deserializing cached forecast %s: %v", fingerprint, err)
		c.recordMiss()
		return nil, false
	}

	// Check expiry beyond the Redis TTL; clocks and TTL rounding can disagree.
	if time.Now().After(entry.ExpiresAt) {
		c.redis.Del(ctx, key)
		c.mu.Lock()
		c.stats.Expired++
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}

	var result forecast.Result
	if err := json.Unmarshal(entry.Result, &result); err != nil {
		log.Printf("Error deserializing forecast result %s: %v", fingerprint, err)
		c.recordMiss()
		return nil, false
	}

	// Promote to the LRU tier for subsequent lookups.
	c.hot.Add(fingerprint, hotEntry{result: &result, expiresAt: entry.ExpiresAt})

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return &result, true
}

// Set stores a forecast result under its fingerprint in both tiers.
//
// Parameters:
//
//	ctx: Context.
//	fingerprint: Input fingerprint of the forecast request.
//	result: Forecast result to cache.
func (c *ForecastCache) Set(ctx context.Context, fingerprint string, result *forecast.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("Error serializing forecast %s: %v", fingerprint, err)
		return
	}

	now := time.Now()
	entry := ForecastCacheEntry{
		Fingerprint: fingerprint,
		Method:      string(result.Method),
		Result:      payload,
		CachedAt:    now,
		ExpiresAt:   now.Add(c.ttl),
	}

	c.hot.Add(fingerprint, hotEntry{result: result, expiresAt: entry.ExpiresAt})

	if c.redis != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("Error serializing cache entry %s: %v", fingerprint, err)
			return
		}
		if err := c.redis.Set(ctx, c.prefix+fingerprint, data, c.ttl).Err(); err != nil {
			log.Printf("Redis error setting forecast %s: %v", fingerprint, err)
		}
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()

	log.Printf("Cached forecast %s (method: %s, TTL: %v)", fingerprint, result.Method, c.ttl)
}

// Clear removes all cached forecasts from both tiers.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	error: Error if scanning or deleting Redis keys fails.
func (c *ForecastCache) Clear(ctx context.Context) error {
	c.hot.Purge()

	if c.redis == nil {
		return nil
	}

	pattern := c.prefix + "*"
	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}

	log.Printf("Cleared %d forecast cache entries", len(keys))
	return nil
}

// GetStats returns current cache statistics.
//
// Returns:
//
//	ForecastCacheStats: The current statistics.
func (c *ForecastCache) GetStats() ForecastCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.HotEntries = c.hot.Len()
	return stats
}

// LogStats logs current cache performance statistics.
func (c *ForecastCache) LogStats() {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}

	log.Printf("Forecast Cache Stats - Hits: %d (hot: %d), Misses: %d, Sets: %d, Expired: %d, Hit Rate: %.2f%%",
		stats.Hits, stats.HotHits, stats.Misses, stats.Sets, stats.Expired, hitRate)
}

// Close releases the LRU tier. The Redis client is managed externally.
//
// Returns:
//
//	error: Always nil.
func (c *ForecastCache) Close() error {
	c.hot.Purge()
	return nil
}

func (c *ForecastCache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
