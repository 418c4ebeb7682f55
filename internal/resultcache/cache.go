// Package resultcache stores the most recent analysis result per wallet
// address for a bounded time window, so repeat lookups skip the upstream
// fetch and generation cycle. Only successful analyses are cached; failed
// lookups are never stored.
package resultcache

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/storage"
)

// DefaultTTL is how long an entry stays servable unless Set overrides it.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "result_"

// entry is the persisted envelope. An entry is valid while now-ts < ttl;
// expired entries are deleted on the next read.
type entry struct {
	Timestamp  int64           `json:"ts"`            // unix seconds
	TTLSeconds int64           `json:"ttl,omitempty"` // 0 means the cache default
	Result     json.RawMessage `json:"result"`
}

// Cache is a TTL cache keyed case-insensitively by wallet address.
type Cache struct {
	store  storage.Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a Cache over store. ttl <= 0 falls back to DefaultTTL.
func New(store storage.Store, ttl time.Duration, logger *zap.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for address, or false when there is none.
// Expired entries are deleted before reporting a miss; store errors and
// malformed payloads also read as misses.
func (c *Cache) Get(address string) (json.RawMessage, bool) {
	key := c.key(address)

	payload, ok, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(payload, &e); err != nil {
		c.logger.Warn("discarding malformed cache entry", zap.String("key", key), zap.Error(err))
		c.delete(key)
		return nil, false
	}

	ttl := int64(c.ttl / time.Second)
	if e.TTLSeconds > 0 {
		ttl = e.TTLSeconds
	}
	if c.now().Unix()-e.Timestamp >= ttl {
		c.delete(key)
		return nil, false
	}
	return e.Result, true
}

// Set stores result under address with the cache's default TTL, overwriting
// any existing entry. Write failures are logged and swallowed so a broken
// store never fails the surrounding analysis.
func (c *Cache) Set(address string, result any) {
	c.SetWithTTL(address, result, c.ttl)
}

// SetWithTTL is Set with a per-call TTL override. ttl <= 0 stores the entry
// with the cache default.
func (c *Cache) SetWithTTL(address string, result any, ttl time.Duration) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", zap.Error(err))
		return
	}

	var ttlSeconds int64
	if ttl > 0 && ttl != c.ttl {
		ttlSeconds = int64(ttl / time.Second)
	}

	payload, err := json.Marshal(entry{Timestamp: c.now().Unix(), TTLSeconds: ttlSeconds, Result: raw})
	if err != nil {
		c.logger.Warn("failed to encode cache entry", zap.Error(err))
		return
	}
	if err := c.store.Set(c.key(address), payload); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
}

func (c *Cache) delete(key string) {
	if err := c.store.Delete(key); err != nil {
		c.logger.Warn("failed to delete stale cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) key(address string) string {
	return keyPrefix + strings.ToLower(address)
}
