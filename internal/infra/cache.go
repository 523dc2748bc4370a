// Package infra provides shared infrastructure components used across
// the engine: the result cache, per-source rate limiting and logging.
package infra

import (
	"hash/fnv"
	"sync"
	"time"
)

// Op names the kind of cached result. Each Op has its own TTL.
type Op string

const (
	OpSnapshot Op = "snapshot"
	OpChart    Op = "chart"
)

// Key identifies a cached result.
type Key struct {
	Op     Op
	Symbol string
	Params string
}

// String renders the key as "op:symbol:params".
func (k Key) String() string {
	return string(k.Op) + ":" + k.Symbol + ":" + k.Params
}

// Clock returns the current time. Tests substitute a fake one.
type Clock func() time.Time

const defaultShards = 32

// entry holds a cached value and the time it was stored.
type entry struct {
	value      any
	insertedAt time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[Key]entry
}

// Cache is a sharded in-memory TTL cache. Lookups on distinct keys only
// contend when they hash to the same shard. Expired entries are removed
// lazily on Get or by an explicit Cleanup; there is no background janitor.
type Cache struct {
	shards     []*shard
	ttls       map[Op]time.Duration
	defaultTTL time.Duration
	now        Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.now = clock }
}

// WithTTL sets the TTL for one operation.
func WithTTL(op Op, ttl time.Duration) Option {
	return func(c *Cache) { c.ttls[op] = ttl }
}

// WithShards sets the number of shards. Values below 1 are ignored.
func WithShards(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.shards = make([]*shard, n)
		}
	}
}

// NewCache creates a cache whose entries live for defaultTTL unless the
// key's Op has its own TTL.
func NewCache(defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		shards:     make([]*shard, defaultShards),
		ttls:       make(map[Op]time.Duration),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[Key]entry)}
	}
	return c
}

// TTL returns the time-to-live applied to op.
func (c *Cache) TTL(op Op) time.Duration {
	if ttl, ok := c.ttls[op]; ok {
		return ttl
	}
	return c.defaultTTL
}

// Get returns the value stored under key. An expired entry is deleted and
// reported as a miss.
func (c *Cache) Get(key Key) (any, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) < c.TTL(key.Op) {
		return e.value, true
	}

	s.mu.Lock()
	// A concurrent Put may have refreshed the entry since the read.
	if cur, ok := s.entries[key]; ok && cur.insertedAt.Equal(e.insertedAt) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil, false
}

// Put stores value under key. The last write wins.
func (c *Cache) Put(key Key, value any) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.entries[key] = entry{value: value, insertedAt: c.now()}
	s.mu.Unlock()
}

// Invalidate removes key from the cache.
func (c *Cache) Invalidate(key Key) {
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[Key]entry)
		s.mu.Unlock()
	}
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache) Cleanup() int {
	now := c.now()
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if now.Sub(e.insertedAt) >= c.TTL(k.Op) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

func (c *Cache) shardFor(key Key) *shard {
	h := fnv.New32a()
	h.Write([]byte(key.String()))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}
