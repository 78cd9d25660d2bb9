package waveform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultMaxEntries is the default memory cache capacity
const DefaultMaxEntries = 32

// Cache stores waveforms indexed by the hash of their wav bytes
type Cache interface {
	Get(ctx context.Context, key string) (Waveform, bool, error)
	Set(ctx context.Context, key string, w Waveform) error
}

// CacheOptions are cache options
type CacheOptions struct {
	MaxEntries int          `toml:"max_entries"`
	Redis      RedisOptions `toml:"redis"`
}

var newRedisClient = redis.NewClient

// NewCache creates a redis cache when a redis address is provided, a memory cache otherwise
func NewCache(ctx context.Context, o CacheOptions) (c Cache, err error) {
	// Memory
	if o.Redis.Addr == "" {
		c = NewMemoryCache(o.MaxEntries)
		return
	}

	// Create client
	rc := newRedisClient(&redis.Options{
		Addr:     o.Redis.Addr,
		DB:       o.Redis.DB,
		Password: o.Redis.Password,
	})

	// Ping
	if err = rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		err = errors.Wrapf(err, "waveform: pinging redis at %s failed", o.Redis.Addr)
		return
	}
	c = NewRedisCache(rc, o.Redis)
	return
}

// Key returns the cache key of wav bytes
func Key(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// MemoryCache is a bounded in-process cache. The oldest entry is evicted first.
type MemoryCache struct {
	ks  []string
	m   *sync.Mutex // Locks ks and ws
	max int
	ws  map[string]Waveform
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		m:   &sync.Mutex{},
		max: maxEntries,
		ws:  make(map[string]Waveform),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (w Waveform, ok bool, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	w, ok = c.ws[key]
	return
}

func (c *MemoryCache) Set(_ context.Context, key string, w Waveform) error {
	c.m.Lock()
	defer c.m.Unlock()

	// Key already exists
	if _, ok := c.ws[key]; ok {
		c.ws[key] = w
		return nil
	}

	// Evict
	for len(c.ks) >= c.max {
		delete(c.ws, c.ks[0])
		c.ks = c.ks[1:]
	}

	// Add
	c.ks = append(c.ks, key)
	c.ws[key] = w
	return nil
}

// Len returns the number of cached waveforms
func (c *MemoryCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.ws)
}
