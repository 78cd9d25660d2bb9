package waveform

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis defaults
const (
	DefaultRedisPrefix = "pulseprint:waveform:"
	DefaultRedisTTL    = 24 * time.Hour
)

// RedisOptions are redis options
type RedisOptions struct {
	Addr     string        `toml:"addr"`
	DB       int           `toml:"db"`
	Password string        `toml:"password"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// RedisCache stores waveforms as JSON in redis
type RedisCache struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a new redis cache
func NewRedisCache(c *redis.Client, o RedisOptions) *RedisCache {
	r := &RedisCache{
		c:      c,
		prefix: o.Prefix,
		ttl:    o.TTL,
	}
	if r.prefix == "" {
		r.prefix = DefaultRedisPrefix
	}
	if r.ttl <= 0 {
		r.ttl = DefaultRedisTTL
	}
	return r
}

// Close implements the io.Closer interface
func (c *RedisCache) Close() error {
	return c.c.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (w Waveform, ok bool, err error) {
	// Get
	var b []byte
	if b, err = c.c.Get(ctx, c.prefix+key).Bytes(); err != nil {
		if err == redis.Nil {
			err = nil
			return
		}
		err = errors.Wrapf(err, "waveform: getting %s from redis failed", key)
		return
	}

	// Unmarshal
	if err = json.Unmarshal(b, &w); err != nil {
		err = errors.Wrapf(err, "waveform: unmarshaling %s failed", key)
		return
	}
	ok = true
	return
}

func (c *RedisCache) Set(ctx context.Context, key string, w Waveform) (err error) {
	// Marshal
	var b []byte
	if b, err = json.Marshal(w); err != nil {
		err = errors.Wrapf(err, "waveform: marshaling %s failed", key)
		return
	}

	// Set
	if err = c.c.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		err = errors.Wrapf(err, "waveform: setting %s in redis failed", key)
		return
	}
	return
}
