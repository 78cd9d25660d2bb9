package waveform

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Key(nil))
	assert.NotEqual(t, Key([]byte("a")), Key([]byte("b")))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_, ok, err := c.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "1", Waveform{Duration: 1}))
	require.NoError(t, c.Set(ctx, "2", Waveform{Duration: 2}))
	require.NoError(t, c.Set(ctx, "2", Waveform{Duration: 2.5}))
	assert.Equal(t, 2, c.Len())

	w, ok, err := c.Get(ctx, "2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, w.Duration)

	// Oldest is evicted
	require.NoError(t, c.Set(ctx, "3", Waveform{Duration: 3}))
	assert.Equal(t, 2, c.Len())
	_, ok, _ = c.Get(ctx, "1")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "3")
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, RedisOptions{})
	k := DefaultRedisPrefix + "key"
	w := Waveform{Duration: 1.5, Points: []Point{{X: 0, Y: 0.25}}, SampleRate: 22050}
	b, err := json.Marshal(w)
	require.NoError(t, err)

	// Miss
	mock.ExpectGet(k).RedisNil()
	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	// Set
	mock.ExpectSet(k, b, DefaultRedisTTL).SetVal("OK")
	require.NoError(t, c.Set(ctx, "key", w))

	// Hit
	mock.ExpectGet(k).SetVal(string(b))
	got, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, w, got)

	// Failure
	mock.ExpectGet(k).SetErr(errors.New("connection refused"))
	_, _, err = c.Get(ctx, "key")
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheOptions(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, RedisOptions{Prefix: "test:", TTL: 10})
	mock.ExpectGet("test:key").RedisNil()
	_, _, err := c.Get(context.Background(), "key")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCacheMemory(t *testing.T) {
	c, err := NewCache(context.Background(), CacheOptions{})
	require.NoError(t, err)
	m, ok := c.(*MemoryCache)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxEntries, m.max)
}

func TestNewCacheRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	var o *redis.Options
	newRedisClient = func(opt *redis.Options) *redis.Client {
		o = opt
		return db
	}
	defer func() { newRedisClient = redis.NewClient }()

	// Success
	mock.ExpectPing().SetVal("PONG")
	c, err := NewCache(context.Background(), CacheOptions{Redis: RedisOptions{Addr: "redis:6379", DB: 2, Password: "secret"}})
	require.NoError(t, err)
	_, ok := c.(*RedisCache)
	assert.True(t, ok)
	require.NotNil(t, o)
	assert.Equal(t, "redis:6379", o.Addr)
	assert.Equal(t, 2, o.DB)
	assert.Equal(t, "secret", o.Password)

	// Ping failure
	mock.ExpectPing().SetErr(errors.New("connection refused"))
	c, err = NewCache(context.Background(), CacheOptions{Redis: RedisOptions{Addr: "redis:6379"}})
	assert.EqualError(t, err, "waveform: pinging redis at redis:6379 failed: connection refused")
	assert.Nil(t, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCacheRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := NewCache(ctx, CacheOptions{Redis: RedisOptions{Addr: "127.0.0.1:1"}})
	assert.Error(t, err)
	assert.Nil(t, c)
}
