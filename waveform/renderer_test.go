package waveform

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	*MemoryCache
	errGet error
	gets   int
	sets   int
}

func (c *countingCache) Get(ctx context.Context, key string) (Waveform, bool, error) {
	c.gets++
	if c.errGet != nil {
		return Waveform{}, false, c.errGet
	}
	return c.MemoryCache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, w Waveform) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, w)
}

func TestRenderer(t *testing.T) {
	ctx := context.Background()
	c := &countingCache{MemoryCache: NewMemoryCache(0)}
	r := NewRenderer(c, RendererOptions{})
	b := newWAV(t, 8000, 16, 1, []int{0, 1000, -1000, 0})

	w1, err := r.Render(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 4, w1.NumberOfSamples)
	assert.Equal(t, 8000, w1.SampleRate)
	assert.Len(t, w1.Points, 4)

	w2, err := r.Render(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.sets)
}

func TestRendererCacheFailure(t *testing.T) {
	c := &countingCache{MemoryCache: NewMemoryCache(0), errGet: errors.New("cache is down")}
	r := NewRenderer(c, RendererOptions{})
	w, err := r.Render(context.Background(), newWAV(t, 8000, 16, 1, []int{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, w.NumberOfSamples)
	assert.Equal(t, 1, c.sets)
}

func TestRendererInvalid(t *testing.T) {
	r := NewRenderer(nil, RendererOptions{})
	_, err := r.Render(context.Background(), []byte("nope"))
	assert.Equal(t, ErrInvalidWAV, pkgerrors.Cause(err))
}
