package waveform

import (
	"context"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// RendererOptions are renderer options
type RendererOptions struct {
	MaxPoints  int `toml:"max_points"`
	SampleRate int `toml:"sample_rate"`
}

// Renderer turns wav bytes into waveforms and caches them
type Renderer struct {
	c Cache
	o RendererOptions
}

// NewRenderer creates a new renderer
func NewRenderer(c Cache, o RendererOptions) *Renderer {
	if o.MaxPoints == 0 {
		o.MaxPoints = DefaultMaxPoints
	}
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	return &Renderer{
		c: c,
		o: o,
	}
}

// Render returns the waveform of wav bytes.
// Cache errors are logged and never returned.
func (r *Renderer) Render(ctx context.Context, b []byte) (w Waveform, err error) {
	// Get key
	k := Key(b)

	// Check cache
	if r.c != nil {
		var ok bool
		if w, ok, err = r.c.Get(ctx, k); err != nil {
			astilog.Error(errors.Wrapf(err, "waveform: getting %s from cache failed", k))
			err = nil
		} else if ok {
			astilog.Debugf("waveform: %s found in cache", k)
			return
		}
	}

	// Decode
	var s *Signal
	if s, err = Decode(b, r.o.SampleRate); err != nil {
		err = errors.Wrap(err, "waveform: decoding failed")
		return
	}
	astilog.Debugf("waveform: decoded %s", s)

	// Build
	w = Build(s, r.o.MaxPoints)

	// Update cache
	if r.c != nil {
		if errSet := r.c.Set(ctx, k, w); errSet != nil {
			astilog.Error(errors.Wrapf(errSet, "waveform: setting %s in cache failed", k))
		}
	}
	return
}
