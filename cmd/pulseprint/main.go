package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/asticode/go-astilog"
	asticonfig "github.com/asticode/go-astitools/config"
	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/asticode/go-pulseprint/analysis"
	"github.com/asticode/go-pulseprint/index"
	"github.com/asticode/go-pulseprint/waveform"
	"github.com/pkg/errors"
)

// Flags
var (
	addr      = flag.String("a", "", "the listen address")
	config    = flag.String("c", "", "the config path")
	model     = flag.String("m", "", "the default reasoning engine")
	redisAddr = flag.String("r", "", "the redis address used to cache waveforms")
)

func main() {
	// Parse flags
	flag.Parse()
	astilog.FlagInit()

	// Create configuration
	c := newConfiguration()

	// Check default model
	if !analysis.IsModel(c.Analysis.DefaultModel) {
		astilog.Fatal(errors.Errorf("main: unknown default model %s", c.Analysis.DefaultModel))
	}

	// Create cache
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	wc, err := waveform.NewCache(ctx, c.Cache)
	cancel()
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating cache failed"))
	}

	// Make sure to close cache
	if v, ok := wc.(io.Closer); ok {
		defer v.Close()
	}

	// Create index
	i, err := index.New(c.Index, waveform.NewRenderer(wc, c.Waveform), analysis.New(c.Analysis, analysis.NewGeminiClient))
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating index failed"))
	}
	defer i.Close()

	// Handle signals
	i.HandleSignals()

	// Serve
	astilog.Infof("main: serving dashboard on http://%s", c.Index.Server.Addr)
	i.Serve()

	// Blocking pattern
	i.Wait()
}

// Configuration represents a configuration
type Configuration struct {
	Analysis analysis.Options         `toml:"analysis"`
	Cache    waveform.CacheOptions    `toml:"cache"`
	Index    index.Options            `toml:"index"`
	Waveform waveform.RendererOptions `toml:"waveform"`
}

// newConfiguration creates a new configuration
func newConfiguration() *Configuration {
	// Global config
	gc := &Configuration{
		Analysis: analysis.Options{
			APIKey:       os.Getenv("GEMINI_API_KEY"),
			DefaultModel: analysis.DefaultModel,
			Timeout:      2 * time.Minute,
		},
		Cache: waveform.CacheOptions{
			MaxEntries: waveform.DefaultMaxEntries,
			Redis: waveform.RedisOptions{
				Prefix: waveform.DefaultRedisPrefix,
				TTL:    waveform.DefaultRedisTTL,
			},
		},
		Index: index.Options{
			MaxRecordings: index.DefaultMaxRecordings,
			MaxUploadSize: index.DefaultMaxUploadSize,
			ResourcesPath: "index/resources",
			Server: pulseprint.ServerOptions{
				Addr: "127.0.0.1:4000",
			},
		},
		Waveform: waveform.RendererOptions{
			MaxPoints:  waveform.DefaultMaxPoints,
			SampleRate: waveform.DefaultSampleRate,
		},
	}

	// Flag config
	fc := &Configuration{
		Analysis: analysis.Options{DefaultModel: *model},
		Cache:    waveform.CacheOptions{Redis: waveform.RedisOptions{Addr: *redisAddr}},
		Index:    index.Options{Server: pulseprint.ServerOptions{Addr: *addr}},
	}

	// Build configuration
	c, err := asticonfig.New(gc, *config, fc)
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: building configuration failed"))
	}
	return c.(*Configuration)
}
