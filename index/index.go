package index

import (
	"path/filepath"

	"github.com/asticode/go-astilog"
	astitemplate "github.com/asticode/go-astitools/template"
	astiworker "github.com/asticode/go-astitools/worker"
	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/asticode/go-pulseprint/analysis"
	"github.com/asticode/go-pulseprint/waveform"
	"github.com/pkg/errors"
)

// Defaults
const (
	DefaultMaxRecordings = 16
	DefaultMaxUploadSize = 50 << 20
)

type Options struct {
	MaxRecordings int                      `toml:"max_recordings"`
	MaxUploadSize int64                    `toml:"max_upload_size"`
	ResourcesPath string                   `toml:"resources_path"`
	Server        pulseprint.ServerOptions `toml:"server"`
}

type Index struct {
	a *analysis.Analyzer
	h *hub
	o Options
	r *waveform.Renderer
	s *store
	t *astitemplate.Templater
	w *astiworker.Worker
}

// New creates a new index
func New(o Options, r *waveform.Renderer, a *analysis.Analyzer) (i *Index, err error) {
	// Create index
	i = &Index{
		a: a,
		h: newHub(),
		o: o,
		r: r,
		w: astiworker.NewWorker(),
	}

	// Default options
	if i.o.ResourcesPath == "" {
		i.o.ResourcesPath = "index/resources"
	}
	if i.o.MaxRecordings <= 0 {
		i.o.MaxRecordings = DefaultMaxRecordings
	}
	if i.o.MaxUploadSize <= 0 {
		i.o.MaxUploadSize = DefaultMaxUploadSize
	}

	// Create store
	i.s = newStore(i.o.MaxRecordings)

	// Create templater
	i.t = astitemplate.NewTemplater()

	// Add layouts
	if err = i.t.AddLayoutsFromDir(filepath.Join(i.o.ResourcesPath, "templates", "layouts"), ".html"); err != nil {
		err = errors.Wrapf(err, "index: adding layouts from resources path %s failed", i.o.ResourcesPath)
		return
	}

	// Add templates
	if err = i.t.AddTemplatesFromDir(filepath.Join(i.o.ResourcesPath, "templates", "pages"), ".html"); err != nil {
		err = errors.Wrapf(err, "index: adding templates from resources path %s failed", i.o.ResourcesPath)
		return
	}
	return
}

// Close closes the index properly
func (i *Index) Close() error {
	// Close ui clients
	astilog.Debug("index: closing ui clients")
	i.h.close()
	return nil
}

// HandleSignals handles signals
func (i *Index) HandleSignals() {
	i.w.HandleSignals()
}

// Wait waits for the index to be stopped
func (i *Index) Wait() {
	i.w.Wait()
}
