package analysis

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/asticode/go-astilog"
	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/pkg/errors"
)

// DefaultMIMEType is the MIME type used when uploading recordings
const DefaultMIMEType = "audio/wav"

// StatusComplete is the status of a successful analysis
const StatusComplete = "Analysis Complete"

// deleteTimeout bounds the cleanup of uploaded files
var deleteTimeout = 10 * time.Second

var (
	ErrBusy          = errors.New("analysis: an analysis is already running")
	ErrEmptyResponse = errors.New("analysis: model returned an empty response")
	ErrMissingAPIKey = errors.New("analysis: missing api key")
	ErrMissingAudio  = errors.New("analysis: missing audio")
	ErrUnknownModel  = errors.New("analysis: unknown model")
)

// File represents an uploaded file
type File struct {
	MIMEType string
	Name     string
	URI      string
}

// Client is the hosted model the analysis is delegated to
type Client interface {
	Delete(ctx context.Context, name string) error
	Generate(ctx context.Context, model, prompt string, f File) (string, error)
	Upload(ctx context.Context, r io.Reader, mimeType string) (File, error)
}

// ClientFactory creates a client for a specific api key
type ClientFactory func(ctx context.Context, apiKey string) (Client, error)

// Options are analyzer options
type Options struct {
	APIKey       string        `toml:"api_key"`
	DefaultModel string        `toml:"default_model"`
	KeepUploads  bool          `toml:"keep_uploads"`
	Timeout      time.Duration `toml:"timeout"`
}

// Request represents an analysis request
type Request struct {
	APIKey   string
	Audio    []byte
	MIMEType string
	Model    string
	// OnStart is called with the resolved model once the analysis holds the lock and the request is valid
	OnStart func(model string)
}

// Validate validates the request
func (r Request) Validate() error {
	if r.APIKey == "" {
		return ErrMissingAPIKey
	}
	if len(r.Audio) == 0 {
		return ErrMissingAudio
	}
	if !IsModel(r.Model) {
		return errors.Wrapf(ErrUnknownModel, "analysis: %s", r.Model)
	}
	return nil
}

// Result represents an analysis result
type Result struct {
	Disclaimer string        `json:"disclaimer"`
	Duration   time.Duration `json:"duration"`
	Model      string        `json:"model"`
	Status     string        `json:"status"`
	Text       string        `json:"text"`
}

// Analyzer forwards recordings to the hosted model. Only one analysis can run at a time.
type Analyzer struct {
	f ClientFactory
	m *sync.Mutex // Locks analyses
	o Options
}

// New creates a new analyzer
func New(o Options, f ClientFactory) *Analyzer {
	if o.DefaultModel == "" {
		o.DefaultModel = DefaultModel
	}
	return &Analyzer{
		f: f,
		m: &sync.Mutex{},
		o: o,
	}
}

// DefaultModel returns the model used when the request doesn't specify one
func (a *Analyzer) DefaultModel() string {
	return a.o.DefaultModel
}

// HasAPIKey checks whether a server side api key has been configured
func (a *Analyzer) HasAPIKey() bool {
	return a.o.APIKey != ""
}

// Analyze uploads the recording and asks the model for a clinical summary
func (a *Analyzer) Analyze(ctx context.Context, req Request) (res Result, err error) {
	// Lock
	if !a.m.TryLock() {
		err = ErrBusy
		return
	}
	defer a.m.Unlock()

	// Default values
	if req.APIKey == "" {
		req.APIKey = a.o.APIKey
	}
	if req.MIMEType == "" {
		req.MIMEType = DefaultMIMEType
	}
	if req.Model == "" {
		req.Model = a.o.DefaultModel
	}

	// Validate
	if err = req.Validate(); err != nil {
		err = errors.Wrap(err, "analysis: validating request failed")
		return
	}

	// Callback
	if req.OnStart != nil {
		req.OnStart(req.Model)
	}

	// Timeout
	if a.o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.o.Timeout)
		defer cancel()
	}

	// Create client
	start := time.Now()
	var c Client
	if c, err = a.f(ctx, req.APIKey); err != nil {
		err = errors.Wrap(err, "analysis: creating client failed")
		return
	}

	// Upload
	astilog.Debugf("analysis: uploading %d bytes as %s", len(req.Audio), req.MIMEType)
	var f File
	if f, err = c.Upload(ctx, bytes.NewReader(req.Audio), req.MIMEType); err != nil {
		err = errors.Wrap(err, "analysis: uploading audio failed")
		return
	}

	// Make sure to delete upload
	if !a.o.KeepUploads {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
			defer cancel()
			if err := c.Delete(ctx, f.Name); err != nil {
				astilog.Error(errors.Wrapf(err, "analysis: deleting %s failed", f.Name))
			}
		}()
	}

	// Generate
	astilog.Debugf("analysis: generating content with %s for %s", req.Model, f.Name)
	var t string
	if t, err = c.Generate(ctx, req.Model, Prompt, f); err != nil {
		err = errors.Wrapf(err, "analysis: generating content with %s failed", req.Model)
		return
	}

	// Empty response
	if strings.TrimSpace(t) == "" {
		err = ErrEmptyResponse
		return
	}

	// Create result
	res = Result{
		Disclaimer: pulseprint.Disclaimer,
		Duration:   time.Since(start),
		Model:      req.Model,
		Status:     StatusComplete,
		Text:       t,
	}
	astilog.Infof("analysis: %s answered in %s", req.Model, res.Duration)
	return
}
