package analysis

import (
	"context"
	"io"
	"testing"
	"time"

	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedClient struct {
	apiKey   string
	audio    []byte
	block    chan struct{}
	deadline bool
	deleted  []string
	errGen   error
	errUp    error
	mimeType string
	model    string
	prompt   string
	started  chan struct{}
	text     string
	uploaded File
}

func (c *mockedClient) factory(ctx context.Context, apiKey string) (Client, error) {
	c.apiKey = apiKey
	return c, nil
}

func (c *mockedClient) Upload(ctx context.Context, r io.Reader, mimeType string) (f File, err error) {
	if c.errUp != nil {
		err = c.errUp
		return
	}
	if c.audio, err = io.ReadAll(r); err != nil {
		return
	}
	c.mimeType = mimeType
	c.uploaded = File{MIMEType: mimeType, Name: "files/abc123", URI: "https://example.com/files/abc123"}
	f = c.uploaded
	return
}

func (c *mockedClient) Generate(ctx context.Context, model, prompt string, f File) (string, error) {
	if c.started != nil {
		close(c.started)
	}
	if c.block != nil {
		<-c.block
	}
	c.model = model
	c.prompt = prompt
	return c.text, c.errGen
}

func (c *mockedClient) Delete(ctx context.Context, name string) error {
	_, c.deadline = ctx.Deadline()
	c.deleted = append(c.deleted, name)
	return nil
}

func TestAnalyze(t *testing.T) {
	c := &mockedClient{text: "## Summary\nRegular rhythm."}
	a := New(Options{}, c.factory)
	var started []string
	r, err := a.Analyze(context.Background(), Request{
		APIKey:  "key",
		Audio:   []byte("wav"),
		Model:   ModelPro,
		OnStart: func(model string) { started = append(started, model) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ModelPro}, started)
	assert.True(t, c.deadline)
	assert.Equal(t, "key", c.apiKey)
	assert.Equal(t, []byte("wav"), c.audio)
	assert.Equal(t, DefaultMIMEType, c.mimeType)
	assert.Equal(t, ModelPro, c.model)
	assert.Equal(t, Prompt, c.prompt)
	assert.Equal(t, []string{"files/abc123"}, c.deleted)
	assert.Equal(t, "## Summary\nRegular rhythm.", r.Text)
	assert.Equal(t, StatusComplete, r.Status)
	assert.Equal(t, pulseprint.Disclaimer, r.Disclaimer)
	assert.Equal(t, ModelPro, r.Model)
}

func TestAnalyzeDefaults(t *testing.T) {
	c := &mockedClient{text: "ok"}
	a := New(Options{APIKey: "server", KeepUploads: true}, c.factory)
	assert.True(t, a.HasAPIKey())
	assert.Equal(t, DefaultModel, a.DefaultModel())
	_, err := a.Analyze(context.Background(), Request{Audio: []byte("wav")})
	require.NoError(t, err)
	assert.Equal(t, "server", c.apiKey)
	assert.Equal(t, ModelFlash, c.model)
	assert.Empty(t, c.deleted)
}

func TestAnalyzeValidation(t *testing.T) {
	a := New(Options{}, (&mockedClient{}).factory)
	assert.False(t, a.HasAPIKey())
	var started bool
	_, err := a.Analyze(context.Background(), Request{Audio: []byte("wav"), OnStart: func(string) { started = true }})
	assert.Equal(t, ErrMissingAPIKey, errors.Cause(err))
	assert.False(t, started)
	_, err = a.Analyze(context.Background(), Request{APIKey: "key"})
	assert.Equal(t, ErrMissingAudio, errors.Cause(err))
	_, err = a.Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav"), Model: "gpt-2"})
	assert.Equal(t, ErrUnknownModel, errors.Cause(err))
}

func TestAnalyzeFailures(t *testing.T) {
	// Upload
	c := &mockedClient{errUp: errors.New("quota exceeded")}
	_, err := New(Options{}, c.factory).Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav")})
	assert.EqualError(t, err, "analysis: uploading audio failed: quota exceeded")
	assert.Empty(t, c.deleted)

	// Generate
	c = &mockedClient{errGen: errors.New("invalid api key")}
	_, err = New(Options{}, c.factory).Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav")})
	assert.EqualError(t, err, "analysis: generating content with gemini-2.5-flash failed: invalid api key")
	assert.Equal(t, []string{"files/abc123"}, c.deleted)

	// Empty response
	c = &mockedClient{text: " \n"}
	_, err = New(Options{}, c.factory).Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav")})
	assert.Equal(t, ErrEmptyResponse, err)

	// Factory
	_, err = New(Options{}, func(context.Context, string) (Client, error) {
		return nil, errors.New("no network")
	}).Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav")})
	assert.EqualError(t, err, "analysis: creating client failed: no network")
}

func TestAnalyzeBusy(t *testing.T) {
	c := &mockedClient{
		block:   make(chan struct{}),
		started: make(chan struct{}),
		text:    "ok",
	}
	a := New(Options{Timeout: time.Minute}, c.factory)

	// Start first analysis
	done := make(chan error)
	go func() {
		_, err := a.Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav")})
		done <- err
	}()
	<-c.started

	// Second analysis is rejected
	var started bool
	_, err := a.Analyze(context.Background(), Request{APIKey: "key", Audio: []byte("wav"), OnStart: func(string) { started = true }})
	assert.Equal(t, ErrBusy, err)
	assert.False(t, started)

	// Unblock
	close(c.block)
	assert.NoError(t, <-done)
}

func TestIsModel(t *testing.T) {
	assert.True(t, IsModel(ModelFlash))
	assert.True(t, IsModel(ModelPro))
	assert.False(t, IsModel(""))
}
