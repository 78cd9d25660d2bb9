package index

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/asticode/go-astichartjs"
	"github.com/asticode/go-astilog"
	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/asticode/go-pulseprint/analysis"
	"github.com/asticode/go-pulseprint/waveform"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// Headers
const (
	apiKeyHeader = "X-Api-Key"
)

// Form fields
const (
	recordingFormField = "file"
)

// AnalyzingMessage is displayed while the model is analyzing a recording
const AnalyzingMessage = "AI is analyzing the rhythm and valves..."

// APIRecording represents an uploaded recording
type APIRecording struct {
	Chart      astichartjs.Chart   `json:"chart"`
	CreatedAt  time.Time           `json:"created_at"`
	Duration   float64             `json:"duration"`
	ID         string              `json:"id"`
	Metrics    []pulseprint.Metric `json:"metrics"`
	Name       string              `json:"name"`
	SampleRate int                 `json:"sample_rate"`
	Size       int                 `json:"size"`
}

func newAPIRecording(r *Recording) APIRecording {
	return APIRecording{
		Chart:      waveform.Chart(r.Waveform),
		CreatedAt:  r.CreatedAt,
		Duration:   r.Waveform.Duration,
		ID:         r.ID,
		Metrics:    pulseprint.DefaultMetrics(),
		Name:       r.Name,
		SampleRate: r.Waveform.SourceSampleRate,
		Size:       len(r.Audio),
	}
}

// writeError surfaces the error message to the UI
func writeError(rw http.ResponseWriter, code int, err error) {
	pulseprint.WriteHTTPError(rw, code, errors.New("Error: "+err.Error()))
}

func (i *Index) createRecording(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// Body is too large
	if r.ContentLength > i.o.MaxUploadSize {
		writeError(rw, http.StatusRequestEntityTooLarge, errors.Errorf("recording exceeds %d bytes", i.o.MaxUploadSize))
		return
	}

	// Limit body
	r.Body = http.MaxBytesReader(rw, r.Body, i.o.MaxUploadSize)

	// Get file
	f, h, err := r.FormFile(recordingFormField)
	if err != nil {
		var e *http.MaxBytesError
		if errors.As(err, &e) {
			writeError(rw, http.StatusRequestEntityTooLarge, errors.Errorf("recording exceeds %d bytes", i.o.MaxUploadSize))
		} else {
			writeError(rw, http.StatusBadRequest, errors.Wrap(err, "index: retrieving file failed"))
		}
		return
	}
	defer f.Close()

	// Only wav files are supported
	if !strings.EqualFold(filepath.Ext(h.Filename), ".wav") {
		writeError(rw, http.StatusBadRequest, errors.Errorf("%s is not a .wav file", h.Filename))
		return
	}

	// Read
	var b []byte
	if b, err = io.ReadAll(f); err != nil {
		writeError(rw, http.StatusBadRequest, errors.Wrap(err, "index: reading file failed"))
		return
	}

	// Render waveform
	var w waveform.Waveform
	if w, err = i.r.Render(r.Context(), b); err != nil {
		astilog.Debugf("index: rendering %s failed: %s", h.Filename, err)
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	// Store recording
	rec := &Recording{
		Audio:    b,
		Name:     filepath.Base(h.Filename),
		Waveform: w,
	}
	i.s.add(rec)
	astilog.Infof("index: recording %s (%s, %.2fs) has been received", rec.ID, rec.Name, w.Duration)

	// Write
	pulseprint.WriteHTTPData(rw, newAPIRecording(rec))
}

func (i *Index) recordingAudio(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// Get recording
	rec, ok := i.s.get(p.ByName("id"))
	if !ok {
		writeError(rw, http.StatusNotFound, errors.Errorf("recording %s not found", p.ByName("id")))
		return
	}

	// Serve
	rw.Header().Set("Content-Type", analysis.DefaultMIMEType)
	http.ServeContent(rw, r, rec.Name, rec.CreatedAt, bytes.NewReader(rec.Audio))
}

// APIAnalysisRequest represents an analysis request
type APIAnalysisRequest struct {
	Model string `json:"model"`
}

// APIAnalysisEvent is sent to UIs while an analysis is running
type APIAnalysisEvent struct {
	Message     string           `json:"message,omitempty"`
	Model       string           `json:"model,omitempty"`
	RecordingID string           `json:"recording_id"`
	Result      *analysis.Result `json:"result,omitempty"`
}

func (i *Index) createAnalysis(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// Get recording
	rec, ok := i.s.get(p.ByName("id"))
	if !ok {
		writeError(rw, http.StatusNotFound, errors.Errorf("recording %s not found", p.ByName("id")))
		return
	}

	// Unmarshal
	var req APIAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(rw, http.StatusBadRequest, errors.Wrap(err, "index: unmarshaling failed"))
		return
	}

	// Analyze
	var started bool
	var model string
	res, err := i.a.Analyze(r.Context(), analysis.Request{
		APIKey: r.Header.Get(apiKeyHeader),
		Audio:  rec.Audio,
		Model:  req.Model,
		OnStart: func(m string) {
			started, model = true, m
			i.h.broadcast(analysisStartedEvent, APIAnalysisEvent{
				Message:     AnalyzingMessage,
				Model:       m,
				RecordingID: rec.ID,
			})
		},
	})
	if err != nil {
		// Get code and message
		code, m := http.StatusBadGateway, "Error: "+errors.Cause(err).Error()
		switch errors.Cause(err) {
		case analysis.ErrMissingAPIKey:
			code, m = http.StatusBadRequest, MissingAPIKeyMessage
		case analysis.ErrMissingAudio, analysis.ErrUnknownModel:
			code, m = http.StatusBadRequest, "Error: "+err.Error()
		case analysis.ErrBusy:
			code = http.StatusConflict
		}

		// Dispatch
		if started {
			i.h.broadcast(analysisFailedEvent, APIAnalysisEvent{
				Message:     m,
				Model:       model,
				RecordingID: rec.ID,
			})
		}

		// Write
		pulseprint.WriteHTTPError(rw, code, errors.New(m))
		return
	}

	// Dispatch
	i.h.broadcast(analysisDoneEvent, APIAnalysisEvent{
		Model:       res.Model,
		RecordingID: rec.ID,
		Result:      &res,
	})

	// Write
	pulseprint.WriteHTTPData(rw, res)
}
