package pulseprint

import (
	"encoding/json"
	"net/http"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Error represents an error sent back to the UI
type Error struct {
	Message string `json:"message"`
}

// WriteHTTPError writes err as a JSON Error body with the provided status code.
// Server errors are logged as errors, client errors are only logged in debug.
func WriteHTTPError(rw http.ResponseWriter, code int, err error) {
	// Log
	if code >= http.StatusInternalServerError {
		astilog.Error(errors.Wrapf(err, "pulseprint: %d", code))
	} else {
		astilog.Debugf("pulseprint: %d: %s", code, err)
	}

	// Write
	writeJSON(rw, code, Error{Message: err.Error()})
}

// WriteHTTPData writes data as JSON. A 500 is written instead if data can't be marshaled.
func WriteHTTPData(rw http.ResponseWriter, data interface{}) {
	writeJSON(rw, http.StatusOK, data)
}

func writeJSON(rw http.ResponseWriter, code int, data interface{}) {
	// Marshal
	b, err := json.Marshal(data)
	if err != nil {
		err = errors.Wrap(err, "pulseprint: marshaling failed")
		astilog.Error(err)
		code = http.StatusInternalServerError
		if b, err = json.Marshal(Error{Message: err.Error()}); err != nil {
			rw.WriteHeader(code)
			return
		}
	}

	// Write
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	if _, err = rw.Write(append(b, '\n')); err != nil {
		astilog.Error(errors.Wrap(err, "pulseprint: writing response failed"))
	}
}
