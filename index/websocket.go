package index

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/asticode/go-astilog"
	"github.com/asticode/go-astiws"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// Event names
const (
	analysisDoneEvent    = "analysis.done"
	analysisFailedEvent  = "analysis.failed"
	analysisStartedEvent = "analysis.started"
	pingEvent            = "ping"
)

// hub pushes events to connected UIs
type hub struct {
	m *astiws.Manager
}

func newHub() *hub {
	return &hub{m: astiws.NewManager(astiws.ManagerConfiguration{})}
}

func uiName(c *astiws.Client) string {
	return fmt.Sprintf("%p", c)
}

func (h *hub) handle(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := h.m.ServeHTTP(rw, r, h.adaptClient); err != nil {
		if v, ok := errors.Cause(err).(*websocket.CloseError); !ok || (v.Code != websocket.CloseNoStatusReceived && v.Code != websocket.CloseNormalClosure && v.Code != websocket.CloseGoingAway) {
			astilog.Error(errors.Wrap(err, "index: handling ui websocket failed"))
		}
		return
	}
}

func (h *hub) adaptClient(c *astiws.Client) error {
	// Register client
	name := uiName(c)
	h.m.RegisterClient(name, c)
	astilog.Debugf("index: ui %s has connected", name)

	// Add listeners
	c.AddListener(astiws.EventNameDisconnect, func(c *astiws.Client, eventName string, payload json.RawMessage) error {
		h.m.UnregisterClient(name)
		astilog.Debugf("index: ui %s has disconnected", name)
		return nil
	})
	c.AddListener(pingEvent, func(c *astiws.Client, eventName string, payload json.RawMessage) (err error) {
		if err = c.ExtendConnection(); err != nil {
			err = errors.Wrapf(err, "index: extending connection of ui %s failed", name)
			return
		}
		return
	})
	return nil
}

func (h *hub) clients() (cs []*astiws.Client) {
	h.m.Clients(func(_ interface{}, c *astiws.Client) error {
		cs = append(cs, c)
		return nil
	})
	return
}

func (h *hub) broadcast(eventName string, payload interface{}) {
	for _, c := range h.clients() {
		if err := c.Write(eventName, payload); err != nil {
			astilog.Error(errors.Wrapf(err, "index: writing %s event to ui %s failed", eventName, uiName(c)))
		}
	}
}

func (h *hub) len() int {
	return h.m.CountClients()
}

// close closes clients outside the manager lock since disconnect listeners unregister them
func (h *hub) close() {
	for _, c := range h.clients() {
		if err := c.Close(); err != nil {
			astilog.Error(errors.Wrapf(err, "index: closing ui %s failed", uiName(c)))
		}
	}
}
