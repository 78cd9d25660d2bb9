package index

import (
	"net/http"
	"time"

	"github.com/asticode/go-astilog"
	"github.com/asticode/go-astiws"
	pulseprint "github.com/asticode/go-pulseprint"
	"github.com/asticode/go-pulseprint/analysis"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// MissingAPIKeyMessage is displayed when no api key is available
const MissingAPIKeyMessage = "Please enter your API Key in the sidebar to begin."

func (i *Index) homepage(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	http.Redirect(rw, r, webPrefix+"/index", http.StatusPermanentRedirect)
}

func (i *Index) web(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// Get template name
	var name = p.ByName("page") + ".html"
	if _, ok := i.t.Template(name); !ok {
		name = "/errors/404.html"
	}

	// Get template data
	data, code := i.templateData(name)

	// Set content type
	rw.Header().Set("Content-Type", "text/html; charset=UTF-8")

	// Write header
	rw.WriteHeader(code)

	// Get template
	t, _ := i.t.Template(name)

	// Execute template
	if err := t.Execute(rw, data); err != nil {
		astilog.Error(errors.Wrapf(err, "index: executing %s template with data %#v failed", name, data))
		return
	}
}

type TemplateData struct {
	DefaultModel         string
	Disclaimer           string
	HasAPIKey            bool
	MissingAPIKeyMessage string
	Models               []analysis.Model
	Title                string
}

func (i *Index) templateData(name string) (data TemplateData, code int) {
	code = http.StatusOK
	data = TemplateData{
		DefaultModel:         i.a.DefaultModel(),
		Disclaimer:           pulseprint.Disclaimer,
		HasAPIKey:            i.a.HasAPIKey(),
		MissingAPIKeyMessage: MissingAPIKeyMessage,
		Models:               analysis.Models,
		Title:                "PulsePrint AI",
	}
	switch name {
	case "/errors/404.html":
		code = http.StatusNotFound
	}
	return
}

type APIReferences struct {
	DefaultModel string           `json:"default_model"`
	Disclaimer   string           `json:"disclaimer"`
	HasAPIKey    bool             `json:"has_api_key"`
	Models       []analysis.Model `json:"models"`
	Prompt       string           `json:"prompt"`
	Websocket    APIWebsocket     `json:"websocket"`
}

type APIWebsocket struct {
	Path       string        `json:"path"`
	PingPeriod time.Duration `json:"ping_period"`
}

func (i *Index) references(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	pulseprint.WriteHTTPData(rw, APIReferences{
		DefaultModel: i.a.DefaultModel(),
		Disclaimer:   pulseprint.Disclaimer,
		HasAPIKey:    i.a.HasAPIKey(),
		Models:       analysis.Models,
		Prompt:       analysis.Prompt,
		Websocket: APIWebsocket{
			Path:       "/websockets/ui",
			PingPeriod: astiws.PingPeriod,
		},
	})
}
