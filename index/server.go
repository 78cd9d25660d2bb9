package index

import (
	"net/http"
	"path/filepath"

	astihttp "github.com/asticode/go-astitools/http"
	"github.com/julienschmidt/httprouter"
)

// Server prefixes
const (
	apiPrefix    = "/api"
	staticPrefix = "/static"
	webPrefix    = "/web"
)

// Serve spawns the server
func (i *Index) Serve() {
	i.w.Serve(i.o.Server.Addr, i.Handler())
}

// Handler returns the index http handler
func (i *Index) Handler() http.Handler {
	// Create router
	r := httprouter.New()

	// Static
	r.ServeFiles(staticPrefix+"/*filepath", http.Dir(filepath.Join(i.o.ResourcesPath, "static")))

	// Web
	r.GET("/", i.homepage)
	r.GET(webPrefix+"/*page", i.web)

	// API
	r.GET(apiPrefix+"/ok", i.ok)
	r.GET(apiPrefix+"/references", i.references)
	r.POST(apiPrefix+"/recordings", i.createRecording)
	r.GET(apiPrefix+"/recordings/:id/audio", i.recordingAudio)
	r.POST(apiPrefix+"/recordings/:id/analyses", i.createAnalysis)

	// Websockets
	r.GET("/websockets/ui", i.h.handle)

	// Chain middlewares
	var h http.Handler = r
	if i.o.Server.Username != "" && i.o.Server.Password != "" {
		h = astihttp.ChainMiddlewares(h, astihttp.MiddlewareBasicAuth(i.o.Server.Username, i.o.Server.Password))
	}
	h = astihttp.ChainMiddlewaresWithPrefix(h, []string{webPrefix + "/"}, astihttp.MiddlewareContentType("text/html; charset=UTF-8"))
	h = astihttp.ChainMiddlewaresWithPrefix(h, []string{apiPrefix + "/"}, astihttp.MiddlewareContentType("application/json"))
	return h
}

func (i *Index) ok(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {}
