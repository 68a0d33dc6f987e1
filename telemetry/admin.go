package telemetry

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// adminHandler serves the per-process admin endpoints, adapted
// near-verbatim from pkg/admin/admin.go: /ping and /ready for
// liveness/readiness probes, /metrics for this Telemetry's Prometheus
// registry, and optionally /debug/pprof/* for profiling.
type adminHandler struct {
	promHandler http.Handler
	enablePprof bool
	ready       func() bool
}

// NewAdminServer returns an *http.Server exposing this Telemetry's
// observability surface on addr. ready is polled by the /ready
// endpoint; a nil ready always reports ready.
func (t *Telemetry) NewAdminServer(addr string, enablePprof bool, ready func() bool) *http.Server {
	if ready == nil {
		ready = func() bool { return true }
	}
	h := &adminHandler{
		promHandler: promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}),
		enablePprof: enablePprof,
		ready:       ready,
	}
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

func (h *adminHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	const debugPathPrefix = "/debug/pprof/"
	if h.enablePprof && strings.HasPrefix(req.URL.Path, debugPathPrefix) {
		switch req.URL.Path {
		case fmt.Sprintf("%scmdline", debugPathPrefix):
			pprof.Cmdline(w, req)
		case fmt.Sprintf("%sprofile", debugPathPrefix):
			pprof.Profile(w, req)
		case fmt.Sprintf("%strace", debugPathPrefix):
			pprof.Trace(w, req)
		case fmt.Sprintf("%ssymbol", debugPathPrefix):
			pprof.Symbol(w, req)
		default:
			pprof.Index(w, req)
		}
		return
	}
	switch req.URL.Path {
	case "/metrics":
		h.promHandler.ServeHTTP(w, req)
	case "/ping":
		w.Write([]byte("pong\n"))
	case "/ready":
		if h.ready() {
			w.Write([]byte("ok\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready\n"))
	default:
		http.NotFound(w, req)
	}
}
