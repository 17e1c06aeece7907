// Package admin exposes the Prometheus metrics endpoint and a small
// JSON stats surface alongside the RESP listener, modeled on
// packetd-packetd's use of gorilla/mux for its own debug HTTP server.
package admin

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonge3199/respd/internal/resp"
)

// StatsProvider is the subset of *resp.Server the /debug/stats handler
// needs, kept as an interface so tests can supply a fake.
type StatsProvider interface {
	ActiveConnections() int
}

// Stats is the JSON body served at /debug/stats.
type Stats struct {
	ActiveConnections int       `json:"active_connections"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// NewRouter builds the admin mux: /metrics via promhttp against reg (or
// the default registerer when reg is nil), and /debug/stats reporting
// srv's live connection count.
func NewRouter(srv StatsProvider, reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()

	var handler http.Handler
	if reg != nil {
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	} else {
		handler = promhttp.Handler()
	}
	r.Handle("/metrics", handler).Methods(http.MethodGet)

	r.HandleFunc("/debug/stats", func(w http.ResponseWriter, req *http.Request) {
		stats := Stats{
			ActiveConnections: srv.ActiveConnections(),
			GeneratedAt:       statsTimestamp(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}).Methods(http.MethodGet)

	return r
}

// statsTimestamp is split out so it is the only spot that calls
// time.Now in this file, keeping the handler itself trivially testable
// against a fixed clock if ever needed.
func statsTimestamp() time.Time { return timeNow() }

var timeNow = time.Now

// Serve starts an HTTP server for router on addr and blocks until it
// returns an error (including http.ErrServerClosed on graceful Shutdown).
func Serve(addr string, srv *resp.Server, reg *prometheus.Registry) error {
	router := NewRouter(srv, reg)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
