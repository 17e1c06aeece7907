// Package metrics exposes the prometheus collectors the RESP core and its
// embedders report through. A *Metrics is safe to share across every
// connection goroutine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and gauges the connection manager updates
// as connections come and go and commands are dispatched.
type Metrics struct {
	ConnectionsTotal        prometheus.Counter
	ConnectionsActive       prometheus.Gauge
	CommandsDispatchedTotal prometheus.Counter
	CommandsUnknownTotal    prometheus.Counter
	IdleEvictionsTotal      prometheus.Counter
	ParseErrorsTotal        prometheus.Counter
	OutboundBytesTotal      prometheus.Counter
}

// New builds a Metrics bundle and registers it against reg. Passing nil
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "connections_total",
			Help:      "Total TCP connections accepted since start.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "respd",
			Name:      "connections_active",
			Help:      "Connections currently tracked in the connection map.",
		}),
		CommandsDispatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "commands_dispatched_total",
			Help:      "Commands successfully routed to a registered handler.",
		}),
		CommandsUnknownTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "commands_unknown_total",
			Help:      "Commands whose argv[0] matched no registered handler.",
		}),
		IdleEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "idle_evictions_total",
			Help:      "Connections closed because they exceeded the idle-close threshold.",
		}),
		ParseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "parse_errors_total",
			Help:      "Fatal framing errors (e.g. oversized headers) that closed a connection.",
		}),
		OutboundBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "outbound_bytes_total",
			Help:      "Bytes written to client sockets by the reply encoder.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsTotal,
		m.ConnectionsActive,
		m.CommandsDispatchedTotal,
		m.CommandsUnknownTotal,
		m.IdleEvictionsTotal,
		m.ParseErrorsTotal,
		m.OutboundBytesTotal,
	)
	return m
}

// NewUnregistered builds a Metrics bundle backed by its own registry, handy
// for tests that construct multiple servers in one process.
func NewUnregistered() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(reg), reg
}
