package resp

import "github.com/tonge3199/respd/internal/metrics"

// Dispatcher is component D: case-insensitive argv[0] lookup against a
// Registry, invoking the matched handler or replying with the
// source's (preserved verbatim, spec.md §9 open question 2) unknown
// command error.
type Dispatcher struct {
	registry *Registry
	metrics  *metrics.Metrics
}

// NewDispatcher builds a Dispatcher over registry, reporting through m
// (which may be nil in tests that don't care about metrics).
func NewDispatcher(registry *Registry, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{registry: registry, metrics: m}
}

// Dispatch looks up argv[0] and invokes the matching handler, or writes
// "-<argv[0]> not suport\r\n" on a miss. argv is never retained past
// this call — the parser clears it immediately after Dispatch returns.
func (d *Dispatcher) Dispatch(conn *Connection, argv [][]byte) {
	if len(argv) == 0 {
		return
	}

	handler := d.registry.lookup(argv[0])
	if handler == nil {
		if d.metrics != nil {
			d.metrics.CommandsUnknownTotal.Inc()
		}
		WriteError(conn, string(argv[0]), "not suport")
		return
	}

	if d.metrics != nil {
		d.metrics.CommandsDispatchedTotal.Inc()
	}
	handler(conn, argv)
}
