// Package resp's server.go is component F, grounded on the teacher's
// tcp/server.go (ListenAndServeWithSignal/ListenAndServe: signal
// handling, accept-error retry-with-sleep, a WaitGroup tracking live
// connection goroutines). spec.md §5 models a single-threaded
// cooperative event loop; this is adapted to Go's idiomatic
// equivalent — one goroutine per accepted connection, each driving its
// own resumable parser — which the spec's own §9 design notes license
// explicitly ("any non-blocking I/O framework in the target language
// will do"). The connection map is guarded by a mutex instead of being
// "mutated only by the loop thread" literally, since Go has many loop
// threads; every other invariant (per-connection dispatch order, sid
// uniqueness, exactly-once release) holds exactly as spec.md states.
// See DESIGN.md for the full adaptation note.
package resp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tonge3199/respd/internal/logger"
	"github.com/tonge3199/respd/internal/metrics"
)

// Config is the subset of server knobs the core needs. cmd/respd maps
// internal/config.ServerConfig onto this at startup.
type Config struct {
	Address             string
	Backlog             int
	SessionBase         uint64
	RegistryCapacity    int
	IdleCloseSeconds    time.Duration
	TickIntervalSeconds time.Duration
	MaxHeaderDigits     int
	ReadBufferSize      int
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		Address:             "127.0.0.1:6380",
		Backlog:             128,
		SessionBase:         1000,
		RegistryCapacity:    1024,
		IdleCloseSeconds:    3600 * time.Second,
		TickIntervalSeconds: 600 * time.Second,
		MaxHeaderDigits:     20,
		ReadBufferSize:      4096,
	}
}

// Server is the connection manager / event loop (component F): accept
// loop, per-connection read driver, idle-eviction timers, and the
// sid -> *Connection map embedders use for async replies and explicit
// close.
type Server struct {
	cfg        Config
	registry   *Registry
	dispatcher *Dispatcher
	parser     *Parser
	metrics    *metrics.Metrics

	ln net.Listener

	mu    sync.RWMutex
	conns map[uint64]*Connection

	sidCounter atomic.Uint64
	closing    atomic.Bool
	wg         sync.WaitGroup
}

// NewServer wires a Server around a caller-built Registry (so embedders
// register their handlers before Start, per spec.md §4.5: "registered
// only before the server starts").
func NewServer(cfg Config, registry *Registry, m *metrics.Metrics) *Server {
	if cfg.SessionBase == 0 {
		cfg.SessionBase = 1000
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		metrics:  m,
		conns:    make(map[uint64]*Connection),
	}
	// sidCounter.Add(1) in acceptConnection is a pre-increment, so the
	// counter is seeded one below the base: the original's
	// MallocConnection does `pConnector->sid = sessionbase++`, a
	// post-increment, so the first connection gets sid == sessionbase
	// exactly and only then does the counter advance.
	s.sidCounter.Store(cfg.SessionBase - 1)
	s.dispatcher = NewDispatcher(registry, m)
	s.parser = NewParser(s.dispatcher, cfg.MaxHeaderDigits)
	return s
}

// Registry exposes the registry backing this server, for embedders
// that build it separately from NewServer (e.g. cmd/respd/demo).
func (s *Server) Registry() *Registry { return s.registry }

// Start binds the listener and launches the accept loop on its own
// goroutine, returning once the socket is bound (spec.md §4.6
// "start(ip, port) binds the listener and launches the event loop on a
// dedicated worker"). Call Serve instead to block until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.ln = ln

	go s.acceptLoop(ctx)
	return nil
}

// Serve binds and runs until ctx is canceled or a fatal accept error
// occurs, then drains every connection goroutine before returning —
// the blocking counterpart to ListenAndServeWithSignal in the teacher
// project.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return
			}
			var netErr net.Error
			if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			logger.Error("accept failed", "error", err)
			return
		}

		c := s.acceptConnection(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConnection(ctx, c)
		}()
	}
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}

func (s *Server) acceptConnection(nc net.Conn) *Connection {
	sid := s.sidCounter.Add(1)
	c := newConnection(sid, nc, s)
	c.setNoDelay()

	s.mu.Lock()
	s.conns[sid] = c
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}
	logger.Debug("connection accepted", "sid", sid, "remote", c.remote, "trace_id", c.traceID)
	return c
}

// serveConnection drains bytes off the socket and drives the parser
// until the connection is closed, evicted, or errors. This is the
// read-callback + idle-timer half of spec.md §4.6.
func (s *Server) serveConnection(ctx context.Context, c *Connection) {
	defer s.evict(c.sid, "closed")

	c.armIdleTimer(s.cfg.TickIntervalSeconds, func() { s.onIdleTick(c) })

	buf := make([]byte, s.cfg.ReadBufferSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := c.nc.Read(buf)
		if n > 0 {
			c.appendInbound(buf[:n])
			if derr := s.parser.Drive(c); derr != nil {
				if s.metrics != nil {
					s.metrics.ParseErrorsTotal.Inc()
				}
				logger.Warn("framing error, closing connection", "sid", c.sid, "error", derr)
				return
			}
		}
		if err != nil {
			return // EOF, reset, or any other transport error: evict.
		}
	}
}

// onIdleTick is the idle timer's fire callback: re-arm if the
// connection is still active, otherwise evict it (spec.md §4.3/§4.6).
func (s *Server) onIdleTick(c *Connection) {
	if c.IsClosed() {
		return
	}
	if c.onIdleTick(s.cfg.IdleCloseSeconds) {
		c.armIdleTimer(s.cfg.TickIntervalSeconds, func() { s.onIdleTick(c) })
		return
	}
	if s.metrics != nil {
		s.metrics.IdleEvictionsTotal.Inc()
	}
	s.evict(c.sid, "idle-timeout")
}

// evict removes sid from the connection map and releases its
// resources. Idempotent against concurrent eviction attempts from the
// read loop and the idle timer racing each other (spec.md §5).
func (s *Server) evict(sid uint64, reason string) {
	s.mu.Lock()
	c, ok := s.conns[sid]
	if ok {
		delete(s.conns, sid)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	_ = c.close()
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
	logger.Debug("connection evicted", "sid", sid, "reason", reason)
}

// FindConnection looks up a live connection by sid, for handlers that
// need to reply asynchronously (spec.md §6).
func (s *Server) FindConnection(sid uint64) (*Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[sid]
	return c, ok
}

// CloseConnection evicts sid explicitly, spec.md §6's
// server.close_connection(sid).
func (s *Server) CloseConnection(sid uint64) {
	s.evict(sid, "explicit-close")
}

// ActiveConnections returns the number of connections currently
// tracked, used by internal/admin's /debug/stats endpoint.
func (s *Server) ActiveConnections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Close stops accepting new connections, evicts every tracked
// connection, and waits for their goroutines to finish. The listener's
// close error is returned through hashicorp/go-multierror; errors from
// closing individual connections are discarded by evict and are not
// part of the result.
func (s *Server) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}

	var result error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	s.mu.RLock()
	sids := make([]uint64, 0, len(s.conns))
	for sid := range s.conns {
		sids = append(sids, sid)
	}
	s.mu.RUnlock()

	for _, sid := range sids {
		s.evict(sid, "server-shutdown")
	}

	s.wg.Wait()
	return result
}
