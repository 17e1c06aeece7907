package resp

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

// Connection is one accepted socket (component C). Its fields are the
// ones spec.md §3 names: sid, fd (here, the net.Conn), inbound,
// parsed, argv, argnum, last_active, timer, outbound.
//
// inbound/parsed/argv/argnum are only ever touched by the connection's
// own read-loop goroutine, which is this project's idiomatic-Go stand-in
// for the single event-loop thread spec.md §5 assumes (see DESIGN.md).
// last_active and the outbound socket writes can be touched from other
// goroutines (an idle-timer callback, or a handler replying
// asynchronously via Server.FindConnection), so those are guarded
// separately.
type Connection struct {
	sid      uint64
	traceID  string
	nc       net.Conn
	srv      *Server // non-owning handle; srv outlives every Connection
	remote   string

	inbound *bytebufferpool.ByteBuffer
	parsed  int
	argv    [][]byte
	argnum  int

	lastActiveNano atomic.Int64

	outMu    sync.Mutex
	outbound *bytebufferpool.ByteBuffer

	timerMu sync.Mutex
	timer   *time.Timer

	closeOnce sync.Once
	closed    atomic.Bool
}

func newConnection(sid uint64, nc net.Conn, srv *Server) *Connection {
	c := &Connection{
		sid:      sid,
		traceID:  uuid.NewString(),
		nc:       nc,
		srv:      srv,
		remote:   nc.RemoteAddr().String(),
		inbound:  bytebufferpool.Get(),
		outbound: bytebufferpool.Get(),
	}
	c.touch()
	return c
}

// SID returns the connection's session id, the handle embedders use
// with Server.FindConnection / Server.CloseConnection.
func (c *Connection) SID() uint64 { return c.sid }

// TraceID is a per-connection correlation id for log fields, distinct
// from the numeric sid used as the lookup handle.
func (c *Connection) TraceID() string { return c.traceID }

// RemoteAddr returns the client's address as captured at accept time.
func (c *Connection) RemoteAddr() string { return c.remote }

// touch updates last_active; called on every byte arrival and on
// command completion, per spec.md invariant table in §3.
func (c *Connection) touch() {
	c.lastActiveNano.Store(time.Now().UnixNano())
}

func (c *Connection) idleSeconds(now time.Time) float64 {
	last := time.Unix(0, c.lastActiveNano.Load())
	return now.Sub(last).Seconds()
}

// appendInbound appends freshly read bytes to the inbound buffer and
// refreshes last_active (Connection.append_bytes in spec.md §4.3).
func (c *Connection) appendInbound(b []byte) {
	c.inbound.Write(b) //nolint:errcheck // bytebufferpool.Write never errors
	c.touch()
}

// compact erases the consumed prefix inbound[0:parsed] and resets
// parsed to 0, atomically with clearing argv — spec.md invariant 4.
func (c *Connection) compact() {
	remaining := c.inbound.B[c.parsed:]
	c.inbound.B = append(c.inbound.B[:0], remaining...)
	c.parsed = 0
	c.argv = nil
	c.argnum = 0
}

// setNoDelay disables Nagle's algorithm, spec.md §4.3's
// set_socket_options.
func (c *Connection) setNoDelay() {
	if tc, ok := c.nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}

// writeOut appends data to the outbound buffer and immediately flushes
// it to the socket. spec.md's Non-goals explicitly exclude "pipelined
// reply coalescing as a separate optimization", so there is no
// deferred-batch path here: every encoder call in reply.go ends up
// here and is written through before returning, the same way the
// source's SendData/NetPrintf write straight to the bufferevent. The
// outbound field still exists (and is reused across calls to avoid
// reallocating) so a connection's "outbound buffer drained to the
// socket" remains a literal, inspectable piece of state.
func (c *Connection) writeOut(b []byte) int {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	c.outbound.Reset()
	c.outbound.Write(b) //nolint:errcheck

	n, err := c.nc.Write(c.outbound.B)
	if c.srv != nil && c.srv.metrics != nil && n > 0 {
		c.srv.metrics.OutboundBytesTotal.Add(float64(n))
	}
	if err != nil {
		return 0
	}
	return n
}

// armIdleTimer (re)starts the idle-eviction timer for
// tick seconds, mirroring the source's TimeoutCallback re-arming
// event_add(&evtimer, &tv) every time OnTimer decides to keep the
// connection alive.
func (c *Connection) armIdleTimer(tick time.Duration, fire func()) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed.Load() {
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(tick, fire)
		return
	}
	c.timer.Reset(tick)
}

func (c *Connection) stopTimer() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}

// onIdleTick implements spec.md §4.3's on_idle_tick: returns false once
// now-last_active exceeds idleClose, meaning the caller must evict.
func (c *Connection) onIdleTick(idleClose time.Duration) bool {
	return c.idleSeconds(time.Now()) <= idleClose.Seconds()
}

// close releases argv, outbound, inbound, timer, and the socket exactly
// once, idempotent against concurrent eviction attempts (spec.md §5).
func (c *Connection) close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.stopTimer()
		c.argv = nil
		c.argnum = 0
		bytebufferpool.Put(c.inbound)
		bytebufferpool.Put(c.outbound)
		err = c.nc.Close()
	})
	return err
}

// IsClosed reports whether the connection has already been evicted.
func (c *Connection) IsClosed() bool { return c.closed.Load() }
