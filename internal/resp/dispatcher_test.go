package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonge3199/respd/internal/metrics"
)

func TestDispatchKnownCommand(t *testing.T) {
	reg := NewRegistry(4)
	var gotArgv [][]byte
	require.True(t, reg.Register("ECHO", func(conn *Connection, argv [][]byte) { gotArgv = argv }))

	m, _ := metrics.NewUnregistered()
	d := NewDispatcher(reg, m)
	c, _ := newTestConnection(t)

	d.Dispatch(c, [][]byte{[]byte("echo"), []byte("hi")})

	assert.Equal(t, [][]byte{[]byte("echo"), []byte("hi")}, gotArgv)
}

func TestDispatchUnknownCommandWritesNotSuport(t *testing.T) {
	reg := NewRegistry(4)
	m, _ := metrics.NewUnregistered()
	d := NewDispatcher(reg, m)
	c, client := newTestConnection(t)

	want := "-NOPE not suport\r\n"
	n, got := writeThenRead(t, client, len(want), func() int {
		d.Dispatch(c, [][]byte{[]byte("NOPE")})
		return len(want)
	})
	_ = n
	assert.Equal(t, []byte(want), got)
}

func TestDispatchEmptyArgvIsNoop(t *testing.T) {
	reg := NewRegistry(4)
	d := NewDispatcher(reg, nil)
	c, _ := newTestConnection(t)

	assert.NotPanics(t, func() { d.Dispatch(c, nil) })
}
