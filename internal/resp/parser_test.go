package resp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnection builds a Connection over an in-memory pipe so tests
// can feed inbound bytes and inspect what gets written back without a
// real socket.
func newTestConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	c := newConnection(1000, server, nil)
	return c, client
}

func TestScanHeader(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantValue    int
		wantConsumed int
		wantStatus   headerStatus
	}{
		{"simple", "3\r\n", 3, 3, headerOK},
		{"no crlf yet", "3", 0, 0, headerIncomplete},
		{"bare lf", "12\n", 12, 3, headerOK},
		{"zero", "0\r\n", 0, 3, headerOK},
		{"too long", "123456789012345678901234\n", 0, 0, headerTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, consumed, status := scanHeader([]byte(tt.in), defaultMaxHeaderDigits)
			assert.Equal(t, tt.wantStatus, status)
			if status == headerOK {
				assert.Equal(t, tt.wantValue, value)
				assert.Equal(t, tt.wantConsumed, consumed)
			}
		})
	}
}

func recordingRegistry(t *testing.T) (*Registry, *[][][]byte) {
	t.Helper()
	var calls [][][]byte
	reg := NewRegistry(16)
	ok := reg.Register("ECHO", func(conn *Connection, argv [][]byte) {
		calls = append(calls, argv)
	})
	require.True(t, ok)
	return reg, &calls
}

func TestParserDriveWholeRequestAtOnce(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"))
	require.NoError(t, p.Drive(c))

	require.Len(t, *calls, 1)
	assert.Equal(t, [][]byte{[]byte("ECHO"), []byte("hi")}, (*calls)[0])
	assert.Equal(t, 0, c.parsed)
	assert.Equal(t, 0, c.argnum)
}

func TestParserDriveByteAtATime(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	full := []byte("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n")
	for _, b := range full {
		c.appendInbound([]byte{b})
		require.NoError(t, p.Drive(c))
	}

	require.Len(t, *calls, 1)
	assert.Equal(t, [][]byte{[]byte("ECHO"), []byte("hi")}, (*calls)[0])
}

func TestParserDriveTwoRequestsConcatenated(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*1\r\n$4\r\nECHO\r\n*1\r\n$4\r\nECHO\r\n"))
	require.NoError(t, p.Drive(c))

	assert.Len(t, *calls, 2)
}

func TestParserStallsOnZeroCount(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*0\r\n"))
	require.NoError(t, p.Drive(c))

	assert.Empty(t, *calls)
	assert.Equal(t, 0, c.parsed, "a zero count must not be consumed")
}

func TestParserStallsOnGarbageLeadByte(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("garbage"))
	require.NoError(t, p.Drive(c))

	assert.Empty(t, *calls)
	assert.Equal(t, 0, c.parsed)
}

func TestParserEmptyBulkArgument(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*2\r\n$4\r\nECHO\r\n$0\r\n\r\n"))
	require.NoError(t, p.Drive(c))

	require.Len(t, *calls, 1)
	assert.Equal(t, []byte{}, (*calls)[0][1])
}

func TestParserBulkArgumentWithEmbeddedCRLF(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*2\r\n$4\r\nECHO\r\n$4\r\na\r\nb\r\n"))
	require.NoError(t, p.Drive(c))

	require.Len(t, *calls, 1)
	assert.Equal(t, []byte("a\r\nb"), (*calls)[0][1])
}

func TestParserHeaderTooLongIsFatal(t *testing.T) {
	reg, _ := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*123456789012345678901234567890\r\n"))
	err := p.Drive(c)
	assert.ErrorIs(t, err, ErrHeaderTooLong)
}

func TestParserPartialHeaderWaitsForMoreData(t *testing.T) {
	reg, calls := recordingRegistry(t)
	p := NewParser(NewDispatcher(reg, nil))
	c, _ := newTestConnection(t)

	c.appendInbound([]byte("*2\r\n$4\r\nECH"))
	require.NoError(t, p.Drive(c))
	assert.Empty(t, *calls)

	c.appendInbound([]byte("O\r\n$2\r\nhi\r\n"))
	require.NoError(t, p.Drive(c))
	assert.Len(t, *calls, 1)
}
