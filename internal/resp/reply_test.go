package resp

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeThenRead runs write (a net.Pipe write blocks until someone reads,
// so it cannot happen on the test goroutine) concurrently with a read of
// want bytes off client, and returns what writeFn reported along with
// what arrived.
func writeThenRead(t *testing.T, client net.Conn, want int, writeFn func() int) (int, []byte) {
	t.Helper()
	nCh := make(chan int, 1)
	go func() { nCh <- writeFn() }()

	buf := make([]byte, want)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	return <-nCh, buf
}

func TestWriteStatus(t *testing.T) {
	c, client := newTestConnection(t)
	n, got := writeThenRead(t, client, len("+OK\r\n"), func() int { return WriteStatus(c, "OK") })
	assert.Equal(t, []byte("+OK\r\n"), got)
	assert.Equal(t, len(got), n)
}

func TestWriteError(t *testing.T) {
	c, client := newTestConnection(t)
	want := "-FOO not suport\r\n"
	n, got := writeThenRead(t, client, len(want), func() int { return WriteError(c, "FOO", "not suport") })
	assert.Equal(t, []byte(want), got)
	assert.Equal(t, len(want), n)
}

func TestWriteNullBulk(t *testing.T) {
	c, client := newTestConnection(t)
	n, got := writeThenRead(t, client, len("$-1\r\n"), func() int { return WriteNullBulk(c) })
	assert.Equal(t, []byte("$-1\r\n"), got)
	assert.Equal(t, len(got), n)
}

func TestWriteInteger(t *testing.T) {
	c, client := newTestConnection(t)
	n, got := writeThenRead(t, client, len(":42\r\n"), func() int { return WriteInteger(c, 42) })
	assert.Equal(t, []byte(":42\r\n"), got)
	assert.Equal(t, len(got), n)
}

func TestWriteBulk(t *testing.T) {
	c, client := newTestConnection(t)
	want := "$5\r\nhello\r\n"
	n, got := writeThenRead(t, client, len(want), func() int { return WriteBulk(c, []byte("hello")) })
	assert.Equal(t, []byte(want), got)
	assert.Equal(t, len(want), n)
}

func TestWriteBulkNil(t *testing.T) {
	c, client := newTestConnection(t)
	n, got := writeThenRead(t, client, len("$-1\r\n"), func() int { return WriteBulk(c, nil) })
	assert.Equal(t, []byte("$-1\r\n"), got)
	assert.Equal(t, len(got), n)
}

func TestWriteMultiBulk(t *testing.T) {
	c, client := newTestConnection(t)
	want := "*3\r\n$1\r\na\r\n$-1\r\n$2\r\nbc\r\n"
	n, got := writeThenRead(t, client, len(want), func() int {
		return WriteMultiBulk(c, [][]byte{[]byte("a"), nil, []byte("bc")})
	})
	assert.Equal(t, []byte(want), got)
	assert.Equal(t, len(want), n)
}

func TestWriteMultiBulkEmpty(t *testing.T) {
	c, client := newTestConnection(t)
	n, got := writeThenRead(t, client, len("*0\r\n"), func() int { return WriteMultiBulk(c, nil) })
	assert.Equal(t, []byte("*0\r\n"), got)
	assert.Equal(t, len(got), n)
}
