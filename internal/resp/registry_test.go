package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry(4)
	called := false
	ok := reg.Register("SET", func(conn *Connection, argv [][]byte) { called = true })
	require.True(t, ok)

	h := reg.lookup([]byte("set"))
	require.NotNil(t, h, "lookup must be case-insensitive")
	h(nil, nil)
	assert.True(t, called)
}

func TestRegistryRejectsEmptyNameOrNilHandler(t *testing.T) {
	reg := NewRegistry(4)
	assert.False(t, reg.Register("", func(conn *Connection, argv [][]byte) {}))
	assert.False(t, reg.Register("PING", nil))
}

func TestRegistryFirstRegisteredWins(t *testing.T) {
	reg := NewRegistry(4)
	first := 0
	second := 0
	require.True(t, reg.Register("PING", func(conn *Connection, argv [][]byte) { first++ }))
	require.True(t, reg.Register("PING", func(conn *Connection, argv [][]byte) { second++ }))

	reg.lookup([]byte("PING"))(nil, nil)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestRegistryCapacityExhausted(t *testing.T) {
	reg := NewRegistry(1)
	require.True(t, reg.Register("A", func(conn *Connection, argv [][]byte) {}))
	assert.False(t, reg.Register("B", func(conn *Connection, argv [][]byte) {}))
}

func TestRegistryLookupMiss(t *testing.T) {
	reg := NewRegistry(4)
	assert.Nil(t, reg.lookup([]byte("NOPE")))
}
