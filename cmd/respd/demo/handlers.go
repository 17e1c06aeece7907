package demo

import (
	"github.com/tonge3199/respd/internal/resp"
)

// Register wires PING/ECHO/SET/GET/DEL/EXISTS against registry, each
// backed by store. Registration happens entirely before the server
// starts, per spec.md §4.5.
func Register(registry *resp.Registry, store *Store) {
	registry.Register("PING", handlePing)
	registry.Register("ECHO", handleEcho)
	registry.Register("SET", store.handleSet)
	registry.Register("GET", store.handleGet)
	registry.Register("DEL", store.handleDel)
	registry.Register("EXISTS", store.handleExists)
}

func handlePing(conn *resp.Connection, argv [][]byte) {
	if len(argv) >= 2 {
		resp.WriteBulk(conn, argv[1])
		return
	}
	resp.WriteStatus(conn, "PONG")
}

func handleEcho(conn *resp.Connection, argv [][]byte) {
	if len(argv) < 2 {
		resp.WriteError(conn, "ECHO", "wrong number of arguments")
		return
	}
	resp.WriteBulk(conn, argv[1])
}

func (s *Store) handleSet(conn *resp.Connection, argv [][]byte) {
	if len(argv) < 3 {
		resp.WriteError(conn, "SET", "wrong number of arguments")
		return
	}
	if err := s.Set(argv[1], argv[2]); err != nil {
		resp.WriteError(conn, "SET", err.Error())
		return
	}
	resp.WriteStatus(conn, "OK")
}

func (s *Store) handleGet(conn *resp.Connection, argv [][]byte) {
	if len(argv) < 2 {
		resp.WriteError(conn, "GET", "wrong number of arguments")
		return
	}
	value, ok, err := s.Get(argv[1])
	if err != nil {
		resp.WriteError(conn, "GET", err.Error())
		return
	}
	if !ok {
		resp.WriteNullBulk(conn)
		return
	}
	resp.WriteBulk(conn, value)
}

func (s *Store) handleDel(conn *resp.Connection, argv [][]byte) {
	if len(argv) < 2 {
		resp.WriteError(conn, "DEL", "wrong number of arguments")
		return
	}
	existed, err := s.Delete(argv[1])
	if err != nil {
		resp.WriteError(conn, "DEL", err.Error())
		return
	}
	if existed {
		resp.WriteInteger(conn, 1)
		return
	}
	resp.WriteInteger(conn, 0)
}

func (s *Store) handleExists(conn *resp.Connection, argv [][]byte) {
	if len(argv) < 2 {
		resp.WriteError(conn, "EXISTS", "wrong number of arguments")
		return
	}
	existed, err := s.Exists(argv[1])
	if err != nil {
		resp.WriteError(conn, "EXISTS", err.Error())
		return
	}
	if existed {
		resp.WriteInteger(conn, 1)
		return
	}
	resp.WriteInteger(conn, 0)
}
