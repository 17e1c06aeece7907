// Package demo is an embedder example: a tiny badger-backed key/value
// store wired to the core registry through PING/ECHO/SET/GET/DEL/EXISTS
// handlers. It lives outside internal/resp deliberately — the core
// ships no backing store of its own (spec.md §1's Non-goals exclude
// "any actual command implementations"), and this package exists only
// to give the parser/dispatcher/connection machinery something real to
// drive through `respd serve` when the demo.enabled setting is on.
package demo

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Store wraps a badger.DB with the handful of operations the demo
// handlers need.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database rooted at dir. Pass
// an empty dir for an in-memory store, handy for tests.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "demo: opening badger store")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set writes key=value unconditionally.
func (s *Store) Set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Get returns the value for key, or (nil, false) if absent.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Delete removes key, returning whether it existed.
func (s *Store) Delete(key []byte) (bool, error) {
	_, existed, err := s.Get(key)
	if err != nil || !existed {
		return false, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	return true, err
}

// Exists reports whether key is present.
func (s *Store) Exists(key []byte) (bool, error) {
	_, existed, err := s.Get(key)
	return existed, err
}
