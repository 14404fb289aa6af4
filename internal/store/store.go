// Package store remembers window geometry per display topology. Records
// are process-lifetime by default; an optional snapshot file carries them
// across restarts.
package store

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/topology"
	"github.com/1broseidon/winkeep/internal/x11"
)

type key struct {
	fingerprint topology.Fingerprint
	window      xproto.Window
}

// Store maps (topology fingerprint, window id) to remembered geometry.
// There is no eviction: stale records for windows that never reappear are
// never looked up again, and the key space stays small in practice.
//
// The store is owned by the reactor goroutine and is not safe for
// concurrent use.
type Store struct {
	records map[key]x11.Geometry
}

func New() *Store {
	return &Store{records: make(map[key]x11.Geometry)}
}

// Remember inserts or overwrites the record for the key. Idempotent.
func (s *Store) Remember(fp topology.Fingerprint, id xproto.Window, g x11.Geometry) {
	s.records[key{fp, id}] = g
}

// Lookup returns the remembered geometry for the key, if any.
func (s *Store) Lookup(fp topology.Fingerprint, id xproto.Window) (x11.Geometry, bool) {
	g, ok := s.records[key{fp, id}]
	return g, ok
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}
