package registry

import (
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
)

// Suppressor tracks short-lived per-window suppression windows. The
// reactor marks a window just before dispatching a restore for it;
// geometry notifications arriving while the mark is fresh are treated as
// the echo of that restore and are not persisted, so a restore never
// overwrites the record it just applied.
type Suppressor struct {
	mu        sync.Mutex
	ttl       time.Duration
	deadlines map[xproto.Window]time.Time
	now       func() time.Time
}

// NewSuppressor creates a suppressor whose marks expire after ttl.
func NewSuppressor(ttl time.Duration) *Suppressor {
	return &Suppressor{
		ttl:       ttl,
		deadlines: make(map[xproto.Window]time.Time),
		now:       time.Now,
	}
}

// SetTTL replaces the expiry applied to subsequent marks. Existing marks
// keep their deadlines. Safe to call from outside the reactor goroutine;
// used when a config reload changes the settle delay.
func (s *Suppressor) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// Mark opens (or extends) the suppression window for id.
func (s *Suppressor) Mark(id xproto.Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[id] = s.now().Add(s.ttl)
}

// Active reports whether id is inside an open suppression window. Expired
// marks are pruned as they are encountered.
func (s *Suppressor) Active(id xproto.Window) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.deadlines[id]
	if !ok {
		return false
	}
	if s.now().After(deadline) {
		delete(s.deadlines, id)
		return false
	}
	return true
}

// Drop removes the mark for id, typically when the window is destroyed.
func (s *Suppressor) Drop(id xproto.Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, id)
}
