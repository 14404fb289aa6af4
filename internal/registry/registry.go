// Package registry tracks the currently mapped, manageable top-level
// windows and their geometry. It is the only writer of tracked geometry.
package registry

import (
	"log/slog"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/x11"
)

// TrackedWindow is one manageable top-level window under observation. The
// id is opaque and server-assigned: stable for the window's lifetime, not
// across application relaunch.
type TrackedWindow struct {
	ID       xproto.Window
	Geometry x11.Geometry
}

// ManagePolicy decides whether a newly observed window should be tracked.
type ManagePolicy func(id xproto.Window) bool

// Registry owns the TrackedWindow set. All methods must be called from the
// reactor goroutine.
type Registry struct {
	windows  map[xproto.Window]TrackedWindow
	policy   ManagePolicy
	suppress *Suppressor
	logger   *slog.Logger
}

func New(policy ManagePolicy, suppress *Suppressor, logger *slog.Logger) *Registry {
	return &Registry{
		windows:  make(map[xproto.Window]TrackedWindow),
		policy:   policy,
		suppress: suppress,
		logger:   logger,
	}
}

// Suppressor exposes the suppression table shared with the reactor.
func (r *Registry) Suppressor() *Suppressor {
	return r.suppress
}

// OnWindowCreated registers a new window if it passes the manage policy.
// Returns true if the window is now tracked.
func (r *Registry) OnWindowCreated(id xproto.Window, geom x11.Geometry) bool {
	if _, ok := r.windows[id]; ok {
		return true
	}
	if !r.policy(id) {
		r.logger.Debug("window excluded by policy", "window", id)
		return false
	}
	r.windows[id] = TrackedWindow{ID: id, Geometry: geom}
	r.logger.Debug("window tracked", "window", id, "geometry", geom.String())
	return true
}

// OnWindowDestroyed removes the window. Further geometry events for the
// id are ignored until it is re-created.
func (r *Registry) OnWindowDestroyed(id xproto.Window) {
	if _, ok := r.windows[id]; !ok {
		return
	}
	delete(r.windows, id)
	r.suppress.Drop(id)
	r.logger.Debug("window untracked", "window", id)
}

// OnGeometryChanged updates the tracked geometry and reports whether the
// change should be persisted. Changes for untracked windows, no-op
// changes, and self-inflicted changes inside a suppression window are not
// persisted.
func (r *Registry) OnGeometryChanged(id xproto.Window, geom x11.Geometry) (persist bool) {
	w, ok := r.windows[id]
	if !ok {
		return false
	}
	if w.Geometry == geom {
		return false
	}
	w.Geometry = geom
	r.windows[id] = w

	if r.suppress.Active(id) {
		r.logger.Debug("geometry change suppressed", "window", id, "geometry", geom.String())
		return false
	}
	return true
}

// Tracked returns the tracked window for id, if present.
func (r *Registry) Tracked(id xproto.Window) (TrackedWindow, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// ListTracked returns a stable-order snapshot of all tracked windows.
func (r *Registry) ListTracked() []TrackedWindow {
	out := make([]TrackedWindow, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sync reconciles the tracked set against the window manager's current
// client list: windows no longer listed are untracked, and ids not yet
// tracked are returned for the caller to evaluate and register.
func (r *Registry) Sync(current []xproto.Window) (unknown []xproto.Window) {
	listed := make(map[xproto.Window]bool, len(current))
	for _, id := range current {
		listed[id] = true
		if _, ok := r.windows[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	for id := range r.windows {
		if !listed[id] {
			r.OnWindowDestroyed(id)
		}
	}
	return unknown
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int {
	return len(r.windows)
}
