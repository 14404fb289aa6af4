// Package reactor contains the debounced state machine that reacts to
// topology changes by restoring remembered window geometry, and the
// applier that issues the protocol requests.
package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/registry"
	"github.com/1broseidon/winkeep/internal/store"
	"github.com/1broseidon/winkeep/internal/topology"
	"github.com/1broseidon/winkeep/internal/x11"
)

// State of the reactor state machine.
type State int

const (
	// Idle: no reconfiguration in progress; geometry changes are recorded.
	Idle State = iota
	// TopologyChanging: debounce window open; further topology events
	// restart the settle timer.
	TopologyChanging
	// Restoring: settle timer elapsed, restore actions being dispatched.
	Restoring
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TopologyChanging:
		return "topology-changing"
	case Restoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// Conn is the query surface the reactor needs, implemented by
// *x11.Connection.
type Conn interface {
	Outputs() ([]x11.Output, error)
	ClientList() ([]xproto.Window, error)
	WindowGeometry(id xproto.Window) (x11.Geometry, error)
	SelectWindowEvents(id xproto.Window) error
}

// Actions is the dispatch surface, implemented by *Applier.
type Actions interface {
	ApplyGeometry(id xproto.Window, g x11.Geometry)
	ApplyOutputResize(out x11.Output)
}

// Config carries the reactor tunables. SettleDelay is deliberately
// conservative: too short races the window manager's own reflow, too long
// feels unresponsive.
type Config struct {
	SettleDelay time.Duration
	AutoResize  bool
}

// Status is a read-only snapshot published for the IPC surface.
type Status struct {
	State          string
	Fingerprint    string
	TrackedWindows int
	StoredRecords  int
}

// Options wires a Reactor.
type Options struct {
	Conn     Conn
	Actions  Actions
	Registry *registry.Registry
	Store    *store.Store
	Events   <-chan x11.Event
	Logger   *slog.Logger
	Config   Config

	// OnStatus, if set, is called from the reactor goroutine whenever the
	// published status may have changed.
	OnStatus func(Status)
	// OnCycleEnd, if set, is called after each completed restore cycle.
	OnCycleEnd func()
}

// Reactor owns no persistent data: only the transient timer and pending
// state of one settle cycle. All fields are touched exclusively from the
// goroutine running Run.
type Reactor struct {
	conn    Conn
	actions Actions
	reg     *registry.Registry
	store   *store.Store
	logger  *slog.Logger

	cfg        Config
	reload     chan Config
	events     <-chan x11.Event
	onStatus   func(Status)
	onCycleEnd func()

	state   State
	current topology.Fingerprint
	timer   *time.Timer
}

func New(opts Options) *Reactor {
	return &Reactor{
		conn:       opts.Conn,
		actions:    opts.Actions,
		reg:        opts.Registry,
		store:      opts.Store,
		logger:     opts.Logger,
		cfg:        opts.Config,
		reload:     make(chan Config, 1),
		events:     opts.Events,
		onStatus:   opts.OnStatus,
		onCycleEnd: opts.OnCycleEnd,
		state:      Idle,
	}
}

// UpdateConfig applies new tunables on the next loop iteration. Safe to
// call from other goroutines; a pending unapplied update is replaced.
func (r *Reactor) UpdateConfig(cfg Config) {
	for {
		select {
		case r.reload <- cfg:
			return
		default:
			select {
			case <-r.reload:
			default:
			}
		}
	}
}

// Run drives the event loop until the context is cancelled or the display
// connection is lost. It must be called exactly once.
func (r *Reactor) Run(ctx context.Context) error {
	if err := r.bootstrap(); err != nil {
		return err
	}

	for {
		r.publishStatus()

		select {
		case <-ctx.Done():
			return ctx.Err()

		case cfg := <-r.reload:
			r.logger.Info("reactor config updated",
				"settle_delay", cfg.SettleDelay, "auto_resize", cfg.AutoResize)
			r.cfg = cfg

		case <-r.timerChan():
			r.onSettle()

		case ev, ok := <-r.events:
			if !ok {
				return x11.ErrTransportLost
			}
			r.handleEvent(ev)
		}
	}
}

// bootstrap records the startup topology and tracks the windows already
// mapped. A failed topology query at startup is fatal: without a
// fingerprint nothing can be remembered.
func (r *Reactor) bootstrap() error {
	outputs, err := r.conn.Outputs()
	if err != nil {
		return fmt.Errorf("initial topology query failed: %w", err)
	}
	r.current = topology.Snapshot(outputs)
	r.logger.Info("initial topology", "fingerprint", string(r.current))

	r.syncClients()
	return nil
}

// timerChan returns the settle timer's channel, or nil (blocks forever)
// when no timer is armed.
func (r *Reactor) timerChan() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C
}

// armSettleTimer starts or restarts the debounce timer. At most one timer
// is ever pending; re-arming replaces it.
func (r *Reactor) armSettleTimer() {
	if r.timer == nil {
		r.timer = time.NewTimer(r.cfg.SettleDelay)
		return
	}
	if !r.timer.Stop() {
		select {
		case <-r.timer.C:
		default:
		}
	}
	r.timer.Reset(r.cfg.SettleDelay)
}

func (r *Reactor) handleEvent(ev x11.Event) {
	switch e := ev.(type) {
	case x11.TopologyChanged:
		if r.state == Idle {
			r.logger.Debug("topology change notification, settling")
		}
		r.state = TopologyChanging
		r.armSettleTimer()

	case x11.ClientListChanged:
		r.syncClients()

	case x11.WindowConfigured:
		r.onGeometryEvent(e.ID)

	case x11.WindowMapped:
		// Re-map after an iconify: the client list is unchanged, so the
		// window must be re-entered here or it stays untracked.
		r.trackWindow(e.ID)

	case x11.WindowGone:
		r.reg.OnWindowDestroyed(e.ID)
	}
}

// onGeometryEvent re-queries the window's root-relative geometry and, for
// settled user-driven changes, records it under the active fingerprint.
func (r *Reactor) onGeometryEvent(id xproto.Window) {
	if _, ok := r.reg.Tracked(id); !ok {
		return
	}

	geom, err := r.conn.WindowGeometry(id)
	if err != nil {
		r.reg.OnWindowDestroyed(id)
		return
	}

	persist := r.reg.OnGeometryChanged(id, geom)

	// Geometry fallout while a reconfiguration is settling reflects the
	// window manager's reflow, not the user: recording it would launder a
	// transient geometry under a stale fingerprint.
	if persist && r.state == Idle {
		r.store.Remember(r.current, id, geom)
	}
}

// syncClients reconciles the registry against the window manager's client
// list and begins tracking newly mapped manageable windows.
func (r *Reactor) syncClients() {
	clients, err := r.conn.ClientList()
	if err != nil {
		r.logger.Warn("client list query failed, skipping sync", "error", err)
		return
	}

	for _, id := range r.reg.Sync(clients) {
		r.trackWindow(id)
	}
}

// trackWindow begins tracking an observed mapped window if the manage
// policy admits it. A window that vanished mid-query is skipped.
func (r *Reactor) trackWindow(id xproto.Window) {
	geom, err := r.conn.WindowGeometry(id)
	if err != nil {
		return
	}
	if !r.reg.OnWindowCreated(id, geom) {
		return
	}
	if err := r.conn.SelectWindowEvents(id); err != nil {
		r.reg.OnWindowDestroyed(id)
	}
}

// onSettle fires when the debounce window closes: compute the new
// fingerprint and re-apply every remembered geometry it has records for.
func (r *Reactor) onSettle() {
	outputs, err := r.conn.Outputs()
	if err != nil {
		// Transient: treat as "no topology change" and skip the cycle.
		r.logger.Warn("topology query failed, skipping cycle", "error", err)
		r.state = Idle
		return
	}

	r.state = Restoring
	previous := r.current
	r.current = topology.Snapshot(outputs)
	if r.current != previous {
		r.logger.Info("topology settled", "fingerprint", string(r.current))
	}

	// The reconfiguration may have mapped or unmapped windows.
	r.syncClients()

	if r.cfg.AutoResize && topology.EnabledCount(outputs) == 1 {
		for _, out := range outputs {
			if out.Enabled {
				r.logger.Info("auto-resizing virtual screen",
					"output", out.Name, "width", out.Width, "height", out.Height)
				r.actions.ApplyOutputResize(out)
				break
			}
		}
	}

	restored := 0
	for _, w := range r.reg.ListTracked() {
		// A fresher reconfiguration always wins: abandon the rest of the
		// queue and start a new settle cycle.
		if r.preempted() {
			r.logger.Debug("restore cycle preempted by new topology change")
			return
		}

		remembered, ok := r.store.Lookup(r.current, w.ID)
		if !ok || remembered == w.Geometry {
			continue
		}
		// The window may have gone away while the queue was draining.
		if _, ok := r.reg.Tracked(w.ID); !ok {
			continue
		}

		r.reg.Suppressor().Mark(w.ID)
		r.actions.ApplyGeometry(w.ID, remembered)
		restored++
	}

	if restored > 0 {
		r.logger.Info("windows restored", "count", restored, "fingerprint", string(r.current))
	}
	r.state = Idle
	if r.onCycleEnd != nil {
		r.onCycleEnd()
	}
}

// preempted drains pending events without blocking. Non-topology events
// are handled in place; a topology event re-enters TopologyChanging and
// supersedes the current cycle.
func (r *Reactor) preempted() bool {
	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				// Run's select observes the closed channel next.
				return true
			}
			if _, topo := ev.(x11.TopologyChanged); topo {
				r.handleEvent(ev)
				return true
			}
			r.handleEvent(ev)
		default:
			return false
		}
	}
}

// CurrentFingerprint returns the fingerprint of the active topology as of
// the last completed query. Reactor-goroutine only.
func (r *Reactor) CurrentFingerprint() topology.Fingerprint {
	return r.current
}

func (r *Reactor) publishStatus() {
	if r.onStatus == nil {
		return
	}
	r.onStatus(Status{
		State:          r.state.String(),
		Fingerprint:    string(r.current),
		TrackedWindows: r.reg.Len(),
		StoredRecords:  r.store.Len(),
	})
}
