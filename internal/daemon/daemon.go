// Package daemon wires the X connection, window registry, geometry store,
// reactor and IPC server into the long-running process and owns its signal
// handling.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/config"
	"github.com/1broseidon/winkeep/internal/ipc"
	"github.com/1broseidon/winkeep/internal/reactor"
	"github.com/1broseidon/winkeep/internal/registry"
	"github.com/1broseidon/winkeep/internal/store"
	"github.com/1broseidon/winkeep/internal/topology"
	"github.com/1broseidon/winkeep/internal/x11"
)

// minSuppressTTL bounds the restore suppression window from below so that
// slow window managers cannot echo a restore back into the store.
const minSuppressTTL = time.Second

func suppressTTL(settle time.Duration) time.Duration {
	ttl := 2 * settle
	if ttl < minSuppressTTL {
		return minSuppressTTL
	}
	return ttl
}

// Run starts the daemon in the foreground and blocks until a shutdown
// signal arrives or the display connection is lost. configPath is re-read
// on SIGHUP and on IPC reload requests; display and state_file changes
// require a restart.
func Run(cfg *config.Config, configPath string, logger *slog.Logger, level *slog.LevelVar) error {
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer conn.Close()

	if err := conn.CheckWMSupport(); err != nil {
		return fmt.Errorf("window manager support check: %w", err)
	}
	if err := conn.SelectRootEvents(); err != nil {
		return fmt.Errorf("subscribe to client list changes: %w", err)
	}
	if err := conn.SelectTopologyEvents(); err != nil {
		return fmt.Errorf("subscribe to topology changes: %w", err)
	}

	st := store.New()
	if cfg.StateFile != "" {
		if err := st.Load(cfg.StateFile); err != nil {
			logger.Warn("state file unreadable, starting empty",
				"path", cfg.StateFile, "error", err)
		} else if st.Len() > 0 {
			logger.Info("state loaded", "path", cfg.StateFile, "records", st.Len())
		}
	}

	excluded := newExcludedTypes(cfg.ExcludeWindowTypes)
	policy := func(id xproto.Window) bool {
		return conn.IsManageable(id, excluded.get())
	}
	suppressor := registry.NewSuppressor(suppressTTL(time.Duration(cfg.SettleDelay)))
	reg := registry.New(policy, suppressor, logger)

	hub := newStatusHub(cfg)
	saveSnapshot := func() {}
	if cfg.StateFile != "" {
		path := cfg.StateFile
		saveSnapshot = func() {
			if err := st.Save(path); err != nil {
				logger.Warn("state snapshot failed", "path", path, "error", err)
			}
		}
	}

	rx := reactor.New(reactor.Options{
		Conn:     conn,
		Actions:  reactor.NewApplier(conn, logger),
		Registry: reg,
		Store:    st,
		Events:   conn.Events(logger),
		Logger:   logger,
		Config: reactor.Config{
			SettleDelay: time.Duration(cfg.SettleDelay),
			AutoResize:  cfg.AutoResize,
		},
		OnStatus:   hub.publish,
		OnCycleEnd: saveSnapshot,
	})

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(&provider{hub: hub, conn: conn}, reloadChan)
	if err != nil {
		return fmt.Errorf("create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	debug := &debugToggle{level: level, configured: cfg.LogLevel()}

	reload := func() {
		newCfg, err := config.LoadFromPath(configPath)
		if err != nil {
			logger.Warn("config reload failed, keeping previous settings", "error", err)
			return
		}
		rx.UpdateConfig(reactor.Config{
			SettleDelay: time.Duration(newCfg.SettleDelay),
			AutoResize:  newCfg.AutoResize,
		})
		suppressor.SetTTL(suppressTTL(time.Duration(newCfg.SettleDelay)))
		excluded.set(newCfg.ExcludeWindowTypes)
		debug.setConfigured(newCfg.LogLevel())
		hub.setConfig(newCfg)
		logger.Info("config reloaded", "path", configPath)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reloadChan:
				reload()
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					reload()
				case syscall.SIGUSR1:
					logger.Info("debug logging toggled", "enabled", debug.toggle())
				case os.Interrupt, syscall.SIGTERM:
					logger.Info("shutting down")
					cancel()
				}
			}
		}
	}()

	logger.Info("daemon started", "socket_ready", true)
	err = rx.Run(ctx)

	// The reactor goroutine is done; the store is safe to touch again.
	saveSnapshot()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// excludedTypes holds the manageability exclusion list. The reactor
// goroutine reads it through the policy closure while the signal goroutine
// replaces it on reload.
type excludedTypes struct {
	mu    sync.Mutex
	types []string
}

func newExcludedTypes(types []string) *excludedTypes {
	return &excludedTypes{types: append([]string(nil), types...)}
}

func (e *excludedTypes) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.types
}

func (e *excludedTypes) set(types []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append([]string(nil), types...)
}

// debugToggle flips the process log level between the configured level and
// debug. A reload while debug is forced updates the level to fall back to.
type debugToggle struct {
	mu         sync.Mutex
	level      *slog.LevelVar
	configured slog.Level
	forced     bool
}

func (d *debugToggle) toggle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forced = !d.forced
	if d.forced {
		d.level.Set(slog.LevelDebug)
	} else {
		d.level.Set(d.configured)
	}
	return d.forced
}

func (d *debugToggle) setConfigured(level slog.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configured = level
	if !d.forced {
		d.level.Set(level)
	}
}

// statusHub caches the reactor's published status for the IPC surface.
type statusHub struct {
	mu      sync.Mutex
	status  reactor.Status
	settle  time.Duration
	auto    bool
	started time.Time
}

func newStatusHub(cfg *config.Config) *statusHub {
	h := &statusHub{started: time.Now()}
	h.setConfig(cfg)
	return h
}

func (h *statusHub) publish(s reactor.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = s
}

func (h *statusHub) setConfig(cfg *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settle = time.Duration(cfg.SettleDelay)
	h.auto = cfg.AutoResize
}

func (h *statusHub) snapshot() ipc.StatusData {
	h.mu.Lock()
	defer h.mu.Unlock()
	return ipc.StatusData{
		State:          h.status.State,
		Fingerprint:    h.status.Fingerprint,
		TrackedWindows: h.status.TrackedWindows,
		StoredRecords:  h.status.StoredRecords,
		SettleDelayMS:  h.settle.Milliseconds(),
		AutoResize:     h.auto,
		UptimeSeconds:  int64(time.Since(h.started).Seconds()),
		DaemonRunning:  true,
	}
}

// provider answers IPC queries. Status comes from the cached reactor
// snapshot; outputs are queried live since xgb multiplexes requests safely
// across goroutines.
type provider struct {
	hub  *statusHub
	conn *x11.Connection
}

func (p *provider) Status() ipc.StatusData {
	return p.hub.snapshot()
}

func (p *provider) Outputs() (ipc.OutputsData, error) {
	outputs, err := p.conn.Outputs()
	if err != nil {
		return ipc.OutputsData{}, err
	}
	data := ipc.OutputsData{Fingerprint: string(topology.Snapshot(outputs))}
	for _, o := range outputs {
		data.Outputs = append(data.Outputs, ipc.OutputInfo{
			Name:     o.Name,
			Enabled:  o.Enabled,
			X:        o.X,
			Y:        o.Y,
			Width:    o.Width,
			Height:   o.Height,
			Rotation: o.Rotation,
		})
	}
	return data, nil
}
