package daemon

import (
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/winkeep/internal/config"
	"github.com/1broseidon/winkeep/internal/reactor"
)

func TestSuppressTTL(t *testing.T) {
	if got := suppressTTL(500 * time.Millisecond); got != time.Second {
		t.Fatalf("500ms settle: got %s, want 1s floor", got)
	}
	if got := suppressTTL(2 * time.Second); got != 4*time.Second {
		t.Fatalf("2s settle: got %s, want 4s", got)
	}
}

func TestDebugToggle(t *testing.T) {
	var lv slog.LevelVar
	lv.Set(slog.LevelInfo)
	d := &debugToggle{level: &lv, configured: slog.LevelInfo}

	if !d.toggle() {
		t.Fatal("first toggle should enable debug")
	}
	if lv.Level() != slog.LevelDebug {
		t.Fatalf("level after enable: %v", lv.Level())
	}

	// A reload while debug is forced must not clobber the forced level.
	d.setConfigured(slog.LevelWarn)
	if lv.Level() != slog.LevelDebug {
		t.Fatalf("reload clobbered forced debug level: %v", lv.Level())
	}

	if d.toggle() {
		t.Fatal("second toggle should disable debug")
	}
	if lv.Level() != slog.LevelWarn {
		t.Fatalf("level after disable should be reloaded level, got %v", lv.Level())
	}
}

func TestExcludedTypesReplace(t *testing.T) {
	e := newExcludedTypes([]string{"_NET_WM_WINDOW_TYPE_DOCK"})
	if got := e.get(); len(got) != 1 || got[0] != "_NET_WM_WINDOW_TYPE_DOCK" {
		t.Fatalf("initial list: %v", got)
	}
	e.set([]string{"_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_SPLASH"})
	if got := e.get(); len(got) != 2 {
		t.Fatalf("replaced list: %v", got)
	}
}

func TestStatusHubSnapshot(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoResize = true
	hub := newStatusHub(cfg)

	hub.publish(reactor.Status{
		State:          "idle",
		Fingerprint:    "eDP-1:1920x1080+0+0/1",
		TrackedWindows: 3,
		StoredRecords:  7,
	})

	snap := hub.snapshot()
	if !snap.DaemonRunning {
		t.Fatal("snapshot should report the daemon as running")
	}
	if snap.State != "idle" || snap.TrackedWindows != 3 || snap.StoredRecords != 7 {
		t.Fatalf("snapshot does not reflect published status: %+v", snap)
	}
	if snap.SettleDelayMS != config.DefaultSettleDelay.Milliseconds() {
		t.Fatalf("settle delay: got %d ms", snap.SettleDelayMS)
	}
	if !snap.AutoResize {
		t.Fatal("auto resize flag lost")
	}
}
