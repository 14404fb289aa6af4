package registry

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/x11"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allowAll(xproto.Window) bool { return true }

func TestRegistry_PolicyExcludesWindow(t *testing.T) {
	policy := func(id xproto.Window) bool { return id != 0x2 }
	r := New(policy, NewSuppressor(time.Second), testLogger())

	if !r.OnWindowCreated(0x1, x11.Geometry{Width: 100, Height: 100}) {
		t.Fatalf("expected window 0x1 to be tracked")
	}
	if r.OnWindowCreated(0x2, x11.Geometry{Width: 100, Height: 100}) {
		t.Fatalf("expected window 0x2 to be excluded")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 tracked window, got %d", r.Len())
	}
}

func TestRegistry_GeometryAfterDestroyIgnored(t *testing.T) {
	r := New(allowAll, NewSuppressor(time.Second), testLogger())

	r.OnWindowCreated(0x1, x11.Geometry{Width: 100, Height: 100})
	r.OnWindowDestroyed(0x1)

	if r.OnGeometryChanged(0x1, x11.Geometry{X: 5, Width: 100, Height: 100}) {
		t.Fatalf("geometry change for destroyed window should not persist")
	}
	if _, ok := r.Tracked(0x1); ok {
		t.Fatalf("destroyed window still tracked")
	}
}

func TestRegistry_GeometryChangePersists(t *testing.T) {
	r := New(allowAll, NewSuppressor(time.Second), testLogger())
	r.OnWindowCreated(0x1, x11.Geometry{Width: 100, Height: 100})

	moved := x11.Geometry{X: 10, Y: 20, Width: 100, Height: 100}
	if !r.OnGeometryChanged(0x1, moved) {
		t.Fatalf("expected user-driven geometry change to persist")
	}
	w, _ := r.Tracked(0x1)
	if w.Geometry != moved {
		t.Fatalf("expected geometry %v, got %v", moved, w.Geometry)
	}

	// Same geometry again is a no-op.
	if r.OnGeometryChanged(0x1, moved) {
		t.Fatalf("no-op geometry change should not persist")
	}
}

func TestRegistry_SuppressionBlocksPersist(t *testing.T) {
	sup := NewSuppressor(time.Minute)
	r := New(allowAll, sup, testLogger())
	r.OnWindowCreated(0x1, x11.Geometry{Width: 100, Height: 100})

	sup.Mark(0x1)

	echoed := x11.Geometry{X: 50, Y: 50, Width: 100, Height: 100}
	if r.OnGeometryChanged(0x1, echoed) {
		t.Fatalf("suppressed geometry change should not persist")
	}
	// The tracked geometry is still updated so the local view stays fresh.
	w, _ := r.Tracked(0x1)
	if w.Geometry != echoed {
		t.Fatalf("expected tracked geometry to follow suppressed change, got %v", w.Geometry)
	}
}

func TestSuppressor_Expires(t *testing.T) {
	sup := NewSuppressor(time.Minute)
	base := time.Unix(1000, 0)
	sup.now = func() time.Time { return base }

	sup.Mark(0x1)
	if !sup.Active(0x1) {
		t.Fatalf("expected fresh mark to be active")
	}

	sup.now = func() time.Time { return base.Add(2 * time.Minute) }
	if sup.Active(0x1) {
		t.Fatalf("expected mark to expire after ttl")
	}
	// Expired mark is pruned.
	if len(sup.deadlines) != 0 {
		t.Fatalf("expected expired mark to be removed")
	}
}

func TestSuppressor_SetTTLAppliesToNewMarks(t *testing.T) {
	sup := NewSuppressor(time.Second)
	base := time.Unix(1000, 0)
	sup.now = func() time.Time { return base }

	// Settle delay grows on reload; the suppression window must follow.
	sup.SetTTL(time.Minute)
	sup.Mark(0x1)

	sup.now = func() time.Time { return base.Add(30 * time.Second) }
	if !sup.Active(0x1) {
		t.Fatalf("mark expired against the pre-reload ttl")
	}

	sup.now = func() time.Time { return base.Add(2 * time.Minute) }
	if sup.Active(0x1) {
		t.Fatalf("expected mark to expire after the updated ttl")
	}
}

func TestRegistry_SyncReconcilesClientList(t *testing.T) {
	r := New(allowAll, NewSuppressor(time.Second), testLogger())
	r.OnWindowCreated(0x1, x11.Geometry{Width: 10, Height: 10})
	r.OnWindowCreated(0x2, x11.Geometry{Width: 10, Height: 10})

	unknown := r.Sync([]xproto.Window{0x2, 0x3})

	if len(unknown) != 1 || unknown[0] != 0x3 {
		t.Fatalf("expected 0x3 to be reported unknown, got %v", unknown)
	}
	if _, ok := r.Tracked(0x1); ok {
		t.Fatalf("expected 0x1 to be untracked after sync")
	}
	if _, ok := r.Tracked(0x2); !ok {
		t.Fatalf("expected 0x2 to remain tracked")
	}
}

func TestRegistry_ListTrackedSnapshot(t *testing.T) {
	r := New(allowAll, NewSuppressor(time.Second), testLogger())
	r.OnWindowCreated(0x3, x11.Geometry{Width: 1, Height: 1})
	r.OnWindowCreated(0x1, x11.Geometry{Width: 2, Height: 2})

	list := r.ListTracked()
	if len(list) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(list))
	}
	if list[0].ID != 0x1 || list[1].ID != 0x3 {
		t.Fatalf("expected stable id order, got %v", list)
	}
}
