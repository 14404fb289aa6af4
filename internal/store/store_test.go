package store

import (
	"path/filepath"
	"testing"

	"github.com/1broseidon/winkeep/internal/topology"
	"github.com/1broseidon/winkeep/internal/x11"
)

func TestStore_RoundTrip(t *testing.T) {
	s := New()
	fp := topology.Fingerprint("DP-1:1920x1080+0+0/1")
	g := x11.Geometry{X: 100, Y: 100, Width: 800, Height: 600}

	s.Remember(fp, 0x1a, g)

	got, ok := s.Lookup(fp, 0x1a)
	if !ok {
		t.Fatalf("expected record to be present")
	}
	if got != g {
		t.Fatalf("expected %v, got %v", g, got)
	}
}

func TestStore_UnknownKeyMisses(t *testing.T) {
	s := New()
	fp := topology.Fingerprint("DP-1:1920x1080+0+0/1")
	s.Remember(fp, 0x1a, x11.Geometry{Width: 800, Height: 600})

	if _, ok := s.Lookup(fp, 0x1b); ok {
		t.Fatalf("unexpected hit for unknown window")
	}
	if _, ok := s.Lookup(topology.Fingerprint("other"), 0x1a); ok {
		t.Fatalf("unexpected hit for unknown fingerprint")
	}
}

func TestStore_RememberOverwrites(t *testing.T) {
	s := New()
	fp := topology.Fingerprint("fp")

	s.Remember(fp, 0x1a, x11.Geometry{X: 1, Y: 2, Width: 3, Height: 4})
	s.Remember(fp, 0x1a, x11.Geometry{X: 5, Y: 6, Width: 7, Height: 8})

	got, _ := s.Lookup(fp, 0x1a)
	want := x11.Geometry{X: 5, Y: 6, Width: 7, Height: 8}
	if got != want {
		t.Fatalf("expected overwrite to %v, got %v", want, got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "winkeep.json")

	s := New()
	fpA := topology.Fingerprint("DP-1:1920x1080+0+0/1")
	fpB := topology.Fingerprint("DP-1:1920x1080+0+0/1,HDMI-1:2560x1440+1920+0/1")
	s.Remember(fpA, 0x2c, x11.Geometry{X: 100, Y: 100, Width: 800, Height: 600})
	s.Remember(fpB, 0x2c, x11.Geometry{X: 0, Y: 0, Width: 1024, Height: 768})

	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 records after load, got %d", loaded.Len())
	}
	got, ok := loaded.Lookup(fpA, 0x2c)
	if !ok || got != (x11.Geometry{X: 100, Y: 100, Width: 800, Height: 600}) {
		t.Fatalf("unexpected record after load: %v ok=%v", got, ok)
	}
}

func TestStore_LoadMissingFileIsNoop(t *testing.T) {
	s := New()
	if err := s.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", s.Len())
	}
}
