package topology

import (
	"testing"

	"github.com/1broseidon/winkeep/internal/x11"
)

func TestSnapshot_OrderIndependent(t *testing.T) {
	a := []x11.Output{
		{Name: "DP-1", Enabled: true, X: 0, Y: 0, Width: 1920, Height: 1080},
		{Name: "HDMI-1", Enabled: true, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	b := []x11.Output{a[1], a[0]}

	if Snapshot(a) != Snapshot(b) {
		t.Fatalf("expected equal fingerprints, got %q vs %q", Snapshot(a), Snapshot(b))
	}
}

func TestSnapshot_IgnoresDisabledOutputs(t *testing.T) {
	enabled := []x11.Output{
		{Name: "eDP-1", Enabled: true, Width: 1920, Height: 1080},
	}
	withDisabled := []x11.Output{
		{Name: "eDP-1", Enabled: true, Width: 1920, Height: 1080},
		{Name: "HDMI-1", Enabled: false},
	}

	if Snapshot(enabled) != Snapshot(withDisabled) {
		t.Fatalf("disabled output changed fingerprint: %q vs %q",
			Snapshot(enabled), Snapshot(withDisabled))
	}
}

func TestSnapshot_SensitiveToGeometryAndRotation(t *testing.T) {
	base := x11.Output{Name: "DP-1", Enabled: true, X: 0, Y: 0, Width: 1920, Height: 1080, Rotation: 1}

	variants := []x11.Output{
		{Name: "DP-2", Enabled: true, X: 0, Y: 0, Width: 1920, Height: 1080, Rotation: 1},
		{Name: "DP-1", Enabled: true, X: 100, Y: 0, Width: 1920, Height: 1080, Rotation: 1},
		{Name: "DP-1", Enabled: true, X: 0, Y: 100, Width: 1920, Height: 1080, Rotation: 1},
		{Name: "DP-1", Enabled: true, X: 0, Y: 0, Width: 2560, Height: 1080, Rotation: 1},
		{Name: "DP-1", Enabled: true, X: 0, Y: 0, Width: 1920, Height: 1440, Rotation: 1},
		{Name: "DP-1", Enabled: true, X: 0, Y: 0, Width: 1920, Height: 1080, Rotation: 2},
	}

	want := Snapshot([]x11.Output{base})
	for i, v := range variants {
		if got := Snapshot([]x11.Output{v}); got == want {
			t.Fatalf("variant %d should differ from base fingerprint %q", i, want)
		}
	}
}

func TestSnapshot_SeparatorsInNameDoNotCollide(t *testing.T) {
	// A single output whose name spells out a two-output encoding must
	// not fingerprint like the real two-output set.
	spoofed := []x11.Output{
		{Name: "DP-1:1x1+0+0/1,DP-2", Enabled: true, Width: 1, Height: 1, Rotation: 1},
	}
	twoOutputs := []x11.Output{
		{Name: "DP-1", Enabled: true, Width: 1, Height: 1, Rotation: 1},
		{Name: "DP-2", Enabled: true, Width: 1, Height: 1, Rotation: 1},
	}

	if Snapshot(spoofed) == Snapshot(twoOutputs) {
		t.Fatalf("separator characters in output name collided: %q", Snapshot(spoofed))
	}
}

func TestSnapshot_EmptySet(t *testing.T) {
	if Snapshot(nil) != None {
		t.Fatalf("expected empty fingerprint for no outputs, got %q", Snapshot(nil))
	}
}

func TestEnabledCount(t *testing.T) {
	outputs := []x11.Output{
		{Name: "a", Enabled: true},
		{Name: "b"},
		{Name: "c", Enabled: true},
	}
	if n := EnabledCount(outputs); n != 2 {
		t.Fatalf("expected 2 enabled outputs, got %d", n)
	}
}
