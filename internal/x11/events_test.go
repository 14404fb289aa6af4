package x11

import (
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

func TestTranslate_StructureEvents(t *testing.T) {
	c := &Connection{}

	tests := []struct {
		name string
		raw  xgb.Event
		want Event
	}{
		{"configure", xproto.ConfigureNotifyEvent{Window: 0x42}, WindowConfigured{ID: 0x42}},
		{"map", xproto.MapNotifyEvent{Window: 0x42}, WindowMapped{ID: 0x42}},
		{"unmap", xproto.UnmapNotifyEvent{Window: 0x42}, WindowGone{ID: 0x42}},
		{"destroy", xproto.DestroyNotifyEvent{Window: 0x42}, WindowGone{ID: 0x42}},
		{"screen change", randr.ScreenChangeNotifyEvent{}, TopologyChanged{}},
		{"crtc change", randr.NotifyEvent{}, TopologyChanged{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.translate(tt.raw)
			if got != tt.want {
				t.Fatalf("translate(%T) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTranslate_IgnoresUnrelatedPropertyNotify(t *testing.T) {
	c := &Connection{Root: 1, clientListAtom: 7}

	if got := c.translate(xproto.PropertyNotifyEvent{Window: 2, Atom: 7}); got != nil {
		t.Fatalf("property change on non-root window translated to %v", got)
	}
	if got := c.translate(xproto.PropertyNotifyEvent{Window: 1, Atom: 9}); got != nil {
		t.Fatalf("unrelated root property change translated to %v", got)
	}
	if got := c.translate(xproto.PropertyNotifyEvent{Window: 1, Atom: 7}); got != (ClientListChanged{}) {
		t.Fatalf("client list change translated to %v", got)
	}
}
