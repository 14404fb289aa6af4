package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Event is a display-server notification relevant to the daemon, already
// reduced to what the reactor needs. Raw X events never leave this package.
type Event interface {
	isEvent()
}

// TopologyChanged reports any RandR screen, CRTC or output change. These
// commonly arrive in bursts for a single physical reconfiguration.
type TopologyChanged struct{}

// ClientListChanged reports that the window manager updated
// _NET_CLIENT_LIST: windows appeared or disappeared.
type ClientListChanged struct{}

// WindowConfigured reports that a tracked window was moved or resized.
// Geometry is not carried; the consumer re-queries root-relative
// coordinates, which ConfigureNotify does not reliably provide under
// reparenting window managers.
type WindowConfigured struct {
	ID xproto.Window
}

// WindowMapped reports that a window became viewable again. Unmapping
// ends tracking, so a re-map after an iconify must re-enter the window;
// the client list does not change for iconify/deiconify and cannot be
// relied on for this.
type WindowMapped struct {
	ID xproto.Window
}

// WindowGone reports that a tracked window was unmapped or destroyed.
type WindowGone struct {
	ID xproto.Window
}

func (TopologyChanged) isEvent()   {}
func (ClientListChanged) isEvent() {}
func (WindowConfigured) isEvent()  {}
func (WindowMapped) isEvent()      {}
func (WindowGone) isEvent()        {}

// SelectRootEvents subscribes to property changes on the root window so
// client-list updates are delivered.
func (c *Connection) SelectRootEvents() error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
}

// SelectWindowEvents subscribes to structure notifications (configure,
// unmap, destroy) for one client window. Event masks are per-client, so
// this does not disturb the window's owner or the window manager.
func (c *Connection) SelectWindowEvents(id xproto.Window) error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), id,
		xproto.CwEventMask, []uint32{xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return fmt.Errorf("%w: select events on 0x%x: %v", ErrWindowVanished, id, err)
	}
	return nil
}

// Events starts the event pump: a goroutine draining the X connection and
// translating raw events. The returned channel is closed when the
// connection is lost; there is no recovery, the caller exits.
func (c *Connection) Events(logger *slog.Logger) <-chan Event {
	out := make(chan Event, 32)

	go func() {
		defer close(out)
		for {
			raw, xerr := c.XUtil.Conn().WaitForEvent()
			if raw == nil && xerr == nil {
				logger.Error("display connection closed")
				return
			}
			if xerr != nil {
				// Errors from unchecked requests; per-action failure
				// handling lives with the request issuers.
				logger.Debug("x11 protocol error", "error", xerr)
				continue
			}

			if ev := c.translate(raw); ev != nil {
				out <- ev
			}
		}
	}()

	return out
}

func (c *Connection) translate(raw xgb.Event) Event {
	switch ev := raw.(type) {
	case randr.ScreenChangeNotifyEvent:
		return TopologyChanged{}
	case randr.NotifyEvent:
		// CrtcChange and OutputChange both signal topology movement.
		return TopologyChanged{}
	case xproto.PropertyNotifyEvent:
		if ev.Window == c.Root && ev.Atom == c.clientListAtom {
			return ClientListChanged{}
		}
	case xproto.ConfigureNotifyEvent:
		return WindowConfigured{ID: ev.Window}
	case xproto.MapNotifyEvent:
		// Delivered via the per-window StructureNotify mask, which
		// survives the unmap, so re-maps stay observable.
		return WindowMapped{ID: ev.Window}
	case xproto.UnmapNotifyEvent:
		return WindowGone{ID: ev.Window}
	case xproto.DestroyNotifyEvent:
		return WindowGone{ID: ev.Window}
	}
	return nil
}
