package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Geometry is a window's root-relative position and size in pixels.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y)
}

// stickyDesktop is the _NET_WM_DESKTOP value for windows shown on all
// desktops, typically panels.
const stickyDesktop = 0xFFFFFFFF

// ClientList returns the window manager's list of managed client windows.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("%w: client list: %v", ErrProtocolUnavailable, err)
	}
	return clients, nil
}

// WindowGeometry returns the window's current geometry translated to root
// coordinates. A window that disappeared mid-query yields ErrWindowVanished.
func (c *Connection) WindowGeometry(id xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: geometry of 0x%x: %v", ErrWindowVanished, id, err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), id, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: translate 0x%x: %v", ErrWindowVanished, id, err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsManageable reports whether repositioning the window is advisable.
// Override-redirect windows, excluded EWMH window types, sticky windows
// and fullscreen windows are left alone.
func (c *Connection) IsManageable(id xproto.Window, excludedTypes []string) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), id).Reply()
	if err != nil {
		return false
	}
	if attrs.OverrideRedirect {
		return false
	}

	if types, err := ewmh.WmWindowTypeGet(c.XUtil, id); err == nil {
		for _, t := range types {
			for _, excluded := range excludedTypes {
				if t == excluded {
					return false
				}
			}
		}
	}

	// Windows pinned to all desktops are usually panels.
	if desktop, err := ewmh.WmDesktopGet(c.XUtil, id); err == nil && desktop == stickyDesktop {
		return false
	}

	if states, err := ewmh.WmStateGet(c.XUtil, id); err == nil {
		for _, state := range states {
			if state == "_NET_WM_STATE_STICKY" || state == "_NET_WM_STATE_FULLSCREEN" {
				return false
			}
		}
	}

	return true
}

// MoveResizeWindow asks the window manager to move and resize a window via
// a _NET_MOVERESIZE_WINDOW client message. Static gravity with a pager
// source indication lets a cooperative WM honor the request instead of
// having its placement overridden.
func (c *Connection) MoveResizeWindow(id xproto.Window, g Geometry) error {
	x := g.X
	if x < 0 {
		x = 0
	}
	y := g.Y
	if y < 0 {
		y = 0
	}

	const sourcePager = 2
	err := ewmh.MoveresizeWindowExtra(c.XUtil, id, x, y, g.Width, g.Height,
		xproto.GravityStatic, sourcePager, true, true)
	if err != nil {
		return fmt.Errorf("%w: moveresize 0x%x: %v", ErrProtocolUnavailable, id, err)
	}
	return nil
}
