package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	clientListAtom xproto.Atom
}

// NewConnection establishes a connection to the X11 server and initializes
// the RandR extension. An empty display string uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	clientList, err := xprop.Atm(xu, "_NET_CLIENT_LIST")
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to intern _NET_CLIENT_LIST: %w", err)
	}

	return &Connection{
		XUtil:          xu,
		Root:           xu.RootWin(),
		clientListAtom: clientList,
	}, nil
}

// CheckWMSupport verifies the server and window manager expose what the
// daemon needs: RandR 1.2+ for topology notifications and the EWMH
// properties used to enumerate and reposition client windows.
func (c *Connection) CheckWMSupport() error {
	version, err := randr.QueryVersion(c.XUtil.Conn(), 1, 2).Reply()
	if err != nil {
		return fmt.Errorf("randr version query failed: %w", err)
	}
	if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 2) {
		return fmt.Errorf("server supports RandR %d.%d, need at least 1.2",
			version.MajorVersion, version.MinorVersion)
	}

	supported, err := ewmh.SupportedGet(c.XUtil)
	if err != nil {
		return fmt.Errorf("window manager does not advertise _NET_SUPPORTED: %w", err)
	}

	required := map[string]bool{
		"_NET_CLIENT_LIST":       false,
		"_NET_MOVERESIZE_WINDOW": false,
	}
	for _, name := range supported {
		if _, ok := required[name]; ok {
			required[name] = true
		}
	}
	for name, found := range required {
		if !found {
			return fmt.Errorf("window manager does not support %s", name)
		}
	}

	return nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
