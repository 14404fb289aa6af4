package reactor

import (
	"errors"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/x11"
)

// Requester is the protocol surface the applier issues requests through,
// implemented by *x11.Connection.
type Requester interface {
	MoveResizeWindow(id xproto.Window, g x11.Geometry) error
	ResizeScreen(out x11.Output) error
}

// Applier issues geometry-restore and output-resize requests. Requests are
// asynchronous and cooperative: the window manager may honor, delay or
// ignore them. Failures are logged and dropped, never fatal; one retry is
// attempted for transient protocol failures.
type Applier struct {
	conn   Requester
	logger *slog.Logger
}

func NewApplier(conn Requester, logger *slog.Logger) *Applier {
	return &Applier{conn: conn, logger: logger}
}

// ApplyGeometry requests a move/resize of id to g. A vanished window is
// dropped silently (debug only); a transient protocol failure is retried
// once, then dropped.
func (a *Applier) ApplyGeometry(id xproto.Window, g x11.Geometry) {
	err := a.conn.MoveResizeWindow(id, g)
	if err == nil {
		return
	}
	if errors.Is(err, x11.ErrWindowVanished) {
		a.logger.Debug("restore target gone", "window", id, "error", err)
		return
	}

	if retryErr := a.conn.MoveResizeWindow(id, g); retryErr != nil {
		a.logger.Warn("restore request failed", "window", id, "geometry", g.String(), "error", retryErr)
	}
}

// ApplyOutputResize requests a virtual screen resize to the output's
// geometry. Same failure policy as ApplyGeometry.
func (a *Applier) ApplyOutputResize(out x11.Output) {
	err := a.conn.ResizeScreen(out)
	if err == nil {
		return
	}

	if retryErr := a.conn.ResizeScreen(out); retryErr != nil {
		a.logger.Warn("output resize request failed",
			"output", out.Name, "width", out.Width, "height", out.Height, "error", retryErr)
	}
}
