package x11

import "errors"

// Error taxonomy for the daemon. Per-cycle failures wrap
// ErrProtocolUnavailable and are skipped; a restore target that
// disappeared wraps ErrWindowVanished and is dropped; only
// ErrTransportLost terminates the process.
var (
	ErrProtocolUnavailable = errors.New("x11: protocol request failed")
	ErrWindowVanished      = errors.New("x11: window no longer exists")
	ErrTransportLost       = errors.New("x11: display connection lost")
)
