package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Output represents one display head as reported by RandR. Enabled means
// the output is connected and driven by an active CRTC. Outputs are
// ephemeral: rebuilt from scratch on every query.
type Output struct {
	Name     string
	Enabled  bool
	X        int
	Y        int
	Width    int
	Height   int
	Rotation uint16
}

// Outputs queries the current output set using XRandR. Disconnected
// outputs and outputs without an active CRTC are reported with
// Enabled=false and zero geometry. Failures are transient: callers skip
// the cycle rather than abort.
func (c *Connection) Outputs() ([]Output, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: screen resources: %v", ErrProtocolUnavailable, err)
	}

	var outputs []Output
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(c.XUtil.Conn(), id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("%w: output info: %v", ErrProtocolUnavailable, err)
		}

		out := Output{Name: string(info.Name)}

		if info.Connection == randr.ConnectionConnected && info.Crtc != 0 {
			crtc, err := randr.GetCrtcInfo(c.XUtil.Conn(), info.Crtc, resources.ConfigTimestamp).Reply()
			if err != nil {
				return nil, fmt.Errorf("%w: crtc info: %v", ErrProtocolUnavailable, err)
			}
			out.Enabled = true
			out.X = int(crtc.X)
			out.Y = int(crtc.Y)
			out.Width = int(crtc.Width)
			out.Height = int(crtc.Height)
			out.Rotation = crtc.Rotation
		}

		outputs = append(outputs, out)
	}

	return outputs, nil
}

// SelectTopologyEvents subscribes to RandR screen, CRTC and output change
// notifications on the root window.
func (c *Connection) SelectTopologyEvents() error {
	mask := uint16(randr.NotifyMaskScreenChange |
		randr.NotifyMaskCrtcChange |
		randr.NotifyMaskOutputChange)
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, mask).Check(); err != nil {
		return fmt.Errorf("randr select input failed: %w", err)
	}
	return nil
}

// ResizeScreen requests a virtual screen resize matching the given output
// geometry. Physical dimensions are scaled from the current screen to
// preserve the reported DPI.
func (c *Connection) ResizeScreen(out Output) error {
	screen := c.XUtil.Screen()

	width := uint16(out.Width)
	height := uint16(out.Height)

	mmWidth := uint32(screen.WidthInMillimeters)
	mmHeight := uint32(screen.HeightInMillimeters)
	if screen.WidthInPixels > 0 && screen.HeightInPixels > 0 {
		mmWidth = uint32(out.Width) * uint32(screen.WidthInMillimeters) / uint32(screen.WidthInPixels)
		mmHeight = uint32(out.Height) * uint32(screen.HeightInMillimeters) / uint32(screen.HeightInPixels)
	}

	err := randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root, width, height, mmWidth, mmHeight).Check()
	if err != nil {
		return fmt.Errorf("%w: set screen size: %v", ErrProtocolUnavailable, err)
	}
	return nil
}
