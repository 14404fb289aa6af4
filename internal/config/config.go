// Package config holds the daemon's YAML configuration: tunables for the
// settle debounce, the single-output auto-resize option, logging
// verbosity, and the window manageability policy.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSettleDelay is deliberately conservative: RandR notifications and
// the window manager's reflow arrive as bursts over hundreds of
// milliseconds.
const DefaultSettleDelay = 500 * time.Millisecond

// DefaultExcludedWindowTypes lists the EWMH window types never tracked.
var DefaultExcludedWindowTypes = []string{
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
}

// Duration wraps time.Duration so YAML accepts values like "500ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string like \"500ms\"")
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the effective daemon configuration.
type Config struct {
	// Display selects the X server; empty uses $DISPLAY.
	Display string `yaml:"display,omitempty"`

	// SettleDelay is the debounce window after a topology change.
	SettleDelay Duration `yaml:"settle_delay,omitempty"`

	// AutoResize resizes the virtual screen to match the single enabled
	// output after a topology settles. Off by default.
	AutoResize bool `yaml:"auto_resize,omitempty"`

	// Verbosity is the log level: debug, info, warn or error.
	Verbosity string `yaml:"verbosity,omitempty"`

	// ExcludeWindowTypes are EWMH window types never tracked.
	ExcludeWindowTypes []string `yaml:"exclude_window_types,omitempty"`

	// StateFile, if set, persists remembered geometry across daemon
	// restarts. Empty keeps state in memory only.
	StateFile string `yaml:"state_file,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		SettleDelay:        Duration(DefaultSettleDelay),
		Verbosity:          "info",
		ExcludeWindowTypes: append([]string(nil), DefaultExcludedWindowTypes...),
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if time.Duration(c.SettleDelay) <= 0 {
		return fmt.Errorf("settle_delay must be positive, got %s", time.Duration(c.SettleDelay))
	}
	if time.Duration(c.SettleDelay) > time.Minute {
		return fmt.Errorf("settle_delay %s is unreasonably long (max 1m)", time.Duration(c.SettleDelay))
	}
	switch c.Verbosity {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("verbosity must be debug, info, warn or error, got %q", c.Verbosity)
	}
	for _, t := range c.ExcludeWindowTypes {
		if t == "" {
			return fmt.Errorf("exclude_window_types entries must not be empty")
		}
	}
	return nil
}

// LogLevel maps the verbosity setting to a slog level. Verbosity affects
// log volume only, never behavior.
func (c *Config) LogLevel() slog.Level {
	switch c.Verbosity {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
