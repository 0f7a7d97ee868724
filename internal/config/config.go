package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/bongocat/internal/placement"
	"gopkg.in/yaml.v3"
)

// AnimationConfig tunes the paw animation.
type AnimationConfig struct {
	MinDurationMs int  `yaml:"min_duration_ms"` // Minimum time a paw pose stays on screen.
	IgnoreClicks  bool `yaml:"ignore_clicks"`
	// BothPawsOnChord shows both paws down while keys on both sides are held.
	BothPawsOnChord bool `yaml:"both_paws_on_chord"`
}

// InputConfig configures global input sampling.
type InputConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// PlacementConfig configures where the cat window sits.
type PlacementConfig struct {
	Margin          float64 `yaml:"margin"`         // Gap to the visible frame edges.
	DefaultCorner   string  `yaml:"default_corner"` // top-left, top-right, bottom-left, bottom-right
	GuardIntervalMs int     `yaml:"guard_interval_ms"`
	WindowWidth     int     `yaml:"window_width"`
	WindowHeight    int     `yaml:"window_height"`
}

// PerAppConfig configures per-application positions and hiding.
type PerAppConfig struct {
	// Enabled is the default used until the user toggles per-app mode; the
	// toggle itself is persisted in the state file.
	Enabled        bool     `yaml:"enabled"`
	PollIntervalMs int      `yaml:"poll_interval_ms"`
	IgnoreApps     []string `yaml:"ignore_apps"`
}

// HotkeyConfig binds global shortcuts. Empty values are not bound.
type HotkeyConfig struct {
	ToggleVisibility   string `yaml:"toggle_visibility"`
	ToggleIgnoreClicks string `yaml:"toggle_ignore_clicks"`
	CycleCorner        string `yaml:"cycle_corner"`
	HideForApp         string `yaml:"hide_for_app"`
}

// Bindings returns the non-empty hotkeys keyed by action name.
func (h HotkeyConfig) Bindings() map[string]string {
	out := make(map[string]string)
	add := func(action, seq string) {
		if strings.TrimSpace(seq) != "" {
			out[action] = seq
		}
	}
	add(ActionToggleVisibility, h.ToggleVisibility)
	add(ActionToggleIgnoreClicks, h.ToggleIgnoreClicks)
	add(ActionCycleCorner, h.CycleCorner)
	add(ActionHideForApp, h.HideForApp)
	return out
}

// Hotkey action names.
const (
	ActionToggleVisibility   = "toggle_visibility"
	ActionToggleIgnoreClicks = "toggle_ignore_clicks"
	ActionCycleCorner        = "cycle_corner"
	ActionHideForApp         = "hide_for_app"
)

// Config is the effective daemon configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	StateFile string          `yaml:"state_file,omitempty"` // Empty means $XDG_STATE_HOME/bongocat/state.json
	Animation AnimationConfig `yaml:"animation"`
	Input     InputConfig     `yaml:"input"`
	Placement PlacementConfig `yaml:"placement"`
	PerApp    PerAppConfig    `yaml:"per_app"`
	Hotkeys   HotkeyConfig    `yaml:"hotkeys"`
}

const (
	DefaultMinDurationMs      = 100
	DefaultInputPollMs        = 10
	DefaultGuardIntervalMs    = 100
	DefaultAppPollIntervalMs  = 250
	DefaultWindowWidth        = 160
	DefaultWindowHeight       = 120
	DefaultMargin             = 20
	DefaultCorner             = "top-right"
	DefaultToggleVisibilityHK = "Mod4-Shift-b"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Animation: AnimationConfig{
			MinDurationMs: DefaultMinDurationMs,
		},
		Input: InputConfig{
			PollIntervalMs: DefaultInputPollMs,
		},
		Placement: PlacementConfig{
			Margin:          DefaultMargin,
			DefaultCorner:   DefaultCorner,
			GuardIntervalMs: DefaultGuardIntervalMs,
			WindowWidth:     DefaultWindowWidth,
			WindowHeight:    DefaultWindowHeight,
		},
		PerApp: PerAppConfig{
			Enabled:        true,
			PollIntervalMs: DefaultAppPollIntervalMs,
			// The cat's own window must never count as the foreground app.
			IgnoreApps: []string{"bongocat"},
		},
		Hotkeys: HotkeyConfig{
			ToggleVisibility: DefaultToggleVisibilityHK,
		},
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.Animation.MinDurationMs < 0 {
		return &ValidationError{Path: "animation.min_duration_ms", Err: fmt.Errorf("min_duration_ms must be >= 0")}
	}
	if c.Input.PollIntervalMs < 1 || c.Input.PollIntervalMs > 1000 {
		return &ValidationError{Path: "input.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be between 1 and 1000")}
	}
	if c.Placement.Margin < 0 {
		return &ValidationError{Path: "placement.margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	if corner, err := placement.ParseCorner(c.Placement.DefaultCorner); err != nil || corner == placement.Custom {
		return &ValidationError{Path: "placement.default_corner", Err: fmt.Errorf("default_corner must be one of: top-left, top-right, bottom-left, bottom-right")}
	}
	if c.Placement.GuardIntervalMs < 0 {
		return &ValidationError{Path: "placement.guard_interval_ms", Err: fmt.Errorf("guard_interval_ms must be >= 0")}
	}
	if c.Placement.WindowWidth <= 0 || c.Placement.WindowHeight <= 0 {
		return &ValidationError{Path: "placement.window_width", Err: fmt.Errorf("window_width and window_height must be > 0")}
	}
	if c.PerApp.PollIntervalMs < 50 || c.PerApp.PollIntervalMs > 5000 {
		return &ValidationError{Path: "per_app.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be between 50 and 5000")}
	}
	for i, app := range c.PerApp.IgnoreApps {
		if strings.TrimSpace(app) == "" {
			return &ValidationError{Path: fmt.Sprintf("per_app.ignore_apps[%d]", i), Err: fmt.Errorf("app id must not be empty")}
		}
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) MinDuration() time.Duration {
	return time.Duration(c.Animation.MinDurationMs) * time.Millisecond
}

func (c *Config) InputPollInterval() time.Duration {
	return time.Duration(c.Input.PollIntervalMs) * time.Millisecond
}

func (c *Config) GuardInterval() time.Duration {
	return time.Duration(c.Placement.GuardIntervalMs) * time.Millisecond
}

func (c *Config) AppPollInterval() time.Duration {
	return time.Duration(c.PerApp.PollIntervalMs) * time.Millisecond
}

// Corner returns the parsed default corner.
func (c *Config) Corner() placement.Corner {
	corner, _ := placement.ParseCorner(c.Placement.DefaultCorner)
	return corner
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
