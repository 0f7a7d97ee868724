package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.StateFile != nil {
		cfg.StateFile = strings.TrimSpace(*raw.StateFile)
	}

	if a := raw.Animation; a != nil {
		cfg.Animation.MinDurationMs = derefInt(a.MinDurationMs, cfg.Animation.MinDurationMs)
		cfg.Animation.IgnoreClicks = derefBool(a.IgnoreClicks, cfg.Animation.IgnoreClicks)
		cfg.Animation.BothPawsOnChord = derefBool(a.BothPawsOnChord, cfg.Animation.BothPawsOnChord)
	}

	if in := raw.Input; in != nil {
		cfg.Input.PollIntervalMs = derefInt(in.PollIntervalMs, cfg.Input.PollIntervalMs)
	}

	if p := raw.Placement; p != nil {
		if p.Margin != nil {
			cfg.Placement.Margin = *p.Margin
		}
		if p.DefaultCorner != nil {
			cfg.Placement.DefaultCorner = strings.TrimSpace(*p.DefaultCorner)
		}
		cfg.Placement.GuardIntervalMs = derefInt(p.GuardIntervalMs, cfg.Placement.GuardIntervalMs)
		cfg.Placement.WindowWidth = derefInt(p.WindowWidth, cfg.Placement.WindowWidth)
		cfg.Placement.WindowHeight = derefInt(p.WindowHeight, cfg.Placement.WindowHeight)
	}

	if pa := raw.PerApp; pa != nil {
		cfg.PerApp.Enabled = derefBool(pa.Enabled, cfg.PerApp.Enabled)
		cfg.PerApp.PollIntervalMs = derefInt(pa.PollIntervalMs, cfg.PerApp.PollIntervalMs)
		if pa.IgnoreApps != nil {
			cfg.PerApp.IgnoreApps = append([]string(nil), pa.IgnoreApps...)
		}
	}

	if h := raw.Hotkeys; h != nil {
		cfg.Hotkeys.ToggleVisibility = derefString(h.ToggleVisibility, cfg.Hotkeys.ToggleVisibility)
		cfg.Hotkeys.ToggleIgnoreClicks = derefString(h.ToggleIgnoreClicks, cfg.Hotkeys.ToggleIgnoreClicks)
		cfg.Hotkeys.CycleCorner = derefString(h.CycleCorner, cfg.Hotkeys.CycleCorner)
		cfg.Hotkeys.HideForApp = derefString(h.HideForApp, cfg.Hotkeys.HideForApp)
	}

	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}
