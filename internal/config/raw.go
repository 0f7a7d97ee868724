package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawAnimation struct {
	MinDurationMs   *int  `yaml:"min_duration_ms"`
	IgnoreClicks    *bool `yaml:"ignore_clicks"`
	BothPawsOnChord *bool `yaml:"both_paws_on_chord"`
}

type RawInput struct {
	PollIntervalMs *int `yaml:"poll_interval_ms"`
}

type RawPlacement struct {
	Margin          *float64 `yaml:"margin"`
	DefaultCorner   *string  `yaml:"default_corner"`
	GuardIntervalMs *int     `yaml:"guard_interval_ms"`
	WindowWidth     *int     `yaml:"window_width"`
	WindowHeight    *int     `yaml:"window_height"`
}

type RawPerApp struct {
	Enabled        *bool    `yaml:"enabled"`
	PollIntervalMs *int     `yaml:"poll_interval_ms"`
	IgnoreApps     []string `yaml:"ignore_apps"`
}

type RawHotkeys struct {
	ToggleVisibility   *string `yaml:"toggle_visibility"`
	ToggleIgnoreClicks *string `yaml:"toggle_ignore_clicks"`
	CycleCorner        *string `yaml:"cycle_corner"`
	HideForApp         *string `yaml:"hide_for_app"`
}

// RawConfig mirrors the file format. Nil fields were not set by any file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	LogLevel  *string       `yaml:"log_level"`
	StateFile *string       `yaml:"state_file"`
	Animation *RawAnimation `yaml:"animation"`
	Input     *RawInput     `yaml:"input"`
	Placement *RawPlacement `yaml:"placement"`
	PerApp    *RawPerApp    `yaml:"per_app"`
	Hotkeys   *RawHotkeys   `yaml:"hotkeys"`
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.StateFile != nil {
		out.StateFile = overlay.StateFile
	}
	if overlay.Animation != nil {
		merged := mergeRawAnimation(derefOr(out.Animation), *overlay.Animation)
		out.Animation = &merged
	}
	if overlay.Input != nil {
		merged := derefOr(out.Input)
		if overlay.Input.PollIntervalMs != nil {
			merged.PollIntervalMs = overlay.Input.PollIntervalMs
		}
		out.Input = &merged
	}
	if overlay.Placement != nil {
		merged := mergeRawPlacement(derefOr(out.Placement), *overlay.Placement)
		out.Placement = &merged
	}
	if overlay.PerApp != nil {
		merged := mergeRawPerApp(derefOr(out.PerApp), *overlay.PerApp)
		out.PerApp = &merged
	}
	if overlay.Hotkeys != nil {
		merged := mergeRawHotkeys(derefOr(out.Hotkeys), *overlay.Hotkeys)
		out.Hotkeys = &merged
	}
	return out
}

func derefOr[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func mergeRawAnimation(base RawAnimation, overlay RawAnimation) RawAnimation {
	out := base
	if overlay.MinDurationMs != nil {
		out.MinDurationMs = overlay.MinDurationMs
	}
	if overlay.IgnoreClicks != nil {
		out.IgnoreClicks = overlay.IgnoreClicks
	}
	if overlay.BothPawsOnChord != nil {
		out.BothPawsOnChord = overlay.BothPawsOnChord
	}
	return out
}

func mergeRawPlacement(base RawPlacement, overlay RawPlacement) RawPlacement {
	out := base
	if overlay.Margin != nil {
		out.Margin = overlay.Margin
	}
	if overlay.DefaultCorner != nil {
		out.DefaultCorner = overlay.DefaultCorner
	}
	if overlay.GuardIntervalMs != nil {
		out.GuardIntervalMs = overlay.GuardIntervalMs
	}
	if overlay.WindowWidth != nil {
		out.WindowWidth = overlay.WindowWidth
	}
	if overlay.WindowHeight != nil {
		out.WindowHeight = overlay.WindowHeight
	}
	return out
}

func mergeRawPerApp(base RawPerApp, overlay RawPerApp) RawPerApp {
	out := base
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.PollIntervalMs != nil {
		out.PollIntervalMs = overlay.PollIntervalMs
	}
	// Lists replace rather than append.
	if overlay.IgnoreApps != nil {
		out.IgnoreApps = append([]string(nil), overlay.IgnoreApps...)
	}
	return out
}

func mergeRawHotkeys(base RawHotkeys, overlay RawHotkeys) RawHotkeys {
	out := base
	if overlay.ToggleVisibility != nil {
		out.ToggleVisibility = overlay.ToggleVisibility
	}
	if overlay.ToggleIgnoreClicks != nil {
		out.ToggleIgnoreClicks = overlay.ToggleIgnoreClicks
	}
	if overlay.CycleCorner != nil {
		out.CycleCorner = overlay.CycleCorner
	}
	if overlay.HideForApp != nil {
		out.HideForApp = overlay.HideForApp
	}
	return out
}
