package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/bongocat/internal/config"
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/ipc"
	"github.com/1broseidon/bongocat/internal/placement"
)

// requestTimeout bounds how long an IPC request waits for the loop.
const requestTimeout = 2 * time.Second

var _ ipc.Handler = (*Daemon)(nil)

type result[T any] struct {
	value T
	err   error
}

// query runs fn on the loop and returns its result. After a timeout fn may
// still run; its result then goes to a channel nobody reads.
func query[T any](d *Daemon, fn func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	out := make(chan result[T], 1)
	if err := d.exec.Call(ctx, func() {
		if d.placement == nil {
			out <- result[T]{err: ErrNotStarted}
			return
		}
		v, err := fn()
		out <- result[T]{value: v, err: err}
	}); err != nil {
		var zero T
		return zero, err
	}
	r := <-out
	return r.value, r.err
}

// do runs fn on the loop and returns its error.
func (d *Daemon) do(fn func() error) error {
	_, err := query(d, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Status implements ipc.Handler.
func (d *Daemon) Status() (ipc.StatusData, error) {
	return query(d, func() (ipc.StatusData, error) {
		corner := d.cfg.Corner().String()
		if mode, ok := d.prefs.CornerMode(); ok {
			corner = mode
		}
		origin, _ := d.placement.CurrentOrigin()
		app := d.placement.CurrentApp()
		name := ""
		if app != "" {
			name = d.currentName
		}

		return ipc.StatusData{
			InstanceID:     d.id,
			State:          d.machine.State().String(),
			Visible:        d.placement.Visible(),
			IgnoreClicks:   d.machine.IgnoreClicks(),
			PerAppEnabled:  d.apps.Enabled(),
			CurrentApp:     app,
			CurrentAppName: name,
			CornerMode:     corner,
			X:              origin.X,
			Y:              origin.Y,
			UptimeSeconds:  int64(d.exec.Now().Sub(d.startedAt) / time.Second),
			DaemonRunning:  true,
		}, nil
	})
}

// Monitors implements ipc.Handler.
func (d *Daemon) Monitors() (ipc.MonitorsData, error) {
	screens, err := d.desktop.Screens()
	if err != nil {
		return ipc.MonitorsData{}, fmt.Errorf("failed to query monitors: %w", err)
	}
	data := ipc.MonitorsData{Monitors: make([]ipc.MonitorInfo, 0, len(screens))}
	for _, s := range screens {
		data.Monitors = append(data.Monitors, ipc.MonitorInfo{
			ID:           s.ID,
			Name:         s.Name,
			Primary:      s.Primary,
			X:            int(s.Frame.X),
			Y:            int(s.Frame.Y),
			Width:        int(s.Frame.Width),
			Height:       int(s.Frame.Height),
			UsableX:      int(s.Visible.X),
			UsableY:      int(s.Visible.Y),
			UsableWidth:  int(s.Visible.Width),
			UsableHeight: int(s.Visible.Height),
		})
	}
	return data, nil
}

// Positions implements ipc.Handler.
func (d *Daemon) Positions() (ipc.PositionsData, error) {
	return query(d, func() (ipc.PositionsData, error) {
		entries := d.apps.Entries()
		data := ipc.PositionsData{
			Enabled:    d.apps.Enabled(),
			Positions:  make([]ipc.PositionInfo, 0, len(entries)),
			HiddenApps: d.apps.HiddenApps(),
		}
		for _, e := range entries {
			data.Positions = append(data.Positions, ipc.PositionInfo{
				AppID:       e.AppID,
				DisplayName: e.DisplayName,
				X:           e.Point.X,
				Y:           e.Point.Y,
				Hidden:      e.Hidden,
			})
		}
		return data, nil
	})
}

// DeletePosition implements ipc.Handler.
func (d *Daemon) DeletePosition(appID string) error {
	return d.do(func() error {
		return d.apps.DeletePosition(appID)
	})
}

// ClearPositions implements ipc.Handler.
func (d *Daemon) ClearPositions() error {
	return d.do(d.apps.ClearAll)
}

// ClearHidden implements ipc.Handler.
func (d *Daemon) ClearHidden() error {
	return d.do(func() error {
		return d.placement.ClearHidden()
	})
}

// PlaceCorner implements ipc.Handler.
func (d *Daemon) PlaceCorner(name string) (ipc.PointPayload, error) {
	corner, err := placement.ParseCorner(name)
	if err != nil {
		return ipc.PointPayload{}, err
	}
	p, err := query(d, func() (geom.Point, error) {
		return d.placement.SelectCorner(corner)
	})
	return ipc.PointPayload{X: p.X, Y: p.Y}, err
}

// PlaceAt implements ipc.Handler.
func (d *Daemon) PlaceAt(x, y float64) (ipc.PointPayload, error) {
	p := geom.Point{X: x, Y: y}
	err := d.do(func() error {
		return d.placement.Relocate(p)
	})
	return ipc.PointPayload{X: x, Y: y}, err
}

// SetVisibility implements ipc.Handler.
func (d *Daemon) SetVisibility(action string) (bool, error) {
	return query(d, func() (bool, error) {
		var err error
		switch action {
		case ipc.VisibilityShow:
			err = d.placement.Show()
		case ipc.VisibilityHide:
			err = d.placement.Hide()
		case ipc.VisibilityToggle:
			err = d.placement.Toggle()
		default:
			err = fmt.Errorf("unknown visibility action %q", action)
		}
		return d.placement.Visible(), err
	})
}

// SetAppHidden implements ipc.Handler. An empty appID means the current
// foreground app.
func (d *Daemon) SetAppHidden(appID string, hidden bool) error {
	return d.do(func() error {
		if appID == "" {
			return d.placement.SetHiddenForCurrentApp(hidden)
		}
		return d.placement.SetAppHidden(appID, hidden)
	})
}

// SetIgnoreClicks implements ipc.Handler.
func (d *Daemon) SetIgnoreClicks(ignore bool) error {
	return d.do(func() error {
		d.machine.SetIgnoreClicks(ignore)
		return nil
	})
}

// SetPerApp implements ipc.Handler.
func (d *Daemon) SetPerApp(enabled bool) error {
	return d.do(func() error {
		return d.placement.SetPerAppEnabled(enabled)
	})
}

// ResetAnimation implements ipc.Handler.
func (d *Daemon) ResetAnimation() error {
	return d.do(func() error {
		d.machine.Reset()
		return nil
	})
}

// Reload re-reads the config file and applies it. An invalid file leaves
// the running config untouched.
func (d *Daemon) Reload() error {
	if d.cfgPath == "" {
		return fmt.Errorf("no config file to reload")
	}
	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return err
	}
	if err := d.do(func() error {
		d.apply(res.Config)
		return nil
	}); err != nil {
		return err
	}
	d.logger.Info("config reloaded", "path", d.cfgPath, "files", len(res.Files))
	return nil
}
