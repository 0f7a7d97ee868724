// Package daemon wires the animation, foreground polling and window
// placement together on one event loop and serves them over IPC.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/bongocat/internal/animation"
	"github.com/1broseidon/bongocat/internal/config"
	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/input"
	"github.com/1broseidon/bongocat/internal/perapp"
	"github.com/1broseidon/bongocat/internal/placement"
	"github.com/1broseidon/bongocat/internal/prefs"
	"github.com/google/uuid"
)

// ErrNotStarted is returned by requests that need the cat window before
// Start has created it.
var ErrNotStarted = errors.New("daemon not started")

// Options configures a Daemon.
type Options struct {
	Config *config.Config
	// ConfigPath is re-read by Reload. Empty disables reloading.
	ConfigPath string
	Store      prefs.Store
	Desktop    Desktop
	Exec       eventloop.Executor
	// Input and Hotkeys are optional.
	Input   input.Source
	Hotkeys HotkeyBinder
	Logger  *slog.Logger
	// Level, when set, follows log_level across reloads.
	Level *slog.LevelVar
}

// Daemon owns every stateful component. Apart from the IPC entry points and
// Start/Shutdown, its methods run on the Exec goroutine.
type Daemon struct {
	id      string
	cfg     *config.Config
	cfgPath string
	exec    eventloop.Executor
	desktop Desktop
	input   input.Source
	hotkeys HotkeyBinder
	logger  *slog.Logger
	level   *slog.LevelVar

	prefs   *prefs.Preferences
	apps    *perapp.Store
	machine *animation.Machine
	poller  *AppPoller

	window      CatWindow
	placement   *placement.Controller
	unsubscribe func()
	currentName string
	startedAt   time.Time
}

// New builds the daemon's components without touching the display.
func New(opts Options) (*Daemon, error) {
	if opts.Desktop == nil {
		return nil, fmt.Errorf("desktop is required")
	}
	if opts.Exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		id:      uuid.NewString(),
		cfg:     cfg,
		cfgPath: opts.ConfigPath,
		exec:    opts.Exec,
		desktop: opts.Desktop,
		input:   opts.Input,
		hotkeys: opts.Hotkeys,
		logger:  logger,
		level:   opts.Level,
		prefs:   prefs.NewPreferences(opts.Store),
	}
	if d.level != nil {
		d.level.Set(cfg.SlogLevel())
	}

	d.apps = perapp.Open(opts.Store, perapp.Options{
		DefaultEnabled: cfg.PerApp.Enabled,
		Resolver:       opts.Desktop,
		Logger:         logger.With("component", "perapp"),
	})
	d.machine = animation.NewMachine(opts.Exec, animation.Config{
		MinDuration:     cfg.MinDuration(),
		IgnoreClicks:    cfg.Animation.IgnoreClicks,
		BothPawsOnChord: cfg.Animation.BothPawsOnChord,
	}, logger.With("component", "animation"))
	d.poller = NewAppPoller(PollerConfig{
		Interval: cfg.AppPollInterval(),
		Ignore:   cfg.PerApp.IgnoreApps,
		Logger:   logger.With("component", "poller"),
	}, opts.Exec, opts.Desktop, d.onSwitch)

	return d, nil
}

// ID is a random identifier for this daemon process.
func (d *Daemon) ID() string {
	return d.id
}

// Start creates the cat window, restores its placement and starts input,
// polling and hotkeys.
func (d *Daemon) Start(ctx context.Context) error {
	started := make(chan error, 1)
	if err := d.exec.Call(ctx, func() { started <- d.start() }); err != nil {
		return err
	}
	if err := <-started; err != nil {
		return err
	}

	if d.input != nil {
		if err := d.input.Start(func(ev input.Event) {
			d.post(func() { d.machine.Handle(ev) })
		}); err != nil {
			d.logger.Warn("input monitoring unavailable", "error", err)
		}
	}
	return nil
}

func (d *Daemon) start() error {
	if d.window != nil {
		return fmt.Errorf("daemon already started")
	}

	size := d.windowSize(d.cfg)
	win, err := d.desktop.CreateCatWindow(geom.Rect{Width: size.Width, Height: size.Height})
	if err != nil {
		return fmt.Errorf("failed to create cat window: %w", err)
	}
	d.window = win
	d.placement = placement.NewController(d.exec, win, d.desktop, d.apps, d.prefs,
		d.placementConfig(d.cfg), d.logger.With("component", "placement"))

	if p, err := d.placement.Restore(); err != nil {
		d.logger.Warn("failed to restore cat position", "error", err)
	} else {
		d.logger.Info("cat placed", "x", p.X, "y", p.Y)
	}

	win.OnMoved(func(p geom.Point) {
		d.post(func() {
			if err := d.placement.HandleWindowMoved(p); err != nil {
				d.logger.Warn("failed to record window move", "error", err)
			}
		})
	})
	if err := d.desktop.OnScreensChanged(func() { d.post(d.screensChanged) }); err != nil {
		d.logger.Warn("screen change notifications unavailable", "error", err)
	}

	d.unsubscribe = d.machine.Subscribe(func(ch animation.Change) {
		d.logger.Debug("pose changed", "from", ch.From.String(), "to", ch.To.String())
	})
	d.poller.Start()
	d.bindHotkeys()
	d.startedAt = d.exec.Now()
	d.logger.Info("daemon started", "instance", d.id)
	return nil
}

// Shutdown stops input and hotkeys, invalidates pending transitions and
// ticks, and closes the cat window.
func (d *Daemon) Shutdown(ctx context.Context) error {
	// Input stops off-loop: its goroutine may be blocked posting to us.
	if d.input != nil {
		if err := d.input.Stop(); err != nil {
			d.logger.Warn("failed to stop input monitoring", "error", err)
		}
	}
	if d.hotkeys != nil {
		d.hotkeys.UnregisterAll()
	}

	return d.exec.Call(ctx, func() {
		d.poller.Stop()
		d.machine.Stop()
		if d.unsubscribe != nil {
			d.unsubscribe()
			d.unsubscribe = nil
		}
		if d.window != nil {
			d.window.Close()
		}
		d.logger.Info("daemon stopped")
	})
}

func (d *Daemon) post(fn func()) {
	if err := d.exec.Post(fn); err != nil {
		d.logger.Debug("dropping event", "error", err)
	}
}

func (d *Daemon) onSwitch(sw Switch) {
	d.currentName = sw.To.DisplayName
	if d.placement == nil {
		return
	}
	err := d.placement.HandleAppSwitch(placement.AppSwitch{
		From:     sw.From.ID,
		To:       sw.To.ID,
		ToBounds: sw.To.Bounds,
	})
	if err != nil {
		d.logger.Warn("app switch handling failed", "to", sw.To.ID, "error", err)
	}
}

func (d *Daemon) screensChanged() {
	if d.placement == nil {
		return
	}
	if err := d.placement.HandleScreensChanged(); err != nil {
		d.logger.Warn("screen change handling failed", "error", err)
	}
}

func (d *Daemon) bindHotkeys() {
	if d.hotkeys == nil {
		return
	}
	bindings := d.cfg.Hotkeys.Bindings()
	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		seq := bindings[action]
		if err := d.hotkeys.Register(seq, func() {
			d.post(func() {
				if err := d.runAction(action); err != nil {
					d.logger.Warn("hotkey action failed", "action", action, "error", err)
				}
			})
		}); err != nil {
			d.logger.Warn("failed to register hotkey", "action", action, "keys", seq, "error", err)
		}
	}
}

// runAction executes a hotkey action.
func (d *Daemon) runAction(action string) error {
	if d.placement == nil {
		return ErrNotStarted
	}
	switch action {
	case config.ActionToggleVisibility:
		return d.placement.Toggle()
	case config.ActionToggleIgnoreClicks:
		d.machine.SetIgnoreClicks(!d.machine.IgnoreClicks())
		d.logger.Info("ignore clicks toggled", "ignore", d.machine.IgnoreClicks())
		return nil
	case config.ActionCycleCorner:
		corner, err := d.placement.CycleCorner()
		d.logger.Info("corner cycled", "corner", corner.String())
		return err
	case config.ActionHideForApp:
		app := d.placement.CurrentApp()
		if app == "" {
			return placement.ErrNoCurrentApp
		}
		return d.placement.SetAppHidden(app, !d.apps.IsHidden(app))
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// apply switches the running daemon to cfg.
func (d *Daemon) apply(cfg *config.Config) {
	if d.level != nil {
		d.level.Set(cfg.SlogLevel())
	}
	d.machine.SetMinDuration(cfg.MinDuration())
	d.machine.SetBothPawsOnChord(cfg.Animation.BothPawsOnChord)
	// A runtime toggle survives reloads that leave the setting alone.
	if cfg.Animation.IgnoreClicks != d.cfg.Animation.IgnoreClicks {
		d.machine.SetIgnoreClicks(cfg.Animation.IgnoreClicks)
	}
	d.poller.SetInterval(cfg.AppPollInterval())
	d.poller.SetIgnore(cfg.PerApp.IgnoreApps)
	if d.placement != nil {
		d.placement.SetConfig(d.placementConfig(cfg))
	}

	d.cfg = cfg
	if d.hotkeys != nil && d.placement != nil {
		d.hotkeys.UnregisterAll()
		d.bindHotkeys()
	}
}

func (d *Daemon) placementConfig(cfg *config.Config) placement.Config {
	return placement.Config{
		Margin:        cfg.Placement.Margin,
		DefaultCorner: cfg.Corner(),
		GuardInterval: cfg.GuardInterval(),
		WindowSize:    d.windowSize(cfg),
	}
}

func (d *Daemon) windowSize(cfg *config.Config) geom.Size {
	scale := d.prefs.Scale()
	return geom.Size{
		Width:  float64(cfg.Placement.WindowWidth) * scale,
		Height: float64(cfg.Placement.WindowHeight) * scale,
	}
}
