package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/perapp"
	"github.com/1broseidon/bongocat/internal/prefs"
)

// DefaultGuardInterval is how long a programmatic move suppresses drag
// detection.
const DefaultGuardInterval = 100 * time.Millisecond

// ErrNoCurrentApp is returned by per-app operations before any foreground
// application has been observed.
var ErrNoCurrentApp = errors.New("no foreground application known")

// Window is the cat window as seen by the controller.
type Window interface {
	Frame() (geom.Rect, error)
	Move(geom.Point) error
	Show() error
	Hide() error
}

// AppSwitch describes a foreground change. ToBounds, when set, is the
// incoming app's active window and selects the screen for default corners.
type AppSwitch struct {
	From     string
	To       string
	ToBounds *geom.Rect
}

type Config struct {
	Margin        float64
	DefaultCorner Corner
	GuardInterval time.Duration
	// WindowSize is used when the window cannot report its own frame.
	WindowSize geom.Size
}

// Controller owns the window's position and visibility. All methods must be
// called from the event loop goroutine.
type Controller struct {
	sched   eventloop.Scheduler
	win     Window
	screens ScreenQuery
	apps    *perapp.Store
	prefs   *prefs.Preferences
	cfg     Config
	logger  *slog.Logger

	programmatic bool
	guardGen     uint64
	guardTimer   eventloop.Timer

	lastOrigin geom.Point
	haveOrigin bool
	lastScreen Screen
	haveScreen bool
	currentApp string
	userHidden bool
	appHidden  bool
	visible    bool
}

// NewController wires a controller. The window is assumed visible.
func NewController(sched eventloop.Scheduler, win Window, screens ScreenQuery, apps *perapp.Store, p *prefs.Preferences, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GuardInterval <= 0 {
		cfg.GuardInterval = DefaultGuardInterval
	}
	if cfg.Margin < 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.DefaultCorner == Custom {
		cfg.DefaultCorner = TopRight
	}
	return &Controller{
		sched:   sched,
		win:     win,
		screens: screens,
		apps:    apps,
		prefs:   p,
		cfg:     cfg,
		logger:  logger,
		visible: true,
	}
}

// SetConfig replaces margin, default corner and guard interval.
func (c *Controller) SetConfig(cfg Config) {
	if cfg.GuardInterval <= 0 {
		cfg.GuardInterval = DefaultGuardInterval
	}
	if cfg.DefaultCorner == Custom {
		cfg.DefaultCorner = TopRight
	}
	c.cfg = cfg
}

// Programmatic reports whether the guard from the last PlaceAt is active.
func (c *Controller) Programmatic() bool {
	return c.programmatic
}

// CurrentApp returns the last foreground app id passed to HandleAppSwitch.
func (c *Controller) CurrentApp() string {
	return c.currentApp
}

// PlaceAt moves the window to p and marks the move as programmatic for the
// guard interval.
func (c *Controller) PlaceAt(p geom.Point) error {
	c.guardGen++
	gen := c.guardGen
	if c.guardTimer != nil {
		c.guardTimer.Stop()
	}
	c.programmatic = true
	c.guardTimer = c.sched.AfterFunc(c.cfg.GuardInterval, func() {
		if c.guardGen == gen {
			c.programmatic = false
			c.guardTimer = nil
		}
	})

	if err := c.win.Move(p); err != nil {
		return fmt.Errorf("failed to move window: %w", err)
	}
	c.lastOrigin = p
	c.haveOrigin = true
	c.logger.Debug("window placed", "x", p.X, "y", p.Y)
	return nil
}

// CurrentOrigin returns the window's top-left corner, falling back to the
// last placed origin when the window cannot be queried.
func (c *Controller) CurrentOrigin() (geom.Point, bool) {
	if frame, err := c.win.Frame(); err == nil {
		return frame.Origin(), true
	}
	return c.lastOrigin, c.haveOrigin
}

// CornerTarget computes where corner puts the window on screen without
// moving it. A nil screen means the screen currently holding the window.
func (c *Controller) CornerTarget(corner Corner, screen *Screen) (geom.Point, error) {
	if corner == Custom {
		if c.prefs != nil {
			if p, ok := c.prefs.Position(); ok {
				return p, nil
			}
		}
		corner = c.cfg.DefaultCorner
	}

	target, err := c.resolveScreen(screen)
	if err != nil {
		return geom.Point{}, err
	}
	p, _ := CornerPoint(corner, target.Visible, c.windowSize(), c.cfg.Margin)
	return p, nil
}

// PlaceAtCorner moves the window to corner of screen and returns the point.
func (c *Controller) PlaceAtCorner(corner Corner, screen *Screen) (geom.Point, error) {
	p, err := c.CornerTarget(corner, screen)
	if err != nil {
		return geom.Point{}, err
	}
	return p, c.PlaceAt(p)
}

// SelectCorner is a user corner choice: the window moves there and the
// choice is remembered globally and, in per-app mode, for the current app.
func (c *Controller) SelectCorner(corner Corner) (geom.Point, error) {
	p, err := c.PlaceAtCorner(corner, nil)
	if err != nil {
		return p, err
	}
	return p, c.remember(p, corner)
}

// CycleCorner advances the stored corner mode to the next fixed corner.
func (c *Controller) CycleCorner() (Corner, error) {
	next := c.cornerMode().Next()
	_, err := c.SelectCorner(next)
	return next, err
}

// Relocate is a user-requested move to p, remembered like a drag.
func (c *Controller) Relocate(p geom.Point) error {
	if err := c.PlaceAt(p); err != nil {
		return err
	}
	return c.remember(p, Custom)
}

// RelativeMove carries the window from one screen to another, keeping its
// relative spot and staying inside the new visible frame.
func (c *Controller) RelativeMove(from, to Screen) (geom.Point, error) {
	origin, ok := c.CurrentOrigin()
	if !ok {
		origin = from.Visible.Origin()
	}
	p := RelativePoint(origin, c.windowSize(), from.Visible, to.Visible)
	c.lastScreen, c.haveScreen = to, true
	return p, c.PlaceAt(p)
}

// HandleWindowMoved processes a window-moved notification. Moves inside the
// programmatic guard are ignored; the rest are user drags and are saved.
func (c *Controller) HandleWindowMoved(origin geom.Point) error {
	if c.haveOrigin && origin == c.lastOrigin {
		// Restack or resize without movement.
		return nil
	}
	c.lastOrigin, c.haveOrigin = origin, true
	if c.programmatic {
		c.logger.Debug("ignoring programmatic move", "x", origin.X, "y", origin.Y)
		return nil
	}
	c.logger.Debug("window dragged", "x", origin.X, "y", origin.Y, "app", c.currentApp)
	return c.remember(origin, Custom)
}

// HandleAppSwitch saves the outgoing app's origin, then restores the
// incoming app's saved point or places it at the default corner. With
// per-app mode disabled only the current app is tracked.
func (c *Controller) HandleAppSwitch(sw AppSwitch) error {
	from := sw.From
	if from == "" {
		from = c.currentApp
	}
	c.currentApp = sw.To

	if c.apps == nil || !c.apps.Enabled() {
		return nil
	}

	var errs []error
	if from != "" && from != sw.To {
		if origin, ok := c.CurrentOrigin(); ok {
			if err := c.apps.SavePosition(from, origin); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if p, ok := c.apps.Position(sw.To); ok {
		if err := c.PlaceAt(p); err != nil {
			errs = append(errs, err)
		}
	} else {
		var screen *Screen
		if sw.ToBounds != nil {
			if all, err := c.screens.Screens(); err == nil {
				if s, ok := ScreenFor(all, *sw.ToBounds); ok {
					screen = &s
				}
			}
		}
		if _, err := c.PlaceAtCorner(c.cfg.DefaultCorner, screen); err != nil {
			errs = append(errs, err)
		}
	}

	c.appHidden = c.apps.IsHidden(sw.To)
	if err := c.applyVisibility(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SetHiddenForCurrentApp adds or removes the current app from the hidden
// set and applies the result when per-app mode is on.
func (c *Controller) SetHiddenForCurrentApp(hidden bool) error {
	if c.currentApp == "" {
		return ErrNoCurrentApp
	}
	return c.SetAppHidden(c.currentApp, hidden)
}

// SetAppHidden updates appID's hidden flag and, when it is the current app,
// the window's visibility.
func (c *Controller) SetAppHidden(appID string, hidden bool) error {
	err := c.apps.SetHidden(appID, hidden)
	if appID == c.currentApp && c.apps.Enabled() {
		c.appHidden = hidden
		return errors.Join(err, c.applyVisibility())
	}
	return err
}

// ClearHidden forgets every per-app hide and shows the window again if the
// current app was hidden.
func (c *Controller) ClearHidden() error {
	err := c.apps.ClearHidden()
	if !c.appHidden {
		return err
	}
	c.appHidden = false
	return errors.Join(err, c.applyVisibility())
}

// SetPerAppEnabled toggles per-app positioning and hiding.
func (c *Controller) SetPerAppEnabled(enabled bool) error {
	err := c.apps.SetEnabled(enabled)
	c.appHidden = enabled && c.currentApp != "" && c.apps.IsHidden(c.currentApp)
	return errors.Join(err, c.applyVisibility())
}

// Show makes the window visible, overriding a per-app hide until the next
// app switch.
func (c *Controller) Show() error {
	c.userHidden = false
	c.appHidden = false
	return c.applyVisibility()
}

// Hide hides the window until Show or Toggle.
func (c *Controller) Hide() error {
	c.userHidden = true
	return c.applyVisibility()
}

// Toggle flips the visible state.
func (c *Controller) Toggle() error {
	if c.visible {
		return c.Hide()
	}
	return c.Show()
}

func (c *Controller) Visible() bool {
	return c.visible
}

// HandleScreensChanged keeps the window on screen after a monitor change.
// When the window's screen is gone it moves relative onto the primary one.
func (c *Controller) HandleScreensChanged() error {
	all, err := c.screens.Screens()
	if err != nil {
		return fmt.Errorf("failed to query screens: %w", err)
	}
	primary, err := PrimaryScreen(all)
	if err != nil {
		return err
	}

	frame := c.currentFrame()
	if c.haveScreen {
		if s, ok := screenByID(all, c.lastScreen.ID); ok && s.Frame == c.lastScreen.Frame {
			c.lastScreen = s
			return nil
		}
	}
	if s, ok := ScreenFor(all, frame); ok && s.Frame.Contains(frame.Center()) {
		c.lastScreen, c.haveScreen = s, true
		return nil
	}

	from := c.lastScreen
	if !c.haveScreen {
		from = Screen{Frame: frame, Visible: frame}
	}
	p, err := c.RelativeMove(from, primary)
	if err != nil {
		return err
	}
	c.logger.Info("moved window after screen change", "screen", primary.Name, "x", p.X, "y", p.Y)
	return nil
}

// Restore applies the stored global placement: the saved position when the
// corner mode is custom, else the stored or default corner.
func (c *Controller) Restore() (geom.Point, error) {
	return c.PlaceAtCorner(c.cornerMode(), nil)
}

func (c *Controller) cornerMode() Corner {
	if c.prefs == nil {
		return c.cfg.DefaultCorner
	}
	if name, ok := c.prefs.CornerMode(); ok {
		if corner, err := ParseCorner(name); err == nil {
			return corner
		}
	}
	return c.cfg.DefaultCorner
}

func (c *Controller) remember(p geom.Point, corner Corner) error {
	var errs []error
	if c.prefs != nil {
		if corner == Custom {
			errs = append(errs, c.prefs.SetPosition(p))
		}
		errs = append(errs, c.prefs.SetCornerMode(corner.String()))
	}
	if c.apps != nil && c.apps.Enabled() && c.currentApp != "" {
		errs = append(errs, c.apps.SavePosition(c.currentApp, p))
	}
	err := errors.Join(errs...)
	if err != nil {
		c.logger.Warn("failed to persist window position", "error", err)
	}
	return err
}

func (c *Controller) applyVisibility() error {
	want := !c.userHidden && !c.appHidden
	if want == c.visible {
		return nil
	}
	var err error
	if want {
		err = c.win.Show()
	} else {
		err = c.win.Hide()
	}
	if err != nil {
		return fmt.Errorf("failed to change window visibility: %w", err)
	}
	c.visible = want
	return nil
}

func (c *Controller) resolveScreen(screen *Screen) (Screen, error) {
	if screen != nil {
		c.lastScreen, c.haveScreen = *screen, true
		return *screen, nil
	}
	all, err := c.screens.Screens()
	if err != nil {
		return Screen{}, fmt.Errorf("failed to query screens: %w", err)
	}
	if s, ok := ScreenFor(all, c.currentFrame()); ok {
		c.lastScreen, c.haveScreen = s, true
		return s, nil
	}
	s, err := PrimaryScreen(all)
	if err != nil {
		return Screen{}, err
	}
	c.lastScreen, c.haveScreen = s, true
	return s, nil
}

func (c *Controller) currentFrame() geom.Rect {
	if frame, err := c.win.Frame(); err == nil {
		return frame
	}
	size := c.cfg.WindowSize
	return geom.Rect{X: c.lastOrigin.X, Y: c.lastOrigin.Y, Width: size.Width, Height: size.Height}
}

func (c *Controller) windowSize() geom.Size {
	if frame, err := c.win.Frame(); err == nil && frame.Width > 0 && frame.Height > 0 {
		return frame.Size()
	}
	return c.cfg.WindowSize
}
