package daemon

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/geom"
)

const (
	DefaultPollInterval = 250 * time.Millisecond
	MinPollInterval     = 50 * time.Millisecond
	MaxPollInterval     = 5 * time.Second
)

// ErrUnknownApp is returned by a ForegroundQuery that cannot identify the
// foreground application right now.
var ErrUnknownApp = errors.New("foreground application unknown")

// ForegroundApp identifies the application owning the active window.
type ForegroundApp struct {
	ID          string
	DisplayName string
	PID         int
	// Bounds is the active window frame when known.
	Bounds *geom.Rect
}

// ForegroundQuery asks the OS for the current foreground application.
type ForegroundQuery interface {
	CurrentApplication() (ForegroundApp, error)
}

// Switch is emitted once per foreground change. From is empty for the first
// observed application.
type Switch struct {
	From ForegroundApp
	To   ForegroundApp
}

// PollerConfig holds configuration for the app poller.
type PollerConfig struct {
	Interval time.Duration
	// Ignore lists app ids that never count as a switch target, such as the
	// cat window itself.
	Ignore []string
	Logger *slog.Logger
}

// AppPoller samples the foreground application on a fixed interval and
// reports transitions. It runs entirely on the scheduler's goroutine; the
// next tick is armed only after the current one finishes.
type AppPoller struct {
	sched    eventloop.Scheduler
	query    ForegroundQuery
	onSwitch func(Switch)
	logger   *slog.Logger

	interval time.Duration
	ignore   map[string]struct{}

	previous ForegroundApp
	seen     bool
	busy     bool
	running  bool
	gen      uint64
	timer    eventloop.Timer
}

// NewAppPoller creates a poller. Intervals outside [MinPollInterval,
// MaxPollInterval] are clamped.
func NewAppPoller(cfg PollerConfig, sched eventloop.Scheduler, query ForegroundQuery, onSwitch func(Switch)) *AppPoller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &AppPoller{
		sched:    sched,
		query:    query,
		onSwitch: onSwitch,
		logger:   logger,
	}
	p.SetInterval(cfg.Interval)
	p.SetIgnore(cfg.Ignore)
	return p
}

// SetInterval changes the tick interval; it takes effect from the next tick.
func (p *AppPoller) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultPollInterval
	}
	if d < MinPollInterval {
		d = MinPollInterval
	}
	if d > MaxPollInterval {
		d = MaxPollInterval
	}
	p.interval = d
}

func (p *AppPoller) Interval() time.Duration {
	return p.interval
}

// SetIgnore replaces the ignored app ids. Matching is case-insensitive.
func (p *AppPoller) SetIgnore(ids []string) {
	p.ignore = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			p.ignore[id] = struct{}{}
		}
	}
}

// Current returns the last observed foreground application.
func (p *AppPoller) Current() (ForegroundApp, bool) {
	return p.previous, p.seen
}

// Start arms the first tick. Calling Start on a running poller is a no-op.
func (p *AppPoller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.gen++
	p.logger.Info("app poller started", "interval", p.interval)
	p.arm(p.gen)
}

// Stop cancels the pending tick. A tick already queued on the loop sees the
// generation change and does nothing.
func (p *AppPoller) Stop() {
	if !p.running {
		return
	}
	p.running = false
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.logger.Info("app poller stopped")
}

// PollNow runs one tick immediately and reports whether it produced a switch.
func (p *AppPoller) PollNow() bool {
	return p.tick()
}

func (p *AppPoller) arm(gen uint64) {
	p.timer = p.sched.AfterFunc(p.interval, func() {
		if gen != p.gen || !p.running {
			return
		}
		p.tick()
		if gen == p.gen && p.running {
			p.arm(gen)
		}
	})
}

func (p *AppPoller) tick() (switched bool) {
	if p.busy {
		return false
	}
	p.busy = true
	defer func() {
		p.busy = false
		if err := recover(); err != nil {
			p.logger.Error("app poller panic recovered", "error", err)
			switched = false
		}
	}()

	app, err := p.query.CurrentApplication()
	if err != nil {
		if !errors.Is(err, ErrUnknownApp) {
			p.logger.Debug("foreground query failed", "error", err)
		}
		return false
	}
	if strings.TrimSpace(app.ID) == "" {
		return false
	}
	if _, skip := p.ignore[strings.ToLower(app.ID)]; skip {
		return false
	}
	if p.seen && app.ID == p.previous.ID {
		return false
	}

	sw := Switch{To: app}
	if p.seen {
		sw.From = p.previous
	}
	p.previous = app
	p.seen = true

	p.logger.Debug("foreground app switched", "from", sw.From.ID, "to", app.ID)
	if p.onSwitch != nil {
		p.onSwitch(sw)
	}
	return true
}
