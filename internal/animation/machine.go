package animation

import (
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/input"
)

// DefaultMinDuration is the shortest time a paw-down or paw-up pose stays
// on screen.
const DefaultMinDuration = 100 * time.Millisecond

// State is the cat's current pose. Exactly one is active at a time.
type State int

const (
	Idle State = iota
	LeftPawDown
	RightPawDown
	BothPawsDown
	LeftPawUp
	RightPawUp
	// Typing is a renderer pose; no input rule enters it.
	Typing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LeftPawDown:
		return "left-paw-down"
	case RightPawDown:
		return "right-paw-down"
	case BothPawsDown:
		return "both-paws-down"
	case LeftPawUp:
		return "left-paw-up"
	case RightPawUp:
		return "right-paw-up"
	case Typing:
		return "typing"
	default:
		return "unknown"
	}
}

func pawDown(side Side) State {
	if side == Left {
		return LeftPawDown
	}
	return RightPawDown
}

func pawUp(side Side) State {
	if side == Left {
		return LeftPawUp
	}
	return RightPawUp
}

// Change describes one committed state transition.
type Change struct {
	From State
	To   State
	At   time.Time
}

// Config tunes the machine.
type Config struct {
	MinDuration  time.Duration
	IgnoreClicks bool
	// BothPawsOnChord shows BothPawsDown while keys on both sides are held.
	BothPawsOnChord bool
}

type subscriber struct {
	id int
	fn func(Change)
}

// Machine is the input-driven animation state machine. It is not safe for
// concurrent use; every method must run on the scheduler's goroutine.
type Machine struct {
	sched  eventloop.Scheduler
	paws   *PawTracker
	cfg    Config
	logger *slog.Logger

	state     State
	pawDownAt time.Time
	held      map[string]Side
	// order lists held keys, oldest press first.
	order []string
	// downKey is the key whose press produced the current pose. It is empty
	// when the pose came from a click.
	downKey   string
	fromClick bool

	// epoch invalidates delayed transitions scheduled before the last
	// cancellation.
	epoch   uint64
	pending eventloop.Timer
	stopped bool

	subs   []subscriber
	nextID int
}

// NewMachine returns a machine in the Idle state.
func NewMachine(sched eventloop.Scheduler, cfg Config, logger *slog.Logger) *Machine {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		sched:  sched,
		paws:   NewPawTracker(),
		cfg:    cfg,
		logger: logger,
		state:  Idle,
		held:   make(map[string]Side),
	}
}

// State returns the current pose.
func (m *Machine) State() State {
	return m.state
}

// Paws exposes the paw tracker.
func (m *Machine) Paws() *PawTracker {
	return m.paws
}

// MinDuration returns the configured minimum pose duration.
func (m *Machine) MinDuration() time.Duration {
	return m.cfg.MinDuration
}

// IgnoreClicks reports whether mouse buttons are currently ignored.
func (m *Machine) IgnoreClicks() bool {
	return m.cfg.IgnoreClicks
}

// SetIgnoreClicks toggles click handling. Turning it on while a click pose
// is showing leaves that pose to expire through its own schedule.
func (m *Machine) SetIgnoreClicks(ignore bool) {
	m.cfg.IgnoreClicks = ignore
}

// SetMinDuration changes the minimum pose duration for future transitions.
func (m *Machine) SetMinDuration(d time.Duration) {
	if d <= 0 {
		d = DefaultMinDuration
	}
	m.cfg.MinDuration = d
}

// SetBothPawsOnChord toggles chord detection.
func (m *Machine) SetBothPawsOnChord(on bool) {
	m.cfg.BothPawsOnChord = on
}

// Subscribe registers fn for every committed transition and returns a
// function that removes it.
func (m *Machine) Subscribe(fn func(Change)) func() {
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Handle applies one input event.
func (m *Machine) Handle(ev input.Event) {
	if m.stopped {
		return
	}

	switch ev.Kind {
	case input.KeyDown:
		m.keyDown(ev.Key)
	case input.KeyUp:
		m.keyUp(ev.Key)
	case input.LeftClickDown:
		m.clickDown(Left)
	case input.RightClickDown:
		m.clickDown(Right)
	case input.LeftClickUp:
		m.clickUp(Left)
	case input.RightClickUp:
		m.clickUp(Right)
	default:
		m.logger.Debug("ignoring input event", "event", ev.String())
	}
}

// Reset returns to Idle, drops pending transitions and forgets paw
// assignments.
func (m *Machine) Reset() {
	m.cancelPending()
	m.paws.Reset()
	m.held = make(map[string]Side)
	m.order = nil
	m.downKey = ""
	m.fromClick = false
	m.set(Idle)
}

// Stop invalidates pending transitions; later events are ignored.
func (m *Machine) Stop() {
	m.cancelPending()
	m.stopped = true
}

func (m *Machine) keyDown(id string) {
	m.cancelPending()
	side := m.paws.Assign(id)
	m.dropHeld(id)
	m.held[id] = side
	m.order = append(m.order, id)
	m.downKey = id
	m.fromClick = false
	m.pawDownAt = m.sched.Now()
	m.set(m.heldState(side))
}

func (m *Machine) keyUp(id string) {
	if _, ok := m.held[id]; !ok {
		return
	}
	m.dropHeld(id)

	// A click pose ends through its own click events.
	if m.fromClick {
		return
	}

	if len(m.held) > 0 {
		if !m.cfg.BothPawsOnChord && id != m.downKey {
			return
		}
		latest := m.order[len(m.order)-1]
		m.cancelPending()
		if m.downKey == id {
			m.pawDownAt = m.sched.Now()
		}
		m.downKey = latest
		m.set(m.heldState(m.held[latest]))
		return
	}

	m.downKey = ""
	if m.state == Idle {
		return
	}

	elapsed := m.sched.Now().Sub(m.pawDownAt)
	if elapsed < m.cfg.MinDuration {
		m.scheduleIdle(m.cfg.MinDuration-elapsed, m.state)
		return
	}
	m.cancelPending()
	m.set(Idle)
}

func (m *Machine) dropHeld(id string) {
	delete(m.held, id)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == id })
}

func (m *Machine) clickDown(side Side) {
	if m.cfg.IgnoreClicks {
		return
	}
	m.cancelPending()
	m.downKey = ""
	m.fromClick = true
	m.pawDownAt = m.sched.Now()
	m.set(pawDown(side))
}

func (m *Machine) clickUp(side Side) {
	if m.cfg.IgnoreClicks {
		return
	}
	m.cancelPending()
	m.downKey = ""
	m.fromClick = true
	up := pawUp(side)
	m.set(up)
	m.scheduleIdle(m.cfg.MinDuration, up)
}

// heldState is the pose for a fresh press on side, taking chords into account.
func (m *Machine) heldState(side Side) State {
	if !m.cfg.BothPawsOnChord {
		return pawDown(side)
	}
	left, right := false, false
	for _, s := range m.held {
		if s == Left {
			left = true
		} else {
			right = true
		}
	}
	if left && right {
		return BothPawsDown
	}
	return pawDown(side)
}

func (m *Machine) scheduleIdle(after time.Duration, expect State) {
	m.cancelPending()
	epoch := m.epoch
	m.pending = m.sched.AfterFunc(after, func() {
		if m.stopped || m.epoch != epoch || m.state != expect {
			m.logger.Debug("dropping stale transition", "expected", expect.String(), "state", m.state.String())
			return
		}
		m.pending = nil
		m.set(Idle)
	})
}

func (m *Machine) cancelPending() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.epoch++
}

func (m *Machine) set(next State) {
	if next == m.state {
		return
	}
	change := Change{From: m.state, To: next, At: m.sched.Now()}
	m.state = next
	for _, s := range append([]subscriber(nil), m.subs...) {
		s.fn(change)
	}
}
