package animation

import (
	"testing"
	"time"

	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/input"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestMachine(cfg Config) (*Machine, *eventloop.Manual) {
	clock := eventloop.NewManual(epoch)
	return NewMachine(clock, cfg, nil), clock
}

func expectState(t *testing.T, m *Machine, want State) {
	t.Helper()
	if got := m.State(); got != want {
		t.Fatalf("state = %v, want %v", got, want)
	}
}

func TestMachine_StartsIdle(t *testing.T) {
	m, _ := newTestMachine(Config{})
	expectState(t, m, Idle)
	if m.MinDuration() != DefaultMinDuration {
		t.Fatalf("expected default min duration, got %v", m.MinDuration())
	}
}

func TestMachine_KeyDownAssignsPaws(t *testing.T) {
	m, clock := newTestMachine(Config{})

	m.Handle(input.KeyDownEvent("a"))
	expectState(t, m, LeftPawDown)
	clock.Advance(200 * time.Millisecond)
	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, Idle)

	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, RightPawDown)
	clock.Advance(200 * time.Millisecond)
	m.Handle(input.KeyUpEvent("b"))

	m.Handle(input.KeyDownEvent("a"))
	expectState(t, m, LeftPawDown)
}

func TestMachine_FastTapHoldsForMinimumDuration(t *testing.T) {
	m, clock := newTestMachine(Config{})
	var idleAt time.Time
	m.Subscribe(func(c Change) {
		if c.To == Idle {
			idleAt = c.At
		}
	})

	m.Handle(input.KeyDownEvent("a"))
	downAt := clock.Now()
	clock.Advance(20 * time.Millisecond)
	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, LeftPawDown)

	clock.Advance(79 * time.Millisecond)
	expectState(t, m, LeftPawDown)

	clock.Advance(time.Millisecond)
	expectState(t, m, Idle)
	if idleAt.Before(downAt.Add(DefaultMinDuration)) {
		t.Fatalf("reached idle at %v, earlier than %v", idleAt, downAt.Add(DefaultMinDuration))
	}
}

func TestMachine_SlowReleaseGoesIdleImmediately(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	clock.Advance(150 * time.Millisecond)
	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, Idle)
	if clock.Pending() != 0 {
		t.Fatalf("expected no pending transitions, got %d", clock.Pending())
	}
}

func TestMachine_HeldKeyHasNoTimeout(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	clock.Advance(10 * time.Second)
	expectState(t, m, LeftPawDown)
}

func TestMachine_NewKeyCancelsPendingIdle(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyUpEvent("a"))
	clock.Advance(50 * time.Millisecond)

	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, RightPawDown)

	clock.Advance(time.Second)
	expectState(t, m, RightPawDown)
}

func TestMachine_IgnoreClicksKeepsIdle(t *testing.T) {
	m, clock := newTestMachine(Config{IgnoreClicks: true})
	m.Handle(input.Event{Kind: input.LeftClickDown})
	expectState(t, m, Idle)
	m.Handle(input.Event{Kind: input.LeftClickUp})
	expectState(t, m, Idle)
	clock.Advance(time.Second)
	expectState(t, m, Idle)

	m.SetIgnoreClicks(false)
	m.Handle(input.Event{Kind: input.LeftClickDown})
	expectState(t, m, LeftPawDown)
}

func TestMachine_ClickUpShowsPawUpThenIdle(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.Event{Kind: input.RightClickDown})
	expectState(t, m, RightPawDown)

	m.Handle(input.Event{Kind: input.RightClickUp})
	expectState(t, m, RightPawUp)

	clock.Advance(99 * time.Millisecond)
	expectState(t, m, RightPawUp)
	clock.Advance(time.Millisecond)
	expectState(t, m, Idle)
}

func TestMachine_StaleClickTransitionIsDropped(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.Event{Kind: input.LeftClickDown})
	m.Handle(input.Event{Kind: input.LeftClickUp})
	expectState(t, m, LeftPawUp)

	clock.Advance(40 * time.Millisecond)
	m.Handle(input.KeyDownEvent("x"))
	expectState(t, m, LeftPawDown)

	clock.Advance(time.Second)
	expectState(t, m, LeftPawDown)
}

func TestMachine_UnknownEventIgnored(t *testing.T) {
	m, _ := newTestMachine(Config{})
	m.Handle(input.Event{Kind: input.KindUnknown, Key: "?"})
	m.Handle(input.Event{Kind: input.Kind(99)})
	expectState(t, m, Idle)
}

func TestMachine_ResetClearsPawsAndPending(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyDownEvent("b"))
	m.Handle(input.KeyUpEvent("b"))

	m.Reset()
	expectState(t, m, Idle)
	clock.Advance(time.Second)
	expectState(t, m, Idle)

	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, LeftPawDown)
}

func TestMachine_StopIgnoresLaterEventsAndTimers(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyUpEvent("a"))
	m.Stop()

	clock.Advance(time.Second)
	expectState(t, m, LeftPawDown)

	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, LeftPawDown)
}

func TestMachine_SubscribeAndUnsubscribe(t *testing.T) {
	m, clock := newTestMachine(Config{})
	var changes []Change
	unsubscribe := m.Subscribe(func(c Change) { changes = append(changes, c) })

	m.Handle(input.KeyDownEvent("a"))
	clock.Advance(200 * time.Millisecond)
	m.Handle(input.KeyUpEvent("a"))
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].From != Idle || changes[0].To != LeftPawDown {
		t.Fatalf("unexpected first change %+v", changes[0])
	}

	unsubscribe()
	m.Handle(input.KeyDownEvent("a"))
	if len(changes) != 2 {
		t.Fatalf("expected no changes after unsubscribe, got %d", len(changes))
	}
}

func TestMachine_ChordShowsBothPaws(t *testing.T) {
	m, clock := newTestMachine(Config{BothPawsOnChord: true})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, BothPawsDown)

	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, RightPawDown)

	clock.Advance(time.Second)
	m.Handle(input.KeyUpEvent("b"))
	expectState(t, m, Idle)
}

func TestMachine_WithoutChordLatestKeyWins(t *testing.T) {
	m, _ := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyDownEvent("b"))
	expectState(t, m, RightPawDown)
}

func TestMachine_RolloverKeepsHeldKeyPose(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyDownEvent("b"))
	clock.Advance(200 * time.Millisecond)

	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, RightPawDown)
	clock.Advance(time.Second)
	expectState(t, m, RightPawDown)

	m.Handle(input.KeyUpEvent("b"))
	expectState(t, m, Idle)
}

func TestMachine_ReleasingPoseKeyFallsBackToHeldKey(t *testing.T) {
	m, clock := newTestMachine(Config{})
	m.Handle(input.KeyDownEvent("a"))
	m.Handle(input.KeyDownEvent("b"))
	clock.Advance(200 * time.Millisecond)

	m.Handle(input.KeyUpEvent("b"))
	expectState(t, m, LeftPawDown)

	m.Handle(input.KeyUpEvent("a"))
	expectState(t, m, LeftPawDown)
	clock.Advance(DefaultMinDuration)
	expectState(t, m, Idle)
}

func TestMachine_KeyUpDuringClickKeepsClickPose(t *testing.T) {
	tests := []struct {
		name  string
		setup []input.Event
		up    string
	}{
		{name: "stray key", up: "zz"},
		{name: "key held before click", setup: []input.Event{input.KeyDownEvent("a")}, up: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clock := newTestMachine(Config{})
			for _, ev := range tt.setup {
				m.Handle(ev)
			}
			m.Handle(input.Event{Kind: input.LeftClickDown})
			clock.Advance(200 * time.Millisecond)

			m.Handle(input.KeyUpEvent(tt.up))
			expectState(t, m, LeftPawDown)

			m.Handle(input.Event{Kind: input.LeftClickUp})
			expectState(t, m, LeftPawUp)
		})
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Idle:         "idle",
		LeftPawDown:  "left-paw-down",
		RightPawDown: "right-paw-down",
		BothPawsDown: "both-paws-down",
		LeftPawUp:    "left-paw-up",
		RightPawUp:   "right-paw-up",
		Typing:       "typing",
		State(42):    "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
