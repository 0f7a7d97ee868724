package input

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often device state is sampled.
const DefaultPollInterval = 10 * time.Millisecond

// Snapshot is the pressed state of every keycode plus the two mouse buttons
// at one instant. Keys is the 256-bit keymap, one bit per keycode.
type Snapshot struct {
	Keys  [32]byte
	Left  bool
	Right bool
}

// Pressed reports whether keycode is down in the snapshot.
func (s Snapshot) Pressed(keycode int) bool {
	if keycode < 0 || keycode >= 256 {
		return false
	}
	return s.Keys[keycode/8]&(1<<(uint(keycode)%8)) != 0
}

// Sampler reads the current device state.
type Sampler interface {
	SampleInput() (Snapshot, error)
	KeyName(keycode int) string
}

// Diff returns the events that turn prev into cur: releases first, then
// presses, then mouse buttons.
func Diff(prev, cur Snapshot, name func(int) string) []Event {
	var events []Event
	var downs []Event

	for code := 0; code < 256; code++ {
		was := prev.Pressed(code)
		is := cur.Pressed(code)
		if was == is {
			continue
		}
		id := keyID(code, name)
		if is {
			downs = append(downs, KeyDownEvent(id))
		} else {
			events = append(events, KeyUpEvent(id))
		}
	}
	events = append(events, downs...)

	if prev.Left != cur.Left {
		if cur.Left {
			events = append(events, Event{Kind: LeftClickDown})
		} else {
			events = append(events, Event{Kind: LeftClickUp})
		}
	}
	if prev.Right != cur.Right {
		if cur.Right {
			events = append(events, Event{Kind: RightClickDown})
		} else {
			events = append(events, Event{Kind: RightClickUp})
		}
	}
	return events
}

func keyID(code int, name func(int) string) string {
	if name != nil {
		if n := name(code); n != "" {
			return n
		}
	}
	return fmt.Sprintf("keycode-%d", code)
}

// PollingSource turns periodic snapshots into events. The handler runs on
// the polling goroutine.
type PollingSource struct {
	sampler  Sampler
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Source = (*PollingSource)(nil)

// NewPollingSource creates a source sampling every interval.
func NewPollingSource(sampler Sampler, interval time.Duration, logger *slog.Logger) *PollingSource {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingSource{
		sampler:  sampler,
		interval: interval,
		logger:   logger,
	}
}

// Start begins sampling. The first snapshot is the baseline and emits nothing.
func (s *PollingSource) Start(handler Handler) error {
	if handler == nil {
		return fmt.Errorf("input handler is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("input source already started")
	}

	baseline, err := s.sampler.SampleInput()
	if err != nil {
		return fmt.Errorf("failed to sample input: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, baseline, handler, s.done)
	return nil
}

// Stop halts sampling and waits for the polling goroutine to exit.
func (s *PollingSource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (s *PollingSource) run(ctx context.Context, prev Snapshot, handler Handler, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur, err := s.sampler.SampleInput()
			if err != nil {
				failures++
				if failures == 1 || failures%100 == 0 {
					s.logger.Warn("input sample failed", "error", err, "failures", failures)
				}
				continue
			}
			failures = 0
			for _, ev := range Diff(prev, cur, s.sampler.KeyName) {
				handler(ev)
			}
			prev = cur
		}
	}
}
