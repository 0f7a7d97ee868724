// Package eventloop provides the single goroutine that owns all daemon state,
// plus the Scheduler abstraction used for delayed callbacks on it.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned when work is posted to a loop that is no longer running.
var ErrStopped = errors.New("event loop stopped")

// Timer is a scheduled callback that can be cancelled before it runs.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay on the owning goroutine.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Executor is a Scheduler that can also run work on its goroutine
// immediately, either fire-and-forget (Post) or waiting (Call).
type Executor interface {
	Scheduler
	Post(fn func()) error
	Call(ctx context.Context, fn func()) error
}

// Loop serializes tasks onto one goroutine.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
}

var _ Executor = (*Loop)(nil)

// New creates a loop with the given task queue capacity.
func New(capacity int, logger *slog.Logger) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), capacity),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes posted tasks until ctx is cancelled. Blocks.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.runTask(fn)
		}
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()
	fn()
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine. Returns ErrStopped when the loop has exited.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to be posted onto the loop after d.
// A timer stopped after it already fired may still run its task; callers
// guard with their own generation counters.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		if err := l.Post(fn); err != nil {
			l.logger.Debug("dropping scheduled task", "error", err)
		}
	})
}
