package eventloop

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestManual_RunsCallbacksInDueOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got []string

	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(20 * time.Millisecond)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("after 20ms got %v, want [a b]", got)
	}

	m.Advance(10 * time.Millisecond)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("after 30ms got %v, want [a b c]", got)
	}
	if m.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", m.Pending())
	}
}

func TestManual_NowDuringCallbackIsDueTime(t *testing.T) {
	start := time.Unix(100, 0)
	m := NewManual(start)
	var seen time.Time
	m.AfterFunc(15*time.Millisecond, func() { seen = m.Now() })

	m.Advance(time.Second)
	if want := start.Add(15 * time.Millisecond); !seen.Equal(want) {
		t.Fatalf("Now() inside callback = %v, want %v", seen, want)
	}
	if want := start.Add(time.Second); !m.Now().Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", m.Now(), want)
	}
}

func TestManual_StopPreventsCallback(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false
	timer := m.AfterFunc(time.Millisecond, func() { fired = true })

	if !timer.Stop() {
		t.Fatalf("expected Stop to report a pending timer")
	}
	if timer.Stop() {
		t.Fatalf("expected second Stop to return false")
	}
	m.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestManual_CallbackCanReschedule(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(10*time.Millisecond, tick)
	}
	m.AfterFunc(10*time.Millisecond, tick)

	m.Advance(55 * time.Millisecond)
	if count != 5 {
		t.Fatalf("expected 5 ticks, got %d", count)
	}
}

func TestLoop_CallRunsOnLoopAndRecoversPanics(t *testing.T) {
	l := New(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	if err := l.Call(ctx, func() { panic("boom") }); err != nil {
		t.Fatalf("Call with panicking task: %v", err)
	}

	callCtx, callCancel := context.WithTimeout(context.Background(), time.Second)
	defer callCancel()
	ran := false
	if err := l.Call(callCtx, func() { ran = true }); err != nil {
		t.Fatalf("Call after panic: %v", err)
	}
	if !ran {
		t.Fatalf("expected task to run")
	}

	cancel()
	<-l.Done()
	if err := l.Post(func() {}); err != ErrStopped {
		t.Fatalf("Post after stop = %v, want ErrStopped", err)
	}
}
