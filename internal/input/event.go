// Package input defines the global keyboard/mouse events the animation
// consumes and a polling source that synthesizes them from device snapshots.
package input

import "fmt"

// Kind identifies the type of an input event.
type Kind int

const (
	KindUnknown Kind = iota
	KeyDown
	KeyUp
	LeftClickDown
	LeftClickUp
	RightClickDown
	RightClickUp
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case LeftClickDown:
		return "left-click-down"
	case LeftClickUp:
		return "left-click-up"
	case RightClickDown:
		return "right-click-down"
	case RightClickUp:
		return "right-click-up"
	default:
		return "unknown"
	}
}

// Event is a single discrete input transition. Key is only set for
// KeyDown/KeyUp.
type Event struct {
	Kind Kind
	Key  string
}

func (e Event) String() string {
	if e.Kind == KeyDown || e.Kind == KeyUp {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
	}
	return e.Kind.String()
}

// KeyDownEvent builds a KeyDown event for id.
func KeyDownEvent(id string) Event { return Event{Kind: KeyDown, Key: id} }

// KeyUpEvent builds a KeyUp event for id.
func KeyUpEvent(id string) Event { return Event{Kind: KeyUp, Key: id} }

// Handler receives events. Sources may call it from their own goroutine.
type Handler func(Event)

// Source supplies global input events until stopped.
type Source interface {
	Start(handler Handler) error
	Stop() error
}
