package daemon

import (
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/perapp"
	"github.com/1broseidon/bongocat/internal/placement"
)

// CatWindow is the on-screen window the cat is drawn in.
type CatWindow interface {
	placement.Window
	// OnMoved registers fn for origin changes reported by the window system.
	// fn may run on any goroutine.
	OnMoved(fn func(geom.Point))
	Close()
}

// Desktop is the display server as the daemon sees it.
type Desktop interface {
	placement.ScreenQuery
	ForegroundQuery
	perapp.NameResolver
	CreateCatWindow(frame geom.Rect) (CatWindow, error)
	// OnScreensChanged registers fn for monitor changes. fn may run on any
	// goroutine.
	OnScreensChanged(fn func()) error
}

// HotkeyBinder registers global key sequences.
type HotkeyBinder interface {
	Register(keySequence string, callback func()) error
	UnregisterAll()
}
