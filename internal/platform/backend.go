// Package platform adapts the display server to the interfaces the daemon
// consumes: screens, the foreground application, the cat window and raw
// input sampling.
package platform

import (
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/placement"
)

// Rect describes a rectangular region in integer screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Geom converts r to float geometry.
func (r Rect) Geom() geom.Rect {
	return geom.Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
	Usable  Rect
}

// Screen converts d to the placement view.
func (d Display) Screen() placement.Screen {
	return placement.Screen{
		ID:      d.ID,
		Name:    d.Name,
		Primary: d.Primary,
		Frame:   d.Bounds.Geom(),
		Visible: d.Usable.Geom(),
	}
}

// Screens converts displays in order.
func Screens(displays []Display) []placement.Screen {
	out := make([]placement.Screen, 0, len(displays))
	for _, d := range displays {
		out = append(out, d.Screen())
	}
	return out
}
