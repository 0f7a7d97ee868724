package placement

import (
	"errors"

	"github.com/1broseidon/bongocat/internal/geom"
)

// ErrNoScreens is returned when the display server reports no screens.
var ErrNoScreens = errors.New("no screens available")

// Screen is one display area. Visible excludes panels and docks.
type Screen struct {
	ID      int
	Name    string
	Primary bool
	Frame   geom.Rect
	Visible geom.Rect
}

// ScreenQuery enumerates the current screens.
type ScreenQuery interface {
	Screens() ([]Screen, error)
}

// ScreenFor returns the screen holding r: the one containing its center,
// else the one it overlaps most. It reports false when r touches none.
func ScreenFor(screens []Screen, r geom.Rect) (Screen, bool) {
	center := r.Center()
	for _, s := range screens {
		if s.Frame.Contains(center) {
			return s, true
		}
	}

	best := -1
	bestArea := 0.0
	for i, s := range screens {
		if area := s.Frame.Intersect(r).Area(); area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best < 0 {
		return Screen{}, false
	}
	return screens[best], true
}

// PrimaryScreen returns the screen flagged primary, else the first one.
func PrimaryScreen(screens []Screen) (Screen, error) {
	if len(screens) == 0 {
		return Screen{}, ErrNoScreens
	}
	for _, s := range screens {
		if s.Primary {
			return s, nil
		}
	}
	return screens[0], nil
}

func screenByID(screens []Screen, id int) (Screen, bool) {
	for _, s := range screens {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}
