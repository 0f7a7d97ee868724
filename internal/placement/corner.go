// Package placement computes where the cat window goes and moves it there
// without mistaking its own moves for user drags.
package placement

import (
	"fmt"
	"strings"

	"github.com/1broseidon/bongocat/internal/geom"
)

// Corner names a placement anchor on a screen's visible frame.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
	// Custom uses the last manually chosen position.
	Custom
)

// DefaultMargin is the gap between the window and the visible frame edges.
const DefaultMargin = 20.0

var cornerNames = map[Corner]string{
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
	Custom:      "custom",
}

func (c Corner) String() string {
	if name, ok := cornerNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCorner accepts "top-right", "top_right", "topright" and friends.
func ParseCorner(s string) (Corner, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "", "-", "", " ", "").Replace(norm)
	switch norm {
	case "topleft", "tl":
		return TopLeft, nil
	case "topright", "tr":
		return TopRight, nil
	case "bottomleft", "bl":
		return BottomLeft, nil
	case "bottomright", "br":
		return BottomRight, nil
	case "custom":
		return Custom, nil
	}
	return TopRight, fmt.Errorf("unknown corner %q", s)
}

// Next returns the following fixed corner, clockwise from the top-left.
// Custom cycles to TopLeft.
func (c Corner) Next() Corner {
	switch c {
	case TopLeft:
		return TopRight
	case TopRight:
		return BottomRight
	case BottomRight:
		return BottomLeft
	default:
		return TopLeft
	}
}

// CornerPoint returns the window origin that puts a window of the given size
// margin pixels from the two edges of visible that meet at corner. It
// reports false for Custom, which has no geometric meaning.
func CornerPoint(corner Corner, visible geom.Rect, size geom.Size, margin float64) (geom.Point, bool) {
	left := visible.X + margin
	right := visible.MaxX() - margin - size.Width
	top := visible.Y + margin
	bottom := visible.MaxY() - margin - size.Height

	switch corner {
	case TopLeft:
		return geom.Point{X: left, Y: top}, true
	case TopRight:
		return geom.Point{X: right, Y: top}, true
	case BottomLeft:
		return geom.Point{X: left, Y: bottom}, true
	case BottomRight:
		return geom.Point{X: right, Y: bottom}, true
	}
	return geom.Point{}, false
}

// RelativePoint maps origin from one visible frame onto another, keeping the
// fractional offset and clamping so the window stays fully inside to.
func RelativePoint(origin geom.Point, size geom.Size, from, to geom.Rect) geom.Point {
	fx, fy := 0.0, 0.0
	if from.Width > 0 {
		fx = (origin.X - from.X) / from.Width
	}
	if from.Height > 0 {
		fy = (origin.Y - from.Y) / from.Height
	}

	x := to.X + fx*to.Width
	y := to.Y + fy*to.Height
	return geom.Point{
		X: geom.Clamp(x, to.X, to.MaxX()-size.Width),
		Y: geom.Clamp(y, to.Y, to.MaxY()-size.Height),
	}
}
