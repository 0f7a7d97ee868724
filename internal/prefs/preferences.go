package prefs

import (
	"errors"
	"fmt"
	"math"

	"github.com/1broseidon/bongocat/internal/geom"
)

// Scalar keys for global cat preferences.
const (
	KeyScale          = "catScale"
	KeyRotation       = "catRotation"
	KeyFlipHorizontal = "catFlipHorizontal"
	KeyPositionX      = "catPositionX"
	KeyPositionY      = "catPositionY"
	KeyCornerMode     = "cornerPosition"
)

const (
	DefaultScale = 1.0
	MinScale     = 0.25
	MaxScale     = 4.0
)

// Preferences is a typed view over the global scalar keys.
type Preferences struct {
	store Store
}

// NewPreferences wraps store.
func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// Scale returns the cat's scale factor, DefaultScale when unset.
func (p *Preferences) Scale() float64 {
	if v, ok := p.store.Double(KeyScale); ok {
		return v
	}
	return DefaultScale
}

func (p *Preferences) SetScale(v float64) error {
	if math.IsNaN(v) || v < MinScale || v > MaxScale {
		return fmt.Errorf("scale must be between %.2f and %.2f, got %v", MinScale, MaxScale, v)
	}
	return p.store.SetDouble(KeyScale, v)
}

// Rotation returns the cat's rotation in degrees.
func (p *Preferences) Rotation() float64 {
	v, _ := p.store.Double(KeyRotation)
	return v
}

// SetRotation stores the rotation normalized to [0, 360).
func (p *Preferences) SetRotation(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("invalid rotation %v", deg)
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return p.store.SetDouble(KeyRotation, deg)
}

func (p *Preferences) FlipHorizontal() bool {
	v, _ := p.store.Bool(KeyFlipHorizontal)
	return v
}

func (p *Preferences) SetFlipHorizontal(v bool) error {
	return p.store.SetBool(KeyFlipHorizontal, v)
}

// Position returns the last manually chosen global position.
func (p *Preferences) Position() (geom.Point, bool) {
	x, okX := p.store.Double(KeyPositionX)
	y, okY := p.store.Double(KeyPositionY)
	if !okX || !okY {
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

func (p *Preferences) SetPosition(pt geom.Point) error {
	return errors.Join(
		p.store.SetDouble(KeyPositionX, pt.X),
		p.store.SetDouble(KeyPositionY, pt.Y),
	)
}

// CornerMode returns the stored corner name.
func (p *Preferences) CornerMode() (string, bool) {
	return p.store.String(KeyCornerMode)
}

func (p *Preferences) SetCornerMode(mode string) error {
	return p.store.SetString(KeyCornerMode, mode)
}
