package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var ErrInvalidStyle = errors.New("invalid style")

// Shape selects how a dark module is painted.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeRounded
)

// Defaults applied by NewStyle.
const (
	DefaultModuleSize = 10
	DefaultScale      = 10
	DefaultBorder     = 4
	DefaultLogoScale  = 0.2
)

// Style holds everything the renderer needs besides the matrix.
type Style struct {
	Dark       color.RGBA
	Light      color.RGBA
	ModuleSize int // raster pixels per module
	Scale      int // vector pixels per module
	Border     int // quiet zone, in modules
	Shape      Shape
	Logo       image.Image // raster only
	LogoScale  float64     // fraction of the shorter canvas side, (0,1)
}

// NewStyle parses both colors and fills in the defaults. Colors are checked
// before anything else so a bad color never reaches the drawing code.
func NewStyle(dark, light string) (Style, error) {
	d, err := ParseColor(dark)
	if err != nil {
		return Style{}, fmt.Errorf("dark: %w", err)
	}
	l, err := ParseColor(light)
	if err != nil {
		return Style{}, fmt.Errorf("light: %w", err)
	}
	return Style{
		Dark:       d,
		Light:      l,
		ModuleSize: DefaultModuleSize,
		Scale:      DefaultScale,
		Border:     DefaultBorder,
		LogoScale:  DefaultLogoScale,
	}, nil
}

func (s Style) Validate() error {
	switch {
	case s.ModuleSize < 1:
		return fmt.Errorf("%w: module size %d < 1", ErrInvalidStyle, s.ModuleSize)
	case s.Scale < 1:
		return fmt.Errorf("%w: scale %d < 1", ErrInvalidStyle, s.Scale)
	case s.Border < 0:
		return fmt.Errorf("%w: border %d < 0", ErrInvalidStyle, s.Border)
	case s.LogoScale <= 0 || s.LogoScale >= 1:
		return fmt.Errorf("%w: logo scale %g outside (0,1)", ErrInvalidStyle, s.LogoScale)
	case s.Shape != ShapeSquare && s.Shape != ShapeRounded:
		return fmt.Errorf("%w: unknown shape %d", ErrInvalidStyle, s.Shape)
	}
	return nil
}

// CanvasSize is the raster edge length in pixels for a matrix of size n.
func (s Style) CanvasSize(n int) int {
	return (n + 2*s.Border) * s.ModuleSize
}
