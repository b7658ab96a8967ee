// Package grid defines the read-only raster surfaces the optimizer consumes.
package grid

import (
	"errors"
	"fmt"
	"image/color"
)

// Grid validation errors.
var (
	ErrEmptyGrid    = errors.New("grid has zero area")
	ErrSizeMismatch = errors.New("height and color grid sizes differ")
)

// Source is a 2-D surface addressable by cell. Implementations must be pure:
// reads never mutate state and always return the same value for a cell.
// Accessors are only defined for 0 <= x < w and 0 <= y < h.
type Source interface {
	Size() (w, h int)
	HeightAt(x, y int) uint32
	ColorAt(x, y int) color.RGBA
}

// Validate checks that a height/color pair can be optimized.
func Validate(height, colors Source) error {
	w, h := height.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyGrid, w, h)
	}
	if colors == nil {
		return nil
	}
	cw, ch := colors.Size()
	if cw != w || ch != h {
		return fmt.Errorf("%w: height %dx%d, color %dx%d", ErrSizeMismatch, w, h, cw, ch)
	}
	return nil
}

// Heights is an in-memory height surface stored row-major.
type Heights struct {
	Width  int
	Height int
	Values []uint32
}

// NewHeights allocates a zeroed w×h height surface.
func NewHeights(w, h int) *Heights {
	return &Heights{Width: w, Height: h, Values: make([]uint32, w*h)}
}

// Set assigns the height of one cell.
func (g *Heights) Set(x, y int, v uint32) {
	g.Values[y*g.Width+x] = v
}

// Size returns the grid dimensions.
func (g *Heights) Size() (int, int) { return g.Width, g.Height }

// HeightAt returns the raw height of a cell.
func (g *Heights) HeightAt(x, y int) uint32 { return g.Values[y*g.Width+x] }

// ColorAt returns opaque white; pair with a real colormap or Greyscale.
func (g *Heights) ColorAt(x, y int) color.RGBA { return color.RGBA{255, 255, 255, 255} }

// Max returns the largest height on the surface.
func (g *Heights) Max() uint32 {
	var m uint32
	for _, v := range g.Values {
		if v > m {
			m = v
		}
	}
	return m
}

// Colors is an in-memory RGBA surface stored row-major.
type Colors struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewColors allocates a transparent w×h color surface.
func NewColors(w, h int) *Colors {
	return &Colors{Width: w, Height: h, Pixels: make([]color.RGBA, w*h)}
}

// Set assigns the color of one cell.
func (g *Colors) Set(x, y int, c color.RGBA) {
	g.Pixels[y*g.Width+x] = c
}

// Size returns the grid dimensions.
func (g *Colors) Size() (int, int) { return g.Width, g.Height }

// HeightAt always returns zero; a colormap carries no elevation.
func (g *Colors) HeightAt(x, y int) uint32 { return 0 }

// ColorAt returns the color of a cell.
func (g *Colors) ColorAt(x, y int) color.RGBA { return g.Pixels[y*g.Width+x] }
