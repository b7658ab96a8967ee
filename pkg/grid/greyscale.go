package grid

import "image/color"

// greyscale derives colors from a height surface. The maximum height is
// computed once at construction so ColorAt stays order independent.
type greyscale struct {
	Source
	peak uint32
}

// Greyscale wraps a height source so that ColorAt returns a grey level
// proportional to the cell height relative to the highest cell.
func Greyscale(src Source) Source {
	w, h := src.Size()
	var peak uint32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := src.HeightAt(x, y); v > peak {
				peak = v
			}
		}
	}
	return &greyscale{Source: src, peak: peak}
}

func (g *greyscale) ColorAt(x, y int) color.RGBA {
	if g.peak == 0 {
		return color.RGBA{0, 0, 0, 255}
	}
	v := uint8(uint64(255) * uint64(g.HeightAt(x, y)) / uint64(g.peak))
	return color.RGBA{v, v, v, 255}
}

// mapped replaces the heights of a source through a function.
type mapped struct {
	Source
	fn func(uint32) uint32
}

// MapHeights wraps src so that HeightAt returns fn applied to the source
// height. Colors pass through unchanged.
func MapHeights(src Source, fn func(uint32) uint32) Source {
	return &mapped{Source: src, fn: fn}
}

func (m *mapped) HeightAt(x, y int) uint32 { return m.fn(m.Source.HeightAt(x, y)) }

// flat is a constant-height surface used to render colormaps as mosaics.
type flat struct {
	w, h int
}

// Flat returns a w×h surface where every cell has height zero.
func Flat(w, h int) Source {
	return flat{w: w, h: h}
}

func (f flat) Size() (int, int)            { return f.w, f.h }
func (f flat) HeightAt(x, y int) uint32    { return 0 }
func (f flat) ColorAt(x, y int) color.RGBA { return color.RGBA{255, 255, 255, 255} }
