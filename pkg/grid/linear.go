package grid

import (
	"image/color"
	"math"
)

// ToLinearGamma converts one sRGB channel to linear gamma.
func ToLinearGamma(c uint8) uint8 {
	cf := float64(c) / 255.0
	if cf > 0.04045 {
		return uint8(math.Pow(cf/1.055+0.0521327, 2.4) * 255.0)
	}
	return uint8(cf / 12.192 * 255.0)
}

// ToLinearRGB converts the color channels of c to linear gamma; alpha is kept.
func ToLinearRGB(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: ToLinearGamma(c.R),
		G: ToLinearGamma(c.G),
		B: ToLinearGamma(c.B),
		A: c.A,
	}
}
