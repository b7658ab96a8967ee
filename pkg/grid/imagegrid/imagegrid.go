// Package imagegrid builds grid sources from decoded raster images.
package imagegrid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration

	"github.com/Faultbox/heightmap2brs/pkg/grid"
)

// Errors returned while loading images.
var (
	ErrNoFiles           = errors.New("no heightmap files given")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// extensions lists the file types with a registered decoder.
var extensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".tga": true,
}

// Supported reports whether path has an image extension Decode accepts.
func Supported(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Decode reads and decodes an image file of any registered format.
func Decode(path string) (image.Image, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, grid.ErrEmptyGrid
	}
	return img, nil
}

// nrgba returns the non-premultiplied color of a pixel relative to the
// image origin.
func nrgba(img image.Image, x, y int) color.NRGBA {
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}

// LoadHeightmap decodes one or more images of identical size and sums their
// heights per cell. A plain heightmap reads the red channel; a high detail
// map (hdmap) packs a 24-bit height into the red, green and blue channels.
func LoadHeightmap(paths []string, hdmap bool) (*grid.Heights, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	var heights *grid.Heights
	for _, path := range paths {
		img, err := Decode(path)
		if err != nil {
			return nil, fmt.Errorf("decoding heightmap %s: %w", path, err)
		}

		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if heights == nil {
			heights = grid.NewHeights(w, h)
		} else if w != heights.Width || h != heights.Height {
			return nil, fmt.Errorf("heightmap %s is %dx%d, expected %dx%d: %w",
				path, w, h, heights.Width, heights.Height, grid.ErrSizeMismatch)
		}

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := nrgba(img, x, y)
				v := uint32(c.R)
				if hdmap {
					v = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
				}
				heights.Values[y*w+x] += v
			}
		}
	}

	return heights, nil
}

// ColormapOptions controls how colormap pixels are interpreted.
type ColormapOptions struct {
	// Linear converts sRGB input to linear gamma.
	Linear bool
	// MagentaKey makes pure magenta pixels fully transparent.
	MagentaKey bool
}

// LoadColormap decodes an image into an RGBA color surface.
func LoadColormap(path string, opts ColormapOptions) (*grid.Colors, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, fmt.Errorf("decoding colormap %s: %w", path, err)
	}
	return FromImage(img, opts), nil
}

// FromImage converts a decoded image into an RGBA color surface.
func FromImage(img image.Image, opts ColormapOptions) *grid.Colors {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	colors := grid.NewColors(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := nrgba(img, x, y)
			c := color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
			if opts.MagentaKey && IsMagentaKey(c.R, c.G, c.B) {
				c = color.RGBA{}
			}
			if opts.Linear {
				c = grid.ToLinearRGB(c)
			}
			colors.Pixels[y*w+x] = c
		}
	}
	return colors
}

// IsMagentaKey checks if an RGB color matches the magenta transparency key.
// Uses tolerance (R >= 250, G <= 10, B >= 250) to absorb encoder rounding.
func IsMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}
