package formats

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Faultbox/heightmap2brs/pkg/grf"
	"github.com/Faultbox/heightmap2brs/pkg/grid"
)

// DefaultGATScale maps one GAT altitude unit to one height step.
const DefaultGATScale = 1.0

// waterColor tints water cells when GATSourceOptions.MarkWater is set.
var waterColor = color.RGBA{R: 40, G: 90, B: 200, A: 255}

// GATSourceOptions controls how a GAT is turned into a grid source.
type GATSourceOptions struct {
	// Scale multiplies elevations before truncation to whole height steps.
	Scale float64
	// MarkWater colors water cells blue instead of greyscale.
	MarkWater bool
	// Levels maps scaled heights to the levels cells are merged on. Grey
	// colors are derived from these levels so cells on one level share a
	// color. Nil uses the scaled heights.
	Levels func(uint32) uint32
}

// GATSource is a grid source backed by a GAT altitude table. Heights and
// colors are resolved once at construction.
type GATSource struct {
	width, height int
	heights       *grid.Heights
	colors        []color.RGBA
}

// NewGATSource builds a grid source from a parsed table. Elevations are
// shifted so the lowest cell sits at height zero.
func NewGATSource(gat *GAT, opts GATSourceOptions) (*GATSource, error) {
	if opts.Scale <= 0 || math.IsNaN(opts.Scale) || math.IsInf(opts.Scale, 0) {
		return nil, fmt.Errorf("invalid GAT scale %v", opts.Scale)
	}
	w, h := int(gat.Width), int(gat.Height)
	if w == 0 || h == 0 || len(gat.Cells) != w*h {
		return nil, fmt.Errorf("%w: %dx%d", grid.ErrEmptyGrid, w, h)
	}
	if err := gat.checkHeights(); err != nil {
		return nil, err
	}

	elevations := gat.Elevations()
	lo, _ := gat.ElevationRange()

	heights := grid.NewHeights(w, h)
	for i, e := range elevations {
		v := (e - lo) * opts.Scale
		if v >= math.MaxUint32 {
			v = math.MaxUint32
		}
		heights.Values[i] = uint32(v)
	}

	var levels grid.Source = heights
	if opts.Levels != nil {
		levels = grid.MapHeights(heights, opts.Levels)
	}
	grey := grid.Greyscale(levels)
	colors := make([]color.RGBA, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if opts.MarkWater && gat.Cells[i].Type.IsWater() {
				colors[i] = waterColor
				continue
			}
			colors[i] = grey.ColorAt(x, y)
		}
	}

	return &GATSource{width: w, height: h, heights: heights, colors: colors}, nil
}

// Size returns the grid dimensions.
func (s *GATSource) Size() (int, int) { return s.width, s.height }

// HeightAt returns the scaled elevation of a cell.
func (s *GATSource) HeightAt(x, y int) uint32 { return s.heights.HeightAt(x, y) }

// ColorAt returns the precomputed cell color.
func (s *GATSource) ColorAt(x, y int) color.RGBA { return s.colors[y*s.width+x] }

// OpenGAT reads a GAT from disk, or from inside a GRF archive when archive
// is not empty.
func OpenGAT(path, archive string) (*GAT, error) {
	if archive == "" {
		return ParseGATFile(path)
	}

	a, err := grf.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archive, err)
	}
	defer a.Close()

	data, err := a.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", path, archive, err)
	}
	return ParseGAT(data)
}
