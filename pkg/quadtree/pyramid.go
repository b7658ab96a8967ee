package quadtree

import (
	"image/color"

	"github.com/Faultbox/heightmap2brs/pkg/grid"
)

// block summarizes an aligned power-of-two square of cells. ok is set only
// when the square lies fully inside the grid and every cell in it has the
// same quantized height and color.
type block struct {
	height uint32
	color  color.RGBA
	ok     bool
}

// level holds the summaries of every 2^k aligned block, row-major.
type level struct {
	w, h   int
	blocks []block
}

func (l *level) at(i, j int) (block, bool) {
	if i >= l.w || j >= l.h {
		return block{}, false
	}
	return l.blocks[j*l.w+i], true
}

// pyramid answers "is this aligned region uniform" in O(1) after an O(N)
// bottom-up build. Level k has ceil(w/2^k) × ceil(h/2^k) blocks and the top
// level is a single block covering the padded power-of-two square.
type pyramid struct {
	levels []level
}

func buildPyramid(height, colors grid.Source, cfg Config) *pyramid {
	w, h := height.Size()
	base := level{w: w, h: h, blocks: make([]block, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b := block{color: colors.ColorAt(x, y), ok: true}
			if !cfg.Flatten {
				b.height = cfg.Quantize(height.HeightAt(x, y))
			}
			base.blocks[y*w+x] = b
		}
	}

	p := &pyramid{levels: []level{base}}
	for prev := base; prev.w > 1 || prev.h > 1; {
		next := level{w: (prev.w + 1) / 2, h: (prev.h + 1) / 2}
		next.blocks = make([]block, next.w*next.h)
		for j := 0; j < next.h; j++ {
			for i := 0; i < next.w; i++ {
				next.blocks[j*next.w+i] = merge(&prev, 2*i, 2*j)
			}
		}
		p.levels = append(p.levels, next)
		prev = next
	}
	return p
}

// merge combines the four children at (i, j) of the previous level. Any
// missing child means the parent block overhangs the grid edge.
func merge(prev *level, i, j int) block {
	first, ok := prev.at(i, j)
	if !ok || !first.ok {
		return block{}
	}
	for _, d := range [3][2]int{{1, 0}, {0, 1}, {1, 1}} {
		b, ok := prev.at(i+d[0], j+d[1])
		if !ok || !b.ok || b.height != first.height || b.color != first.color {
			return block{}
		}
	}
	return first
}

func (p *pyramid) top() int { return len(p.levels) - 1 }
