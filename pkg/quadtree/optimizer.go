package quadtree

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/heightmap2brs/pkg/brick"
	"github.com/Faultbox/heightmap2brs/pkg/grid"
)

// Stats summarizes one optimizer run.
type Stats struct {
	Cells  int // in-bounds grid cells
	Culled int // cells left empty by the cull policy
	Bricks int
	Edge   int // edge of the padded power-of-two root square
	Tasks  int // subtrees handed to workers
}

// node is one quadtree region: the aligned block (i, j) of level k, which
// covers cells [i·2^k, (i+1)·2^k) × [j·2^k, (j+1)·2^k).
type node struct {
	k, i, j int
}

func (n node) edge() int { return 1 << n.k }

func (n node) children() [4]node {
	k, i, j := n.k-1, 2*n.i, 2*n.j
	return [4]node{{k, i, j}, {k, i + 1, j}, {k, i, j + 1}, {k, i + 1, j + 1}}
}

type optimizer struct {
	cfg     Config
	w, h    int
	pyr     *pyramid
	emitter brick.Emitter
}

// result is the output buffer of one subtree.
type result struct {
	bricks []brick.Brick
	culled int
}

// Optimize covers the grid with the fewest bricks the quadtree allows. colors
// may be nil, in which case a greyscale of the height surface is used. The
// returned order is deterministic for a given input.
func Optimize(ctx context.Context, height, colors grid.Source, cfg Config) ([]brick.Brick, Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if err := grid.Validate(height, colors); err != nil {
		return nil, Stats{}, err
	}
	w, h := height.Size()
	if err := cfg.checkFootprint(rootEdge(w, h)); err != nil {
		return nil, Stats{}, err
	}
	if colors == nil {
		// Grey levels follow the quantized heights so equal levels merge.
		colors = grid.Greyscale(grid.MapHeights(height, cfg.Quantize))
	}

	o := &optimizer{
		cfg:     cfg,
		w:       w,
		h:       h,
		pyr:     buildPyramid(height, colors, cfg),
		emitter: cfg.Emitter(),
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tasks := o.frontier(4 * workers)
	results := make([]result, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, n := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.walk(n, &results[idx])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Cells: w * h, Edge: node{k: o.pyr.top()}.edge(), Tasks: len(tasks)}
	total := 0
	for _, r := range results {
		total += len(r.bricks)
	}
	bricks := make([]brick.Brick, 0, total)
	for _, r := range results {
		bricks = append(bricks, r.bricks...)
		stats.Culled += r.culled
	}
	stats.Bricks = len(bricks)

	return bricks, stats, nil
}

// rootEdge returns the smallest power of two covering a w×h grid.
func rootEdge(w, h int) int {
	edge := 1
	for edge < w || edge < h {
		edge <<= 1
	}
	return edge
}

// frontier splits the root into independent subtrees until there are at
// least target of them or nothing is left to split. Regions that resolve
// without recursion stay as single tasks.
func (o *optimizer) frontier(target int) []node {
	nodes := []node{{k: o.pyr.top()}}
	for len(nodes) < target {
		var next []node
		split := false
		for _, n := range nodes {
			if o.outside(n) || o.leafOrUniform(n) {
				next = append(next, n)
				continue
			}
			for _, c := range n.children() {
				if !o.outside(c) {
					next = append(next, c)
				}
			}
			split = true
		}
		nodes = next
		if !split {
			break
		}
	}
	return nodes
}

// outside reports whether the region has no in-bounds cell.
func (o *optimizer) outside(n node) bool {
	return n.i*n.edge() >= o.w || n.j*n.edge() >= o.h
}

func (o *optimizer) leafOrUniform(n node) bool {
	if n.k == 0 {
		return true
	}
	b, _ := o.pyr.levels[n.k].at(n.i, n.j)
	return b.ok
}

// walk emits the bricks for one subtree into r.
func (o *optimizer) walk(n node, r *result) {
	if o.outside(n) {
		return
	}

	b, _ := o.pyr.levels[n.k].at(n.i, n.j)
	if b.ok {
		o.accept(n, b, r)
		return
	}

	for _, c := range n.children() {
		o.walk(c, r)
	}
}

// accept turns a uniform region into a brick unless it is culled.
func (o *optimizer) accept(n node, b block, r *result) {
	edge := n.edge()
	if o.culled(b) {
		r.culled += edge * edge
		return
	}
	region := brick.Region{X: n.i * edge, Y: n.j * edge, Edge: edge}
	r.bricks = append(r.bricks, o.emitter.Emit(region, b.height, b.color))
}

// culled applies the cull policy: transparent regions, and regions at the
// zero height level unless heights are flattened away.
func (o *optimizer) culled(b block) bool {
	if !o.cfg.Cull {
		return false
	}
	return b.color.A == 0 || (!o.cfg.Flatten && b.height == 0)
}
