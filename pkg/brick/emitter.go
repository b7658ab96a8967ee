package brick

import "image/color"

const (
	// StudUnit is the half-width of one stud in placement units.
	StudUnit = 5
	// StackingUnit is the vertical alignment used when snapping.
	StackingUnit = 4
)

// Region is a square block of grid cells with its top-left corner at (X, Y).
type Region struct {
	X, Y int
	Edge int
}

// Emitter converts accepted regions into bricks.
type Emitter struct {
	Type      Type
	Snap      bool
	Collision bool
	// Unit is the half-width of one grid cell in placement units.
	Unit uint32
}

// NewEmitter returns an emitter for the given type. sizeMultiplier is the
// number of studs per grid cell, or of micro units for Micro bricks.
func NewEmitter(t Type, sizeMultiplier uint32, snap, collision bool) Emitter {
	unit := sizeMultiplier
	if t != Micro {
		unit *= StudUnit
	}
	return Emitter{Type: t, Snap: snap, Collision: collision, Unit: unit}
}

// Extent returns the vertical extent for a quantized height: clamped to the
// type minimum, rounded up to even, and optionally snapped.
func (e Emitter) Extent(height uint32) uint32 {
	v := max(height, e.Type.MinHeight())
	v += v % 2
	if e.Snap {
		// v is even, so this rounds half up and never goes below v.
		v = (v + StackingUnit/2) / StackingUnit * StackingUnit
	}
	return v
}

// Emit builds the brick covering r at the given quantized height.
func (e Emitter) Emit(r Region, height uint32, c color.RGBA) Brick {
	half := uint32(r.Edge) * e.Unit
	extent := e.Extent(height)
	unit := int32(e.Unit)
	return Brick{
		Type: e.Type,
		Position: [3]int32{
			int32(2*r.X+r.Edge) * unit,
			int32(2*r.Y+r.Edge) * unit,
			int32(extent),
		},
		Size:      [3]uint32{half, half, extent},
		Color:     c,
		Collision: e.Collision,
	}
}

// Region recovers the grid region a brick produced by e covers.
func (e Emitter) Region(b Brick) Region {
	unit := int32(e.Unit)
	half := int32(b.Size[0])
	return Region{
		X:    int((b.Position[0] - half) / (2 * unit)),
		Y:    int((b.Position[1] - half) / (2 * unit)),
		Edge: int(half / unit),
	}
}
