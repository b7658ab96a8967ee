// Package quadtree merges uniform square regions of a grid into bricks.
package quadtree

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/heightmap2brs/pkg/brick"
)

// ErrInvalidConfig is returned when an optimizer option is out of range.
var ErrInvalidConfig = errors.New("invalid optimizer config")

// Config controls how the grid is quantized and which bricks are emitted.
type Config struct {
	// Cull drops bricks over transparent cells and at the zero height level.
	Cull bool
	// VerticalScale multiplies raw heights before rounding.
	VerticalScale float64
	// Snap aligns brick heights to the stacking grid.
	Snap bool
	// BrickType selects the brick asset and its minimum height.
	BrickType brick.Type
	// SizeMultiplier is the brick footprint per grid cell in studs, or in
	// micro units for micro bricks.
	SizeMultiplier uint32
	// Flatten ignores heights and merges by color only.
	Flatten bool
	// Collision sets the collision flag of every brick.
	Collision bool
	// Workers bounds the number of subtrees optimized concurrently.
	// Zero uses GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the options used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		VerticalScale:  1,
		BrickType:      brick.Basic,
		SizeMultiplier: 1,
		Collision:      true,
	}
}

// Validate reports the first out-of-range option.
func (c Config) Validate() error {
	if !(c.VerticalScale > 0) || math.IsInf(c.VerticalScale, 0) {
		return fmt.Errorf("%w: vertical scale must be positive, got %v", ErrInvalidConfig, c.VerticalScale)
	}
	if c.SizeMultiplier < 1 {
		return fmt.Errorf("%w: size multiplier must be at least 1", ErrInvalidConfig)
	}
	if !c.BrickType.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.BrickType)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// checkFootprint reports whether a square root region with the given edge
// in cells can be placed without overflowing brick coordinates.
func (c Config) checkFootprint(edge int) error {
	unit := uint64(c.SizeMultiplier)
	if c.BrickType != brick.Micro {
		unit *= brick.StudUnit
	}
	if span := 2 * uint64(edge) * unit; span > math.MaxInt32 {
		return fmt.Errorf("%w: size %d on a %d cell grid exceeds the brick coordinate range",
			ErrInvalidConfig, c.SizeMultiplier, edge)
	}
	return nil
}

// Quantize scales a raw height and rounds it to the nearest whole step.
func (c Config) Quantize(raw uint32) uint32 {
	v := math.Round(float64(raw) * c.VerticalScale)
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Emitter returns the brick emitter matching the config.
func (c Config) Emitter() brick.Emitter {
	return brick.NewEmitter(c.BrickType, c.SizeMultiplier, c.Snap, c.Collision)
}
