package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
	ErrInvalidGATHeight      = errors.New("invalid GAT height")
)

const (
	gatMagic      = "GRAT"
	gatHeaderSize = 14
	gatCellSize   = 20
	gatMaxEdge    = 4096
)

// GATVersion represents the GAT file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType represents the terrain type of a cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0
	GATBlocked       GATCellType = 1
	GATWater         GATCellType = 2
	GATWalkableWater GATCellType = 3
	GATSnipeable     GATCellType = 4
	GATBlockedSnipe  GATCellType = 5
)

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	switch t {
	case GATWalkable:
		return "Walkable"
	case GATBlocked:
		return "Blocked"
	case GATWater:
		return "Water"
	case GATWalkableWater:
		return "Walkable+Water"
	case GATSnipeable:
		return "Snipeable"
	case GATBlockedSnipe:
		return "Blocked+Snipe"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsWater returns true if the cell contains water.
func (t GATCellType) IsWater() bool {
	return t == GATWater || t == GATWalkableWater
}

// GATCell is a single cell of the altitude table.
type GATCell struct {
	// Heights contains the altitude of each corner:
	// [0] = bottom-left, [1] = bottom-right, [2] = top-left, [3] = top-right.
	// Values grow downwards.
	Heights [4]float32
	Type    GATCellType
}

// AverageHeight returns the average altitude of all four corners.
func (c *GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4.0
}

// Elevation returns the cell altitude with up as positive.
func (c *GATCell) Elevation() float64 {
	return -float64(c.AverageHeight())
}

// GAT is a parsed Ground Altitude Table.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// NewGAT allocates a flat, walkable table of the given size.
func NewGAT(width, height uint32) *GAT {
	return &GAT{
		Version: GATVersion{Major: 1, Minor: 2},
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, int(width)*int(height)),
	}
}

// GetCell returns the cell at the given coordinates.
// Returns nil if coordinates are out of bounds.
func (g *GAT) GetCell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// ParseGAT parses a GAT file from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// Version is stored as [minor, major]
	version := GATVersion{Major: data[5], Minor: data[4]}
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}

	width := binary.LittleEndian.Uint32(data[6:])
	height := binary.LittleEndian.Uint32(data[10:])
	if width == 0 || height == 0 || width > gatMaxEdge || height > gatMaxEdge {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}

	gat := NewGAT(width, height)
	gat.Version = version

	body := data[gatHeaderSize:]
	if len(body) < len(gat.Cells)*gatCellSize {
		return nil, fmt.Errorf("%w: %d cells need %d bytes, have %d",
			ErrTruncatedGATData, len(gat.Cells), len(gat.Cells)*gatCellSize, len(body))
	}
	if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, gat.Cells); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedGATData, err)
	}
	if err := gat.checkHeights(); err != nil {
		return nil, err
	}

	return gat, nil
}

// checkHeights rejects cells with NaN or infinite corner heights.
func (g *GAT) checkHeights() error {
	for i := range g.Cells {
		for _, h := range g.Cells[i].Heights {
			if math.IsNaN(float64(h)) || math.IsInf(float64(h), 0) {
				return fmt.Errorf("%w: cell %d,%d has corner height %v",
					ErrInvalidGATHeight, i%int(g.Width), i/int(g.Width), h)
			}
		}
	}
	return nil
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// Encode writes the table in GAT format.
func (g *GAT) Encode(w io.Writer) error {
	if len(g.Cells) != int(g.Width)*int(g.Height) {
		return fmt.Errorf("%w: %dx%d with %d cells", ErrInvalidGATDimensions, g.Width, g.Height, len(g.Cells))
	}
	var hdr [gatHeaderSize]byte
	copy(hdr[:], gatMagic)
	hdr[4] = g.Version.Minor
	hdr[5] = g.Version.Major
	binary.LittleEndian.PutUint32(hdr[6:], g.Width)
	binary.LittleEndian.PutUint32(hdr[10:], g.Height)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, g.Cells)
}

// CountByType returns the count of cells for each type.
func (g *GAT) CountByType() map[GATCellType]int {
	counts := make(map[GATCellType]int)
	for _, cell := range g.Cells {
		counts[cell.Type]++
	}
	return counts
}

// Elevations returns the up-positive elevation of every cell, row-major.
func (g *GAT) Elevations() []float64 {
	out := make([]float64, len(g.Cells))
	for i := range g.Cells {
		out[i] = g.Cells[i].Elevation()
	}
	return out
}

// ElevationRange returns the lowest and highest cell elevation.
func (g *GAT) ElevationRange() (lo, hi float64) {
	if len(g.Cells) == 0 {
		return 0, 0
	}
	e := g.Elevations()
	return floats.Min(e), floats.Max(e)
}
