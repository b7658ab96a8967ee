// Package brick defines the brick records produced by the optimizer and the
// placement rules that turn an accepted grid region into one.
package brick

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrUnknownType is returned when parsing an unrecognized brick type name.
var ErrUnknownType = errors.New("unrecognized brick type")

// Type is the closed set of brick shapes a save can reference.
type Type uint8

// Brick types. The value is the asset index in the save's asset table.
const (
	Basic Type = iota
	Tile
	Micro
	Stud
)

type typeInfo struct {
	name      string
	asset     string
	minHeight uint32
}

var typeTable = [...]typeInfo{
	Basic: {"basic", "PB_DefaultBrick", 2},
	Tile:  {"tile", "PB_DefaultTile", 2},
	Micro: {"micro", "PB_DefaultMicroBrick", 2},
	Stud:  {"stud", "PB_DefaultStudded", 5},
}

// Types lists every brick type in asset index order.
func Types() []Type {
	return []Type{Basic, Tile, Micro, Stud}
}

// AssetNames returns the asset table for a save, indexed by Type.
func AssetNames() []string {
	names := make([]string, len(typeTable))
	for i, info := range typeTable {
		names[i] = info.asset
	}
	return names
}

// ParseType parses a brick type name case-insensitively.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, info := range typeTable {
		if info.name == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool { return int(t) < len(typeTable) }

// String returns the lower-case type name.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeTable[t].name
}

// MinHeight is the smallest vertical extent the engine accepts for t.
func (t Type) MinHeight() uint32 { return typeTable[t].minHeight }

// AssetIndex is the index of t in the save asset table.
func (t Type) AssetIndex() uint32 { return uint32(t) }

// AssetName is the engine asset the type maps to.
func (t Type) AssetName() string { return typeTable[t].asset }

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Brick is one placed brick. Size holds half-extents in placement units:
// X and Y are the square footprint, Z is the vertical extent. Bricks always
// face Z-positive with no rotation.
type Brick struct {
	Type      Type       `json:"type"`
	Position  [3]int32   `json:"position"`
	Size      [3]uint32  `json:"size"`
	Color     color.RGBA `json:"-"`
	Collision bool       `json:"collision"`
	Owner     uint32     `json:"owner"`
}

// Footprint returns the half-width of the brick's square footprint.
func (b Brick) Footprint() uint32 { return b.Size[0] }

// Extent returns the brick's vertical extent.
func (b Brick) Extent() uint32 { return b.Size[2] }
