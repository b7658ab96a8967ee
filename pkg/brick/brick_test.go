package brick

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"basic", Basic},
		{"Tile", Tile},
		{"MICRO", Micro},
		{" stud ", Stud},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}

	_, err := ParseType("plate")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestTypeTable(t *testing.T) {
	tests := []struct {
		typ       Type
		minHeight uint32
		asset     uint32
		name      string
	}{
		{Basic, 2, 0, "PB_DefaultBrick"},
		{Tile, 2, 1, "PB_DefaultTile"},
		{Micro, 2, 2, "PB_DefaultMicroBrick"},
		{Stud, 5, 3, "PB_DefaultStudded"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.minHeight, tt.typ.MinHeight(), tt.typ.String())
		require.Equal(t, tt.asset, tt.typ.AssetIndex(), tt.typ.String())
		require.Equal(t, tt.name, tt.typ.AssetName(), tt.typ.String())
		require.Equal(t, tt.name, AssetNames()[tt.asset])
	}
	require.Len(t, Types(), len(AssetNames()))
	require.False(t, Type(9).Valid())
	require.Equal(t, "Type(9)", Type(9).String())
}

func TestTypeText(t *testing.T) {
	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("Stud")))
	require.Equal(t, Stud, typ)

	text, err := Micro.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "micro", string(text))

	require.Error(t, typ.UnmarshalText([]byte("nope")))
}

func TestExtent(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		snap   bool
		height uint32
		want   uint32
	}{
		{"clamped to minimum", Basic, false, 0, 2},
		{"even passes through", Basic, false, 10, 10},
		{"odd rounds up", Basic, false, 7, 8},
		{"stud minimum rounds to even", Stud, false, 0, 6},
		{"stud above minimum", Stud, false, 9, 10},
		{"snap rounds half up", Basic, true, 6, 8},
		{"snap keeps multiples", Basic, true, 12, 12},
		{"snap minimum", Basic, true, 0, 4},
		{"snap odd", Tile, true, 9, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmitter(tt.typ, 1, tt.snap, true)
			got := e.Extent(tt.height)
			require.Equal(t, tt.want, got)
			require.Zero(t, got%2)
			require.GreaterOrEqual(t, got, tt.typ.MinHeight())
		})
	}
}

func TestNewEmitterUnit(t *testing.T) {
	require.Equal(t, uint32(5), NewEmitter(Basic, 1, false, true).Unit)
	require.Equal(t, uint32(15), NewEmitter(Stud, 3, false, true).Unit)
	require.Equal(t, uint32(3), NewEmitter(Micro, 3, false, true).Unit)
}

func TestEmit(t *testing.T) {
	e := NewEmitter(Basic, 1, false, true)
	c := color.RGBA{1, 2, 3, 255}

	b := e.Emit(Region{X: 0, Y: 0, Edge: 1}, 4, c)
	want := Brick{
		Type:      Basic,
		Position:  [3]int32{5, 5, 4},
		Size:      [3]uint32{5, 5, 4},
		Color:     c,
		Collision: true,
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Emit mismatch (-want +got):\n%s", diff)
	}

	b = e.Emit(Region{X: 4, Y: 2, Edge: 2}, 3, c)
	require.Equal(t, [3]int32{50, 30, 4}, b.Position)
	require.Equal(t, [3]uint32{10, 10, 4}, b.Size)
	require.Equal(t, uint32(10), b.Footprint())
	require.Equal(t, uint32(4), b.Extent())

	noCollide := NewEmitter(Tile, 2, false, false).Emit(Region{Edge: 1}, 0, c)
	require.False(t, noCollide.Collision)
	require.Equal(t, Tile, noCollide.Type)
}

func TestEmitRegionRoundTrip(t *testing.T) {
	for _, e := range []Emitter{
		NewEmitter(Basic, 1, false, true),
		NewEmitter(Micro, 1, false, true),
		NewEmitter(Stud, 4, true, true),
	} {
		for _, r := range []Region{{0, 0, 1}, {3, 7, 1}, {8, 4, 4}, {0, 16, 16}} {
			require.Equal(t, r, e.Region(e.Emit(r, 10, color.RGBA{})))
		}
	}
}

func TestWriteJSON(t *testing.T) {
	e := NewEmitter(Stud, 1, false, true)
	bricks := []Brick{
		e.Emit(Region{X: 1, Y: 2, Edge: 2}, 20, color.RGBA{10, 20, 30, 255}),
		e.Emit(Region{X: 0, Y: 0, Edge: 1}, 0, color.RGBA{0, 0, 0, 128}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, bricks))
	require.True(t, strings.Contains(buf.String(), `"asset": "PB_DefaultStudded"`), buf.String())
	require.True(t, strings.Contains(buf.String(), `"type": "stud"`), buf.String())

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(bricks, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
