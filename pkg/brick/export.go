package brick

import (
	"io"

	"github.com/segmentio/encoding/json"
)

type jsonBrick struct {
	Brick
	Asset string   `json:"asset"`
	RGBA  [4]uint8 `json:"color"`
}

// WriteJSON writes the bricks as an indented JSON array.
func WriteJSON(w io.Writer, bricks []Brick) error {
	out := make([]jsonBrick, len(bricks))
	for i, b := range bricks {
		out[i] = jsonBrick{
			Brick: b,
			Asset: b.Type.AssetName(),
			RGBA:  [4]uint8{b.Color.R, b.Color.G, b.Color.B, b.Color.A},
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON decodes bricks written by WriteJSON.
func ReadJSON(r io.Reader) ([]Brick, error) {
	var in []jsonBrick
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}
	bricks := make([]Brick, len(in))
	for i, jb := range in {
		b := jb.Brick
		b.Color.R, b.Color.G, b.Color.B, b.Color.A = jb.RGBA[0], jb.RGBA[1], jb.RGBA[2], jb.RGBA[3]
		bricks[i] = b
	}
	return bricks, nil
}
