package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/heightmap2brs/internal/logger"
	"github.com/Faultbox/heightmap2brs/pkg/brick"
	"github.com/Faultbox/heightmap2brs/pkg/brs"
	"github.com/Faultbox/heightmap2brs/pkg/formats"
	"github.com/Faultbox/heightmap2brs/pkg/grf/grftest"
)

// testEnv returns a temp dir and an empty config file inside it so user
// config files never leak into the run.
func testEnv(t *testing.T) (dir, cfg string) {
	t.Helper()
	t.Cleanup(logger.Nop)
	dir = t.TempDir()
	cfg = filepath.Join(dir, "heightmap2brs.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))
	return dir, cfg
}

func writeHeightmap(t *testing.T, path string) {
	t.Helper()
	// Left half at height 0, right half at height 8.
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(0)
			if x >= 2 {
				v = 8
			}
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func readInfo(t *testing.T, path string) *brs.Info {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := brs.ReadInfo(f)
	require.NoError(t, err)
	return info
}

func TestPNGToSave(t *testing.T) {
	dir, cfg := testEnv(t)
	hm := filepath.Join(dir, "height.png")
	writeHeightmap(t, hm)
	out := filepath.Join(dir, "out.brs")
	dump := filepath.Join(dir, "bricks.json")

	err := cmdPNG(context.Background(), []string{
		"-config", cfg, "-o", out, "-json", dump, "-owner", "Mapper", "-owner-id", "bogus", hm,
	})
	require.NoError(t, err)

	info := readInfo(t, out)
	// Two 2x2 regions per column half.
	require.Equal(t, int32(4), info.BrickCount)
	require.Equal(t, "Mapper", info.Author.Name)
	require.Equal(t, brs.DefaultOwnerID, info.Author.ID)
	require.Len(t, info.Owners, 1)
	require.Equal(t, int32(4), info.Owners[0].Bricks)

	f, err := os.Open(dump)
	require.NoError(t, err)
	defer f.Close()
	bricks, err := brick.ReadJSON(f)
	require.NoError(t, err)
	require.Len(t, bricks, 4)
	for _, b := range bricks {
		require.Equal(t, brick.Basic, b.Type)
		require.Contains(t, []uint32{2, 8}, b.Extent())
	}
}

func TestPNGCullAndFlatten(t *testing.T) {
	dir, cfg := testEnv(t)
	hm := filepath.Join(dir, "height.png")
	writeHeightmap(t, hm)
	out := filepath.Join(dir, "out.brs")

	require.NoError(t, cmdPNG(context.Background(), []string{"-config", cfg, "-o", out, "-cull", hm}))
	require.Equal(t, int32(2), readInfo(t, out).BrickCount)

	// Flatten merges by color only, so each half is still its own brick pair.
	require.NoError(t, cmdPNG(context.Background(), []string{"-config", cfg, "-o", out, "-img", hm}))
	require.Equal(t, int32(4), readInfo(t, out).BrickCount)
}

func TestPNGErrors(t *testing.T) {
	dir, cfg := testEnv(t)
	ctx := context.Background()

	err := cmdPNG(ctx, []string{"-config", cfg})
	require.Error(t, err)

	err = cmdPNG(ctx, []string{"-config", cfg, filepath.Join(dir, "height.exr")})
	require.ErrorContains(t, err, "height.exr")

	err = cmdPNG(ctx, []string{"-config", cfg, filepath.Join(dir, "missing.png")})
	require.ErrorContains(t, err, "missing.png")

	hm := filepath.Join(dir, "height.png")
	writeHeightmap(t, hm)
	err = cmdPNG(ctx, []string{"-config", cfg, "-brick-type", "plate", hm})
	require.ErrorIs(t, err, brick.ErrUnknownType)
}

func TestGATToSave(t *testing.T) {
	dir, cfg := testEnv(t)
	gat := formats.NewGAT(4, 2)
	for i := range gat.Cells {
		gat.Cells[i].Heights = [4]float32{-10, -10, -10, -10}
	}
	path := filepath.Join(dir, "field.gat")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gat.Encode(f))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "field.brs")
	require.NoError(t, cmdGAT(context.Background(), []string{"-config", cfg, "-o", out, path}))
	// A 4x2 flat field is two 2x2 bricks.
	require.Equal(t, int32(2), readInfo(t, out).BrickCount)

	err = cmdGAT(context.Background(), []string{"-config", cfg, filepath.Join(dir, "field.png")})
	require.Error(t, err)
}

func TestGATFromArchive(t *testing.T) {
	dir, cfg := testEnv(t)
	gat := formats.NewGAT(2, 2)
	gat.Cells[3].Heights = [4]float32{-4, -4, -4, -4}
	gat.Cells[3].Type = formats.GATWater
	var buf bytes.Buffer
	require.NoError(t, gat.Encode(&buf))

	archive := grftest.Build(t, []grftest.File{
		{Name: "data/prontera.gat", Content: buf.Bytes()},
		{Name: "data/prontera.gnd", Content: []byte("ground")},
	})

	out := filepath.Join(dir, "prontera.brs")
	require.NoError(t, cmdGAT(context.Background(), []string{
		"-config", cfg, "-o", out, "-grf", archive, "-water", "-vertical-scale", "2", "data/prontera.gat",
	}))
	// One raised water cell and three flat ground cells.
	require.Equal(t, int32(4), readInfo(t, out).BrickCount)

	require.NoError(t, cmdMaps([]string{archive}))
	require.NoError(t, cmdMaps([]string{"-n", "1", archive, "pront*"}))
	require.NoError(t, cmdInfo([]string{"-grf", archive, "data/prontera.gat"}))
	require.Error(t, cmdMaps(nil))
}

func TestPackRoundTrip(t *testing.T) {
	dir, cfg := testEnv(t)
	hm := filepath.Join(dir, "height.png")
	writeHeightmap(t, hm)
	dump := filepath.Join(dir, "bricks.json")
	first := filepath.Join(dir, "first.brs")
	require.NoError(t, cmdPNG(context.Background(), []string{"-config", cfg, "-o", first, "-json", dump, hm}))

	second := filepath.Join(dir, "second.brs")
	require.NoError(t, cmdPack([]string{"-config", cfg, "-o", second, dump}))
	require.Equal(t, readInfo(t, first).BrickCount, readInfo(t, second).BrickCount)
}

func TestInfo(t *testing.T) {
	dir, cfg := testEnv(t)
	hm := filepath.Join(dir, "height.png")
	writeHeightmap(t, hm)
	out := filepath.Join(dir, "out.brs")
	require.NoError(t, cmdPNG(context.Background(), []string{"-config", cfg, "-o", out, hm}))

	require.NoError(t, cmdInfo([]string{hm}))
	require.NoError(t, cmdInfo([]string{out}))
	require.Error(t, cmdInfo([]string{filepath.Join(dir, "notes.txt")}))
	require.Error(t, cmdInfo(nil))
}

func TestConfigCommand(t *testing.T) {
	dir, cfg := testEnv(t)
	path := filepath.Join(dir, "written.yaml")
	require.NoError(t, cmdConfig([]string{"-config", cfg, "-snap", "-size", "2", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "snap: true")
	require.Contains(t, string(data), "size: 2")
}
