package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightmap2brs/internal/config"
	"github.com/Faultbox/heightmap2brs/internal/logger"
	"github.com/Faultbox/heightmap2brs/pkg/brick"
	"github.com/Faultbox/heightmap2brs/pkg/brs"
	"github.com/Faultbox/heightmap2brs/pkg/formats"
	"github.com/Faultbox/heightmap2brs/pkg/grid"
	"github.com/Faultbox/heightmap2brs/pkg/grid/imagegrid"
	"github.com/Faultbox/heightmap2brs/pkg/quadtree"
)

// setup loads the config and starts logging.
func setup(flags *config.Flags) (*config.Config, error) {
	cfg, err := flags.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func cmdPNG(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("png", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	hdmap := fs.Bool("hdmap", false, "Heightmaps store 24-bit heights in the RGB channels")
	img := fs.Bool("img", false, "Ignore heights and build a flat mosaic of the colormap")
	colormap := fs.String("colormap", "", "Colormap image (default: the first heightmap)")
	magenta := fs.Bool("magenta-key", false, "Treat magenta colormap pixels as transparent")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("png [options] <heightmap>...")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	files := fs.Args()
	colorPath := *colormap
	if colorPath == "" {
		colorPath = files[0]
	}
	for _, path := range append([]string{colorPath}, files...) {
		if !imagegrid.Supported(path) {
			return fmt.Errorf("%s: %w", path, imagegrid.ErrUnsupportedFormat)
		}
	}

	logger.Info("Reading colormap", zap.String("file", colorPath))
	colors, err := imagegrid.LoadColormap(colorPath, imagegrid.ColormapOptions{
		Linear:     cfg.Optimizer.LinearRGB,
		MagentaKey: *magenta,
	})
	if err != nil {
		return err
	}

	var height grid.Source
	if *img {
		height = grid.Flat(colors.Size())
	} else {
		logger.Info("Reading heightmap files", zap.Strings("files", files), zap.Bool("hdmap", *hdmap))
		heights, err := imagegrid.LoadHeightmap(files, *hdmap)
		if err != nil {
			return err
		}
		height = heights
	}

	bricks, err := optimize(ctx, cfg, height, colors, *img)
	if err != nil {
		return err
	}
	return writeOutputs(cfg, bricks)
}

func cmdGAT(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gat", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	scale := fs.Float64("vertical-scale", formats.DefaultGATScale, "Height steps per GAT altitude unit")
	archive := fs.String("grf", "", "Read the GAT from this GRF archive")
	water := fs.Bool("water", false, "Color water cells blue")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return usageError("gat [options] <file.gat>")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path := fs.Arg(0)
	if ext(path) != ".gat" {
		return fmt.Errorf("%s: not a .gat file", path)
	}

	logger.Info("Reading altitude table", zap.String("file", path), zap.String("archive", *archive))
	gat, err := formats.OpenGAT(path, *archive)
	if err != nil {
		return err
	}
	qcfg, err := cfg.Quadtree()
	if err != nil {
		return err
	}
	src, err := formats.NewGATSource(gat, formats.GATSourceOptions{
		Scale:     *scale,
		MarkWater: *water,
		Levels:    qcfg.Quantize,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	bricks, err := optimize(ctx, cfg, src, src, false)
	if err != nil {
		return err
	}
	return writeOutputs(cfg, bricks)
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return usageError("pack [options] <bricks.json>")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	bricks, err := brick.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", fs.Arg(0), err)
	}
	for i := range bricks {
		if !bricks[i].Type.Valid() {
			return fmt.Errorf("%s: brick %d: %w", fs.Arg(0), i, brick.ErrUnknownType)
		}
		bricks[i].Owner = 0
	}
	logger.Info("Read brick list", zap.String("file", fs.Arg(0)), zap.Int("bricks", len(bricks)))

	// The dump already holds the final bricks.
	cfg.Save.JSON = ""
	return writeOutputs(cfg, bricks)
}

// optimize runs the quadtree over the sources and logs the outcome.
func optimize(ctx context.Context, cfg *config.Config, height, colors grid.Source, flatten bool) ([]brick.Brick, error) {
	qcfg, err := cfg.Quadtree()
	if err != nil {
		return nil, err
	}
	qcfg.Flatten = flatten

	w, h := height.Size()
	logger.Info("Optimizing",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Stringer("brick", qcfg.BrickType),
		zap.Float64("vertical_scale", qcfg.VerticalScale),
		zap.Bool("flatten", flatten))

	start := time.Now()
	bricks, stats, err := quadtree.Optimize(ctx, height, colors, qcfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("interrupted: %w", err)
		}
		return nil, err
	}

	logger.Debug("Quadtree walked",
		zap.Int("root_edge", stats.Edge),
		zap.Int("tasks", stats.Tasks))

	reduction := 0.0
	if stats.Cells > 0 {
		reduction = 100 * (1 - float64(stats.Bricks)/float64(stats.Cells))
	}
	logger.Info("Optimized",
		zap.Int("cells", stats.Cells),
		zap.Int("culled", stats.Culled),
		zap.Int("bricks", stats.Bricks),
		zap.String("reduction", fmt.Sprintf("%.1f%%", reduction)),
		zap.Duration("elapsed", time.Since(start)))
	return bricks, nil
}

// writeOutputs writes the save file and the optional JSON dump.
func writeOutputs(cfg *config.Config, bricks []brick.Brick) error {
	ownerID, ok := brs.ParseOwnerID(cfg.Save.OwnerID)
	if !ok {
		logger.Warn("Invalid owner id, using default",
			zap.String("owner_id", cfg.Save.OwnerID),
			zap.Stringer("default", brs.DefaultOwnerID))
	}

	if cfg.Save.JSON != "" {
		logger.Info("Writing brick list", zap.String("file", cfg.Save.JSON))
		if err := writeFile(cfg.Save.JSON, func(f *os.File) error {
			return brick.WriteJSON(f, bricks)
		}); err != nil {
			return err
		}
	}

	logger.Info("Writing save", zap.String("file", cfg.Save.Output), zap.Int("bricks", len(bricks)))
	save := brs.NewSave(bricks, ownerID, cfg.Save.OwnerName)
	if err := writeFile(cfg.Save.Output, func(f *os.File) error {
		return brs.Write(f, save)
	}); err != nil {
		return err
	}
	logger.Info("Done")
	return nil
}

// writeFile creates path and hands it to write, removing the file again if
// writing fails.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Error("Removing partial output", zap.String("file", path), zap.Error(rmErr))
		}
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
