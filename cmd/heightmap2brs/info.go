package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/heightmap2brs/internal/config"
	"github.com/Faultbox/heightmap2brs/pkg/brs"
	"github.com/Faultbox/heightmap2brs/pkg/formats"
	"github.com/Faultbox/heightmap2brs/pkg/grf"
	"github.com/Faultbox/heightmap2brs/pkg/grid/imagegrid"
)

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	archive := fs.String("grf", "", "Read a GAT from this GRF archive")
	hdmap := fs.Bool("hdmap", false, "Image stores 24-bit heights in the RGB channels")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return usageError("info [-grf archive] [-hdmap] <file>")
	}
	path := fs.Arg(0)

	switch {
	case ext(path) == ".brs":
		return infoSave(path)
	case ext(path) == ".gat":
		return infoGAT(path, *archive)
	case imagegrid.Supported(path):
		return infoImage(path, *hdmap)
	default:
		return fmt.Errorf("%s: %w", path, imagegrid.ErrUnsupportedFormat)
	}
}

func infoImage(path string, hdmap bool) error {
	heights, err := imagegrid.LoadHeightmap([]string{path}, hdmap)
	if err != nil {
		return err
	}
	lo := heights.Max()
	for _, v := range heights.Values {
		lo = min(lo, v)
	}

	fmt.Printf("Image:   %s\n", path)
	fmt.Printf("Size:    %dx%d (%d cells)\n", heights.Width, heights.Height, len(heights.Values))
	fmt.Printf("Heights: %d - %d\n", lo, heights.Max())
	return nil
}

func infoGAT(path, archive string) error {
	gat, err := formats.OpenGAT(path, archive)
	if err != nil {
		return err
	}
	lo, hi := gat.ElevationRange()

	fmt.Printf("GAT:       %s\n", path)
	fmt.Printf("Version:   %s\n", gat.Version)
	fmt.Printf("Size:      %dx%d (%d cells)\n", gat.Width, gat.Height, len(gat.Cells))
	fmt.Printf("Elevation: %.2f - %.2f\n", lo, hi)
	fmt.Println()
	fmt.Println("Cells by type:")

	counts := gat.CountByType()
	types := make([]formats.GATCellType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Printf("  %-18s %d\n", t, counts[t])
	}
	return nil
}

func infoSave(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := brs.ReadInfo(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("Save:        %s\n", path)
	fmt.Printf("Version:     %d (game %d)\n", info.Version, info.GameVersion)
	fmt.Printf("Map:         %s\n", info.Map)
	fmt.Printf("Description: %s\n", info.Description)
	fmt.Printf("Author:      %s (%s)\n", info.Author.Name, info.Author.ID)
	fmt.Printf("Saved:       %s\n", info.SaveTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("Bricks:      %d\n", info.BrickCount)
	fmt.Printf("Assets:      %v\n", info.BrickAssets)
	fmt.Printf("Materials:   %v\n", info.Materials)
	fmt.Println()
	fmt.Println("Owners:")
	for _, o := range info.Owners {
		fmt.Printf("  %-20s %s %d\n", o.Name, o.ID, o.Bricks)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() > 1 {
		return usageError("config [options] [path]")
	}
	cfg, err := flags.Load()
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	if path == "" {
		path, err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Config written to %s\n", path)
	return nil
}

// cmdMaps lists the altitude tables stored in a GRF archive.
func cmdMaps(args []string) error {
	fs := flag.NewFlagSet("maps", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N maps (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("maps [-n N] <file.grf> [pattern]")
	}

	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if ext(f) != ".gat" {
			continue
		}
		if pattern != "" {
			matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(f)))
			if !matched && !strings.Contains(strings.ToLower(f), pattern) {
				continue
			}
		}
		fmt.Println(f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	fmt.Fprintf(os.Stderr, "\n(%d maps)\n", count)
	return nil
}
