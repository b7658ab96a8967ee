// heightmap2brs converts heightmaps into Brickadia save files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case "png", "image":
		err = cmdPNG(ctx, args)
	case "gat":
		err = cmdGAT(ctx, args)
	case "pack":
		err = cmdPack(args)
	case "info":
		err = cmdInfo(args)
	case "maps":
		err = cmdMaps(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		stop()
		fail(err)
	}
}

func printUsage() {
	fmt.Println(`heightmap2brs - heightmap to Brickadia save converter

Usage:
  heightmap2brs <command> [options] <files>

Commands:
  png [options] <heightmap>...       Convert image heightmaps (summed per pixel)
  gat [options] <file.gat>           Convert a Ragnarok Online altitude table
  pack [options] <bricks.json>       Write a brick list dumped with -json as a save
  info [-grf archive] <file>         Show heightmap, GAT or save information
  maps [-n N] <file.grf> [pattern]   List altitude tables in a GRF archive
  config [options] [path]            Write the effective config to a file

Common options:
  -o, -output <file>     Output save (default out.brs)
  -size <n>              Brick footprint per pixel in studs (default 1)
  -vertical <scale>      Vertical scale applied to raw heights (default 1)
  -brick-type <type>     basic, tile, micro or stud (default basic)
  -cull                  Skip transparent and zero-height cells
  -snap                  Snap brick heights to the plate grid
  -no-collide            Disable brick collision
  -lrgb                  Convert colormap colors to linear RGB
  -owner <name>          Brick owner name (default Generator)
  -owner-id <uuid>       Brick owner id
  -json <file>           Also dump the brick list as JSON
  -workers <n>           Concurrent optimizer workers
  -config <file>         Config file (default ./heightmap2brs.yaml)
  -debug                 Enable debug logging
  -log-file <file>       Also write logs to this file

Examples:
  heightmap2brs png -colormap color.png -cull height.png
  heightmap2brs png -hdmap -vertical 0.01 -o island.brs height.png
  heightmap2brs png -img -brick-type tile logo.png
  heightmap2brs gat -grf data.grf -water data/prontera.gat
  heightmap2brs info out.brs`)
}

// fail prints err and exits with status 1.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// usageError is returned when positional arguments are missing.
type usageError string

func (e usageError) Error() string { return "usage: heightmap2brs " + string(e) }

// ext returns the lower-case extension of path.
func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
