package config

import (
	"flag"
	"fmt"
	"math"
)

// Flags are the command-line overrides shared by every conversion command.
// Zero values mean "not given" so they never mask file settings.
type Flags struct {
	config    *string
	debug     *bool
	logFile   *string
	output    *string
	json      *string
	ownerID   *string
	ownerName *string
	brickType *string
	size      *uint
	vertical  *float64
	workers   *int
	cull      *bool
	snap      *bool
	noCollide *bool
	lrgb      *bool
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log-file", "", "Also write logs to this file"),
		json:      fs.String("json", "", "Also dump the brick list as JSON to this file"),
		ownerID:   fs.String("owner-id", "", "Brick owner UUID"),
		ownerName: fs.String("owner", "", "Brick owner name (default \"Generator\")"),
		brickType: fs.String("brick-type", "", "Brick type: basic, tile, micro or stud (default \"basic\")"),
		size:      fs.Uint("size", 0, "Brick footprint per pixel in studs (default 1)"),
		vertical:  fs.Float64("vertical", 0, "Vertical scale applied to raw heights (default 1)"),
		workers:   fs.Int("workers", 0, "Concurrent optimizer workers (default GOMAXPROCS)"),
		cull:      fs.Bool("cull", false, "Skip transparent and zero-height cells"),
		snap:      fs.Bool("snap", false, "Snap brick heights to the plate grid"),
		noCollide: fs.Bool("no-collide", false, "Disable brick collision"),
		lrgb:      fs.Bool("lrgb", false, "Convert colormap colors to linear RGB"),
	}
	f.output = fs.String("output", "", "Output save file (default \"out.brs\")")
	fs.StringVar(f.output, "o", "", "Shorthand for -output")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// Load loads configuration with priority: defaults < file < flags, and
// validates the result.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := f.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) error {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.output != "" {
		cfg.Save.Output = *f.output
	}
	if *f.json != "" {
		cfg.Save.JSON = *f.json
	}
	if *f.ownerID != "" {
		cfg.Save.OwnerID = *f.ownerID
	}
	if *f.ownerName != "" {
		cfg.Save.OwnerName = *f.ownerName
	}
	if *f.brickType != "" {
		cfg.Optimizer.BrickType = *f.brickType
	}
	if *f.size > math.MaxUint32 {
		return fmt.Errorf("%w: size %d is out of range", ErrInvalid, *f.size)
	}
	if *f.size > 0 {
		cfg.Optimizer.Size = uint32(*f.size)
	}
	if *f.vertical > 0 {
		cfg.Optimizer.VerticalScale = *f.vertical
	}
	if *f.workers > 0 {
		cfg.Optimizer.Workers = *f.workers
	}
	if *f.cull {
		cfg.Optimizer.Cull = true
	}
	if *f.snap {
		cfg.Optimizer.Snap = true
	}
	if *f.noCollide {
		cfg.Optimizer.Collision = false
	}
	if *f.lrgb {
		cfg.Optimizer.LinearRGB = true
	}
	return nil
}
