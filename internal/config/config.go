// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/heightmap2brs/pkg/brick"
	"github.com/Faultbox/heightmap2brs/pkg/brs"
	"github.com/Faultbox/heightmap2brs/pkg/quadtree"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Save      SaveConfig      `yaml:"save"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OptimizerConfig holds quantization and brick settings.
type OptimizerConfig struct {
	Cull          bool    `yaml:"cull"`
	VerticalScale float64 `yaml:"vertical_scale"`
	Snap          bool    `yaml:"snap"`
	BrickType     string  `yaml:"brick_type"`
	Size          uint32  `yaml:"size"`
	Collision     bool    `yaml:"collision"`
	LinearRGB     bool    `yaml:"linear_rgb"`
	Workers       int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// SaveConfig holds output settings.
type SaveConfig struct {
	Output    string `yaml:"output"`
	OwnerID   string `yaml:"owner_id"`
	OwnerName string `yaml:"owner_name"`
	JSON      string `yaml:"json"` // optional brick list dump
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Optimizer: OptimizerConfig{
			VerticalScale: 1,
			BrickType:     brick.Basic.String(),
			Size:          1,
			Collision:     true,
		},
		Save: SaveConfig{
			Output:    "out.brs",
			OwnerID:   brs.DefaultOwnerID.String(),
			OwnerName: brs.DefaultOwnerName,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Quadtree(); err != nil {
		return err
	}
	if c.Save.Output == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalid)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// Quadtree converts the optimizer section to optimizer options.
func (c *Config) Quadtree() (quadtree.Config, error) {
	t, err := brick.ParseType(c.Optimizer.BrickType)
	if err != nil {
		return quadtree.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	q := quadtree.Config{
		Cull:           c.Optimizer.Cull,
		VerticalScale:  c.Optimizer.VerticalScale,
		Snap:           c.Optimizer.Snap,
		BrickType:      t,
		SizeMultiplier: c.Optimizer.Size,
		Collision:      c.Optimizer.Collision,
		Workers:        c.Optimizer.Workers,
	}
	if err := q.Validate(); err != nil {
		return quadtree.Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return q, nil
}
