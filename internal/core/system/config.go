package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

type Config struct {
	// TickInterval is the wall-clock time between ticks.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval" toml:"tick_interval"`
	// MaxCatchUpTicks bounds how many ticks run back to back after a stall.
	MaxCatchUpTicks int `json:"max_catch_up_ticks" yaml:"max_catch_up_ticks" toml:"max_catch_up_ticks"`
	CommandBuffer   int `json:"command_buffer" yaml:"command_buffer" toml:"command_buffer"`

	// Seed selects the terrain generator sequence. SeedPhrase, when set,
	// takes precedence and is hashed into a seed.
	Seed       uint64 `json:"seed" yaml:"seed" toml:"seed"`
	SeedPhrase string `json:"seed_phrase" yaml:"seed_phrase" toml:"seed_phrase"`

	RiderName string  `json:"rider_name" yaml:"rider_name" toml:"rider_name"`
	RiderMass float64 `json:"rider_mass" yaml:"rider_mass" toml:"rider_mass"`
	StartX    float64 `json:"start_x" yaml:"start_x" toml:"start_x"`
	StartY    float64 `json:"start_y" yaml:"start_y" toml:"start_y"`
	// RunUp is the length of flat ground laid behind the start.
	RunUp float64 `json:"run_up" yaml:"run_up" toml:"run_up"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:    100 * time.Millisecond,
		MaxCatchUpTicks: 5,
		CommandBuffer:   64,
		Seed:            1,
		RiderName:       "rider",
		RiderMass:       1,
		StartX:          0,
		StartY:          1,
		RunUp:           15,
	}
}

func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	case c.MaxCatchUpTicks < 1:
		return fmt.Errorf("%w: max catch-up ticks must be at least 1", ErrInvalidConfig)
	case c.CommandBuffer < 1:
		return fmt.Errorf("%w: command buffer must be at least 1", ErrInvalidConfig)
	case c.RiderMass <= 0:
		return fmt.Errorf("%w: rider mass must be positive", ErrInvalidConfig)
	case c.RunUp < 0:
		return fmt.Errorf("%w: run-up must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ResolveSeed returns the generator seed.
func (c Config) ResolveSeed() uint64 {
	if c.SeedPhrase != "" {
		return xxhash.Sum64String(c.SeedPhrase)
	}
	return c.Seed
}
