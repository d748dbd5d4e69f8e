package terrain

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid terrain config")

// Config controls the sliding window around the tracked x.
type Config struct {
	// LookaheadMargin is how close to the last point the tracked x may get
	// before the terrain is extended.
	LookaheadMargin float64 `json:"lookahead_margin" yaml:"lookahead_margin" toml:"lookahead_margin"`
	// RetentionMargin is how far behind the tracked x points are kept.
	RetentionMargin float64 `json:"retention_margin" yaml:"retention_margin" toml:"retention_margin"`
}

// DefaultConfig returns default window configuration
func DefaultConfig() Config {
	return Config{
		LookaheadMargin: 10,
		RetentionMargin: 15,
	}
}

func (c Config) Validate() error {
	if c.LookaheadMargin <= 0 {
		return fmt.Errorf("%w: lookahead margin must be positive", ErrInvalidConfig)
	}
	if c.RetentionMargin < 0 {
		return fmt.Errorf("%w: retention margin must not be negative", ErrInvalidConfig)
	}
	return nil
}

// GeneratorConfig holds the random ranges of one jump unit. Each magnitude is
// drawn as Min + U[0,1) * Range.
type GeneratorConfig struct {
	MinDistanceToJump   float64 `json:"min_distance_to_jump" yaml:"min_distance_to_jump" toml:"min_distance_to_jump"`
	DistanceToJumpRange float64 `json:"distance_to_jump_range" yaml:"distance_to_jump_range" toml:"distance_to_jump_range"`
	MaxJumpAngleDegrees float64 `json:"max_jump_angle_degrees" yaml:"max_jump_angle_degrees" toml:"max_jump_angle_degrees"`
	MinJumpGap          float64 `json:"min_jump_gap" yaml:"min_jump_gap" toml:"min_jump_gap"`
	JumpGapRange        float64 `json:"jump_gap_range" yaml:"jump_gap_range" toml:"jump_gap_range"`
	MinSlopeRun         float64 `json:"min_slope_run" yaml:"min_slope_run" toml:"min_slope_run"`
	SlopeRunRange       float64 `json:"slope_run_range" yaml:"slope_run_range" toml:"slope_run_range"`
	PitFloor            float64 `json:"pit_floor" yaml:"pit_floor" toml:"pit_floor"`
	// MinSpan is the shortest x distance one Extend call covers.
	MinSpan float64 `json:"min_span" yaml:"min_span" toml:"min_span"`
}

// DefaultGeneratorConfig returns default generator configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinDistanceToJump:   5,
		DistanceToJumpRange: 10,
		MaxJumpAngleDegrees: 45,
		MinJumpGap:          1.5,
		JumpGapRange:        3,
		MinSlopeRun:         1.5,
		SlopeRunRange:       1,
		PitFloor:            -1000,
		MinSpan:             5,
	}
}

func (c GeneratorConfig) Validate() error {
	switch {
	case c.MinDistanceToJump <= 0:
		return fmt.Errorf("%w: min distance to jump must be positive", ErrInvalidConfig)
	case c.MinJumpGap <= 0 || c.MinSlopeRun <= 0:
		return fmt.Errorf("%w: jump gap and slope run must be positive", ErrInvalidConfig)
	case c.DistanceToJumpRange < 0 || c.JumpGapRange < 0 || c.SlopeRunRange < 0:
		return fmt.Errorf("%w: ranges must not be negative", ErrInvalidConfig)
	case c.MaxJumpAngleDegrees < 0 || c.MaxJumpAngleDegrees >= 90:
		return fmt.Errorf("%w: max jump angle must be in [0, 90)", ErrInvalidConfig)
	case c.PitFloor >= 0:
		return fmt.Errorf("%w: pit floor must be below the baseline", ErrInvalidConfig)
	case c.MinSpan < 0:
		return fmt.Errorf("%w: min span must not be negative", ErrInvalidConfig)
	}
	return nil
}
