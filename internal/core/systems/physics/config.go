package physics

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid physics config")

// Config holds the per-tick physics constants. Scales are fixed per tick and
// stand in for a timestep.
type Config struct {
	Gravity           float64 `json:"gravity" yaml:"gravity" toml:"gravity"`
	Friction          float64 `json:"friction" yaml:"friction" toml:"friction"`
	Restitution       float64 `json:"restitution" yaml:"restitution" toml:"restitution"`
	AccelerationScale float64 `json:"acceleration_scale" yaml:"acceleration_scale" toml:"acceleration_scale"`
	MotionScale       float64 `json:"motion_scale" yaml:"motion_scale" toml:"motion_scale"`
	// MinRotationDegrees is the smallest alignment correction worth applying.
	MinRotationDegrees float64 `json:"min_rotation_degrees" yaml:"min_rotation_degrees" toml:"min_rotation_degrees"`
}

// DefaultConfig returns default physics configuration
func DefaultConfig() Config {
	return Config{
		Gravity:            9.81,
		Friction:           0.15,
		Restitution:        0,
		AccelerationScale:  0.05,
		MotionScale:        0.05,
		MinRotationDegrees: 1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Gravity < 0:
		return fmt.Errorf("%w: gravity must not be negative", ErrInvalidConfig)
	case c.Friction < 0:
		return fmt.Errorf("%w: friction must not be negative", ErrInvalidConfig)
	case c.Restitution < 0 || c.Restitution > 1:
		return fmt.Errorf("%w: restitution must be in [0, 1]", ErrInvalidConfig)
	case c.AccelerationScale <= 0 || c.MotionScale <= 0:
		return fmt.Errorf("%w: scales must be positive", ErrInvalidConfig)
	case c.MinRotationDegrees < 0:
		return fmt.Errorf("%w: min rotation must not be negative", ErrInvalidConfig)
	}
	return nil
}
