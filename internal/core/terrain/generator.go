package terrain

import (
	"math"
	"math/rand/v2"

	"github.com/zeusync/downhill/internal/core/systems/physics"
)

// unitPoints is the number of points one jump unit adds.
const unitPoints = 6

// RandomSource supplies uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a deterministic source for the given seed.
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator produces jump units: a ramp up, a drop into a pit, the pit floor,
// a wall back up, a ramp down and the return to the baseline.
type Generator struct {
	cfg    GeneratorConfig
	source RandomSource
}

func NewGenerator(cfg GeneratorConfig, source RandomSource) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, source: source}, nil
}

// Extend returns the terrain continuing from `from`. The first point is
// `from` itself so the result is a complete polyline; Terrain.Append drops it
// as a seam duplicate.
func (g *Generator) Extend(from physics.Point) []physics.Point {
	points := make([]physics.Point, 0, 1+unitPoints)
	points = append(points, from)

	prev := from
	for prev.X()-from.X() < g.cfg.MinSpan || len(points) == 1 {
		unit := g.unit(prev)
		points = append(points, unit[:]...)
		prev = unit[unitPoints-1]
	}
	return points
}

func (g *Generator) unit(from physics.Point) [unitPoints]physics.Point {
	distanceToJump := g.draw(g.cfg.MinDistanceToJump, g.cfg.DistanceToJumpRange)
	jumpAngle := g.draw(0, g.cfg.MaxJumpAngleDegrees)
	jumpGap := g.draw(g.cfg.MinJumpGap, g.cfg.JumpGapRange)
	slopeRun := g.draw(g.cfg.MinSlopeRun, g.cfg.SlopeRunRange)

	jumpHeight := slopeRun * math.Tan(physics.Radians(jumpAngle))

	startOfJump := physics.P(from.X()+distanceToJump, 0)
	topOfRamp := physics.P(startOfJump.X()+slopeRun, jumpHeight)
	bottomOfPit := physics.P(topOfRamp.X(), g.cfg.PitFloor)
	startOfLandingFloor := physics.P(bottomOfPit.X()+jumpGap, g.cfg.PitFloor)
	startOfLandingRamp := physics.P(startOfLandingFloor.X(), topOfRamp.Y())
	endOfLanding := physics.P(startOfLandingRamp.X()+slopeRun, 0)

	return [unitPoints]physics.Point{
		startOfJump,
		topOfRamp,
		bottomOfPit,
		startOfLandingFloor,
		startOfLandingRamp,
		endOfLanding,
	}
}

func (g *Generator) draw(lo, span float64) float64 {
	return lo + g.source.Float64()*span
}
