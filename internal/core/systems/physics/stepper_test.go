package physics

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/downhill/internal/core/observability/log"
)

var errOutside = errors.New("outside ground")

type testBody struct {
	pos     Point
	vel     Vector
	acc     Vector
	mass    float64
	dragged bool
	up      Vector
}

func newTestBody(x, y float64) *testBody {
	return &testBody{pos: P(x, y), mass: 1, up: V(0, 1)}
}

func (b *testBody) Position() Point          { return b.pos }
func (b *testBody) SetPosition(p Point)      { b.pos = p }
func (b *testBody) Velocity() Vector         { return b.vel }
func (b *testBody) SetVelocity(v Vector)     { b.vel = v }
func (b *testBody) Acceleration() Vector     { return b.acc }
func (b *testBody) SetAcceleration(a Vector) { b.acc = a }
func (b *testBody) Mass() float64            { return b.mass }
func (b *testBody) IsDragged() bool          { return b.dragged }
func (b *testBody) Translate(delta Vector)   { b.pos = b.pos.Add(delta) }
func (b *testBody) Up() Vector               { return b.up }
func (b *testBody) Rotate(theta float64)     { b.up = b.up.Rotate(theta) }

// lineGround is y = slope*x on [lo, hi].
type lineGround struct {
	slope, lo, hi float64
}

func (g lineGround) check(x float64) error {
	if x < g.lo || x > g.hi {
		return fmt.Errorf("%w: %v", errOutside, x)
	}
	return nil
}

func (g lineGround) HeightAt(x float64) (float64, error) {
	if err := g.check(x); err != nil {
		return math.NaN(), err
	}
	return g.slope * x, nil
}

func (g lineGround) NormalAt(x float64) (Vector, error) {
	if err := g.check(x); err != nil {
		return Vector{}, err
	}
	return V(-g.slope, 1).Normalized(), nil
}

func (g lineGround) CollidesWith(p Point) (bool, error) {
	h, err := g.HeightAt(p.X())
	if err != nil {
		return false, err
	}
	return p.Y() <= h, nil
}

func flat() lineGround { return lineGround{lo: -100, hi: 100} }

func newTestStepper(t *testing.T) *Stepper {
	t.Helper()
	s, err := NewStepper(DefaultConfig(), log.NewNop())
	require.NoError(t, err)
	return s
}

func TestDraggedBodyIsUntouched(t *testing.T) {
	s := newTestStepper(t)
	body := newTestBody(0, -3)
	body.dragged = true
	body.vel = V(1, 1)

	contact, err := s.Step(body, flat())
	require.NoError(t, err)
	assert.Equal(t, Contact{}, contact)
	assert.Equal(t, P(0, -3), body.pos)
	assert.Equal(t, V(1, 1), body.vel)
	assert.Equal(t, V(0, 1), body.up)
}

func TestFallingBodySettlesOnFlatGround(t *testing.T) {
	s := newTestStepper(t)
	body := newTestBody(0, 1)

	var contact Contact
	var err error
	for i := 0; i < 100; i++ {
		contact, err = s.Step(body, flat())
		require.NoError(t, err)
		h, _ := flat().HeightAt(body.pos.X())
		require.GreaterOrEqual(t, body.pos.Y(), h-1e-9, "tick %d", i)
	}

	assert.True(t, contact.Grounded)
	assert.Equal(t, 0.0, body.pos.Y())
	assert.Equal(t, 0.0, body.vel.Y())
	assert.Equal(t, 0.0, body.vel.X())
}

func TestAirborneAccelerationIsGravity(t *testing.T) {
	s := newTestStepper(t)
	accel, err := s.Acceleration(newTestBody(0, 5), flat())
	require.NoError(t, err)
	assert.Equal(t, V(0, -9.81), accel)
}

func TestFrictionOpposesMotion(t *testing.T) {
	s := newTestStepper(t)
	g := DefaultConfig().Gravity * DefaultConfig().Friction

	body := newTestBody(0, 0)
	body.vel = V(2, 0)
	accel, err := s.Acceleration(body, flat())
	require.NoError(t, err)
	assert.InDelta(t, -g, accel.X(), 1e-12)
	assert.InDelta(t, 0, accel.Y(), 1e-12)

	body.vel = V(-2, 0)
	accel, err = s.Acceleration(body, flat())
	require.NoError(t, err)
	assert.InDelta(t, g, accel.X(), 1e-12)
}

func TestSlidingBodySlowsThenStalls(t *testing.T) {
	s := newTestStepper(t)
	body := newTestBody(0, 0)
	body.vel = V(2, 0)

	_, err := s.Step(body, flat())
	require.NoError(t, err)
	assert.InDelta(t, 2-0.05*9.81*0.15, body.vel.X(), 1e-9)
	assert.Greater(t, body.pos.X(), 0.0)

	body.vel = V(1, 0)
	contact, err := s.Step(body, flat())
	require.NoError(t, err)
	assert.True(t, contact.Grounded)
	assert.Equal(t, V(0, 0), body.vel)
	assert.Equal(t, V(0, 0), body.acc)
}

func TestResolveIsIdempotent(t *testing.T) {
	s := newTestStepper(t)
	ground := lineGround{slope: 0.5, lo: -10, hi: 10}
	body := newTestBody(2, -1)
	body.vel = V(1, -3)

	require.NoError(t, s.Resolve(body, ground))
	pos, vel := body.pos, body.vel
	assert.Equal(t, 1.0, pos.Y())

	n, _ := ground.NormalAt(2)
	assert.InDelta(t, 0, vel.Dot(n), 1e-12)

	require.NoError(t, s.Resolve(body, ground))
	assert.Equal(t, pos, body.pos)
	assert.InDelta(t, vel.X(), body.vel.X(), 1e-12)
	assert.InDelta(t, vel.Y(), body.vel.Y(), 1e-12)
}

func TestResolveKeepsSeparatingVelocity(t *testing.T) {
	s := newTestStepper(t)
	body := newTestBody(0, -0.5)
	body.vel = V(1, 2)

	require.NoError(t, s.Resolve(body, flat()))
	assert.Equal(t, V(1, 2), body.vel)
	assert.Equal(t, P(0, 0), body.pos)
}

func TestAlignFollowsRamp(t *testing.T) {
	s := newTestStepper(t)
	ground := lineGround{slope: 0.5, lo: -10, hi: 10}
	body := newTestBody(4, 2)

	var contact Contact
	require.NoError(t, s.align(body, ground, &contact))

	// Up mirrors the world normal's x.
	assert.InDelta(t, 1/math.Sqrt(5), body.up.X(), 1e-9)
	assert.InDelta(t, 2/math.Sqrt(5), body.up.Y(), 1e-9)
	assert.InDelta(t, -math.Atan(0.5), contact.Rotation, 1e-9)

	contact = Contact{}
	require.NoError(t, s.align(body, ground, &contact))
	assert.Equal(t, 0.0, contact.Rotation)
}

func TestAlignSkipsSmallAndAirborne(t *testing.T) {
	s := newTestStepper(t)

	gentle := lineGround{slope: math.Tan(Radians(0.5)), lo: -10, hi: 10}
	body := newTestBody(0, 0)
	var contact Contact
	require.NoError(t, s.align(body, gentle, &contact))
	assert.Equal(t, V(0, 1), body.up)

	steep := lineGround{slope: 1, lo: -10, hi: 10}
	body = newTestBody(0, 3)
	require.NoError(t, s.align(body, steep, &contact))
	assert.Equal(t, V(0, 1), body.up)
}

func TestStepDownRampMovesDownhill(t *testing.T) {
	s := newTestStepper(t)
	ground := lineGround{slope: 0.5, lo: -10, hi: 10}
	body := newTestBody(4, 2)

	for i := 0; i < 5; i++ {
		_, err := s.Step(body, ground)
		require.NoError(t, err)
	}
	assert.Less(t, body.pos.X(), 4.0)
	assert.Less(t, body.vel.X(), 0.0)
	h, _ := ground.HeightAt(body.pos.X())
	assert.GreaterOrEqual(t, body.pos.Y(), h-1e-9)
}

func TestStepSurfacesGroundErrors(t *testing.T) {
	s := newTestStepper(t)
	_, err := s.Step(newTestBody(500, 0), flat())
	assert.ErrorIs(t, err, errOutside)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Restitution = 2
	_, err := NewStepper(cfg, log.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MotionScale = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	assert.NoError(t, DefaultConfig().Validate())
}
