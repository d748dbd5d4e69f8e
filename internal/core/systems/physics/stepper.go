package physics

import (
	"fmt"
	"math"

	"github.com/zeusync/downhill/internal/core/observability/log"
)

// tangentialRest is the tangential speed under which a body counts as resting
// for friction purposes.
const tangentialRest = 1e-9

var gravityDirection = V(0, -1)

// Contact summarizes what a step did to the body.
type Contact struct {
	// Grounded is true when the body touches the ground after the step.
	Grounded bool
	// Resolutions counts collision resolutions (0, 1 or 2).
	Resolutions int
	// Rotation is the alignment rotation applied, in radians.
	Rotation float64
}

// Stepper advances one body against static ground, one tick at a time.
// It holds no per-body state and is not safe for concurrent use on the same
// body.
type Stepper struct {
	cfg         Config
	minRotation float64
	logger      log.Log
}

func NewStepper(cfg Config, logger log.Log) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stepper{
		cfg:         cfg,
		minRotation: Radians(cfg.MinRotationDegrees),
		logger:      logger.With(log.String("component", "physics")),
	}, nil
}

func (s *Stepper) Config() Config { return s.cfg }

// Step runs one tick: resolve pre-existing penetration, integrate forces,
// move, align orientation with the ground, then resolve new penetration.
// A dragged body is left untouched.
func (s *Stepper) Step(body Body, ground Ground) (Contact, error) {
	var contact Contact
	if body.IsDragged() {
		return contact, nil
	}

	if err := s.resolveIfColliding(body, ground, &contact); err != nil {
		return contact, err
	}

	accel, err := s.Acceleration(body, ground)
	if err != nil {
		return contact, err
	}
	s.integrateVelocity(body, accel)
	body.Translate(body.Velocity().Mul(s.cfg.MotionScale))

	if err = s.align(body, ground, &contact); err != nil {
		return contact, err
	}

	if err = s.resolveIfColliding(body, ground, &contact); err != nil {
		return contact, err
	}

	if contact.Grounded, err = ground.CollidesWith(body.Position()); err != nil {
		return contact, fmt.Errorf("ground check: %w", err)
	}

	s.logger.Debug("step",
		log.Stringer("position", body.Position()),
		log.Stringer("velocity", body.Velocity()),
		log.Bool("grounded", contact.Grounded),
	)
	return contact, nil
}

// Resolve applies an inelastic impulse along the ground normal when the body
// moves into the ground, then snaps it onto the surface.
func (s *Stepper) Resolve(body Body, ground Ground) error {
	pos := body.Position()
	height, err := ground.HeightAt(pos.X())
	if err != nil {
		return fmt.Errorf("resolve collision: %w", err)
	}
	normal, err := ground.NormalAt(pos.X())
	if err != nil {
		return fmt.Errorf("resolve collision: %w", err)
	}

	inverseMass := 1 / body.Mass()
	velocity := body.Velocity()
	velocityAlongNormal := velocity.Dot(normal)

	if velocityAlongNormal <= 0 {
		impulse := -(1 + s.cfg.Restitution) * velocityAlongNormal
		impulse /= inverseMass
		body.SetVelocity(velocity.Add(normal.Mul(impulse * inverseMass)))
	}

	// Positional correction without blending; steep slopes stutter.
	body.SetPosition(pos.WithY(height))
	return nil
}

// Acceleration computes the acceleration acting on the body this tick.
// Airborne bodies only feel gravity. Grounded bodies additionally get the
// tangential gravity component, the normal support force and friction.
func (s *Stepper) Acceleration(body Body, ground Ground) (Vector, error) {
	mass := body.Mass()
	gravityForce := s.cfg.Gravity * mass
	gravity := gravityDirection.Mul(gravityForce)

	pos := body.Position()
	grounded, err := ground.CollidesWith(pos)
	if err != nil {
		return Vector{}, fmt.Errorf("acceleration: %w", err)
	}
	if !grounded {
		return gravity, nil
	}

	normal, err := ground.NormalAt(pos.X())
	if err != nil {
		return Vector{}, fmt.Errorf("acceleration: %w", err)
	}

	into := normal.Neg()
	down := gravityDirection
	theta := down.AngleTo(&into)

	tangent := V(normal.Y(), -normal.X())
	downhill := tangent
	if normal.X() < 0 {
		downhill = tangent.Neg()
	}

	tangential := downhill.Mul(gravityForce * math.Sin(theta))
	normalForce := gravityForce * math.Cos(theta)
	support := normal.Mul(normalForce)

	frictionDirection := downhill.Neg()
	if along := body.Velocity().Dot(tangent); math.Abs(along) > tangentialRest {
		frictionDirection = tangent.Mul(-math.Copysign(1, along))
	}
	friction := frictionDirection.Mul(normalForce * s.cfg.Friction)

	net := gravity.Add(tangential).Add(support).Add(friction)
	return net.Div(mass), nil
}

func (s *Stepper) integrateVelocity(body Body, accel Vector) {
	velocity := body.Velocity()
	increment := accel.Mul(s.cfg.AccelerationScale)

	if accel.Y() == 0 && velocity.Y() < 0 {
		velocity = V3(velocity.X(), 0, velocity.Z())
	}

	// Stop instead of flipping direction on near-flat ground.
	if velocity.X() >= 0 && accel.Y() == 0 && velocity.X()+accel.X() < 0 {
		body.SetVelocity(V(0, 0))
		body.SetAcceleration(V(0, 0))
		return
	}

	body.SetVelocity(velocity.Add(increment))
	body.SetAcceleration(accel)
}

// align turns a grounded body so its up axis follows the ground normal.
// The comparison happens in the body's render space, where x is mirrored.
func (s *Stepper) align(body Body, ground Ground, contact *Contact) error {
	pos := body.Position()
	grounded, err := ground.CollidesWith(pos)
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	if !grounded {
		return nil
	}

	normal, err := ground.NormalAt(pos.X())
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	target := V(-normal.X(), normal.Y())
	up := body.Up()

	angle := up.ShortestAngleTo(&target)
	if math.Abs(angle) > s.minRotation {
		body.Rotate(angle)
		contact.Rotation = angle
	}
	return nil
}

func (s *Stepper) resolveIfColliding(body Body, ground Ground, contact *Contact) error {
	colliding, err := ground.CollidesWith(body.Position())
	if err != nil {
		return fmt.Errorf("collision check: %w", err)
	}
	if !colliding {
		return nil
	}
	contact.Resolutions++
	return s.Resolve(body, ground)
}
