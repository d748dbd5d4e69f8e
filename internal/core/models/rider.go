package models

import (
	"github.com/google/uuid"

	"github.com/zeusync/downhill/internal/core/systems/physics"
)

// DefaultMass is the rider mass used when none is configured.
const DefaultMass = 1.0

var (
	_ Entity       = (*Rider)(nil)
	_ physics.Body = (*Rider)(nil)
)

// Rider is the dynamic body riding the terrain. Its placement lives in a
// render-space transform whose x axis is mirrored relative to the world, so
// the world position is (-tx, ty).
//
// A Rider is owned by the tick loop; readers use State snapshots.
type Rider struct {
	id        uuid.UUID
	name      string
	transform physics.Transform

	velocity     physics.Vector
	acceleration physics.Vector
	mass         float64
	dragged      bool
}

// NewRider places a rider at start with an upright orientation.
func NewRider(name string, start physics.Point, mass float64) *Rider {
	if mass <= 0 {
		mass = DefaultMass
	}
	return &Rider{
		id:        uuid.New(),
		name:      name,
		transform: physics.Identity().Translate(-start.X(), start.Y()),
		mass:      mass,
	}
}

func (r *Rider) ID() uuid.UUID { return r.id }
func (r *Rider) Name() string  { return r.name }

func (r *Rider) Position() physics.Point {
	tx, ty := r.transform.Translation()
	return physics.P(-tx, ty)
}

func (r *Rider) SetPosition(p physics.Point) {
	r.transform = r.transform.WithTranslation(-p.X(), p.Y())
}

// Translate moves the rider by a world-space delta.
func (r *Rider) Translate(delta physics.Vector) {
	r.transform = r.transform.Translate(-delta.X(), delta.Y())
}

// Up is the rider's up axis in render space.
func (r *Rider) Up() physics.Vector { return r.transform.Up() }

// Rotate turns the rider counter-clockwise about its own center.
func (r *Rider) Rotate(theta float64) {
	r.transform = r.transform.RotateAboutCenter(theta)
}

func (r *Rider) Velocity() physics.Vector         { return r.velocity }
func (r *Rider) SetVelocity(v physics.Vector)     { r.velocity = v }
func (r *Rider) Acceleration() physics.Vector     { return r.acceleration }
func (r *Rider) SetAcceleration(a physics.Vector) { r.acceleration = a }
func (r *Rider) Mass() float64                    { return r.mass }
func (r *Rider) IsDragged() bool                  { return r.dragged }

// StartDragging hands the rider to the user. Motion stops and physics skips
// the rider until EndDragging.
func (r *Rider) StartDragging() {
	r.dragged = true
	r.velocity = physics.V(0, 0)
	r.acceleration = physics.V(0, 0)
}

func (r *Rider) EndDragging() { r.dragged = false }

// Nudge moves a dragged rider by a world-space delta and reports whether it
// moved.
func (r *Rider) Nudge(delta physics.Vector) bool {
	if !r.dragged {
		return false
	}
	r.Translate(delta)
	return true
}

func (r *Rider) Transform() physics.Transform { return r.transform }

// Matrix is the render-space model matrix.
func (r *Rider) Matrix() [16]float32 { return r.transform.Matrix() }

// RiderState is a copy of the rider's observable state.
type RiderState struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	VelocityX float64     `json:"vx"`
	VelocityY float64     `json:"vy"`
	AccelX    float64     `json:"ax"`
	AccelY    float64     `json:"ay"`
	Angle     float64     `json:"angle"`
	Dragged   bool        `json:"dragged"`
	Matrix    [16]float32 `json:"matrix"`
}

func (r *Rider) State() RiderState {
	pos := r.Position()
	return RiderState{
		ID:        r.id,
		Name:      r.name,
		X:         pos.X(),
		Y:         pos.Y(),
		VelocityX: r.velocity.X(),
		VelocityY: r.velocity.Y(),
		AccelX:    r.acceleration.X(),
		AccelY:    r.acceleration.Y(),
		Angle:     r.transform.Angle(),
		Dragged:   r.dragged,
		Matrix:    r.transform.Matrix(),
	}
}
