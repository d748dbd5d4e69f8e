package physics

// Lightweight physics abstractions shared by the terrain, the rider and the
// stepper. Concrete types live in this package (Vector, Point, Transform) or
// in their owning packages (terrain.Terrain, models.Rider).

// Vector2 represents anything with 2D components.
type Vector2 interface {
	X() float64
	Y() float64
}

// Vector3 represents anything with 3D components.
type Vector3 interface {
	X() float64
	Y() float64
	Z() float64
}

// Body is the minimal dynamic state the stepper reads and mutates.
// Positions and deltas are in world space; Up and Rotate work in the
// body's render space where x is mirrored.
type Body interface {
	Position() Point
	SetPosition(Point)

	Velocity() Vector
	SetVelocity(Vector)
	Acceleration() Vector
	SetAcceleration(Vector)

	Mass() float64
	IsDragged() bool

	Translate(delta Vector)
	Up() Vector
	Rotate(theta float64)
}

// Ground answers point-location queries against static terrain.
type Ground interface {
	HeightAt(x float64) (float64, error)
	NormalAt(x float64) (Vector, error)
	CollidesWith(p Point) (bool, error)
}
