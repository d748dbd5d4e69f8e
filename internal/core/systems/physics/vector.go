package physics

import (
	"fmt"
	"math"
)

var (
	_ Vector3 = Vector{}
	_ Vector2 = Vector{}
)

// Vector is a 2D/3D displacement. The z component is carried along but no
// gameplay code depends on it.
//
// Arithmetic returns new values. Normalize is the only mutating operation and
// marks the vector as normalized so angle calculations can skip the work.
type Vector struct {
	x, y, z    float64
	normalized bool
}

// V creates a 2D vector.
func V(x, y float64) Vector { return Vector{x: x, y: y} }

// V3 creates a 3D vector.
func V3(x, y, z float64) Vector { return Vector{x: x, y: y, z: z} }

// Between returns the displacement from a to b.
func Between(a, b Point) Vector {
	return Vector{x: b.x - a.x, y: b.y - a.y, z: b.z - a.z}
}

func (v Vector) X() float64 { return v.x }
func (v Vector) Y() float64 { return v.y }
func (v Vector) Z() float64 { return v.z }

// IsNormalized reports whether Normalize ran since the vector was built.
func (v Vector) IsNormalized() bool { return v.normalized }

func (v Vector) Add(o Vector) Vector {
	return Vector{x: v.x + o.x, y: v.y + o.y, z: v.z + o.z}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{x: v.x - o.x, y: v.y - o.y, z: v.z - o.z}
}

func (v Vector) Mul(s float64) Vector {
	return Vector{x: v.x * s, y: v.y * s, z: v.z * s}
}

func (v Vector) Div(s float64) Vector {
	return Vector{x: v.x / s, y: v.y / s, z: v.z / s}
}

func (v Vector) Neg() Vector {
	return Vector{x: -v.x, y: -v.y, z: -v.z}
}

func (v Vector) Dot(o Vector) float64 {
	return v.x*o.x + v.y*o.y + v.z*o.z
}

// Perpendicular rotates the xy part by +90 degrees. For a segment running
// left to right the result points up.
func (v Vector) Perpendicular() Vector {
	return Vector{x: -v.y, y: v.x}
}

func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z)
}

// Normalize scales the vector to unit length in place. Components that are
// exactly zero stay zero, so a zero vector remains zero (and is still marked
// normalized).
func (v *Vector) Normalize() {
	mag := v.Magnitude()
	if v.x != 0 {
		v.x /= mag
	} else {
		v.x = 0
	}
	if v.y != 0 {
		v.y /= mag
	} else {
		v.y = 0
	}
	if v.z != 0 {
		v.z /= mag
	} else {
		v.z = 0
	}
	v.normalized = true
}

// Normalized returns a normalized copy.
func (v Vector) Normalized() Vector {
	v.Normalize()
	return v
}

// AngleTo returns the unsigned angle to other in radians. Both operands are
// normalized in place when they are not already.
func (v *Vector) AngleTo(other *Vector) float64 {
	if !v.normalized {
		v.Normalize()
	}
	if !other.normalized {
		other.Normalize()
	}
	return math.Acos(clamp(v.Dot(*other), -1, 1))
}

// UnsignedAngleTo is AngleTo without touching either operand.
func (v Vector) UnsignedAngleTo(other Vector) float64 {
	return v.AngleTo(&other)
}

// ShortestAngleTo returns AngleTo with a sign: negative when the vector from
// other to v points left (negative x).
func (v *Vector) ShortestAngleTo(other *Vector) float64 {
	angle := v.AngleTo(other)
	if v.Sub(*other).x < 0 {
		angle = -angle
	}
	return angle
}

// Rotate turns the vector counter-clockwise about +z.
func (v Vector) Rotate(theta float64) Vector {
	sin, cos := math.Sincos(theta)
	return Vector{x: v.x*cos - v.y*sin, y: v.x*sin + v.y*cos, z: v.z}
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.x, v.y, v.z)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
