package physics

import "math"

// Transform is a 2D affine transform stored as
//
//	| a  c  tx |
//	| b  d  ty |
//
// Values are immutable: every operation returns a new Transform, so a
// renderer holding a Matrix() copy never observes a later tick.
// Operations compose by pre-multiplication, matching a classic matrix stack
// where each new operation is applied after the existing ones.
type Transform struct {
	a, b, c, d float64
	tx, ty     float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{a: 1, d: 1}
}

func (t Transform) Translate(dx, dy float64) Transform {
	t.tx += dx
	t.ty += dy
	return t
}

// Rotate rotates counter-clockwise about the origin.
func (t Transform) Rotate(theta float64) Transform {
	sin, cos := math.Sincos(theta)
	return Transform{
		a:  cos*t.a - sin*t.b,
		b:  sin*t.a + cos*t.b,
		c:  cos*t.c - sin*t.d,
		d:  sin*t.c + cos*t.d,
		tx: cos*t.tx - sin*t.ty,
		ty: sin*t.tx + cos*t.ty,
	}
}

func (t Transform) Scale(sx, sy float64) Transform {
	return Transform{
		a: sx * t.a, c: sx * t.c, tx: sx * t.tx,
		b: sy * t.b, d: sy * t.d, ty: sy * t.ty,
	}
}

// RotateAboutCenter rotates the transformed object about its own origin:
// move to the origin, rotate, move back.
func (t Transform) RotateAboutCenter(theta float64) Transform {
	tx, ty := t.tx, t.ty
	return t.Translate(-tx, -ty).Rotate(theta).Translate(tx, ty)
}

// WithTranslation replaces the translation part.
func (t Transform) WithTranslation(tx, ty float64) Transform {
	t.tx, t.ty = tx, ty
	return t
}

func (t Transform) Translation() (tx, ty float64) { return t.tx, t.ty }

// Up is the image of the +y axis.
func (t Transform) Up() Vector { return V(t.c, t.d) }

// Forward is the image of the +x axis.
func (t Transform) Forward() Vector { return V(t.a, t.b) }

// Angle is the rotation of the +x axis in radians.
func (t Transform) Angle() float64 { return math.Atan2(t.b, t.a) }

func (t Transform) Apply(p Point) Point {
	return Point{
		x: t.a*p.x + t.c*p.y + t.tx,
		y: t.b*p.x + t.d*p.y + t.ty,
		z: p.z,
	}
}

// Matrix returns a column-major 4x4 matrix suitable for shader uniforms.
func (t Transform) Matrix() [16]float32 {
	return [16]float32{
		float32(t.a), float32(t.b), 0, 0,
		float32(t.c), float32(t.d), 0, 0,
		0, 0, 1, 0,
		float32(t.tx), float32(t.ty), 0, 1,
	}
}
