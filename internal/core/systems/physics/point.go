package physics

import (
	"fmt"
	"math"
)

var _ Vector3 = Point{}

// Point is a position in the xy plane; z is kept for renderers.
type Point struct{ x, y, z float64 }

// P creates a 2D point.
func P(x, y float64) Point { return Point{x: x, y: y} }

// P3 creates a 3D point.
func P3(x, y, z float64) Point { return Point{x: x, y: y, z: z} }

func (p Point) X() float64 { return p.x }
func (p Point) Y() float64 { return p.y }
func (p Point) Z() float64 { return p.z }

// Sub returns the displacement from o to p.
func (p Point) Sub(o Point) Vector { return Between(o, p) }

func (p Point) Add(v Vector) Point {
	return Point{x: p.x + v.x, y: p.y + v.y, z: p.z + v.z}
}

// WithY returns p moved vertically to y.
func (p Point) WithY(y float64) Point {
	p.y = y
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.x, p.y)
}

// Distance computes Euclidean distance between two points in the xy plane.
func Distance(a, b Point) float64 { return math.Hypot(b.x-a.x, b.y-a.y) }
