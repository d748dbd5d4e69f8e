package terrain

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/gammazero/deque"

	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/systems/physics"
)

// maxExtensionsPerCall bounds ExtendIfNeeded when the tracked x jumps far
// past the window.
const maxExtensionsPerCall = 64

var _ physics.Ground = (*Terrain)(nil)

// Terrain is the live terrain polyline kept as a sliding window around the
// tracked x. Points are ordered by non-decreasing x; two consecutive points
// with the same x form a vertical wall.
//
// Terrain is owned by a single tick loop and is not safe for concurrent use.
// Even queries update the internal scan hint.
type Terrain struct {
	points    deque.Deque[physics.Point]
	generator *Generator
	cfg       Config
	logger    log.Log

	// hint is the index of the last located segment.
	hint int

	vertices []float32
	version  uint64
}

// New seeds the terrain with one point and one generated unit.
func New(seed physics.Point, generator *Generator, cfg Config, logger log.Log) (*Terrain, error) {
	return NewFromPoints(generator.Extend(seed), generator, cfg, logger)
}

// NewFromPoints builds a terrain from a prepared point list, such as a level.
func NewFromPoints(points []physics.Point, generator *Generator, cfg Config, logger log.Log) (*Terrain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerateGeometry, len(points))
	}

	t := &Terrain{
		generator: generator,
		cfg:       cfg,
		logger:    logger.With(log.String("component", "terrain")),
	}
	t.points.PushBack(points[0])
	if err := t.Append(points[1:]); err != nil {
		return nil, err
	}
	if t.points.Len() < 2 {
		return nil, fmt.Errorf("%w: %d distinct points", ErrDegenerateGeometry, t.points.Len())
	}
	return t, nil
}

func (t *Terrain) Config() Config { return t.cfg }

func (t *Terrain) Len() int { return t.points.Len() }

func (t *Terrain) First() physics.Point { return t.points.Front() }

func (t *Terrain) Last() physics.Point { return t.points.Back() }

// Version changes whenever the window geometry changes.
func (t *Terrain) Version() uint64 { return t.version }

// Points iterates the window front to back.
func (t *Terrain) Points() iter.Seq[physics.Point] {
	return func(yield func(physics.Point) bool) {
		for i := 0; i < t.points.Len(); i++ {
			if !yield(t.points.At(i)) {
				return
			}
		}
	}
}

// Snapshot copies the window.
func (t *Terrain) Snapshot() []physics.Point {
	out := make([]physics.Point, 0, t.points.Len())
	for p := range t.Points() {
		out = append(out, p)
	}
	return out
}

// VertexGeometry returns (x, y, z) triples of the window in world space.
// The slice is rebuilt on every change and must not be modified.
func (t *Terrain) VertexGeometry() []float32 { return t.vertices }

// LineVertices returns the window as a line list in render space: x is
// negated and every segment contributes both of its endpoints.
func (t *Terrain) LineVertices() []float32 {
	n := t.points.Len()
	if n < 2 {
		return nil
	}
	out := make([]float32, 0, (n-1)*6)
	for i := 0; i < n-1; i++ {
		a, b := t.points.At(i), t.points.At(i+1)
		out = append(out,
			float32(-a.X()), float32(a.Y()), float32(a.Z()),
			float32(-b.X()), float32(b.Y()), float32(b.Z()),
		)
	}
	return out
}

// HeightAt returns the ground height at x. A wall x yields the top of the
// wall. Outside the window it returns ErrInvalidQuery along with -Inf (before
// the first point) or NaN (past the last point).
func (t *Terrain) HeightAt(x float64) (float64, error) {
	prev, next, err := t.segment(x)
	if err != nil {
		if t.points.Len() > 0 && x < t.points.Front().X() {
			return math.Inf(-1), err
		}
		return math.NaN(), err
	}
	if prev.X() == next.X() {
		return math.Max(prev.Y(), next.Y()), nil
	}
	fraction := (x - prev.X()) / (next.X() - prev.X())
	return prev.Y() + (next.Y()-prev.Y())*fraction, nil
}

// NormalAt returns the unit normal of the segment under x. Ground-bearing
// segments always yield a normal with positive y.
func (t *Terrain) NormalAt(x float64) (physics.Vector, error) {
	prev, next, err := t.segment(x)
	if err != nil {
		return physics.Vector{}, err
	}
	normal := physics.Between(prev, next).Perpendicular()
	normal.Normalize()
	return normal, nil
}

// CollidesWith reports whether p is on or below the ground.
func (t *Terrain) CollidesWith(p physics.Point) (bool, error) {
	height, err := t.HeightAt(p.X())
	if err != nil {
		return false, err
	}
	return p.Y() <= height, nil
}

// Append adds points to the end of the window. A point equal to the current
// last point is the shared seam and is skipped. Nothing is appended when any
// point would break the x ordering.
func (t *Terrain) Append(points []physics.Point) error {
	last := t.points.Back()
	for i, p := range points {
		if p.X() < last.X() {
			return fmt.Errorf("%w: point %d at x=%.3f precedes x=%.3f", ErrUnorderedPoints, i, p.X(), last.X())
		}
		last = p
	}

	for _, p := range points {
		if p == t.points.Back() {
			continue
		}
		t.points.PushBack(p)
	}
	t.rebuild()
	return nil
}

// Trim drops points behind refX - RetentionMargin. The last point behind the
// cutoff stays so the segment bracketing the cutoff survives, and at least two
// points always remain. It returns the number of dropped points.
func (t *Terrain) Trim(refX float64) int {
	cutoff := refX - t.cfg.RetentionMargin
	removed := 0
	for t.points.Len() > 2 && t.points.At(1).X() < cutoff {
		t.points.PopFront()
		removed++
	}
	if removed > 0 {
		t.hint = max(0, t.hint-removed)
		t.rebuild()
	}
	return removed
}

// ExtendIfNeeded appends generated terrain while x is within LookaheadMargin
// of the last point, then trims behind x. It reports whether terrain was
// appended.
func (t *Terrain) ExtendIfNeeded(x float64) (bool, error) {
	extended := false
	for i := 0; x > t.points.Back().X()-t.cfg.LookaheadMargin; i++ {
		if i == maxExtensionsPerCall {
			return extended, fmt.Errorf("%w: x=%.3f too far past window end %.3f", ErrInvalidQuery, x, t.points.Back().X())
		}
		if t.generator == nil {
			return extended, fmt.Errorf("%w: x=%.3f near window end and no generator", ErrInvalidQuery, x)
		}
		if err := t.Append(t.generator.Extend(t.points.Back())); err != nil {
			return extended, err
		}
		extended = true
	}

	removed := t.Trim(x)
	if extended || removed > 0 {
		t.logger.Debug("terrain window moved",
			log.Float64("x", x),
			log.Int("points", t.points.Len()),
			log.Int("trimmed", removed),
			log.Float64("last_x", t.points.Back().X()),
		)
	}
	return extended, nil
}

// segment returns the segment under x. When x sits on a wall, the segment
// attached to the top of the wall is returned.
func (t *Terrain) segment(x float64) (physics.Point, physics.Point, error) {
	i, err := t.locate(x)
	if err != nil {
		return physics.Point{}, physics.Point{}, err
	}

	n := t.points.Len()
	prev, next := t.points.At(i), t.points.At(i+1)
	if next.X() != x {
		return prev, next, nil
	}

	lo := i + 1
	if prev.X() == x {
		lo = i
	}
	end := i + 1
	for end+1 < n && t.points.At(end+1).X() == x {
		end++
	}
	if lo == end {
		return prev, next, nil
	}

	top := lo
	for j := lo + 1; j <= end; j++ {
		if t.points.At(j).Y() > t.points.At(top).Y() {
			top = j
		}
	}
	switch {
	case top == end && end+1 < n:
		return t.points.At(end), t.points.At(end + 1), nil
	case top == lo && lo > 0:
		return t.points.At(lo - 1), t.points.At(lo), nil
	case top > lo:
		return t.points.At(top - 1), t.points.At(top), nil
	default:
		return t.points.At(top), t.points.At(top + 1), nil
	}
}

// locate finds the first segment i with points[i].x <= x <= points[i+1].x.
func (t *Terrain) locate(x float64) (int, error) {
	n := t.points.Len()
	if n < 2 {
		return 0, fmt.Errorf("%w: %d points", ErrDegenerateGeometry, n)
	}
	first, last := t.points.Front(), t.points.Back()
	if x < first.X() || x > last.X() || math.IsNaN(x) {
		return 0, fmt.Errorf("%w: x=%.3f outside [%.3f, %.3f]", ErrInvalidQuery, x, first.X(), last.X())
	}

	start := 0
	if t.hint < n-1 && t.points.At(t.hint).X() < x {
		start = t.hint
	}
	for i := start; i < n-1; i++ {
		if t.points.At(i).X() <= x && x <= t.points.At(i+1).X() {
			t.hint = i
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: x=%.3f", ErrInvalidQuery, x)
}

func (t *Terrain) rebuild() {
	vertices := make([]float32, 0, t.points.Len()*3)
	for p := range t.Points() {
		vertices = append(vertices, float32(p.X()), float32(p.Y()), float32(p.Z()))
	}

	digest := xxhash.New()
	var buf [4]byte
	for _, v := range vertices {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		_, _ = digest.Write(buf[:])
	}

	t.vertices = vertices
	t.version = digest.Sum64()
}
