package terrain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeusync/downhill/internal/core/systems/physics"
)

// ParseLevel reads a level point list: points separated by commas, each
// point three space-separated floats "x y z". A trailing f on a number is
// accepted ("1.0f").
func ParseLevel(s string) ([]physics.Point, error) {
	parts := strings.Split(s, ",")
	points := make([]physics.Point, 0, len(parts))
	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 && i == len(parts)-1 && i > 0 {
			// trailing comma
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: point %d has %d values, want 3", ErrMalformedLevel, i, len(fields))
		}

		var coords [3]float64
		for j, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(field, "f"), "F"), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: point %d: %v", ErrMalformedLevel, i, err)
			}
			coords[j] = v
		}
		points = append(points, physics.P3(coords[0], coords[1], coords[2]))
	}
	return points, nil
}

// FormatLevel is the inverse of ParseLevel.
func FormatLevel(points []physics.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(p.X(), 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y(), 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Z(), 'g', -1, 64))
	}
	return b.String()
}

// FromRenderSpace converts points whose x axis is mirrored, as stored by
// renderers, into world space.
func FromRenderSpace(points []physics.Point) []physics.Point {
	out := make([]physics.Point, len(points))
	for i, p := range points {
		out[i] = physics.P3(-p.X(), p.Y(), p.Z())
	}
	return out
}
