package terrain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned for height or normal queries outside the
	// current window. The driving loop must extend the terrain before the
	// rider gets there.
	ErrInvalidQuery = errors.New("terrain query outside window")

	// ErrDegenerateGeometry means the window holds fewer than two points.
	ErrDegenerateGeometry = errors.New("degenerate terrain geometry")

	// ErrUnorderedPoints is returned when x would decrease along the polyline.
	ErrUnorderedPoints = fmt.Errorf("%w: points out of order", ErrDegenerateGeometry)

	// ErrMalformedLevel is returned when a level point list cannot be parsed.
	ErrMalformedLevel = errors.New("malformed level points")
)
