package trajectoid

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
)

const (
	pi  = math.Pi
	tau = 2 * pi
	// epsilon is the smallest vector norm considered nonzero when building
	// rotation axes and great circle intersections.
	epsilon = 1e-12
	// unitTolerance is how far a point may lie off the unit sphere.
	unitTolerance = 1e-8
)

// Tolerances used when checking a trace point coincides with the contact
// point, following the usual absolute plus relative float comparison.
const (
	anchorAbsTol = 1e-8
	anchorRelTol = 1e-5
)

// tracer writes to trace with key 'trajectoid'
func tracer() tracing.Trace {
	return tracing.Select("trajectoid")
}

// DtoR converts degrees to radians
func DtoR(degrees float64) float64 {
	return (pi / 180) * degrees
}

// RtoD converts radians to degrees
func RtoD(radians float64) float64 {
	return (180 / pi) * radians
}

// Sign returns the sign of x
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// isClose reports whether a is within atol+rtol*|b| of b.
func isClose(a, b, atol, rtol float64) bool {
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
