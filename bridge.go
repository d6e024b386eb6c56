package trajectoid

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInfeasible indicates the smooth bridge cannot be built for the
	// requested declination. Solvers skip such declinations.
	ErrInfeasible = errors.New("bridge infeasible for declination")
	// ErrDegenerateBridge indicates a bridge whose construction is
	// numerically undefined, such as parallel bridge rays.
	ErrDegenerateBridge = errors.New("degenerate bridge geometry")
)

const (
	defaultBridgePoints       = 30
	defaultMinCurvatureRadius = 0.2
	// probeAngle is the length of the short arcs used to tell on which side
	// of the plane through both path ends a bridge ray starts.
	probeAngle = pi / 18
)

// BridgeConfig holds the parameters shared by the bridge builders.
// Zero fields take their documented defaults.
type BridgeConfig struct {
	// NPoints is the number of samples of each bridge section. Defaults to 30.
	NPoints int
	// MinCurvatureRadius is the geodesic curvature radius of the turns of
	// the smooth bridge. Defaults to 0.2.
	MinCurvatureRadius float64
	// MaxAngleFromVertical limits the initial bridge direction at each end
	// of the path. Defaults to DefaultMaxAngleFromVertical.
	MaxAngleFromVertical float64
}

func (c BridgeConfig) withDefaults() BridgeConfig {
	if c.NPoints < 2 {
		c.NPoints = defaultBridgePoints
	}
	if c.MinCurvatureRadius <= 0 {
		c.MinCurvatureRadius = defaultMinCurvatureRadius
	}
	if c.MaxAngleFromVertical <= 0 {
		c.MaxAngleFromVertical = DefaultMaxAngleFromVertical
	}
	return c
}

// Bridge is an open path extended by a bridge intended to close it.
type Bridge struct {
	// Path is the input path followed by the bridge, on the plane.
	Path Path
	// Trace is the input trace followed by the bridge, on the sphere.
	Trace Trace
	// Forward and Backward are the declinations used at the end and at
	// the start of the path after filtering.
	Forward, Backward float64
}

// BridgeBuilder builds a bridge for the open path p deflected by declination.
type BridgeBuilder func(declination float64, p Path, cfg BridgeConfig) (Bridge, error)

// endSides returns on which side of the plane through both trace ends and
// the sphere center the bridge leaving the last point and the bridge
// arriving at the first point start, given a probe point on each. The
// plane normal is also returned.
func endSides(trace Trace, forwardProbe, backwardProbe r3.Vec) (normal r3.Vec, forward, backward float64) {
	first, last := trace[0], trace[len(trace)-1]
	normal = r3.Cross(last, first)
	forward = r3.Dot(r3.Sub(forwardProbe, last), normal)
	backward = r3.Dot(r3.Sub(backwardProbe, first), normal)
	return normal, forward, backward
}
