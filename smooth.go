package trajectoid

import (
	"fmt"
	"math"

	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SmoothBridge closes p with a bridge free of sharp corners.
//
// At each end of the trace the tangent is turned gradually by the filtered
// declination along an arc of geodesic curvature radius
// cfg.MinCurvatureRadius. Both arcs are continued along great circles which
// are joined by a circular main arc of the same radius tangent to both.
//
// ErrInfeasible is returned when the two curvature arcs come closer than two
// steps, when the main arc does not fit between the great circle sections or
// when no circle of the curvature radius is tangent to both sections' ends.
func SmoothBridge(declination float64, p Path, cfg BridgeConfig) (Bridge, error) {
	if err := p.Validate(); err != nil {
		return Bridge{}, err
	}
	cfg = cfg.withDefaults()
	radius := cfg.MinCurvatureRadius
	npoints := cfg.NPoints
	trace := TraceOnSphere(p, 1, 1)
	n := len(trace)
	first, last := trace[0], trace[n-1]

	forward := FilterForwardDeclination(declination, p, cfg.MaxAngleFromVertical)
	forwardArc, step := curvatureArc(last, r3.Cross(trace[n-2], last), forward, radius, npoints, 1)
	tracer().Debugf("smooth bridge: forward declination raw=%.4g filtered=%.4g", declination, forward)

	backwardCurve := func(declination float64) (Trace, float64) {
		filtered := FilterBackwardDeclination(declination, p, cfg.MaxAngleFromVertical)
		arc, _ := curvatureArc(first, r3.Cross(first, trace[1]), filtered, radius, npoints, -1)
		return arc, filtered
	}
	backwardArc, backward := backwardCurve(declination)
	normal, forwardSide, backwardSide := endSides(trace, forwardArc[npoints], backwardArc[npoints])
	if forwardSide*backwardSide < 0 {
		backwardArc, backward = backwardCurve(-declination)
	}
	tracer().Debugf("smooth bridge: backward declination filtered=%.4g", backward)

	if minDistance(forwardArc, backwardArc) < 2*step {
		tracer().Infof("smooth bridge: curvature arcs intersect at declination %.4g", declination)
		return Bridge{}, fmt.Errorf("curvature arcs intersect: %w", ErrInfeasible)
	}

	forwardEnd, backwardEnd := forwardArc[npoints], backwardArc[npoints]
	forwardAxis := r3.Cross(forwardArc[npoints-1], forwardEnd)
	backwardAxis := r3.Cross(backwardArc[npoints-1], backwardEnd)
	corner := r3.Cross(forwardAxis, backwardAxis)
	if r3.Norm(corner) < epsilon {
		return Bridge{}, fmt.Errorf("smooth bridge straight sections are parallel: %w", ErrDegenerateBridge)
	}
	corner = r3.Unit(corner)
	// side is the orientation of the main arc relative to the plane through
	// the path ends.
	side := 1.0
	if r3.Dot(corner, normal)*forwardSide < 0 {
		corner = r3.Scale(-1, corner)
		side = -1
	}

	cornerAngle := d3.UnsignedAngle(forwardAxis, backwardAxis)
	tangentLength := radius / math.Tan(cornerAngle/2)
	forwardLength := geodesic(corner, forwardEnd) - tangentLength
	backwardLength := geodesic(corner, backwardEnd) - tangentLength
	if forwardLength <= 0 || backwardLength <= 0 {
		tracer().Infof("smooth bridge: corner too close for main arc at declination %.4g", declination)
		return Bridge{}, fmt.Errorf("no room for main arc: %w", ErrInfeasible)
	}
	forwardStraight := BridgeTwoPointsByArc(forwardEnd,
		d3.RotateAbout(forwardEnd, forwardAxis, forwardLength), npoints)
	backwardStraight := BridgeTwoPointsByArc(backwardEnd,
		d3.RotateAbout(backwardEnd, backwardAxis, backwardLength), npoints)

	mainArc, err := tangentArc(
		forwardStraight[npoints-1], forwardAxis,
		backwardStraight[npoints-1], backwardAxis,
		radius, side, npoints)
	if err != nil {
		return Bridge{}, err
	}

	backwardStraight = backwardStraight.Reverse()
	backwardArc = backwardArc.Reverse()
	full := make(Trace, 0, n+5*npoints)
	full = append(full, trace...)
	full = append(full, forwardArc[1:]...)
	full = append(full, forwardStraight[1:]...)
	full = append(full, mainArc[1:]...)
	full = append(full, backwardStraight[1:]...)
	// The arc's last point is the start of the trace, which is left out.
	full = append(full, backwardArc[1:len(backwardArc)-1]...)
	return assemble(full, forward, backward)
}

// curvatureArc walks npoints steps from start along a path of constant
// geodesic curvature radius, starting along the great circle of axis and
// turning by declination in total. dir is 1 to walk forward along the
// axis' great circle and -1 to walk backwards. It returns npoints+1 points
// and the length of each step.
func curvatureArc(start, axis r3.Vec, declination, radius float64, npoints int, dir float64) (Trace, float64) {
	turn := declination / float64(npoints)
	step := math.Abs(radius * declination / float64(npoints))
	arc := make(Trace, 1, npoints+1)
	arc[0] = start
	point := start
	for i := 0; i < npoints; i++ {
		axis = d3.RotateAbout(axis, point, dir*turn)
		point = d3.RotateAbout(point, axis, dir*step)
		arc = append(arc, point)
	}
	return arc, step
}

// mainArcTolerance is the relative deviation from the main arc circle
// allowed for the ends of the straight sections.
const mainArcTolerance = 0.05

// tangentArc returns npoints on the small circle of geodesic radius radius
// running from the end of the forward great circle section to the end of
// the backward one. Both sections' great circles are tangent to the circle.
func tangentArc(from, fromAxis, to, toAxis r3.Vec, radius, side float64, npoints int) (Trace, error) {
	// Euclidean radius of the small circle on the unit sphere.
	circleRadius := math.Sqrt(1 / (1 + 1/(radius*radius)))
	center := r3.Scale(side, r3.Cross(r3.Cross(from, fromAxis), r3.Cross(to, toAxis)))
	if r3.Norm(center) < epsilon {
		return nil, fmt.Errorf("main arc center undefined: %w", ErrDegenerateBridge)
	}
	axis := r3.Unit(center)
	center = r3.Scale(math.Sqrt(1-circleRadius*circleRadius), axis)
	start := r3.Sub(from, center)
	end := r3.Sub(to, center)
	// Both section ends must lie on the circle, otherwise the arc is not
	// tangent to the sections and the bridge would kink.
	for _, d := range [2]float64{r3.Norm(start), r3.Norm(end)} {
		if math.Abs(d-circleRadius) > mainArcTolerance*circleRadius {
			tracer().Infof("smooth bridge: main arc off circle, distance %.4g to center for radius %.4g", d, circleRadius)
			return nil, fmt.Errorf("main arc not tangent to straight sections: %w", ErrInfeasible)
		}
	}
	cos := r3.Dot(start, end) / (r3.Norm(start) * r3.Norm(end))
	turn := -side * math.Acos(Clamp(cos, -1, 1))
	arc := make(Trace, npoints)
	for i := range arc {
		theta := turn * float64(i) / float64(npoints-1)
		// Project back onto the sphere, the circle only approximates the
		// tangent points to within the discretization of the sections.
		arc[i] = r3.Unit(r3.Add(center, d3.RotateAbout(start, axis, theta)))
	}
	return arc, nil
}
