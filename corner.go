package trajectoid

import (
	"fmt"

	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CornerBridge closes p with two great circle arcs meeting at a corner.
//
// One arc leaves the end of the trace of p deflected from the end tangent by
// the filtered declination and the other arrives at the start of the trace
// deflected from the start tangent. If the two arcs would leave the plane
// through both path ends on opposite sides, the start declination is
// negated. The arcs end at the great circle intersection lying on their side.
func CornerBridge(declination float64, p Path, cfg BridgeConfig) (Bridge, error) {
	if err := p.Validate(); err != nil {
		return Bridge{}, err
	}
	cfg = cfg.withDefaults()
	trace := TraceOnSphere(p, 1, 1)
	n := len(trace)
	first, last := trace[0], trace[n-1]

	forward := FilterForwardDeclination(declination, p, cfg.MaxAngleFromVertical)
	forwardAxis := d3.RotateAbout(r3.Cross(trace[n-2], last), last, forward)
	forwardProbe := d3.RotateAbout(last, forwardAxis, probeAngle)

	backwardRay := func(declination float64) (axis, probe r3.Vec, filtered float64) {
		filtered = FilterBackwardDeclination(declination, p, cfg.MaxAngleFromVertical)
		axis = d3.RotateAbout(r3.Cross(first, trace[1]), first, filtered)
		return axis, d3.RotateAbout(first, axis, -probeAngle), filtered
	}
	backwardAxis, backwardProbe, backward := backwardRay(declination)
	normal, forwardSide, backwardSide := endSides(trace, forwardProbe, backwardProbe)
	if forwardSide*backwardSide < 0 {
		backwardAxis, _, backward = backwardRay(-declination)
		tracer().Debugf("corner bridge: rays on opposite sides, backward declination negated")
	}

	corner := r3.Cross(forwardAxis, backwardAxis)
	if r3.Norm(corner) < epsilon {
		return Bridge{}, fmt.Errorf("corner bridge rays are parallel: %w", ErrDegenerateBridge)
	}
	corner = r3.Unit(corner)
	if r3.Dot(corner, normal)*forwardSide < 0 {
		corner = r3.Scale(-1, corner)
	}

	forwardArc := BridgeTwoPointsByArc(last, corner, cfg.NPoints)
	backwardArc := BridgeTwoPointsByArc(corner, first, cfg.NPoints)
	full := make(Trace, 0, n+2*(cfg.NPoints-1))
	full = append(full, trace...)
	full = append(full, forwardArc[1:]...)
	full = append(full, backwardArc[1:]...)
	return assemble(full, forward, backward)
}

func assemble(full Trace, forward, backward float64) (Bridge, error) {
	planar, err := PathFromTrace(full, 1)
	if err != nil {
		return Bridge{}, fmt.Errorf("unrolling bridge: %w", err)
	}
	return Bridge{Path: planar, Trace: full, Forward: forward, Backward: backward}, nil
}
