package trajectoid

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNotAnchored indicates a trace point that should be the contact
	// point of the sphere is not at the bottom of the sphere.
	ErrNotAnchored = errors.New("trace point is not the contact point")
	// ErrEmptyTrace indicates a trace with no points.
	ErrEmptyTrace = errors.New("empty trace")
)

// down is the contact point of the unit sphere resting on the plane.
var down = r3.Vec{Z: -1}

// TraceOnSphere returns the contact points of a unit sphere rolling along p,
// with p scaled by kx and ky beforehand, in the sphere's frame at the start
// of the path. The geodesic distance between consecutive trace points
// equals the length of the corresponding scaled step.
func TraceOnSphere(p Path, kx, ky float64) Trace {
	rots := Rotations(p.Scale(kx, ky))
	trace := make(Trace, len(rots))
	for i, r := range rots {
		trace[i] = r.Rotate(down)
	}
	return trace
}

// PathFromTrace unrolls a sphere of the given radius along the trace and
// returns the path drawn on the plane, starting at the origin. It is the
// inverse of TraceOnSphere.
//
// The first trace point must be the contact point (0, 0, -radius). Each
// following point is rolled into contact in turn, so the returned path has
// as many points as the trace.
func PathFromTrace(t Trace, radius float64) (Path, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTrace
	}
	contact := r3.Scale(radius, down)
	path := make(Path, 1, len(t))
	// unroll accumulates the rolls performed so far. Applying it to a
	// trace point yields that point in the current sphere frame.
	var unroll Rotation
	current := t[0]
	for i := 0; i < len(t)-1; i++ {
		if !anchored(current, contact) {
			return path, fmt.Errorf("point %d at %v: %w", i, current, ErrNotAnchored)
		}
		next := unroll.Rotate(t[i+1])
		toNext := r3.Sub(next, contact)
		theta := math.Acos(Clamp(-next.Z/radius, -1, 1))
		horizontal := d3.XY(toNext)
		hnorm := r2.Norm(horizontal)
		if hnorm < epsilon {
			return path, fmt.Errorf("points %d and %d: %w", i, i+1, ErrDegenerateStep)
		}
		step := r2.Scale(theta*radius/hnorm, horizontal)
		path = append(path, r2.Add(path[len(path)-1], step))

		// Roll the sphere so the next point becomes the contact point.
		roll := NewRotation(-theta, r3.Vec{X: toNext.Y, Y: -toNext.X})
		unroll = roll.Mul(unroll)
		current = roll.Rotate(next)
	}
	return path, nil
}

func anchored(v, contact r3.Vec) bool {
	return isClose(v.X, contact.X, anchorAbsTol, anchorRelTol) &&
		isClose(v.Y, contact.Y, anchorAbsTol, anchorRelTol) &&
		isClose(v.Z, contact.Z, anchorAbsTol, anchorRelTol)
}
