package trajectoid

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// StepRotation returns the rotation of a unit sphere rolling without
// slipping from the contact point at point back to the contact point at
// previous. The axis lies on the rolling plane perpendicular to the step and
// the angle equals the step length.
func StepRotation(point, previous r2.Vec) Rotation {
	d := r2.Sub(previous, point)
	return NewRotation(-r2.Norm(d), r3.Vec{X: d.Y, Y: -d.X})
}

// RotationAt returns the rotation the sphere undergoes rolling from the
// first point of p to the point at index i, as seen in the frame where the
// sphere touches the plane at p[i]. RotationAt(0, p) is the identity.
//
// The step rotations are composed walking the path backwards from i, each
// earlier step being applied after the later ones.
func RotationAt(i int, p Path) Rotation {
	if i < 0 || i >= len(p) {
		panic("index " + strconv.Itoa(i) + " out of range for path of length " + strconv.Itoa(len(p)))
	}
	net := Identity()
	for k := i; k >= 1; k-- {
		net = StepRotation(p[k], p[k-1]).Mul(net)
	}
	return net
}

// Rotations returns RotationAt(i, p) for every index of p. It reuses the
// partial products so it runs in time linear in the path length.
func Rotations(p Path) []Rotation {
	if len(p) == 0 {
		return nil
	}
	rots := make([]Rotation, len(p))
	for i := 1; i < len(p); i++ {
		rots[i] = rots[i-1].Mul(StepRotation(p[i], p[i-1]))
	}
	return rots
}
