package trajectoid

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is an orientation of the sphere relative to a reference
// orientation. The zero value of Rotation is the identity.
type Rotation struct {
	q r3.Rotation
}

// Identity returns the identity rotation.
func Identity() Rotation { return Rotation{} }

// NewRotation returns the right handed rotation by angle radians about axis.
// The axis need not be normalized.
func NewRotation(angle float64, axis r3.Vec) Rotation {
	if angle == 0 || axis == (r3.Vec{}) {
		return Rotation{}
	}
	return Rotation{q: r3.NewRotation(angle, axis)}
}

func (r Rotation) quat() quat.Number {
	if r.q == (r3.Rotation{}) {
		return quat.Number{Real: 1}
	}
	return quat.Number(r.q)
}

// Quat returns r as a unit quaternion.
func (r Rotation) Quat() r3.Rotation {
	return r3.Rotation(r.quat())
}

// Rotate applies the rotation to v.
func (r Rotation) Rotate(v r3.Vec) r3.Vec {
	if r.q == (r3.Rotation{}) {
		return v
	}
	return r.q.Rotate(v)
}

// Mul returns the composition of both rotations which applies b first and
// then r. The result is renormalized so long products do not drift.
func (r Rotation) Mul(b Rotation) Rotation {
	q := quat.Mul(r.quat(), b.quat())
	return Rotation{q: r3.Rotation(quat.Scale(1/quat.Abs(q), q))}
}

// Inv returns the inverse rotation.
func (r Rotation) Inv() Rotation {
	if r.q == (r3.Rotation{}) {
		return r
	}
	return Rotation{q: r3.Rotation(quat.Conj(quat.Number(r.q)))}
}

// Angle returns the rotation angle in (-pi, pi]. The sign is taken with
// respect to the rotation axis oriented towards positive Z, so that r and
// r.Inv() have opposite angles. Axes on the XY plane are oriented towards
// positive Y, and then positive X.
func (r Rotation) Angle() float64 {
	q := r.quat()
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	angle := 2 * math.Atan2(r3.Norm(v), q.Real)
	if !upward(v) {
		angle = -angle
	}
	return angle
}

// Axis returns the unit rotation axis oriented as described in Angle.
// The identity rotation returns the zero vector.
func (r Rotation) Axis() r3.Vec {
	q := r.quat()
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	if v == (r3.Vec{}) {
		return v
	}
	if !upward(v) {
		v = r3.Scale(-1, v)
	}
	return r3.Unit(v)
}

// upward reports whether v points into the upper hemisphere
// with ties on the equator broken on Y and then X.
func upward(v r3.Vec) bool {
	switch {
	case v.Z != 0:
		return v.Z > 0
	case v.Y != 0:
		return v.Y > 0
	}
	return v.X >= 0
}
