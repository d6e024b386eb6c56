package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// IsFinite returns false if any component is NaN or infinite.
func IsFinite(a r2.Vec) bool {
	return !math.IsNaN(a.X) && !math.IsInf(a.X, 0) &&
		!math.IsNaN(a.Y) && !math.IsInf(a.Y, 0)
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

func MulElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{
		X: a.X * b.X,
		Y: a.Y * b.Y,
	}
}

// Rotate rotates v counterclockwise by angle radians about the origin.
func Rotate(v r2.Vec, angle float64) r2.Vec {
	s, c := math.Sincos(angle)
	return r2.Vec{
		X: c*v.X - s*v.Y,
		Y: s*v.X + c*v.Y,
	}
}

// SignedAngle returns the angle in radians from a to b, positive when the
// rotation from a to b is counterclockwise. It uses the atan2 formula which
// stays accurate near 0 and pi, unlike acos.
func SignedAngle(a, b r2.Vec) float64 {
	a = r2.Unit(a)
	b = r2.Unit(b)
	return math.Atan2(r2.Cross(a, b), r2.Dot(a, b))
}

type Set []r2.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r2.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r2.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

type SortByX Set

func (a SortByX) Len() int           { return len(a) }
func (a SortByX) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortByX) Less(i, j int) bool { return a[i].X < a[j].X }
