package render

import (
	"math"

	"github.com/soypat/trajectoid"
	"gonum.org/v1/gonum/spatial/r3"
)

// TraceTube returns an open tube mesh of the given radius following the
// polyline of trace, with sides faces around its circumference. Repeated
// points are skipped. Scale the trace first to draw it above the sphere
// surface.
func TraceTube(trace trajectoid.Trace, radius float64, sides int) []Triangle3 {
	if sides < 3 {
		panic("tube needs at least 3 sides")
	}
	var model []Triangle3
	ring := make([]r3.Vec, sides)
	next := make([]r3.Vec, sides)
	for i := 1; i < len(trace); i++ {
		a, b := trace[i-1], trace[i]
		axis := r3.Sub(b, a)
		if r3.Norm(axis) < 1e-12 {
			continue
		}
		u, w := orthonormal(r3.Unit(axis))
		for k := range ring {
			s, c := math.Sincos(2 * math.Pi * float64(k) / float64(sides))
			offset := r3.Add(r3.Scale(radius*c, u), r3.Scale(radius*s, w))
			ring[k] = r3.Add(a, offset)
			next[k] = r3.Add(b, offset)
		}
		for k := range ring {
			k1 := (k + 1) % sides
			model = append(model,
				Triangle3{V: [3]r3.Vec{ring[k], ring[k1], next[k1]}},
				Triangle3{V: [3]r3.Vec{ring[k], next[k1], next[k]}},
			)
		}
	}
	return model
}

// orthonormal returns two unit vectors completing a right handed basis with d.
func orthonormal(d r3.Vec) (u, w r3.Vec) {
	ref := r3.Vec{X: 1}
	if math.Abs(d.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	u = r3.Unit(r3.Cross(d, ref))
	w = r3.Cross(d, u)
	return u, w
}
