package trajectoid

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	geor3 "github.com/golang/geo/r3"
)

// BridgeTwoPointsByArc returns npoints points on the shorter great circle
// arc from a to b, evenly spaced in angle and including both ends.
// a and b must be unit vectors and npoints at least 2.
func BridgeTwoPointsByArc(a, b r3.Vec, npoints int) Trace {
	if npoints < 2 {
		panic("need at least 2 points to bridge an arc")
	}
	mustUnit(a)
	mustUnit(b)
	pa, pb := toS2(a), toS2(b)
	arc := make(Trace, npoints)
	for i := range arc {
		t := float64(i) / float64(npoints-1)
		arc[i] = fromS2(s2.Interpolate(t, pa, pb))
	}
	return arc
}

// geodesic returns the great circle distance between unit vectors a and b.
func geodesic(a, b r3.Vec) float64 {
	return toS2(a).Distance(toS2(b)).Radians()
}

func mustUnit(v r3.Vec) {
	if math.Abs(r3.Norm(v)-1) > unitTolerance || !d3.IsFinite(v) {
		panic(fmt.Sprintf("expected unit vector, got %v with norm %g", v, r3.Norm(v)))
	}
}

func toS2(v r3.Vec) s2.Point {
	return s2.Point{Vector: geor3.Vector{X: v.X, Y: v.Y, Z: v.Z}}
}

func fromS2(p s2.Point) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// minDistance returns the smallest euclidean distance between a point of a
// and a point of b.
func minDistance(a, b Trace) float64 {
	pts := make(kdtree.Points, len(b))
	for i, v := range b {
		pts[i] = kdtree.Point{v.X, v.Y, v.Z}
	}
	tree := kdtree.New(pts, false)
	best := math.Inf(1)
	for _, v := range a {
		_, dist2 := tree.Nearest(kdtree.Point{v.X, v.Y, v.Z})
		best = math.Min(best, dist2)
	}
	return math.Sqrt(best)
}
