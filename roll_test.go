package trajectoid_test

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/soypat/trajectoid"
	"github.com/soypat/trajectoid/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

// wavy returns n points of a gentle sine wave along x, ending at x = length.
func wavy(n int, length float64) trajectoid.Path {
	p := make(trajectoid.Path, n)
	for i := range p {
		x := length * float64(i) / float64(n-1)
		p[i] = r2.Vec{X: x, Y: 0.1 * math.Sin(3*x)}
	}
	return p
}

func sameRotation(t *testing.T, want, got trajectoid.Rotation) {
	t.Helper()
	for _, v := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		if !d3.EqualWithin(want.Rotate(v), got.Rotate(v), tol) {
			t.Fatalf("rotations differ at %v: want %v, got %v", v, want.Rotate(v), got.Rotate(v))
		}
	}
}

func TestStepRotationRollsForward(t *testing.T) {
	const a = 0.7
	r := trajectoid.StepRotation(r2.Vec{X: a}, r2.Vec{})
	got := r.Rotate(r3.Vec{Z: -1})
	want := r3.Vec{X: math.Sin(a), Z: -math.Cos(a)}
	if !d3.EqualWithin(got, want, tol) {
		t.Errorf("point ahead of the sphere should touch next: want %v, got %v", want, got)
	}
	assert.InDelta(t, a, math.Abs(r.Angle()), tol)
}

func TestRotationAtStart(t *testing.T) {
	p := wavy(8, 2)
	sameRotation(t, trajectoid.Identity(), trajectoid.RotationAt(0, p))
	assert.Panics(t, func() { trajectoid.RotationAt(len(p), p) })
	assert.Panics(t, func() { trajectoid.RotationAt(-1, p) })
}

func TestRotationsMatchRotationAt(t *testing.T) {
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2.5, Y: 0.3}, {X: 3, Y: -0.2}}
	rots := trajectoid.Rotations(p)
	require.Len(t, rots, len(p))
	for i := range p {
		sameRotation(t, trajectoid.RotationAt(i, p), rots[i])
	}
}

func TestRollWithoutSlip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 0.5, Y: 0.2}, {X: 0.9, Y: -0.3}, {X: 1.6, Y: -0.1}, {X: 2, Y: 0.4}}
	const kx, ky = 1.3, 0.8
	scaled := p.Scale(kx, ky)
	trace := trajectoid.TraceOnSphere(p, kx, ky)
	require.Len(t, trace, len(p))
	assert.True(t, d3.EqualWithin(trace[0], r3.Vec{Z: -1}, tol))
	for i := 1; i < len(trace); i++ {
		assert.InDelta(t, 1, r3.Norm(trace[i]), tol)
		step := r2.Norm(r2.Sub(scaled[i], scaled[i-1]))
		assert.InDelta(t, step, d3.UnsignedAngle(trace[i-1], trace[i]), tol, "step %d", i)
	}
}

func TestRotationAngleInverse(t *testing.T) {
	r := trajectoid.NewRotation(1.2, r3.Vec{X: 0.3, Y: -0.5, Z: 0.8})
	assert.InDelta(t, 1.2, r.Angle(), tol)
	assert.InDelta(t, -1.2, r.Inv().Angle(), tol)
	assert.InDelta(t, 1, r3.Norm(r.Axis()), tol)
	assert.Equal(t, 0.0, trajectoid.Identity().Angle())
	sameRotation(t, trajectoid.Identity(), r.Mul(r.Inv()))
}

func TestMismatchAntisymmetric(t *testing.T) {
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}
	m := trajectoid.MismatchAngle(p)
	assert.NotZero(t, m)
	assert.Equal(t, m, trajectoid.MismatchAngle(p), "mismatch must be deterministic")
	assert.InDelta(t, -m, trajectoid.MismatchAngle(p.Reverse()), tol)
}

func TestMismatchStraightLine(t *testing.T) {
	for _, length := range []float64{0.5, -1.5, 2.5} {
		p := trajectoid.Path{{X: 0, Y: 0}, {X: length, Y: 0}}
		assert.InDelta(t, -length, trajectoid.MismatchAngle(p), tol, "length %g", length)
	}
}

func TestFullTurnCloses(t *testing.T) {
	const n = 9
	p := make(trajectoid.Path, n)
	for i := range p {
		p[i] = r2.Vec{X: 2 * math.Pi * float64(i) / (n - 1)}
	}
	assert.True(t, trajectoid.Closes(p, tol), "mismatch %g", trajectoid.MismatchAngle(p))
	assert.False(t, trajectoid.Closes(p[:5], tol))
}

func TestMismatchMap(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	kxs := []float64{0.5, 1, 2 * math.Pi}
	kys := []float64{1, 2}
	grid := trajectoid.MismatchMap(p, kxs, kys)
	require.Len(t, grid, len(kxs))
	for i := range grid {
		require.Len(t, grid[i], len(kys))
	}
	assert.InDelta(t, -0.5, grid[0][1], tol)
	kx, _, angle := trajectoid.BestScale(kxs, kys, grid)
	assert.Equal(t, 2*math.Pi, kx)
	assert.InDelta(t, 0, angle, tol)
}
