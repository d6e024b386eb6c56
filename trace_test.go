package trajectoid_test

import (
	"math"
	"testing"

	"github.com/soypat/trajectoid"
	"github.com/soypat/trajectoid/internal/d2"
	"github.com/soypat/trajectoid/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPathFromTraceRoundTrip(t *testing.T) {
	p := trajectoid.Path{{X: 0.3, Y: 0.1}, {X: 1, Y: 0.2}, {X: 1.2, Y: 0.9}, {X: 2, Y: 1}, {X: 2.4, Y: 0.1}, {X: 3.1, Y: -0.4}}
	trace := trajectoid.TraceOnSphere(p, 1, 1)
	got, err := trajectoid.PathFromTrace(trace, 1)
	require.NoError(t, err)
	want := p.Relative()
	require.Len(t, got, len(want))
	for i := range want {
		if !d2.EqualWithin(want[i], got[i], 1e-8) {
			t.Errorf("point %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestPathFromTraceRadius(t *testing.T) {
	const radius = 2.5
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 0.4, Y: 0}, {X: 0.4, Y: 0.7}}
	trace := trajectoid.TraceOnSphere(p, 1, 1).Scale(radius)
	got, err := trajectoid.PathFromTrace(trace, radius)
	require.NoError(t, err)
	for i := range p {
		assert.True(t, d2.EqualWithin(r2.Scale(radius, p[i]), got[i], 1e-8), "point %d: %v", i, got[i])
	}
}

func TestPathFromTraceErrors(t *testing.T) {
	_, err := trajectoid.PathFromTrace(nil, 1)
	assert.ErrorIs(t, err, trajectoid.ErrEmptyTrace)

	_, err = trajectoid.PathFromTrace(trajectoid.Trace{{X: 1}, {Y: 1}}, 1)
	assert.ErrorIs(t, err, trajectoid.ErrNotAnchored)

	_, err = trajectoid.PathFromTrace(trajectoid.Trace{{Z: -1}, {Z: -1}}, 1)
	assert.ErrorIs(t, err, trajectoid.ErrDegenerateStep)

	// A single anchored point unrolls to the origin.
	single, err := trajectoid.PathFromTrace(trajectoid.Trace{{Z: -1}}, 1)
	require.NoError(t, err)
	assert.Equal(t, trajectoid.Path{{}}, single)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, trajectoid.Path{{X: 0, Y: 0}}.Validate(), trajectoid.ErrShortPath)
	assert.ErrorIs(t, trajectoid.Path{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}}.Validate(), trajectoid.ErrNonFinite)
	assert.ErrorIs(t, trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}}.Validate(), trajectoid.ErrDegenerateStep)
	assert.NoError(t, trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}}.Validate())
}

func TestPathHelpers(t *testing.T) {
	p := trajectoid.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 2}}
	assert.Equal(t, trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}}, p.Relative())
	assert.Equal(t, trajectoid.Path{{X: 3, Y: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}}, p.Reverse())
	assert.Equal(t, trajectoid.Path{{X: 2, Y: 3}, {X: 4, Y: 3}, {X: 6, Y: 6}}, p.Scale(2, 3))
	assert.Equal(t, trajectoid.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 2}, {X: 4, Y: 2}, {X: 5, Y: 3}}, p.Repeat(2))
	assert.Equal(t, trajectoid.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 2}}, trajectoid.Path{{X: 3, Y: 2}, {X: 1, Y: 1}, {X: 2, Y: 1}}.SortedByX())
	assert.Equal(t, trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}, trajectoid.Path{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 3, Y: 3}}.Leveled())
	assert.InDelta(t, 1+math.Sqrt2, p.Length(), tol)
	assert.Equal(t, r2.Box{Min: r2.Vec{X: 1, Y: 1}, Max: r2.Vec{X: 3, Y: 2}}, p.Bounds())
}

func TestDeclinationFilter(t *testing.T) {
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	max := trajectoid.DefaultMaxAngleFromVertical
	for _, test := range []struct {
		declination, want float64
	}{
		{0.5, 0.5},
		{-0.5, -0.5},
		{trajectoid.DtoR(85), trajectoid.DtoR(80)},
		{-trajectoid.DtoR(100), -trajectoid.DtoR(80)},
	} {
		assert.InDelta(t, test.want, trajectoid.FilterForwardDeclination(test.declination, p, max), tol)
		assert.InDelta(t, test.want, trajectoid.FilterBackwardDeclination(test.declination, p, max), tol)
	}
	// Tangent already 30 degrees off the vertical.
	tilted := trajectoid.Path{{X: 0, Y: 0}, {X: math.Cos(math.Pi / 6), Y: math.Sin(math.Pi / 6)}}
	got := trajectoid.FilterForwardDeclination(trajectoid.DtoR(60), tilted, max)
	assert.InDelta(t, trajectoid.DtoR(50), got, tol)
}

func TestBridgeTwoPointsByArc(t *testing.T) {
	a, b := r3.Vec{X: 1}, r3.Vec{Y: 1}
	arc := trajectoid.BridgeTwoPointsByArc(a, b, 10)
	require.Len(t, arc, 10)
	assert.True(t, d3.EqualWithin(a, arc[0], tol))
	assert.True(t, d3.EqualWithin(b, arc[9], tol))
	for i := 1; i < len(arc); i++ {
		assert.InDelta(t, 1, r3.Norm(arc[i]), tol)
		assert.InDelta(t, math.Pi/18, d3.UnsignedAngle(arc[i-1], arc[i]), tol)
		assert.InDelta(t, 0, arc[i].Z, tol)
	}
	assert.Panics(t, func() { trajectoid.BridgeTwoPointsByArc(a, b, 1) })
	assert.Panics(t, func() { trajectoid.BridgeTwoPointsByArc(a, r3.Vec{Y: 2}, 5) })
}
