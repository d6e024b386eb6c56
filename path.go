package trajectoid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/soypat/trajectoid/internal/d2"
	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrShortPath indicates a path with fewer than two points.
	ErrShortPath = errors.New("path needs at least two points")
	// ErrNonFinite indicates a NaN or infinite coordinate.
	ErrNonFinite = errors.New("path has NaN or infinite coordinate")
	// ErrDegenerateStep indicates two consecutive points coincide, which
	// leaves the axis of the roll between them undefined.
	ErrDegenerateStep = errors.New("path has zero length step")
)

// Path is the planar trajectory traced on the rolling surface by the
// contact point. One unit of length rolls a unit sphere by one radian.
type Path []r2.Vec

// Validate checks the path can be rolled along.
func (p Path) Validate() error {
	if len(p) < 2 {
		return ErrShortPath
	}
	for i, v := range p {
		if !d2.IsFinite(v) {
			return fmt.Errorf("point %d: %w", i, ErrNonFinite)
		}
		if i > 0 && v == p[i-1] {
			return fmt.Errorf("points %d and %d: %w", i-1, i, ErrDegenerateStep)
		}
	}
	return nil
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Scale returns the path with x and y coordinates scaled independently.
func (p Path) Scale(kx, ky float64) Path {
	k := r2.Vec{X: kx, Y: ky}
	out := make(Path, len(p))
	for i, v := range p {
		out[i] = d2.MulElem(v, k)
	}
	return out
}

// Translate returns the path displaced by v.
func (p Path) Translate(v r2.Vec) Path {
	out := make(Path, len(p))
	for i := range p {
		out[i] = r2.Add(p[i], v)
	}
	return out
}

// Relative returns the path translated so that its first point is the origin.
func (p Path) Relative() Path {
	if len(p) == 0 {
		return nil
	}
	return p.Translate(r2.Scale(-1, p[0]))
}

// Leveled returns the path relative to its first point with the linear
// trend in y removed, so that its last point also lies on the x axis.
// The path must span a nonzero x range.
func (p Path) Leveled() Path {
	out := p.Relative()
	if len(out) < 2 {
		return out
	}
	end := out[len(out)-1]
	slope := end.Y / end.X
	for i := range out {
		out[i].Y -= slope * out[i].X
	}
	return out
}

// Reverse returns the path traversed in the opposite direction.
func (p Path) Reverse() Path {
	out := make(Path, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// SortedByX returns a copy of the path with points ordered by increasing x.
func (p Path) SortedByX() Path {
	out := p.Clone()
	sort.Stable(d2.SortByX(out))
	return out
}

// Repeat returns n consecutive periods of the path, each period starting
// where the previous one ended.
func (p Path) Repeat(n int) Path {
	if n < 1 || len(p) == 0 {
		return nil
	}
	period := r2.Sub(p[len(p)-1], p[0])
	out := make(Path, 0, 1+n*(len(p)-1))
	out = append(out, p[0])
	for k := 0; k < n; k++ {
		shift := r2.Scale(float64(k), period)
		for _, v := range p[1:] {
			out = append(out, r2.Add(v, shift))
		}
	}
	return out
}

// Length returns the total arc length of the path.
func (p Path) Length() (length float64) {
	for i := 1; i < len(p); i++ {
		length += r2.Norm(r2.Sub(p[i], p[i-1]))
	}
	return length
}

// Bounds returns the smallest box containing all points of a nonempty path.
func (p Path) Bounds() r2.Box {
	return r2.Box{Min: d2.Set(p).Min(), Max: d2.Set(p).Max()}
}

// Trace is a sequence of contact points in the sphere's own frame.
type Trace []r3.Vec

// Clone returns a copy of t.
func (t Trace) Clone() Trace {
	if t == nil {
		return nil
	}
	return append(Trace(nil), t...)
}

// Reverse returns the trace in opposite order.
func (t Trace) Reverse() Trace {
	out := make(Trace, len(t))
	for i, v := range t {
		out[len(t)-1-i] = v
	}
	return out
}

// Scale returns the trace with all points scaled by k, which is useful for
// drawing a trace slightly above the sphere surface.
func (t Trace) Scale(k float64) Trace {
	out := make(Trace, len(t))
	for i, v := range t {
		out[i] = r3.Scale(k, v)
	}
	return out
}

// Bounds returns the smallest box containing all points of a nonempty trace.
func (t Trace) Bounds() r3.Box {
	return r3.Box{Min: d3.Set(t).Min(), Max: d3.Set(t).Max()}
}
