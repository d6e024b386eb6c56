// Package rootfind finds roots of scalar functions with a fixed budget of
// function evaluations and without derivatives.
//
// The function may be undefined at some abscissae, in which case it returns
// NaN. Undefined points are never reported as a result.
package rootfind

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/optimize"
)

func tracer() tracing.Trace {
	return tracing.Select("trajectoid.rootfind")
}

const (
	defaultMaxEvaluations = 20
	defaultTolerance      = 1e-6
	defaultStep           = 1e-2
)

// Func is a scalar function. It returns NaN where it is undefined.
type Func func(x float64) float64

// Point is an abscissa and the function value at it.
type Point struct {
	X, F float64
}

func (p Point) finite() bool { return !math.IsNaN(p.F) && !math.IsInf(p.F, 0) }

// Settings control the root search. Zero fields take defaults.
type Settings struct {
	// MaxEvaluations is the maximum number of calls to the function. Defaults to 20.
	MaxEvaluations int
	// Tolerance is the largest |f(x)| accepted as a root. Defaults to 1e-6.
	Tolerance float64
	// Step is the initial secant step used when the root is not bracketed. Defaults to 1e-2.
	Step float64
}

func (s Settings) withDefaults() Settings {
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = defaultMaxEvaluations
	}
	if s.Tolerance <= 0 {
		s.Tolerance = defaultTolerance
	}
	if s.Step == 0 {
		s.Step = defaultStep
	}
	return s
}

// Result is the outcome of a root search. X and F hold the point with the
// smallest |F| found, which is the starting point if nothing better was found.
type Result struct {
	Point
	// Converged is true when |F| is within the requested tolerance.
	Converged bool
	// Evaluations counts calls to the function, not including the known start and bracket values.
	Evaluations int
}

type search struct {
	f     Func
	s     Settings
	best  Point
	evals int
}

func (sr *search) eval(x float64) Point {
	sr.evals++
	p := Point{X: x, F: sr.f(x)}
	if p.finite() && math.Abs(p.F) < math.Abs(sr.best.F) {
		sr.best = p
	}
	return p
}

func (sr *search) done() bool {
	return math.Abs(sr.best.F) <= sr.s.Tolerance || sr.evals >= sr.s.MaxEvaluations
}

func (sr *search) result() Result {
	return Result{
		Point:       sr.best,
		Converged:   math.Abs(sr.best.F) <= sr.s.Tolerance,
		Evaluations: sr.evals,
	}
}

// Find searches for x such that f(x) = 0 starting at start, whose value
// must be finite. If bracket is not nil and its value has the opposite sign
// of start's value the root is searched for with the Illinois variant of
// regula falsi. Otherwise a secant iteration is used, handing the remaining
// budget to a Nelder-Mead minimization of f² when the secant iteration
// stalls on a flat or undefined region.
func Find(f Func, start Point, bracket *Point, s Settings) Result {
	if !start.finite() {
		panic("rootfind: starting point must have a finite value")
	}
	sr := &search{f: f, s: s.withDefaults(), best: start}
	if sr.done() {
		return sr.result()
	}
	if bracket != nil && bracket.finite() && math.Signbit(bracket.F) != math.Signbit(start.F) {
		if math.Abs(bracket.F) < math.Abs(sr.best.F) {
			sr.best = *bracket
		}
		sr.illinois(start, *bracket)
		return sr.result()
	}
	if !sr.secant(start) && !sr.done() {
		sr.minimize()
	}
	res := sr.result()
	tracer().Debugf("root search ended at x=%.6g f=%.3g after %d evaluations (converged=%t)",
		res.X, res.F, res.Evaluations, res.Converged)
	return res
}

// illinois runs regula falsi on the bracket [a, b].
func (sr *search) illinois(a, b Point) {
	side := 0
	for !sr.done() {
		x := (a.X*b.F - b.X*a.F) / (b.F - a.F)
		c := sr.eval(x)
		if !c.finite() {
			if sr.done() {
				return
			}
			c = sr.eval((a.X + b.X) / 2)
			if !c.finite() {
				tracer().Infof("undefined function inside bracket [%.6g, %.6g]", a.X, b.X)
				return
			}
		}
		switch {
		case c.F == 0:
			return
		case math.Signbit(c.F) == math.Signbit(b.F):
			b = c
			if side == -1 {
				a.F /= 2
			}
			side = -1
		default:
			a = c
			if side == 1 {
				b.F /= 2
			}
			side = 1
		}
	}
}

// secant runs the secant iteration from x0. It returns false if it stalled
// before exhausting the budget.
func (sr *search) secant(p0 Point) bool {
	p1 := sr.eval(p0.X + sr.s.Step)
	for !sr.done() {
		if !p1.finite() {
			return false
		}
		if math.Signbit(p0.F) != math.Signbit(p1.F) {
			sr.illinois(p0, p1)
			return true
		}
		if p1.F == p0.F {
			return false
		}
		x := p1.X - p1.F*(p1.X-p0.X)/(p1.F-p0.F)
		p0, p1 = p1, sr.eval(x)
	}
	return true
}

// minimize spends the remaining budget minimizing f² around the best point.
func (sr *search) minimize() {
	remaining := sr.s.MaxEvaluations - sr.evals
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if sr.evals >= sr.s.MaxEvaluations {
				return math.Inf(1)
			}
			p := sr.eval(x[0])
			if !p.finite() {
				return math.Inf(1)
			}
			return p.F * p.F
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: remaining,
		Converger: &optimize.FunctionConverge{
			Absolute:   sr.s.Tolerance * sr.s.Tolerance,
			Iterations: remaining,
		},
	}
	method := &optimize.NelderMead{SimplexSize: math.Abs(sr.s.Step)}
	_, err := optimize.Minimize(problem, []float64{sr.best.X}, settings, method)
	if err != nil {
		tracer().Debugf("nelder-mead fallback: %v", err)
	}
}
