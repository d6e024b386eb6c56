package trajectoid

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/soypat/trajectoid/internal/rootfind"
	"gonum.org/v1/gonum/floats"
)

// ErrNoFeasibleDeclination indicates no declination of the screening grid
// produced a bridge.
var ErrNoFeasibleDeclination = errors.New("no feasible declination in screening grid")

// Declination screening range, exclusive of bridges folding back on the path.
const (
	minScreenDeclination = -3 * pi / 4
	maxScreenDeclination = 3 * pi / 4
)

// Solver searches for the declination at which a bridge closes a path.
//
// It evaluates the mismatch angle of the bridged path on a grid of
// declinations, then refines the best grid point with a bounded root search.
// Convergence is not guaranteed; check Solution.Converged.
type Solver struct {
	// Build constructs the bridge for a declination.
	Build BridgeBuilder
	// Config is passed on to Build.
	Config BridgeConfig
	// GridSize is the number of screening declinations spanning
	// [-3pi/4, 3pi/4]. Defaults to 13.
	GridSize int
	// MaxEvaluations bounds the bridge evaluations during refinement. Defaults to 20.
	MaxEvaluations int
	// Tolerance is the mismatch angle accepted as closed. Defaults to DefaultCloseTolerance.
	Tolerance float64
	// Workers is the number of goroutines screening the grid. Values
	// below 2 screen sequentially.
	Workers int
}

// CornerSolver returns a Solver for corner bridges.
func CornerSolver() Solver {
	return Solver{Build: CornerBridge, GridSize: 13}
}

// SmoothSolver returns a Solver for smooth bridges.
func SmoothSolver() Solver {
	return Solver{Build: SmoothBridge, GridSize: 12}
}

func (s Solver) withDefaults() Solver {
	if s.GridSize < 2 {
		s.GridSize = 13
	}
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = 20
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultCloseTolerance
	}
	return s
}

// Sample is the mismatch of a bridge built at a declination. Err is set
// when the bridge could not be built, in which case Mismatch is NaN.
type Sample struct {
	Declination float64
	Mismatch    float64
	Err         error
}

// Solution is the outcome of Solver.Solve.
type Solution struct {
	// Declination is the best declination found.
	Declination float64
	// Mismatch is the residual mismatch angle of Bridge.Path.
	Mismatch float64
	// Converged is true if |Mismatch| is within the solver tolerance.
	Converged bool
	// Evaluations counts bridge evaluations of the refinement stage.
	Evaluations int
	// Bridge is the bridge built at Declination.
	Bridge Bridge
	// Screening holds the grid evaluations in increasing declination.
	Screening []Sample
}

// Mismatch builds the bridge at declination and returns the mismatch
// angle of the bridged path.
func (s Solver) Mismatch(declination float64, p Path) (float64, Bridge, error) {
	b, err := s.Build(declination, p, s.Config)
	if err != nil {
		return math.NaN(), Bridge{}, err
	}
	return MismatchAngle(b.Path), b, nil
}

// Solve finds the declination closing p.
func (s Solver) Solve(p Path) (Solution, error) {
	if s.Build == nil {
		return Solution{}, errors.New("nil bridge builder")
	}
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	s = s.withDefaults()
	grid := floats.Span(make([]float64, s.GridSize), minScreenDeclination, maxScreenDeclination)
	screening := s.screen(grid, p)

	best := -1
	for i, smp := range screening {
		if smp.Err != nil {
			continue
		}
		if best < 0 || math.Abs(smp.Mismatch) < math.Abs(screening[best].Mismatch) {
			best = i
		}
	}
	if best < 0 {
		return Solution{Screening: screening}, ErrNoFeasibleDeclination
	}
	start := rootfind.Point{X: screening[best].Declination, F: screening[best].Mismatch}
	tracer().Infof("initial guess: declination %.4g with mismatch %.4g", start.X, start.F)

	objective := func(declination float64) float64 {
		m, _, err := s.Mismatch(declination, p)
		if err != nil {
			tracer().Debugf("declination %.6g skipped: %v", declination, err)
			return math.NaN()
		}
		return m
	}
	res := rootfind.Find(objective, start, bracketFor(screening, best), rootfind.Settings{
		MaxEvaluations: s.MaxEvaluations,
		Tolerance:      s.Tolerance,
	})
	mismatch, bridge, err := s.Mismatch(res.X, p)
	if err != nil {
		// Only feasible declinations are ever reported by the root search.
		return Solution{}, fmt.Errorf("rebuilding bridge at declination %g: %w", res.X, err)
	}
	sol := Solution{
		Declination: res.X,
		Mismatch:    mismatch,
		Converged:   math.Abs(mismatch) <= s.Tolerance,
		Evaluations: res.Evaluations,
		Bridge:      bridge,
		Screening:   screening,
	}
	tracer().Infof("best declination %.6g, mismatch %.3g, converged=%t", sol.Declination, sol.Mismatch, sol.Converged)
	return sol, nil
}

// screen evaluates the mismatch at every grid declination. Evaluations are
// independent so they are spread over the solver's workers.
func (s Solver) screen(grid []float64, p Path) []Sample {
	samples := make([]Sample, len(grid))
	eval := func(i int) {
		m, _, err := s.Mismatch(grid[i], p)
		samples[i] = Sample{Declination: grid[i], Mismatch: m, Err: err}
	}
	if s.Workers < 2 {
		for i := range grid {
			eval(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < s.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					eval(i)
				}
			}()
		}
		for i := range grid {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}
	for i, smp := range samples {
		tracer().Debugf("preliminary screening, step %d: declination %.4g mismatch %.4g err=%v",
			i, smp.Declination, smp.Mismatch, smp.Err)
	}
	return samples
}

// bracketFor returns a feasible grid neighbour of best whose mismatch has
// the opposite sign, or nil.
func bracketFor(screening []Sample, best int) *rootfind.Point {
	sign := math.Signbit(screening[best].Mismatch)
	for _, i := range [2]int{best - 1, best + 1} {
		if i < 0 || i >= len(screening) || screening[i].Err != nil {
			continue
		}
		if math.Signbit(screening[i].Mismatch) != sign {
			return &rootfind.Point{X: screening[i].Declination, F: screening[i].Mismatch}
		}
	}
	return nil
}
