package trajectoid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/soypat/trajectoid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineBuilder builds a single straight segment whose mismatch is
// root-declination, which makes the solution known beforehand.
func lineBuilder(root float64) trajectoid.BridgeBuilder {
	return func(declination float64, p trajectoid.Path, cfg trajectoid.BridgeConfig) (trajectoid.Bridge, error) {
		if declination < -2 {
			return trajectoid.Bridge{}, trajectoid.ErrInfeasible
		}
		return trajectoid.Bridge{
			Path:    trajectoid.Path{{}, {X: declination - root}},
			Forward: declination,
		}, nil
	}
}

func TestSolverKnownRoot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	const root = 0.3
	p := straight(3, 1)
	for _, workers := range []int{0, 4} {
		solver := trajectoid.Solver{Build: lineBuilder(root), GridSize: 13, Workers: workers}
		sol, err := solver.Solve(p)
		require.NoError(t, err)
		assert.True(t, sol.Converged)
		assert.InDelta(t, root, sol.Declination, 1e-6)
		assert.LessOrEqual(t, sol.Evaluations, 20)
		require.Len(t, sol.Screening, 13)
		assert.InDelta(t, -3*math.Pi/4, sol.Screening[0].Declination, tol)
		assert.InDelta(t, 3*math.Pi/4, sol.Screening[12].Declination, tol)
		// Grid points below -2 cannot be bridged.
		assert.ErrorIs(t, sol.Screening[0].Err, trajectoid.ErrInfeasible)
		assert.True(t, math.IsNaN(sol.Screening[0].Mismatch))
		for _, smp := range sol.Screening[1:] {
			require.NoError(t, smp.Err)
			assert.InDelta(t, root-smp.Declination, smp.Mismatch, tol)
		}
	}
}

func TestSolverNoFeasibleDeclination(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	failing := func(float64, trajectoid.Path, trajectoid.BridgeConfig) (trajectoid.Bridge, error) {
		return trajectoid.Bridge{}, trajectoid.ErrInfeasible
	}
	sol, err := trajectoid.Solver{Build: failing}.Solve(straight(3, 1))
	assert.ErrorIs(t, err, trajectoid.ErrNoFeasibleDeclination)
	assert.Len(t, sol.Screening, 13)

	_, err = trajectoid.Solver{}.Solve(straight(3, 1))
	assert.Error(t, err)
	_, err = trajectoid.CornerSolver().Solve(trajectoid.Path{{}})
	assert.True(t, errors.Is(err, trajectoid.ErrShortPath))
}

func TestCornerSolver(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := wavy(16, 1.5)
	solver := trajectoid.CornerSolver()
	solver.Workers = 3
	sol, err := solver.Solve(p)
	require.NoError(t, err)
	require.Len(t, sol.Screening, 13)
	assert.Equal(t, trajectoid.MismatchAngle(sol.Bridge.Path), sol.Mismatch)
	// The bridged path closes: rolling along it returns the sphere to its
	// starting orientation.
	assert.True(t, sol.Converged)
	assert.InDelta(t, 0, trajectoid.MismatchAngle(sol.Bridge.Path), trajectoid.DefaultCloseTolerance)
	assert.True(t, trajectoid.Closes(sol.Bridge.Path, trajectoid.DefaultCloseTolerance))
	assert.LessOrEqual(t, sol.Evaluations, 20)

	m, b, err := solver.Mismatch(sol.Declination, p)
	require.NoError(t, err)
	assert.Equal(t, sol.Mismatch, m)
	assert.Equal(t, len(sol.Bridge.Path), len(b.Path))

	// The refined declination is no worse than the best grid point.
	best := math.Inf(1)
	for _, smp := range sol.Screening {
		if smp.Err == nil {
			best = math.Min(best, math.Abs(smp.Mismatch))
		}
	}
	assert.LessOrEqual(t, math.Abs(sol.Mismatch), best)
}

func TestSmoothSolver(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := wavy(16, 1.5)
	solver := trajectoid.SmoothSolver()
	solver.Workers = 4
	sol, err := solver.Solve(p)
	require.NoError(t, err)
	require.Len(t, sol.Screening, 12)
	feasible := 0
	for _, smp := range sol.Screening {
		if smp.Err != nil {
			assert.True(t, errors.Is(smp.Err, trajectoid.ErrInfeasible) || errors.Is(smp.Err, trajectoid.ErrDegenerateBridge),
				"declination %g: unexpected error %v", smp.Declination, smp.Err)
			assert.True(t, math.IsNaN(smp.Mismatch))
			continue
		}
		feasible++
		assert.False(t, math.IsNaN(smp.Mismatch))
	}
	assert.NotZero(t, feasible)
	assert.Less(t, feasible, len(sol.Screening), "some declinations cannot be bridged smoothly")

	// The reported residual is the one of the bridge actually returned.
	assert.Equal(t, trajectoid.MismatchAngle(sol.Bridge.Path), sol.Mismatch)
	assert.Equal(t, math.Abs(sol.Mismatch) <= trajectoid.DefaultCloseTolerance, sol.Converged)
	m, b, err := solver.Mismatch(sol.Declination, p)
	require.NoError(t, err)
	assert.Equal(t, sol.Mismatch, m)
	assert.Equal(t, sol.Bridge.Path, b.Path)
}

func TestSolverScreeningDeterministic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 0.4, Y: 0.1}, {X: 0.8, Y: -0.1}, {X: 1.2, Y: 0.2}, {X: 1.6, Y: 0}}
	sequential := trajectoid.CornerSolver()
	parallel := trajectoid.CornerSolver()
	parallel.Workers = 8
	a, errA := sequential.Solve(p)
	b, errB := parallel.Solve(p)
	require.Equal(t, errA, errB)
	require.Len(t, b.Screening, len(a.Screening))
	for i := range a.Screening {
		sa, sb := a.Screening[i], b.Screening[i]
		assert.Equal(t, sa.Declination, sb.Declination)
		if sa.Err == nil {
			assert.Equal(t, sa.Mismatch, sb.Mismatch)
		}
	}
	assert.Equal(t, a.Declination, b.Declination)
}
