package trajectoid

import "math"

// DefaultCloseTolerance is the mismatch angle in radians below which a path
// is considered closed.
const DefaultCloseTolerance = 1e-6

// MismatchAngle returns the signed angle of the net rotation accumulated by
// rolling along the whole path. It is zero when the sphere returns to its
// starting orientation, so the path can be rolled periodically.
// Reversing the path negates the angle.
func MismatchAngle(p Path) float64 {
	return RotationAt(len(p)-1, p).Angle()
}

// Closes reports whether rolling along p leaves the sphere in its starting
// orientation within tol radians.
func Closes(p Path, tol float64) bool {
	return math.Abs(MismatchAngle(p)) <= tol
}

// MismatchMap returns the mismatch angle of p scaled by every combination
// of x scale kxs[i] and y scale kys[j], indexed as grid[i][j].
func MismatchMap(p Path, kxs, kys []float64) (grid [][]float64) {
	grid = make([][]float64, len(kxs))
	for i, kx := range kxs {
		grid[i] = make([]float64, len(kys))
		for j, ky := range kys {
			grid[i][j] = MismatchAngle(p.Scale(kx, ky))
		}
		tracer().Debugf("mismatch map row %d/%d done", i+1, len(kxs))
	}
	return grid
}

// BestScale returns the scale factors of the smallest absolute mismatch in
// a grid returned by MismatchMap. NaN entries are ignored.
func BestScale(kxs, kys []float64, grid [][]float64) (kx, ky, angle float64) {
	angle = math.NaN()
	for i := range grid {
		for j, a := range grid[i] {
			if math.IsNaN(a) {
				continue
			}
			if math.IsNaN(angle) || math.Abs(a) < math.Abs(angle) {
				kx, ky, angle = kxs[i], kys[j], a
			}
		}
	}
	tracer().Infof("smallest mismatch %.4g at kx=%.4g ky=%.4g", angle, kx, ky)
	return kx, ky, angle
}
