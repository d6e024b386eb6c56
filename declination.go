package trajectoid

import (
	"math"

	"github.com/soypat/trajectoid/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultMaxAngleFromVertical is the default largest angle a bridge may
// start at with respect to the vertical reference direction, which is the
// direction of travel along x.
var DefaultMaxAngleFromVertical = DtoR(80)

// FilterForwardDeclination limits a declination applied to the tangent at
// the end of p so the deflected direction makes at most maxFromVertical
// with the +x direction. An exceeding declination is replaced by the one
// placing the direction exactly at maxFromVertical, on the same side.
func FilterForwardDeclination(declination float64, p Path, maxFromVertical float64) float64 {
	n := len(p)
	tangent := r2.Sub(p[n-1], p[n-2])
	return filterDeclination(declination, tangent, r2.Vec{X: 1}, maxFromVertical)
}

// FilterBackwardDeclination is FilterForwardDeclination for the backward
// tangent at the start of p, measured against the -x direction.
func FilterBackwardDeclination(declination float64, p Path, maxFromVertical float64) float64 {
	tangent := r2.Sub(p[0], p[1])
	return filterDeclination(declination, tangent, r2.Vec{X: -1}, maxFromVertical)
}

func filterDeclination(declination float64, tangent, vertical r2.Vec, maxFromVertical float64) float64 {
	tangentFromVertical := d2.SignedAngle(vertical, tangent)
	candidate := d2.Rotate(tangent, declination)
	fromVertical := d2.SignedAngle(vertical, candidate)
	if math.Abs(fromVertical) >= maxFromVertical {
		return maxFromVertical*Sign(fromVertical) - tangentFromVertical
	}
	return declination
}
