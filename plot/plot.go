// Package plot draws planar paths, declination screenings and mismatch maps
// to image files. The format follows the file extension.
package plot

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/trajectoid"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// Path plots paths on equal axes. Each path is drawn with its own line style.
func Path(file string, paths ...trajectoid.Path) error {
	if len(paths) == 0 {
		return errors.New("no paths to plot")
	}
	p := gplot.New()
	p.Title.Text = "Path"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	var lines []interface{}
	for i, path := range paths {
		if len(path) == 0 {
			return fmt.Errorf("path %d is empty", i)
		}
		lines = append(lines, fmt.Sprintf("path %d", i), xys(path))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	equalAxes(p)
	return p.Save(width, width, file)
}

// Screening plots the mismatch angle at each screened declination along
// with the refined solution.
func Screening(sol trajectoid.Solution, file string) error {
	p := gplot.New()
	p.Title.Text = "Declination screening"
	p.X.Label.Text = "declination (rad)"
	p.Y.Label.Text = "mismatch angle (rad)"
	p.Add(plotter.NewGrid())
	var pts plotter.XYs
	for _, s := range sol.Screening {
		if s.Err != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Declination, Y: s.Mismatch})
	}
	if len(pts) == 0 {
		return errors.New("no feasible screening samples")
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	best, err := plotter.NewScatter(plotter.XYs{{X: sol.Declination, Y: sol.Mismatch}})
	if err != nil {
		return err
	}
	best.Color = plotutil.Color(1)
	best.Radius = vg.Points(4)
	p.Add(line, points, best)
	p.Legend.Add("screening", line, points)
	p.Legend.Add("solution", best)
	return p.Save(width, height, file)
}

// MismatchMap draws grid[i][j], the mismatch angle at scales kxs[i] and
// kys[j] as returned by trajectoid.MismatchMap, as a heat map.
func MismatchMap(kxs, kys []float64, grid [][]float64, file string) error {
	g, err := newScaleGrid(kxs, kys, grid)
	if err != nil {
		return err
	}
	p := gplot.New()
	p.Title.Text = "Mismatch angle"
	p.X.Label.Text = "kx"
	p.Y.Label.Text = "ky"
	h := plotter.NewHeatMap(g, palette.Heat(16, 1))
	h.NaN = plotutil.Color(2)
	p.Add(h)
	return p.Save(width, height, file)
}

type scaleGrid struct {
	kxs, kys []float64
	z        [][]float64
}

var _ plotter.GridXYZ = scaleGrid{}

func newScaleGrid(kxs, kys []float64, grid [][]float64) (scaleGrid, error) {
	if len(kxs) == 0 || len(kys) == 0 {
		return scaleGrid{}, errors.New("empty scale grid")
	}
	if len(grid) != len(kxs) {
		return scaleGrid{}, fmt.Errorf("grid has %d rows, want %d", len(grid), len(kxs))
	}
	finite := 0
	for i := range grid {
		if len(grid[i]) != len(kys) {
			return scaleGrid{}, fmt.Errorf("grid row %d has %d columns, want %d", i, len(grid[i]), len(kys))
		}
		for _, v := range grid[i] {
			if !math.IsNaN(v) {
				finite++
			}
		}
	}
	if finite == 0 {
		return scaleGrid{}, errors.New("grid has no values")
	}
	return scaleGrid{kxs: kxs, kys: kys, z: grid}, nil
}

func (g scaleGrid) Dims() (c, r int)   { return len(g.kxs), len(g.kys) }
func (g scaleGrid) Z(c, r int) float64 { return g.z[c][r] }
func (g scaleGrid) X(c int) float64    { return g.kxs[c] }
func (g scaleGrid) Y(r int) float64    { return g.kys[r] }

func xys(p trajectoid.Path) plotter.XYs {
	pts := make(plotter.XYs, len(p))
	for i, v := range p {
		pts[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	return pts
}

// equalAxes widens the narrower axis so both have the same range.
func equalAxes(p *gplot.Plot) {
	dx := p.X.Max - p.X.Min
	dy := p.Y.Max - p.Y.Min
	switch {
	case dx > dy:
		mid := (p.Y.Max + p.Y.Min) / 2
		p.Y.Min, p.Y.Max = mid-dx/2, mid+dx/2
	case dy > dx:
		mid := (p.X.Max + p.X.Min) / 2
		p.X.Min, p.X.Max = mid-dy/2, mid+dy/2
	}
}
