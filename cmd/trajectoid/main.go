// trajectoid computes the track of a trajectoid: a sphere carved so that it
// rolls periodically along a given planar path.
//
// Usage:
//
//	trajectoid -in path.txt [-kx 1 -ky 1] [-bridge corner] [-out result] [-preview]
//	trajectoid -raster drawing.png -decimate 5 -sweep 0.5:1.5:21
//
// The path is read, optionally leveled and upsampled, scaled and, when a
// bridge is requested, closed by solving for the bridge declination. The
// resulting path, its plots and the mesh of cutting boxes are written to
// the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/soypat/trajectoid"
	"github.com/soypat/trajectoid/pathio"
	"github.com/soypat/trajectoid/plot"
	"github.com/soypat/trajectoid/render"
	"gonum.org/v1/gonum/floats"
)

var (
	inFile    = flag.String("in", "", "text file with two columns x y of the path")
	rasterIn  = flag.String("raster", "", "image with the path drawn as a dark curve, one point per row")
	decimate  = flag.Int("decimate", 5, "keep every n-th image row of -raster")
	level     = flag.Bool("level", false, "make the path start at the origin and end on the x axis")
	upsample  = flag.Float64("upsample", 0, "resample the path with at most this step, 0 disables")
	kx        = flag.Float64("kx", 1, "x scale factor")
	ky        = flag.Float64("ky", 1, "y scale factor")
	sweep     = flag.String("sweep", "", "scale sweep as min:max:n applied to both kx and ky")
	bridge    = flag.String("bridge", "none", "bridge closing the path: none, corner or smooth")
	npoints   = flag.Int("npoints", 30, "points per bridge section")
	minRadius = flag.Float64("minradius", 0.2, "curvature radius of the smooth bridge turns")
	workers   = flag.Int("workers", 4, "goroutines screening bridge declinations")
	outDir    = flag.String("out", "trajectoid_out", "output directory")
	cutSize   = flag.Float64("cutsize", 10, "cutting box side in sphere radii")
	preview   = flag.Bool("preview", false, "render a preview image of the trace on the sphere")
	verbose   = flag.Bool("v", false, "debug tracing")
)

func main() {
	flag.Parse()
	traceLevel := tracing.LevelInfo
	if *verbose {
		traceLevel = tracing.LevelDebug
	}
	installTracing(traceLevel, os.Stderr)
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	p, err := loadPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0777); err != nil {
		return err
	}
	if *sweep != "" {
		if err := sweepScales(p); err != nil {
			return err
		}
	}
	p = p.Scale(*kx, *ky)
	log.Printf("path of %d points, length %.4g, mismatch angle %.4g rad", len(p), p.Length(), trajectoid.MismatchAngle(p))

	if *bridge != "none" {
		sol, err := solveBridge(p)
		if err != nil {
			return err
		}
		if err := plot.Screening(sol, filepath.Join(*outDir, "screening.png")); err != nil {
			return err
		}
		if err := plot.Path(filepath.Join(*outDir, "bridged.png"), p.Relative(), sol.Bridge.Path); err != nil {
			return err
		}
		p = sol.Bridge.Path
	} else if err := plot.Path(filepath.Join(*outDir, "path.png"), p); err != nil {
		return err
	}

	fp, err := os.Create(filepath.Join(*outDir, "path.txt"))
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := pathio.WriteText(fp, p); err != nil {
		return err
	}
	cutters := render.NewCutterRenderer(p, render.CutterConfig{CutSize: *cutSize})
	if err := render.CreateSTL(filepath.Join(*outDir, "cutters.stl"), cutters); err != nil {
		return err
	}
	if *preview {
		trace := trajectoid.TraceOnSphere(p, 1, 1).Scale(1.03)
		tube := render.TraceTube(trace, 0.03, 8)
		if err := render.PreviewPNG(filepath.Join(*outDir, "preview.png"), tube, render.DefaultView); err != nil {
			return err
		}
	}
	log.Printf("results written to %s", *outDir)
	return nil
}

func loadPath() (trajectoid.Path, error) {
	var (
		p   trajectoid.Path
		err error
	)
	switch {
	case *inFile != "" && *rasterIn != "":
		return nil, fmt.Errorf("-in and -raster are mutually exclusive")
	case *inFile != "":
		fp, err := os.Open(*inFile)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		p, err = pathio.ReadText(fp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", *inFile, err)
		}
		p = p.SortedByX()
	case *rasterIn != "":
		fp, err := os.Open(*rasterIn)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		p, err = pathio.ReadRaster(fp, *decimate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", *rasterIn, err)
		}
	default:
		return nil, fmt.Errorf("no input path, use -in or -raster")
	}
	if *upsample > 0 {
		p, err = pathio.Upsample(p, *upsample, true)
		if err != nil {
			return nil, err
		}
	}
	if *level {
		p = p.Leveled()
	}
	return p, p.Validate()
}

func sweepScales(p trajectoid.Path) error {
	parts := strings.Split(*sweep, ":")
	if len(parts) != 3 {
		return fmt.Errorf("bad -sweep %q, want min:max:n", *sweep)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || n < 2 || hi <= lo {
		return fmt.Errorf("bad -sweep %q, want min:max:n with min < max and n > 1", *sweep)
	}
	factors := floats.Span(make([]float64, n), lo, hi)
	kxs := make([]float64, n)
	kys := make([]float64, n)
	floats.ScaleTo(kxs, *kx, factors)
	floats.ScaleTo(kys, *ky, factors)
	grid := trajectoid.MismatchMap(p, kxs, kys)
	bestX, bestY, angle := trajectoid.BestScale(kxs, kys, grid)
	log.Printf("sweep: smallest mismatch %.4g rad at kx=%.4g ky=%.4g", angle, bestX, bestY)
	return plot.MismatchMap(kxs, kys, grid, filepath.Join(*outDir, "mismatch_map.png"))
}

func solveBridge(p trajectoid.Path) (trajectoid.Solution, error) {
	var solver trajectoid.Solver
	switch *bridge {
	case "corner":
		solver = trajectoid.CornerSolver()
	case "smooth":
		solver = trajectoid.SmoothSolver()
	default:
		return trajectoid.Solution{}, fmt.Errorf("unknown bridge %q, want none, corner or smooth", *bridge)
	}
	solver.Config = trajectoid.BridgeConfig{NPoints: *npoints, MinCurvatureRadius: *minRadius}
	solver.Workers = *workers
	sol, err := solver.Solve(p)
	if err != nil {
		return sol, err
	}
	log.Printf("%s bridge: declination %.6g rad, mismatch %.3g rad after %d evaluations", *bridge,
		sol.Declination, sol.Mismatch, sol.Evaluations)
	if !sol.Converged {
		log.Printf("warning: bridge did not close the path within tolerance")
	}
	return sol, nil
}
