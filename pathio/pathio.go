// Package pathio loads planar paths from text files and raster images and
// resamples them.
package pathio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for ReadRaster
	_ "image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"github.com/npillmayer/schuko/tracing"
	"github.com/soypat/trajectoid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r2"
)

func tracer() tracing.Trace {
	return tracing.Select("trajectoid.pathio")
}

// ErrUnsorted indicates a path whose x coordinates are not strictly increasing.
var ErrUnsorted = errors.New("path x coordinates not strictly increasing")

// ReadText reads a path stored as two whitespace separated columns, x and
// y, one point per line. Blank lines and lines starting with '#' are skipped.
func ReadText(r io.Reader) (trajectoid.Path, error) {
	var p trajectoid.Path
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 2 columns, got %d", line, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p = append(p, r2.Vec{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("read %d path points from text", len(p))
	return p, nil
}

// WriteText writes p in the format read by ReadText.
func WriteText(w io.Writer, p trajectoid.Path) error {
	bw := bufio.NewWriter(w)
	for _, v := range p {
		bw.WriteString(strconv.FormatFloat(v.X, 'e', 18, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v.Y, 'e', 18, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadRaster extracts a path drawn as a dark curve on a light image. Each
// image row yields a point: rows map to x spanning [0, 2pi) and the
// darkest column of the row's red channel maps to y spanning [-pi/2, pi/2).
// The path is made relative to its first point. Only every decimate-th row
// is kept, resampling the image with nearest neighbour interpolation.
func ReadRaster(r io.Reader, decimate int) (trajectoid.Path, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	if decimate < 1 {
		decimate = 1
	}
	bounds := img.Bounds()
	width, rows := bounds.Dx(), bounds.Dy()
	if width == 0 || rows == 0 {
		return nil, errors.New("empty image")
	}
	if decimate > 1 {
		h := (rows + decimate - 1) / decimate
		img = resize.Resize(uint(width), uint(h), img, resize.NearestNeighbor)
		bounds = img.Bounds()
	}
	n := bounds.Dy()
	p := make(trajectoid.Path, n)
	for i := 0; i < n; i++ {
		y := bounds.Min.Y + i
		darkest := bounds.Min.X
		var minRed uint32 = math.MaxUint32
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			red, _, _, _ := img.At(x, y).RGBA()
			if red < minRed {
				darkest, minRed = x, red
			}
		}
		p[i] = r2.Vec{
			X: float64(i) / float64(n) * 2 * math.Pi,
			Y: float64(darkest-bounds.Min.X)/float64(width)*math.Pi - math.Pi/2,
		}
	}
	tracer().Infof("extracted %d path points from %s image with %d rows", n, format, rows)
	return p.Translate(r2.Vec{Y: -p[0].Y}), nil
}

// Upsample resamples a path with strictly increasing x so that each
// segment is split into pieces about minStep long. The y coordinate is
// interpolated piecewise linearly, or with an Akima spline if smooth is set.
func Upsample(p trajectoid.Path, minStep float64, smooth bool) (trajectoid.Path, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if minStep <= 0 {
		return nil, errors.New("minimum step must be positive")
	}
	xs := make([]float64, len(p))
	ys := make([]float64, len(p))
	for i, v := range p {
		if i > 0 && v.X <= p[i-1].X {
			return nil, fmt.Errorf("point %d: %w", i, ErrUnsorted)
		}
		xs[i], ys[i] = v.X, v.Y
	}
	var predictor interp.FittablePredictor = &interp.PiecewiseLinear{}
	if smooth && len(p) > 2 {
		predictor = &interp.AkimaSpline{}
	}
	if err := predictor.Fit(xs, ys); err != nil {
		return nil, err
	}
	var out trajectoid.Path
	for i := 0; i+1 < len(p); i++ {
		pieces := int(math.Max(1, math.Round(r2.Norm(r2.Sub(p[i+1], p[i]))/minStep)))
		seg := floats.Span(make([]float64, pieces+1), xs[i], xs[i+1])
		for _, x := range seg[:pieces] {
			out = append(out, r2.Vec{X: x, Y: predictor.Predict(x)})
		}
	}
	out = append(out, p[len(p)-1])
	tracer().Debugf("upsampled path from %d to %d points", len(p), len(out))
	return out, nil
}
