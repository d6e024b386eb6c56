package pathio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/soypat/trajectoid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 0.1, Y: -2.5e-3}, {X: math.Pi, Y: 1.0 / 3}}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, p))
	got, err := ReadText(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestReadText(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	input := "# x y\n0 0\n\n  1.5\t-0.25  \n2 1e-1\n"
	got, err := ReadText(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, trajectoid.Path{{X: 0, Y: 0}, {X: 1.5, Y: -0.25}, {X: 2, Y: 0.1}}, got)

	_, err = ReadText(strings.NewReader("0 0\n1 2 3\n"))
	assert.ErrorContains(t, err, "line 2")
	_, err = ReadText(strings.NewReader("0 zero\n"))
	assert.Error(t, err)
}

// stripe draws a black pixel per row at column col(row) on a white image.
func stripe(width, height int, col func(row int) int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
		img.Set(col(y), y, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestReadRaster(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	const width, height = 40, 20
	data := stripe(width, height, func(row int) int { return 10 + row })
	p, err := ReadRaster(bytes.NewReader(data), 1)
	require.NoError(t, err)
	require.Len(t, p, height)
	assert.Equal(t, 0.0, p[0].X)
	assert.Equal(t, 0.0, p[0].Y)
	for i := 1; i < height; i++ {
		assert.InDelta(t, float64(i)/height*2*math.Pi, p[i].X, 1e-12)
		assert.InDelta(t, float64(i)/width*math.Pi, p[i].Y, 1e-12)
	}

	decimated, err := ReadRaster(bytes.NewReader(data), 5)
	require.NoError(t, err)
	assert.Len(t, decimated, height/5)

	_, err = ReadRaster(strings.NewReader("not an image"), 1)
	assert.Error(t, err)
}

func TestUpsample(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 3, Y: 0.5}}
	for _, smooth := range []bool{false, true} {
		up, err := Upsample(p, 0.1, smooth)
		require.NoError(t, err)
		require.NoError(t, up.Validate())
		assert.Greater(t, len(up), 30)
		assert.Equal(t, p[0], up[0])
		assert.Equal(t, p[len(p)-1], up[len(up)-1])
		for i := 1; i < len(up); i++ {
			assert.Greater(t, up[i].X, up[i-1].X)
		}
	}
	linear, err := Upsample(trajectoid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}}, 0.25, false)
	require.NoError(t, err)
	// Segment of length sqrt(2) splits into 6 pieces.
	require.Len(t, linear, 7)
	for _, v := range linear {
		assert.InDelta(t, v.X, v.Y, 1e-12)
	}

	_, err = Upsample(trajectoid.Path{{X: 1, Y: 0}, {X: 0, Y: 1}}, 0.1, false)
	assert.ErrorIs(t, err, ErrUnsorted)
	_, err = Upsample(p, 0, false)
	assert.Error(t, err)
}
