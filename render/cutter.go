package render

import (
	"io"

	"github.com/soypat/trajectoid"
	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CutterConfig sizes the cutting boxes. Zero fields take defaults.
type CutterConfig struct {
	// CoreRadius is the radius of the sphere being carved. Path lengths are
	// measured in units of CoreRadius. Defaults to 1.
	CoreRadius float64
	// CutSize is the side of each box relative to CoreRadius. Defaults to 10.
	CutSize float64
}

func (c CutterConfig) withDefaults() CutterConfig {
	if c.CoreRadius <= 0 {
		c.CoreRadius = 1
	}
	if c.CutSize <= 0 {
		c.CutSize = 10
	}
	return c
}

// Box is a cube placed by a Transform acting on the unit cube centered at the origin.
type Box struct {
	T d3.Transform
}

// unit cube corners, bit 0 of the index selects X, bit 1 Y and bit 2 Z.
var cubeCorners = func() (c [8]r3.Vec) {
	for i := range c {
		c[i] = r3.Vec{
			X: float64(i&1) - 0.5,
			Y: float64(i>>1&1) - 0.5,
			Z: float64(i>>2&1) - 0.5,
		}
	}
	return c
}()

// cubeFaces lists corner indices of the cube's triangles, counterclockwise
// seen from outside.
var cubeFaces = [12][3]int{
	{0, 2, 3}, {0, 3, 1}, // -Z
	{4, 5, 7}, {4, 7, 6}, // +Z
	{0, 1, 5}, {0, 5, 4}, // -Y
	{2, 6, 7}, {2, 7, 3}, // +Y
	{0, 4, 6}, {0, 6, 2}, // -X
	{1, 3, 7}, {1, 7, 5}, // +X
}

// Center returns the center of the box.
func (b Box) Center() r3.Vec { return b.T.Transform(r3.Vec{}) }

// Vertices returns the eight corners of the box.
func (b Box) Vertices() (v [8]r3.Vec) {
	for i, c := range cubeCorners {
		v[i] = b.T.Transform(c)
	}
	return v
}

// Triangles returns the box surface with normals pointing outwards.
func (b Box) Triangles() (t [12]Triangle3) {
	v := b.Vertices()
	for i, f := range cubeFaces {
		t[i] = Triangle3{V: [3]r3.Vec{v[f[0]], v[f[1]], v[f[2]]}}
	}
	return t
}

// CutterBoxes returns one box per point of p. Each box sits right under the
// sphere resting on the plane, its top face centered on the contact point,
// and is carried along as the sphere rolls back from p[i] to p[0].
// Subtracting all boxes from the sphere carves the track of p.
func CutterBoxes(p trajectoid.Path, cfg CutterConfig) []Box {
	cfg = cfg.withDefaults()
	side := cfg.CutSize * cfg.CoreRadius
	base := d3.ComposeTransform(r3.Vec{}, d3.Elem(side), r3.Rotation{Real: 1}).
		Translate(r3.Vec{Z: -cfg.CoreRadius - side/2})
	rots := trajectoid.Rotations(p)
	boxes := make([]Box, len(rots))
	for i, r := range rots {
		boxes[i] = Box{T: d3.RotationTransform(r.Quat()).Mul(base)}
	}
	return boxes
}

type cutterRenderer struct {
	boxes     []Box
	unwritten triangle3Buffer
}

// NewCutterRenderer returns a Renderer streaming the triangles of the
// cutter boxes of p, generating them as they are read.
func NewCutterRenderer(p trajectoid.Path, cfg CutterConfig) Renderer {
	return &cutterRenderer{boxes: CutterBoxes(p, cfg)}
}

func (cr *cutterRenderer) remaining() int { return 12*len(cr.boxes) + cr.unwritten.Len() }

// ReadTriangles writes the triangles of the next boxes into dst.
func (cr *cutterRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	n += cr.unwritten.Read(dst)
	for n < len(dst) && len(cr.boxes) > 0 {
		tris := cr.boxes[0].Triangles()
		cr.boxes = cr.boxes[1:]
		nt := copy(dst[n:], tris[:])
		cr.unwritten.Write(tris[nt:])
		n += nt
	}
	if len(cr.boxes) == 0 && cr.unwritten.Len() == 0 {
		return n, io.EOF
	}
	return n, nil
}
