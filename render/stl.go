package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/trajectoid/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNormalMismatch indicates an STL triangle normal disagrees with the
// normal computed from its vertices.
var ErrNormalMismatch = errors.New("STL triangle normal does not match vertex winding")

const (
	stlHeaderSize = 80
	// stored normals are float32 and often computed by other tools.
	stlNormalTol = 5e-2
)

// stlRecord is one triangle of a binary STL file, 50 bytes little endian.
type stlRecord struct {
	Normal [3]float32
	V      [3][3]float32
	_      uint16 // attribute byte count
}

func newSTLRecord(t Triangle3) (rec stlRecord) {
	rec.Normal = f32From3(t.Normal())
	for i, v := range t.V {
		rec.V[i] = f32From3(v)
	}
	return rec
}

func (rec stlRecord) triangle() (t Triangle3) {
	for i, v := range rec.V {
		t.V[i] = r3From32(v)
	}
	return t
}

func (rec stlRecord) check() error {
	for _, f := range [4][3]float32{rec.Normal, rec.V[0], rec.V[1], rec.V[2]} {
		if !finite32(f) {
			return errors.New("NaN or infinite STL coordinate")
		}
	}
	t := rec.triangle()
	if t.Degenerate(0) {
		return errors.New("degenerate STL triangle")
	}
	n, stored := t.Normal(), r3From32(rec.Normal)
	if !d3.EqualWithin(n, stored, stlNormalTol) && !d3.EqualWithin(r3.Scale(-1, n), stored, stlNormalTol) {
		return ErrNormalMismatch
	}
	return nil
}

// sizedRenderer is a Renderer that knows how many triangles it has left,
// which lets the STL header be written before the triangles are streamed.
type sizedRenderer interface {
	Renderer
	remaining() int
}

// CreateSTL writes the triangles streamed by r to a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := writeSTL(fp, r); err != nil {
		return err
	}
	return fp.Close()
}

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	return writeSTL(w, NewMeshRenderer(model))
}

func writeSTL(w io.Writer, r Renderer) error {
	sr, ok := r.(sizedRenderer)
	if !ok {
		model, err := RenderAll(r)
		if err != nil {
			return err
		}
		sr = &meshRenderer{unwritten: triangle3Buffer{buf: model}}
	}
	count := sr.remaining()
	if count == 0 {
		return errors.New("empty triangle slice")
	}
	bw := bufio.NewWriter(w)
	var header [stlHeaderSize]byte
	bw.Write(header[:])
	if err := binary.Write(bw, binary.LittleEndian, uint32(count)); err != nil {
		return err
	}
	buf := make([]Triangle3, 256)
	written := 0
	for {
		n, err := sr.ReadTriangles(buf)
		for _, t := range buf[:n] {
			if werr := binary.Write(bw, binary.LittleEndian, newSTLRecord(t)); werr != nil {
				return werr
			}
		}
		written += n
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}
	if written != count {
		return fmt.Errorf("renderer produced %d triangles, announced %d", written, count)
	}
	return bw.Flush()
}

// ReadSTL reads the triangles of a binary STL file. ErrNormalMismatch is
// returned along with the triangles when stored normals disagree with the
// vertex winding, which is harmless for most uses.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading STL triangle count: %w", err)
	}
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	br := bufio.NewReader(r)
	model := make([]Triangle3, 0, min(int(count), 1<<16))
	var mismatch error
	for i := 0; i < int(count); i++ {
		var rec stlRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		if err := rec.check(); errors.Is(err, ErrNormalMismatch) {
			mismatch = err
		} else if err != nil {
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		model = append(model, rec.triangle())
	}
	return model, mismatch
}

func finite32(f [3]float32) bool {
	for _, x := range f {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func f32From3(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
