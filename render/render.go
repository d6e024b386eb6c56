// Package render builds and exports the meshes of a trajectoid: the boxes
// cut out of a sphere to carve the track of a path, and tubes following a
// trace for previews.
package render

import "io"

// Renderer streams the triangles of a mesh. ReadTriangles fills t and
// returns the number of triangles written. It returns io.EOF once the
// mesh is exhausted.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

type meshRenderer struct {
	unwritten triangle3Buffer
}

// NewMeshRenderer returns a Renderer streaming the triangles of model.
func NewMeshRenderer(model []Triangle3) Renderer {
	return &meshRenderer{unwritten: triangle3Buffer{buf: model}}
}

func (m *meshRenderer) remaining() int { return m.unwritten.Len() }

func (m *meshRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	if m.unwritten.Len() == 0 {
		return 0, io.EOF
	}
	return m.unwritten.Read(dst), nil
}
