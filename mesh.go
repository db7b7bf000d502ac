package polyreg

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// State tracks whether the adjacency and border flags of a Mesh can be
// trusted by border dependent passes.
type State int

const (
	Idle State = iota
	TopologyStale
	Relaxing
	Reprojecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TopologyStale:
		return "topology-stale"
	case Relaxing:
		return "relaxing"
	case Reprojecting:
		return "reprojecting"
	}
	return "unknown"
}

// Mesh is a polygonal mesh stored as two arenas. Faces reference vertices by
// index; deletion only sets a tombstone until Compact runs.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    []Face
	state    State
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, state: TopologyStale}
}

func (m *Mesh) State() State {
	return m.state
}

func (m *Mesh) setState(s State) {
	m.state = s
}

// enter switches to state s and returns the function restoring the previous
// state. A structural edit made in between, or one pending before, leaves the
// mesh TopologyStale.
func (m *Mesh) enter(s State) (leave func()) {
	prev := m.state
	m.state = s
	return func() {
		if m.state != s {
			return
		}
		if prev == TopologyStale {
			m.state = TopologyStale
		} else {
			m.state = Idle
		}
	}
}

// invalidate records a structural edit.
func (m *Mesh) invalidate() {
	m.state = TopologyStale
}

func (m *Mesh) AddVertex(p r3.Vec) int {
	m.Vertices = append(m.Vertices, Vertex{P: p})
	m.invalidate()
	return len(m.Vertices) - 1
}

func (m *Mesh) AddFace(verts ...int) int {
	for _, vi := range verts {
		if vi < 0 || vi >= len(m.Vertices) {
			violation("face references a vertex outside the vertex arena")
		}
	}
	vs := make([]int, len(verts))
	copy(vs, verts)
	m.Faces = append(m.Faces, Face{Verts: vs})
	m.invalidate()
	return len(m.Faces) - 1
}

// VN and FN count live vertices and faces.
func (m *Mesh) VN() (n int) {
	for i := range m.Vertices {
		if m.Vertices[i].IsLive() {
			n++
		}
	}
	return
}

func (m *Mesh) FN() (n int) {
	for i := range m.Faces {
		if !m.Faces[i].Deleted {
			n++
		}
	}
	return
}

func (m *Mesh) EachVertex(cb func(vi int, v *Vertex)) {
	for i := range m.Vertices {
		if v := &m.Vertices[i]; v.IsLive() {
			cb(i, v)
		}
	}
}

func (m *Mesh) EachFace(cb func(fi int, f *Face)) {
	for i := range m.Faces {
		if m.Faces[i].Deleted {
			continue
		}
		cb(i, &m.Faces[i])
	}
}

// FacePositions returns the positions of the vertices of face fi in order.
func (m *Mesh) FacePositions(fi int) []r3.Vec {
	f := &m.Faces[fi]
	pts := make([]r3.Vec, len(f.Verts))
	for j, vi := range f.Verts {
		pts[j] = m.Vertices[vi].P
	}
	return pts
}

func (m *Mesh) DeleteFace(fi int) {
	invariant("DeleteFace of Mesh called on a live face", !m.Faces[fi].Deleted)
	m.Faces[fi].Deleted = true
	m.invalidate()
}

func (m *Mesh) DeleteVertex(vi int) {
	invariant("DeleteVertex of Mesh called on a live vertex", !m.Vertices[vi].Deleted)
	m.Vertices[vi].Deleted = true
	m.invalidate()
}

func (m *Mesh) ClearVertexSelection() {
	for i := range m.Vertices {
		m.Vertices[i].Selected = false
	}
}

func (m *Mesh) ClearFaceSelection() {
	for i := range m.Faces {
		m.Faces[i].Selected = false
	}
}

// RemoveUnreferencedVertices marks as deleted every live vertex that no live
// face references, and returns how many were removed.
func (m *Mesh) RemoveUnreferencedVertices() (removed int) {
	referenced := make([]bool, len(m.Vertices))
	m.EachFace(func(_ int, f *Face) {
		for _, vi := range f.Verts {
			referenced[vi] = true
		}
	})
	for i := range m.Vertices {
		if !m.Vertices[i].IsLive() || referenced[i] {
			continue
		}
		m.Vertices[i].Deleted = true
		removed++
	}
	if removed > 0 {
		m.invalidate()
	}
	return
}

// Compact drops every tombstoned vertex and face and rewrites face vertex
// indices to the compacted vertex arena. Vertex and face indices are not
// stable across the call.
func (m *Mesh) Compact() {
	remap := make([]int, len(m.Vertices))
	vertices := make([]Vertex, 0, len(m.Vertices))
	for i := range m.Vertices {
		if !m.Vertices[i].IsLive() {
			remap[i] = -1
			continue
		}
		remap[i] = len(vertices)
		vertices = append(vertices, m.Vertices[i])
	}

	faces := make([]Face, 0, len(m.Faces))
	for i := range m.Faces {
		f := m.Faces[i]
		if f.Deleted {
			continue
		}
		verts := make([]int, len(f.Verts))
		for j, vi := range f.Verts {
			invariant("live face does not reference a deleted vertex", remap[vi] >= 0)
			verts[j] = remap[vi]
		}
		f.setVerts(verts)
		faces = append(faces, f)
	}

	m.Vertices = vertices
	m.Faces = faces
	m.invalidate()
}

// VertexAttribute is a scratch per-vertex buffer owned by the caller that
// allocated it. It is keyed by vertex index and must not outlive the
// structural edits of the operation that created it.
type VertexAttribute[T any] struct {
	values []T
}

func NewVertexAttribute[T any](m *Mesh) *VertexAttribute[T] {
	return &VertexAttribute[T]{values: make([]T, len(m.Vertices))}
}

func (a *VertexAttribute[T]) At(vi int) T {
	return a.values[vi]
}

func (a *VertexAttribute[T]) Set(vi int, value T) {
	a.values[vi] = value
}

func (a *VertexAttribute[T]) Update(vi int, fn func(T) T) {
	a.values[vi] = fn(a.values[vi])
}

// Release drops the buffer; further access panics.
func (a *VertexAttribute[T]) Release() {
	a.values = nil
}

// BoundingBox of the live vertices.
func (m *Mesh) BoundingBox() (bb r3.Box) {
	first := true
	m.EachVertex(func(_ int, v *Vertex) {
		if first {
			bb = r3.Box{Min: v.P, Max: v.P}
			first = false
			return
		}
		bb = extendBox(bb, v.P)
	})
	return
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Name: m.Name, state: m.state}
	c.Vertices = make([]Vertex, len(m.Vertices))
	copy(c.Vertices, m.Vertices)
	c.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		f.Verts = append([]int(nil), f.Verts...)
		if f.FF != nil {
			f.FF = append([]int(nil), f.FF...)
			f.FFi = append([]int(nil), f.FFi...)
		}
		c.Faces[i] = f
	}
	return c
}
