package polyreg

// Pos identifies the directed edge E of face F. It is only valid until the
// next structural edit of the mesh.
type Pos struct {
	F int
	E int
}

func (p Pos) V0(m *Mesh) int {
	return m.Faces[p.F].V0(p.E)
}

func (p Pos) V1(m *Mesh) int {
	return m.Faces[p.F].V1(p.E)
}

// IsBorder reports whether the edge has no opposite face. Topology must be up
// to date.
func (p Pos) IsBorder(m *Mesh) bool {
	return m.Faces[p.F].IsBorderEdge(p.E)
}

// FlipF returns the same edge seen from the adjacent face, or false on the
// boundary.
func (p Pos) FlipF(m *Mesh) (Pos, bool) {
	f := &m.Faces[p.F]
	if f.IsBorderEdge(p.E) {
		return p, false
	}
	return Pos{F: f.FF[p.E], E: f.FFi[p.E]}, true
}
