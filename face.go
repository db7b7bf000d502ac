package polyreg

import "gonum.org/v1/gonum/spatial/r3"

// Face is a polygon of arbitrary arity. It holds indices into the vertex
// arena of its Mesh, never the vertices themselves.
type Face struct {
	Verts []int

	// FF[j] is the face across edge j and FFi[j] the slot of that edge in it,
	// or -1 when edge j lies on the boundary. Both are nil until topology has
	// been computed for the current vertex lists.
	FF  []int
	FFi []int

	Q        float64
	N        r3.Vec
	Selected bool
	Deleted  bool
}

// VN returns the arity of the face.
func (f *Face) VN() int {
	return len(f.Verts)
}

// V returns the vertex index at slot j, wrapping around the face.
func (f *Face) V(j int) int {
	n := len(f.Verts)
	return f.Verts[((j%n)+n)%n]
}

// V0 and V1 are the endpoints of edge j.
func (f *Face) V0(j int) int { return f.V(j) }
func (f *Face) V1(j int) int { return f.V(j + 1) }

// IsBorderEdge reports whether edge j has no face on its other side.
func (f *Face) IsBorderEdge(j int) bool {
	invariant("topology is up to date for IsBorderEdge", len(f.FF) == len(f.Verts))
	return f.FF[j] < 0
}

func (f *Face) ReferencesVertex(vi int) bool {
	return intInSlice(vi, f.Verts)
}

// setVerts replaces the vertex list, dropping adjacency that no longer
// matches it.
func (f *Face) setVerts(verts []int) {
	f.Verts = verts
	f.FF = nil
	f.FFi = nil
}

// hasConsecutiveDuplicates reports whether two cyclically adjacent slots
// reference the same vertex.
func (f *Face) hasConsecutiveDuplicates() bool {
	n := len(f.Verts)
	for j := 0; j < n; j++ {
		if n > 1 && f.Verts[j] == f.V(j+1) {
			return true
		}
	}
	return false
}
