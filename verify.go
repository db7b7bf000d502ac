package polyreg

import (
	"errors"
	"fmt"
)

var (
	ErrNoFaces        = errors.New("mesh has no live faces")
	ErrMalformedFace  = errors.New("malformed face")
	ErrDeletedVertex  = errors.New("face references a deleted vertex")
	ErrUnreferenced   = errors.New("live vertex is not referenced by any face")
	ErrStaleAdjacency = errors.New("face adjacency does not match its vertices")
)

// Verify checks the invariants the Mesh Editor maintains and returns an error
// for the first violated expectation:
//   - every live face has at least three vertices
//   - no face references the same vertex in two consecutive slots
//   - no live face references a deleted or out of range vertex
//   - every live vertex is referenced by a live face
func Verify(m *Mesh) (err error) {
	if m.FN() == 0 {
		return ErrNoFaces
	}

	referenced := make([]bool, len(m.Vertices))
	m.EachFace(func(fi int, f *Face) {
		if err != nil {
			return
		}
		if f.VN() < 3 {
			err = fmt.Errorf("%w: face %d has %d vertices", ErrMalformedFace, fi, f.VN())
			return
		}
		if f.hasConsecutiveDuplicates() {
			err = fmt.Errorf("%w: face %d repeats a vertex", ErrMalformedFace, fi)
			return
		}
		if f.FF != nil && len(f.FF) != f.VN() {
			err = fmt.Errorf("%w: face %d", ErrStaleAdjacency, fi)
			return
		}
		for _, vi := range f.Verts {
			if vi < 0 || vi >= len(m.Vertices) {
				err = fmt.Errorf("%w: face %d references vertex %d", ErrMalformedFace, fi, vi)
				return
			}
			if m.Vertices[vi].Deleted {
				err = fmt.Errorf("%w: face %d, vertex %d", ErrDeletedVertex, fi, vi)
				return
			}
			referenced[vi] = true
		}
	})
	if err != nil {
		return
	}

	m.EachVertex(func(vi int, _ *Vertex) {
		if err == nil && !referenced[vi] {
			err = fmt.Errorf("%w: vertex %d", ErrUnreferenced, vi)
		}
	})
	return
}
