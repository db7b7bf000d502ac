package polyreg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FlattenFaces makes polygons planar by alternating a local step, projecting
// the vertices of each face onto its fitted plane, with a global step moving
// each vertex to the mean of its projections (as in "ShapeUp"). Triangles are
// planar already and do not take part. When onlySelected is set only selected
// faces are flattened.
//
// It returns the largest single vertex displacement seen over all steps.
func FlattenFaces(m *Mesh, steps int, onlySelected bool) (maxDispl float64) {
	defer m.enter(Relaxing)()

	for s := 0; s < steps; s++ {
		projections := make([][]r3.Vec, len(m.Vertices))

		m.EachFace(func(fi int, f *Face) {
			if onlySelected && !f.Selected {
				return
			}
			if f.VN() <= 3 {
				return
			}
			pts := m.FacePositions(fi)
			plane, ok := FitPlane(pts)
			if !ok {
				return
			}
			for j, vi := range f.Verts {
				invariant("face does not reference a deleted vertex", !m.Vertices[vi].Deleted)
				projections[vi] = append(projections[vi], plane.Project(pts[j]))
			}
		})

		var stepDispl float64
		m.EachVertex(func(vi int, v *Vertex) {
			if len(projections[vi]) == 0 {
				return
			}
			avg := Barycenter(projections[vi])
			stepDispl = math.Max(stepDispl, r3.Norm(r3.Sub(v.P, avg)))
			v.P = avg
		})
		maxDispl = math.Max(maxDispl, stepDispl)
		debugf(2, "flatten step %d moved vertices by at most %g", s, stepDispl)
	}
	return
}
