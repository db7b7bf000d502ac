package polyreg

import "gonum.org/v1/gonum/spatial/r3"

// UpdateFaceNormals sets every face normal to its polygon normal.
func UpdateFaceNormals(m *Mesh) {
	m.EachFace(func(fi int, f *Face) {
		f.N = PolygonNormal(m.FacePositions(fi))
	})
}

// UpdateFaceNormalsByFitting sets every face normal to the normal of its
// least squares plane, oriented consistently with the polygon winding.
func UpdateFaceNormalsByFitting(m *Mesh) {
	m.EachFace(func(fi int, f *Face) {
		f.N = FittedNormal(m.FacePositions(fi))
	})
}

// UpdateVertexNormals sets each vertex normal to the normalized sum of the
// area weighted normals of its faces.
func UpdateVertexNormals(m *Mesh) {
	sums := make([]r3.Vec, len(m.Vertices))
	m.EachFace(func(fi int, f *Face) {
		pts := m.FacePositions(fi)
		n := r3.Scale(PolygonArea(pts), PolygonNormal(pts))
		for _, vi := range f.Verts {
			sums[vi] = r3.Add(sums[vi], n)
		}
	})
	m.EachVertex(func(vi int, v *Vertex) {
		v.N = unit(sums[vi])
	})
}

// FaceBarycenter is the mean position of the vertices of face fi.
func FaceBarycenter(m *Mesh, fi int) r3.Vec {
	return Barycenter(m.FacePositions(fi))
}

// FaceArea is the area of face fi.
func FaceArea(m *Mesh, fi int) float64 {
	return PolygonArea(m.FacePositions(fi))
}
