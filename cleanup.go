package polyreg

// RemoveValence2Faces deletes every face left with fewer than three
// vertices, then drops unreferenced vertices and compacts the mesh.
func RemoveValence2Faces(m *Mesh) (deleted int) {
	m.EachFace(func(fi int, f *Face) {
		if f.VN() >= 3 {
			return
		}
		m.DeleteFace(fi)
		deleted++
	})

	m.RemoveUnreferencedVertices()
	m.Compact()
	debugf(1, "removed %d degenerate faces", deleted)
	return
}

// RemoveValence2BorderVertices splices out border vertices that belong to a
// single face and sit on a nearly straight stretch of boundary. Vertices where
// the boundary turns by more than cornerDegree are kept as corners. A face is
// never shortened below three vertices.
func RemoveValence2BorderVertices(m *Mesh, cornerDegree float64) (removed int) {
	UpdateTopology(m)
	m.ClearVertexSelection()
	selectSharpBorderTurns(m, cornerDegree)

	valence := NewVertexAttribute[int](m)
	defer valence.Release()
	m.EachFace(func(_ int, f *Face) {
		for _, vi := range f.Verts {
			valence.Update(vi, func(n int) int { return n + 1 })
		}
	})

	m.EachFace(func(_ int, f *Face) {
		n := f.VN()
		verts := make([]int, 0, n)
		for _, vi := range f.Verts {
			v := &m.Vertices[vi]
			invariant("face does not reference a deleted vertex", !v.Deleted)
			if !v.Selected && v.Border && valence.At(vi) == 1 {
				continue
			}
			verts = append(verts, vi)
		}
		if len(verts) == n || len(verts) < 3 {
			return
		}
		f.setVerts(verts)
	})

	removed = m.RemoveUnreferencedVertices()
	m.Compact()
	debugf(1, "removed %d straight border vertices", removed)
	return
}
