package polyreg

import "gonum.org/v1/gonum/spatial/r3"

// LaplacianPositions returns, for every vertex, the average of the other
// vertices of its incident faces weighted by face area, along with the total
// weight gathered by each vertex. A vertex whose weight is zero has no
// meaningful average and keeps the zero vector.
//
// Within one face every vertex receives the other n-1 positions with that
// face's area as weight, so a vertex sees its whole polygon star, not only
// its edge neighbours.
func LaplacianPositions(m *Mesh) (avg []r3.Vec, weight []float64) {
	avg = make([]r3.Vec, len(m.Vertices))
	weight = make([]float64, len(m.Vertices))

	m.EachFace(func(fi int, f *Face) {
		w := FaceArea(m, fi)
		n := f.VN()
		for j := 0; j < n; j++ {
			currP := m.Vertices[f.Verts[j]].P
			for k := 0; k < n; k++ {
				if k == j {
					continue
				}
				vk := f.Verts[k]
				avg[vk] = r3.Add(avg[vk], r3.Scale(w, currP))
				weight[vk] += w
			}
		}
	})

	for i := range avg {
		if weight[i] == 0 {
			continue
		}
		avg[i] = r3.Scale(1/weight[i], avg[i])
	}
	return
}

// blendTowards moves p towards target keeping damping of its own position.
func blendTowards(p, target r3.Vec, damping float64) r3.Vec {
	return r3.Add(r3.Scale(damping, p), r3.Scale(1-damping, target))
}

// laplacianStep blends every vertex accepted by keep towards its Laplacian
// position and returns the largest displacement.
func laplacianStep(m *Mesh, damping float64, keep func(v *Vertex) bool) (maxDispl float64) {
	avg, weight := LaplacianPositions(m)
	m.EachVertex(func(vi int, v *Vertex) {
		if weight[vi] == 0 || !keep(v) {
			return
		}
		p := blendTowards(v.P, avg[vi], damping)
		if d := r3.Norm(r3.Sub(p, v.P)); d > maxDispl {
			maxDispl = d
		}
		v.P = p
	})
	return
}
