package polyreg

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// CollapseEdges merges the two endpoints of every edge in the batch into one
// vertex placed at the matching entry of targets. The first endpoint of each
// edge is the one kept. A vertex already merged earlier in the batch makes any
// later edge touching it be skipped, so the remap table never chains.
//
// Faces are then rebuilt without consecutive duplicate vertices, unreferenced
// vertices are removed and the mesh is compacted: vertex indices are not
// stable across the call. Faces may be left with fewer than three vertices;
// RemoveValence2Faces cleans those up.
//
// It reports whether any edge was collapsed.
func CollapseEdges(m *Mesh, edges []Pos, targets []r3.Vec) (collapsed bool) {
	if len(edges) != len(targets) {
		violation("CollapseEdges needs one target position per edge")
	}

	m.ClearVertexSelection()

	// remap[v1] = v0 for every collapsed pair
	remap := make(map[int]int)
	for i, e := range edges {
		v0 := e.V0(m)
		v1 := e.V1(m)
		if v0 == v1 {
			violation("edge to collapse has coinciding endpoints")
		}

		vert0 := &m.Vertices[v0]
		vert1 := &m.Vertices[v1]
		if vert0.Selected || vert1.Selected {
			continue
		}

		vert0.P = targets[i]
		vert1.P = targets[i]
		vert0.Selected = true
		vert1.Selected = true

		remap[v1] = v0
		collapsed = true
	}

	invariant("vertex remap table has no chains", func() bool {
		for _, v0 := range remap {
			if _, chained := remap[v0]; chained {
				return false
			}
		}
		return true
	})

	m.EachFace(func(_ int, f *Face) {
		for j, vi := range f.Verts {
			if newV, ok := remap[vi]; ok {
				f.Verts[j] = newV
			}
		}
	})

	rebuilt := 0
	m.EachFace(func(_ int, f *Face) {
		n := f.VN()
		verts := make([]int, 0, n)
		for j := 0; j < n; j++ {
			if f.V0(j) == f.V1(j) {
				continue
			}
			verts = append(verts, f.V0(j))
		}
		if len(verts) == n {
			return
		}
		f.setVerts(verts)
		rebuilt++
	})

	removed := m.RemoveUnreferencedVertices()
	m.Compact()

	debugf(2, "collapsed %d edges, rebuilt %d faces, removed %d vertices",
		len(remap), rebuilt, removed)
	return
}

// AverageEdge is the mean length of the edges of all live faces. Every face
// contributes all of its edges, so interior edges are counted once from each
// side while boundary edges are counted once.
func AverageEdge(m *Mesh) float64 {
	var sum float64
	var count int
	m.EachFace(func(_ int, f *Face) {
		n := f.VN()
		for j := 0; j < n; j++ {
			sum += r3.Norm(r3.Sub(m.Vertices[f.V0(j)].P, m.Vertices[f.V1(j)].P))
			count++
		}
	})
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// collapseBorderSmallEdgesStep collapses, in one batch, every edge shorter
// than limit that touches the border without itself being a boundary edge
// between two border vertices.
func collapseBorderSmallEdgesStep(m *Mesh, limit float64) bool {
	UpdateTopology(m)

	var collapsePos []Pos
	var interpPos []r3.Vec

	m.EachFace(func(fi int, f *Face) {
		n := f.VN()
		for j := 0; j < n; j++ {
			v0 := &m.Vertices[f.V0(j)]
			v1 := &m.Vertices[f.V1(j)]
			invariant("face has no consecutive duplicate vertices", f.V0(j) != f.V1(j))

			if !v0.Border && !v1.Border {
				continue
			}
			if v0.Border && v1.Border && f.IsBorderEdge(j) {
				continue
			}
			if r3.Norm(r3.Sub(v0.P, v1.P)) > limit {
				continue
			}

			var target r3.Vec
			switch {
			case v0.Border && !v1.Border:
				target = v0.P
			case !v0.Border && v1.Border:
				target = v1.P
			default:
				target = r3.Scale(0.5, r3.Add(v0.P, v1.P))
			}

			collapsePos = append(collapsePos, Pos{F: fi, E: j})
			interpPos = append(interpPos, target)
		}
	})

	return CollapseEdges(m, collapsePos, interpPos)
}

// CollapseBorderEdgesShorterThan repeats border collapse batches until one
// changes nothing, then cleans up degenerate faces and straight valence one
// border vertices. It returns the number of batches that collapsed something.
func CollapseBorderEdgesShorterThan(m *Mesh, limit float64, opts BorderCleanupOptions) (rounds int) {
	for collapseBorderSmallEdgesStep(m, limit) {
		rounds++
	}
	debugf(1, "border collapse reached a fixpoint after %d rounds", rounds)

	RemoveValence2Faces(m)
	RemoveValence2BorderVertices(m, opts.CornerDegree)
	return
}

// CollapseBorderSmallEdges removes small edges along the boundary, as left
// behind by quadrangulations that are not aligned to it. Edges shorter than
// fraction times the average edge length are collapsed.
func CollapseBorderSmallEdges(m *Mesh, fraction float64) int {
	opts := DefaultBorderCleanupOptions()
	opts.EdgeFraction = fraction
	return CollapseBorderSmallEdgesWithOptions(m, opts)
}

func CollapseBorderSmallEdgesWithOptions(m *Mesh, opts BorderCleanupOptions) int {
	limit := AverageEdge(m) * opts.EdgeFraction
	return CollapseBorderEdgesShorterThan(m, limit, opts)
}
