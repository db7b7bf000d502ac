package polyreg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type edgeKey struct {
	a, b int
}

func makeEdgeKey(v0, v1 int) edgeKey {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return edgeKey{v0, v1}
}

type edgeSlot struct {
	face, slot int
}

// UpdateFaceFace recomputes face-face adjacency of every live face. Edges
// shared by exactly two faces are linked to each other; edges shared by more
// faces are linked in a ring so that none of them reads as boundary.
func UpdateFaceFace(m *Mesh) {
	incidence := make(map[edgeKey][]edgeSlot)
	m.EachFace(func(fi int, f *Face) {
		n := f.VN()
		f.FF = make([]int, n)
		f.FFi = make([]int, n)
		for j := 0; j < n; j++ {
			f.FF[j] = -1
			f.FFi[j] = -1
			k := makeEdgeKey(f.V0(j), f.V1(j))
			incidence[k] = append(incidence[k], edgeSlot{fi, j})
		}
	})

	for _, slots := range incidence {
		if len(slots) < 2 {
			continue
		}
		for i, s := range slots {
			next := slots[(i+1)%len(slots)]
			m.Faces[s.face].FF[s.slot] = next.face
			m.Faces[s.face].FFi[s.slot] = next.slot
		}
	}
}

// UpdateBorderFlags marks as border every vertex that is an endpoint of a
// boundary edge. Face-face adjacency must be current.
func UpdateBorderFlags(m *Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Border = false
	}
	m.EachFace(func(_ int, f *Face) {
		for j := 0; j < f.VN(); j++ {
			if !f.IsBorderEdge(j) {
				continue
			}
			m.Vertices[f.V0(j)].Border = true
			m.Vertices[f.V1(j)].Border = true
		}
	})
}

// UpdateTopology recomputes adjacency and border flags, which every border
// dependent pass needs after a structural edit.
func UpdateTopology(m *Mesh) {
	UpdateFaceFace(m)
	UpdateBorderFlags(m)
	m.setState(Idle)
}

// ensureTopology refreshes topology only when a structural edit has happened
// since it was last computed.
func ensureTopology(m *Mesh) {
	if m.State() == TopologyStale {
		UpdateTopology(m)
	}
}

// SelectCornerBorder selects the border vertices whose summed interior face
// angle is below angleRad, i.e. the vertices where the boundary turns
// sharply. It returns the number of selected vertices.
func SelectCornerBorder(m *Mesh, angleRad float64) (selected int) {
	ensureTopology(m)
	angleSum := NewVertexAttribute[float64](m)
	defer angleSum.Release()

	m.EachFace(func(_ int, f *Face) {
		n := f.VN()
		for j := 0; j < n; j++ {
			vi := f.V(j)
			if !m.Vertices[vi].Border {
				continue
			}
			a := cornerAngle(m.Vertices[f.V(j-1)].P, m.Vertices[vi].P, m.Vertices[f.V(j+1)].P)
			angleSum.Update(vi, func(s float64) float64 { return s + a })
		}
	})

	m.EachVertex(func(vi int, v *Vertex) {
		if !v.Border || angleSum.At(vi) >= angleRad {
			return
		}
		v.Selected = true
		selected++
	})
	return
}

// selectSharpBorderTurns selects every vertex that, together with its
// predecessor and successor in some face, lies on the border and whose turn
// is sharper than cornerDegree away from a straight line.
func selectSharpBorderTurns(m *Mesh, cornerDegree float64) {
	limit := -math.Cos(cornerDegree * math.Pi / 180)
	m.EachFace(func(_ int, f *Face) {
		n := f.VN()
		for j := 0; j < n; j++ {
			v0 := &m.Vertices[f.V(j-1)]
			v1 := &m.Vertices[f.V(j)]
			v2 := &m.Vertices[f.V(j+1)]
			if !v0.Border || !v1.Border || !v2.Border {
				continue
			}
			dir0 := unit(r3.Sub(v0.P, v1.P))
			dir1 := unit(r3.Sub(v2.P, v1.P))
			if r3.Dot(dir0, dir1) > limit {
				v1.Selected = true
			}
		}
	})
}
