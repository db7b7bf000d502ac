package polyreg

import (
	"github.com/nat-n/gomesh/triplebuffer"
	"gonum.org/v1/gonum/spatial/r3"
)

// TriMesh is the triangulated guide surface used as a fidelity reference by
// the reprojection passes. Points and triangles live in flat triple buffers;
// the normals, adjacency and bounds are derived from them by Update. It is
// read only while a pass runs; after editing Verts or Faces call Update and
// rebuild any SpatialIndex built over it.
type TriMesh struct {
	Verts triplebuffer.VertexBuffer
	Faces triplebuffer.TriangleBuffer

	N     []r3.Vec
	FaceN []r3.Vec
	FF    [][3]int
	Box   r3.Box
}

func NewTriMesh(points []r3.Vec, tris [][3]int) *TriMesh {
	t := &TriMesh{
		Verts: triplebuffer.NewVertexBuffer(),
		Faces: triplebuffer.NewTriangleBuffer(),
	}
	for _, p := range points {
		t.Verts.Append(p.X, p.Y, p.Z)
	}
	for _, tri := range tris {
		t.Faces.Append(tri[0], tri[1], tri[2])
	}
	t.Update()
	return t
}

// VN and FN count the points and triangles of the guide.
func (t *TriMesh) VN() int { return t.Verts.Len() }
func (t *TriMesh) FN() int { return t.Faces.Len() }

func (t *TriMesh) Point(vi int) r3.Vec {
	b := t.Verts.Buffer[vi*3 : vi*3+3]
	return r3.Vec{X: b[0], Y: b[1], Z: b[2]}
}

func (t *TriMesh) Triangle(fi int) (tri [3]int) {
	copy(tri[:], t.Faces.Buffer[fi*3:fi*3+3])
	return
}

// Corners returns the positions of the vertices of triangle fi.
func (t *TriMesh) Corners(fi int) (a, b, c r3.Vec) {
	tri := t.Triangle(fi)
	return t.Point(tri[0]), t.Point(tri[1]), t.Point(tri[2])
}

// Update recomputes the bounding box, face and vertex normals, adjacency and
// border edges.
func (t *TriMesh) Update() {
	t.Box = r3.Box{}
	t.Verts.EachWithIndex(func(i int, x, y, z float64) {
		p := r3.Vec{X: x, Y: y, Z: z}
		if i == 0 {
			t.Box = r3.Box{Min: p, Max: p}
			return
		}
		t.Box = extendBox(t.Box, p)
	})

	t.FaceN = make([]r3.Vec, t.FN())
	sums := make([]r3.Vec, t.VN())
	t.Faces.EachWithIndex(func(fi, v0, v1, v2 int) {
		a, b, c := t.Point(v0), t.Point(v1), t.Point(v2)
		cross := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		t.FaceN[fi] = unit(cross)
		for _, vi := range [3]int{v0, v1, v2} {
			sums[vi] = r3.Add(sums[vi], cross)
		}
	})
	t.N = make([]r3.Vec, t.VN())
	for i := range sums {
		t.N[i] = unit(sums[i])
	}

	incidence := make(map[edgeKey][]edgeSlot)
	t.FF = make([][3]int, t.FN())
	t.Faces.EachWithIndex(func(fi, v0, v1, v2 int) {
		tri := [3]int{v0, v1, v2}
		for k := 0; k < 3; k++ {
			t.FF[fi][k] = -1
			key := makeEdgeKey(tri[k], tri[(k+1)%3])
			incidence[key] = append(incidence[key], edgeSlot{fi, k})
		}
	})
	for _, slots := range incidence {
		if len(slots) < 2 {
			continue
		}
		for i, s := range slots {
			t.FF[s.face][s.slot] = slots[(i+1)%len(slots)].face
		}
	}
}

func (t *TriMesh) IsBorderEdge(fi, k int) bool {
	return t.FF[fi][k] < 0
}

// Diag is the length of the bounding box diagonal.
func (t *TriMesh) Diag() float64 {
	return boxDiag(t.Box)
}

// EachBorderSegment calls cb with the endpoints of every boundary edge.
func (t *TriMesh) EachBorderSegment(cb func(a, b r3.Vec)) {
	t.Faces.EachWithIndex(func(fi, v0, v1, v2 int) {
		tri := [3]int{v0, v1, v2}
		for k := 0; k < 3; k++ {
			if t.IsBorderEdge(fi, k) {
				cb(t.Point(tri[k]), t.Point(tri[(k+1)%3]))
			}
		}
	})
}

// Triangulate builds a guide surface from the live faces of m. Vertices keep
// their positions; each polygon is ear clipped in its fitted plane.
func Triangulate(m *Mesh) *TriMesh {
	index := make([]int, len(m.Vertices))
	points := make([]r3.Vec, 0, len(m.Vertices))
	m.EachVertex(func(vi int, v *Vertex) {
		index[vi] = len(points)
		points = append(points, v.P)
	})

	var tris [][3]int
	m.EachFace(func(fi int, f *Face) {
		for _, tri := range triangulatePolygon(m.FacePositions(fi)) {
			tris = append(tris, [3]int{
				index[f.Verts[tri[0]]],
				index[f.Verts[tri[1]]],
				index[f.Verts[tri[2]]],
			})
		}
	})
	return NewTriMesh(points, tris)
}

// triangulatePolygon returns triangles as local vertex slots of pts, keeping
// the polygon winding. Ear clipping runs on the projection to the fitted
// plane; a fan closes whatever it cannot clip.
func triangulatePolygon(pts []r3.Vec) (tris [][3]int) {
	n := len(pts)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}
	}

	normal := FittedNormal(pts)
	if r3.Norm(normal) == 0 {
		return fan(seq(n))
	}
	c := Barycenter(pts)
	u := unit(r3.Cross(normal, r3.Vec{X: 1}))
	if r3.Norm(u) < 0.5 {
		u = unit(r3.Cross(normal, r3.Vec{Y: 1}))
	}
	v := r3.Cross(normal, u)
	flat := make([][2]float64, n)
	for j, p := range pts {
		d := r3.Sub(p, c)
		flat[j] = [2]float64{r3.Dot(d, u), r3.Dot(d, v)}
	}

	remaining := seq(n)
	for len(remaining) > 3 {
		clipped := false
		for i := range remaining {
			prev := remaining[(i+len(remaining)-1)%len(remaining)]
			curr := remaining[i]
			next := remaining[(i+1)%len(remaining)]
			if !isEar(flat, remaining, prev, curr, next) {
				continue
			}
			tris = append(tris, [3]int{prev, curr, next})
			remaining = append(remaining[:i:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return append(tris, fan(remaining)...)
		}
	}
	return append(tris, [3]int{remaining[0], remaining[1], remaining[2]})
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func fan(ring []int) (tris [][3]int) {
	for i := 1; i+1 < len(ring); i++ {
		tris = append(tris, [3]int{ring[0], ring[i], ring[i+1]})
	}
	return
}

func cross2(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func isEar(flat [][2]float64, ring []int, prev, curr, next int) bool {
	a, b, c := flat[prev], flat[curr], flat[next]
	if cross2(a, b, c) <= epsilon {
		return false
	}
	for _, k := range ring {
		if k == prev || k == curr || k == next {
			continue
		}
		p := flat[k]
		if cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0 {
			return false
		}
	}
	return true
}
