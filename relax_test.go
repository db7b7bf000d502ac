package polyreg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLaplacianPositionsSingleQuad(t *testing.T) {
	m := unitQuad()
	m.AddVertex(vec(7, 7, 7))

	avg, weight := LaplacianPositions(m)

	requireVecNear(t, vec(2.0/3, 2.0/3, 0), avg[0], 1e-12)
	assert.InDelta(t, 3.0, weight[0], 1e-12)
	// isolated vertices gather nothing
	assert.Equal(t, 0.0, weight[4])
	assert.Equal(t, r3.Vec{}, avg[4])
}

func TestLaplacianPositionsRegularGridIsFixed(t *testing.T) {
	m := quadGrid(3, 3)
	avg, _ := LaplacianPositions(m)

	for _, ij := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		vi := gridIndex(3, ij[0], ij[1])
		requireVecNear(t, m.Vertices[vi].P, avg[vi], 1e-12)
	}
}

func TestLaplacianStepFullDampingDoesNotMove(t *testing.T) {
	m := quadGrid(2, 2)
	m.Vertices[gridIndex(2, 1, 1)].P = vec(1.4, 0.7, 0.3)
	before := positions(m)

	displ := laplacianStep(m, 1, func(*Vertex) bool { return true })

	assert.Equal(t, 0.0, displ)
	assert.Equal(t, before, positions(m))
}

func TestTemplatePositionsOfSquareIsSquare(t *testing.T) {
	pts := unitQuad().FacePositions(0)
	template := TemplatePositions(pts)

	require.Len(t, template, 4)
	for j := range pts {
		requireVecNear(t, pts[j], template[j], 1e-9)
	}
}

func TestTemplatePositionsMatchesArea(t *testing.T) {
	pts := []r3.Vec{vec(0, 0, 1), vec(2, 0, 1), vec(2, 0.5, 1), vec(0, 0.5, 1)}
	template := TemplatePositions(pts)

	assert.InDelta(t, PolygonArea(pts), PolygonArea(template), 1e-9)
	requireVecNear(t, Barycenter(pts), Barycenter(template), 1e-9)
	// all sides of the template have the same length
	side := r3.Norm(r3.Sub(template[1], template[0]))
	for j := range template {
		assert.InDelta(t, side, r3.Norm(r3.Sub(template[(j+1)%4], template[j])), 1e-9)
	}
	for _, p := range template {
		assert.InDelta(t, 1.0, p.Z, 1e-9)
	}
}

func TestRotatedTemplateFollowsVertexNormals(t *testing.T) {
	m := unitQuad()
	tilted := unit(vec(0, 1, 1))
	for i := range m.Vertices {
		m.Vertices[i].N = tilted
	}

	template := RotatedTemplatePositions(m, 0)

	assert.InDelta(t, 1.0, r3.Dot(PolygonNormal(template), tilted), 1e-9)
	requireVecNear(t, vec(0.5, 0.5, 0), Barycenter(template), 1e-9)
}

func TestSmoothPCAKeepsRegularGrid(t *testing.T) {
	m := quadGrid(3, 3)
	UpdateVertexNormals(m)
	before := positions(m)

	SmoothPCA(m, DefaultSmoothOptions())

	for i, p := range before {
		requireVecNear(t, p, m.Vertices[i].P, 1e-9)
	}
	assert.Equal(t, Idle, m.State())
}

func TestSmoothPCARegularizesDistortedVertex(t *testing.T) {
	m := quadGrid(4, 4)
	UpdateVertexNormals(m)
	center := gridIndex(4, 2, 2)
	m.Vertices[center].P = vec(2.3, 2.2, 0)
	before := r3.Norm(r3.Sub(m.Vertices[center].P, vec(2, 2, 0)))

	opts := DefaultSmoothOptions()
	opts.Iterations = 5
	SmoothPCA(m, opts)

	after := r3.Norm(r3.Sub(m.Vertices[center].P, vec(2, 2, 0)))
	assert.Less(t, after, before)
}

func TestSmoothPCAFixesBorderAndSelected(t *testing.T) {
	m := quadGrid(3, 3)
	UpdateTopology(m)
	for i := range m.Vertices {
		m.Vertices[i].P = r3.Add(m.Vertices[i].P, vec(0.1*float64(i%3), 0.05*float64(i%2), 0))
	}
	pinned := gridIndex(3, 1, 1)
	m.Vertices[pinned].Selected = true
	before := positions(m)

	opts := DefaultSmoothOptions()
	opts.FixIrregular = true
	SmoothPCA(m, opts)

	for i, v := range m.Vertices {
		if v.Border || i == pinned {
			assert.Equal(t, before[i], v.P)
		}
	}
}

func TestSmoothPCAFullDampingDoesNotMove(t *testing.T) {
	m := quadGrid(2, 2)
	m.Vertices[gridIndex(2, 1, 1)].P = vec(1.4, 0.7, 0.3)
	before := positions(m)

	opts := DefaultSmoothOptions()
	opts.Damping = 1
	assert.Equal(t, 0.0, SmoothPCA(m, opts))
	assert.Equal(t, before, positions(m))
}

func TestSmoothPCADegenerateFaceStaysFinite(t *testing.T) {
	m := buildMesh(
		[]r3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0), vec(2, 0, 0), vec(3, 0, 0)},
		[]int{0, 1, 2, 3},
		[]int{1, 4, 5, 2},
	)
	// collinear second face
	m.Vertices[5].P = vec(3, 0, 0)
	m.Vertices[2].P = vec(1.5, 0, 0)

	opts := DefaultSmoothOptions()
	opts.FixBorder = false
	SmoothPCA(m, opts)

	for _, v := range m.Vertices {
		assert.False(t, math.IsNaN(v.P.X) || math.IsNaN(v.P.Y) || math.IsNaN(v.P.Z))
		assert.False(t, math.IsInf(v.P.X, 0) || math.IsInf(v.P.Y, 0) || math.IsInf(v.P.Z, 0))
	}
}

func TestFlattenFacesPlanarGrid(t *testing.T) {
	m := quadGrid(2, 2)
	before := positions(m)

	displ := FlattenFaces(m, 3, false)

	assert.InDelta(t, 0, displ, 1e-9)
	for i, p := range before {
		requireVecNear(t, p, m.Vertices[i].P, 1e-9)
	}
}

func TestFlattenFacesNonPlanarQuad(t *testing.T) {
	m := buildMesh(
		[]r3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0.2), vec(0, 1, 0)},
		[]int{0, 1, 2, 3},
	)
	require.Greater(t, Flatness(m.FacePositions(0)), 0.01)

	displ := FlattenFaces(m, 1, false)

	assert.Greater(t, displ, 0.0)
	assert.InDelta(t, 0, Flatness(m.FacePositions(0)), 1e-9)
}

func TestFlattenFacesSkipsTrianglesAndUnselected(t *testing.T) {
	tri := buildMesh([]r3.Vec{vec(0, 0, 0), vec(1, 0, 0.3), vec(0, 1, 0)}, []int{0, 1, 2})
	assert.Equal(t, 0.0, FlattenFaces(tri, 5, false))

	m := buildMesh(
		[]r3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0.2), vec(0, 1, 0)},
		[]int{0, 1, 2, 3},
	)
	before := positions(m)
	assert.Equal(t, 0.0, FlattenFaces(m, 5, true))
	assert.Equal(t, before, positions(m))

	m.Faces[0].Selected = true
	assert.Greater(t, FlattenFaces(m, 1, true), 0.0)
}
