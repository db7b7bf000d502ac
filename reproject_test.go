package polyreg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func onSquareBoundary(p r3.Vec, size float64) bool {
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	return near(p.X, 0) || near(p.X, size) || near(p.Y, 0) || near(p.Y, size)
}

func TestLaplacianReprojectBorderSnapsToGuideBoundary(t *testing.T) {
	guide := Triangulate(quadGrid(4, 4))
	m := quadGrid(4, 4)
	moved := gridIndex(4, 2, 0)
	m.Vertices[moved].P = vec(2, -0.1, 0)
	interior := gridIndex(4, 2, 2)

	LaplacianReprojectBorder(m, guide, 3, DefaultDamping, DefaultBorderCornerDegree)

	p := m.Vertices[moved].P
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 2, p.X, 0.5)
	for _, ij := range [][2]int{{0, 0}, {4, 0}, {0, 4}, {4, 4}} {
		vi := gridIndex(4, ij[0], ij[1])
		requireVecNear(t, vec(float64(ij[0]), float64(ij[1]), 0), m.Vertices[vi].P, 0)
	}
	requireVecNear(t, vec(2, 2, 0), m.Vertices[interior].P, 0)
	m.EachVertex(func(vi int, v *Vertex) {
		if v.Border {
			assert.True(t, onSquareBoundary(v.P, 4), "vertex %d at %v", vi, v.P)
		}
	})
	assert.Equal(t, Idle, m.State())
}

func TestLaplacianReprojectBorderSelfKeepsOutline(t *testing.T) {
	m := quadGrid(4, 3)

	LaplacianReprojectBorderSelf(m, 5, DefaultDamping)

	m.EachVertex(func(vi int, v *Vertex) {
		if !v.Border {
			return
		}
		p := v.P
		onOutline := math.Abs(p.X) < 1e-9 || math.Abs(p.X-4) < 1e-9 ||
			math.Abs(p.Y) < 1e-9 || math.Abs(p.Y-3) < 1e-9
		assert.True(t, onOutline, "vertex %d at %v", vi, p)
	})
}

func TestLaplacianReprojectPullsOntoGuide(t *testing.T) {
	guide := Triangulate(quadGrid(4, 4))
	m := quadGrid(4, 4)
	center := gridIndex(4, 2, 2)
	m.Vertices[center].P = vec(2, 2, 0.5)
	UpdateTopology(m)
	var border []r3.Vec
	m.EachVertex(func(_ int, v *Vertex) {
		if v.Border {
			border = append(border, v.P)
		}
	})

	LaplacianReproject(m, guide, false, 10, DefaultDamping)

	var maxZ float64
	var after []r3.Vec
	m.EachVertex(func(_ int, v *Vertex) {
		maxZ = math.Max(maxZ, math.Abs(v.P.Z))
		if v.Border {
			after = append(after, v.P)
		}
	})
	assert.Less(t, maxZ, 1e-3)
	require.Len(t, after, len(border))
	for i := range border {
		requireVecNear(t, border[i], after[i], 1e-9)
	}
	requireVecNear(t, vec(0, 0, 1), m.Vertices[center].N, 1e-9)
}

func TestSmoothReprojectPCAZeroStepsOnlySetsNormals(t *testing.T) {
	guide := Triangulate(quadGrid(3, 3))
	m := quadGrid(3, 3)
	m.Vertices[gridIndex(3, 1, 1)].P = vec(1.2, 1.1, 0)
	before := positions(m)

	SmoothReprojectPCA(m, guide, 0, false, DefaultDamping)

	assert.Equal(t, before, positions(m))
	for _, v := range m.Vertices {
		requireVecNear(t, vec(0, 0, 1), v.N, 1e-9)
	}
}

func TestSmoothReprojectPCARegularizesOnGuide(t *testing.T) {
	guide := Triangulate(quadGrid(4, 4))
	m := quadGrid(4, 4)
	center := gridIndex(4, 2, 2)
	m.Vertices[center].P = vec(2.3, 2.2, 0)
	before := r3.Norm(r3.Sub(m.Vertices[center].P, vec(2, 2, 0)))

	SmoothReprojectPCA(m, guide, 10, false, DefaultDamping)

	after := r3.Norm(r3.Sub(m.Vertices[center].P, vec(2, 2, 0)))
	assert.Less(t, after, before)
	for _, v := range m.Vertices {
		assert.InDelta(t, 0, v.P.Z, 1e-9)
	}
	assert.Equal(t, Idle, m.State())
}

func TestSmoothReprojectPCASelfFixIrregular(t *testing.T) {
	m := NewMesh("fan")
	center := m.AddVertex(vec(0.1, 0.05, 0))
	for k := 0; k < 5; k++ {
		a := 2 * math.Pi * float64(k) / 5
		m.AddVertex(vec(math.Cos(a), math.Sin(a), 0))
	}
	for k := 0; k < 5; k++ {
		m.AddFace(center, 1+k, 1+(k+1)%5)
	}

	SmoothReprojectPCASelf(m, 3, true, DefaultDamping)

	// the valence five centre is irregular and stays put
	requireVecNear(t, vec(0.1, 0.05, 0), m.Vertices[center].P, 1e-9)
}

func TestReprojectionLeavesVerticesOutOfReachAlone(t *testing.T) {
	// the guide covers one cell, so its diagonal does not reach the far corner
	guide := Triangulate(unitQuad())
	far := gridIndex(4, 4, 4)
	near := gridIndex(4, 1, 1)
	sentinel := vec(1, 0, 0)

	t.Run("laplacian", func(t *testing.T) {
		m := quadGrid(4, 4)
		m.EachVertex(func(_ int, v *Vertex) { v.N = sentinel })

		LaplacianReproject(m, guide, false, 1, DefaultDamping)

		requireVecNear(t, vec(4, 4, 0), m.Vertices[far].P, 0)
		requireVecNear(t, sentinel, m.Vertices[far].N, 0)
		requireVecNear(t, vec(0, 0, 1), m.Vertices[near].N, 1e-9)
	})

	t.Run("pca", func(t *testing.T) {
		m := quadGrid(4, 4)
		m.EachVertex(func(_ int, v *Vertex) { v.N = sentinel })

		SmoothReprojectPCA(m, guide, 0, false, DefaultDamping)

		requireVecNear(t, vec(4, 4, 0), m.Vertices[far].P, 0)
		requireVecNear(t, sentinel, m.Vertices[far].N, 0)
		requireVecNear(t, vec(0, 0, 1), m.Vertices[near].N, 1e-9)
	})

	t.Run("step", func(t *testing.T) {
		m := quadGrid(4, 4)
		m.Vertices[far].P = vec(4, 4, 3)
		m.Vertices[near].P = vec(0.5, 0.5, 0.25)
		m.EachVertex(func(_ int, v *Vertex) { v.N = sentinel })

		displ := reprojectStep(m, NewSpatialIndex(guide), guide.Diag(), 0)

		requireVecNear(t, vec(4, 4, 3), m.Vertices[far].P, 0)
		requireVecNear(t, sentinel, m.Vertices[far].N, 0)
		requireVecNear(t, vec(0.5, 0.5, 0), m.Vertices[near].P, 1e-12)
		requireVecNear(t, vec(0, 0, 1), m.Vertices[near].N, 1e-9)
		assert.GreaterOrEqual(t, displ, 0.25)
	})
}
