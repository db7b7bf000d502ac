package polyreg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

func buildMesh(points []r3.Vec, faces ...[]int) *Mesh {
	m := NewMesh("test")
	for _, p := range points {
		m.AddVertex(p)
	}
	for _, f := range faces {
		m.AddFace(f...)
	}
	return m
}

func unitQuad() *Mesh {
	return buildMesh(
		[]r3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0)},
		[]int{0, 1, 2, 3},
	)
}

// quadGrid builds nx by ny unit quads in the XY plane, vertex (i, j) at
// index j*(nx+1)+i.
func quadGrid(nx, ny int) *Mesh {
	m := NewMesh("grid")
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AddVertex(vec(float64(i), float64(j), 0))
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := j*(nx+1) + i
			m.AddFace(v, v+1, v+nx+2, v+nx+1)
		}
	}
	return m
}

func gridIndex(nx, i, j int) int {
	return j*(nx+1) + i
}

func requireVecNear(t *testing.T, expected, actual r3.Vec, delta float64) {
	t.Helper()
	require.InDelta(t, expected.X, actual.X, delta, "x of %v vs %v", expected, actual)
	require.InDelta(t, expected.Y, actual.Y, delta, "y of %v vs %v", expected, actual)
	require.InDelta(t, expected.Z, actual.Z, delta, "z of %v vs %v", expected, actual)
}

// findVertex returns the index of the live vertex at p, or -1.
func findVertex(m *Mesh, p r3.Vec) int {
	found := -1
	m.EachVertex(func(vi int, v *Vertex) {
		if r3.Norm(r3.Sub(v.P, p)) < 1e-9 {
			found = vi
		}
	})
	return found
}

func positions(m *Mesh) []r3.Vec {
	pts := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.P
	}
	return pts
}
