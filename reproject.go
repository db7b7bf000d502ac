package polyreg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LaplacianReprojectBorder smooths the boundary of m and snaps it back onto
// the boundary of guide after every step. Border vertices whose summed
// interior angle is below cornerDegree are corners and stay where they are,
// as do all interior vertices.
func LaplacianReprojectBorder(m *Mesh, guide *TriMesh, steps int, damping, cornerDegree float64) {
	m.ClearVertexSelection()
	UpdateTopology(m)
	corners := SelectCornerBorder(m, cornerDegree*math.Pi/180)
	debugf(1, "border reprojection keeps %d corners", corners)
	defer m.setState(Idle)

	movable := func(v *Vertex) bool { return v.Border && !v.Selected }
	for s := 0; s < steps; s++ {
		m.setState(Relaxing)
		laplacianStep(m, damping, movable)

		m.setState(Reprojecting)
		m.EachVertex(func(_ int, v *Vertex) {
			if !movable(v) {
				return
			}
			if p, ok := closestBorderPoint(guide, v.P); ok {
				v.P = p
			}
		})
	}
}

// LaplacianReprojectBorderSelf smooths the boundary of m against a frozen
// triangulated copy of its own current shape.
func LaplacianReprojectBorderSelf(m *Mesh, steps int, damping float64) {
	LaplacianReprojectBorder(m, Triangulate(m), steps, damping, DefaultBorderCornerDegree)
}

// closestBorderPoint scans every boundary edge of guide for the point
// nearest to p.
func closestBorderPoint(guide *TriMesh, p r3.Vec) (closest r3.Vec, ok bool) {
	minD := math.MaxFloat64
	guide.EachBorderSegment(func(a, b r3.Vec) {
		q, d := ClosestPointOnSegment(a, b, p)
		if d > minD {
			return
		}
		minD = d
		closest = q
		ok = true
	})
	return
}

// LaplacianReproject alternates a Laplacian smoothing of the interior of m
// with a damped reprojection of every vertex onto guide. Border vertices are
// not smoothed but are reprojected, which keeps them on the guide surface.
func LaplacianReproject(m *Mesh, guide *TriMesh, fixIrregular bool, steps int, damping float64) {
	idx := NewSpatialIndex(guide)
	maxD := guide.Diag()

	ensureTopology(m)
	if fixIrregular {
		m.ClearVertexSelection()
		SelectIrregular(m)
	}
	defer m.setState(Idle)

	for s := 0; s < steps; s++ {
		m.setState(Relaxing)
		laplacianStep(m, damping, func(v *Vertex) bool {
			return !v.Border && !(fixIrregular && v.Selected)
		})

		m.setState(Reprojecting)
		displ := reprojectStep(m, idx, maxD, damping)
		debugf(2, "laplacian reprojection step %d moved vertices by at most %g", s, displ)
	}
}

// reprojectStep blends every vertex towards its closest point on the guide
// and copies the guide normal found there. Vertices with no guide point in
// reach are left alone for this step.
func reprojectStep(m *Mesh, idx *SpatialIndex, maxD, damping float64) (maxDispl float64) {
	m.EachVertex(func(_ int, v *Vertex) {
		hit, ok := idx.NearestPoint(v.P, maxD)
		if !ok {
			return
		}
		p := blendTowards(v.P, hit.Point, damping)
		if d := r3.Norm(r3.Sub(p, v.P)); d > maxDispl {
			maxDispl = d
		}
		v.P = p
		v.N = hit.Normal
	})
	return
}

// SmoothReprojectPCA interleaves single SmoothPCA iterations with damped
// reprojection onto guide. Vertex normals are first initialized from the
// guide, so running zero steps only changes normals.
func SmoothReprojectPCA(m *Mesh, guide *TriMesh, steps int, fixIrregular bool, damping float64) {
	UpdateTopology(m)
	idx := NewSpatialIndex(guide)
	maxD := guide.Diag()

	if fixIrregular {
		m.ClearVertexSelection()
		SelectIrregular(m)
	}

	m.EachVertex(func(_ int, v *Vertex) {
		if hit, ok := idx.NearestPoint(v.P, maxD); ok {
			v.N = hit.Normal
		}
	})

	opts := DefaultSmoothOptions()
	opts.Iterations = 1
	opts.Damping = damping
	opts.FixIrregular = fixIrregular

	defer m.setState(Idle)
	for k := 0; k < steps; k++ {
		SmoothPCA(m, opts)

		m.setState(Reprojecting)
		displ := reprojectStep(m, idx, maxD, damping)
		debugf(2, "pca reprojection step %d moved vertices by at most %g", k, displ)
	}
}

// SmoothReprojectPCASelf regularizes m while keeping it on a triangulated
// copy of its own current shape.
func SmoothReprojectPCASelf(m *Mesh, steps int, fixIrregular bool, damping float64) {
	SmoothReprojectPCA(m, Triangulate(m), steps, fixIrregular, damping)
}
