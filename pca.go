package polyreg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TemplatePositions returns the regular polygon with the arity of pts that
// best matches them: it lies in their fitted plane, is centred on their
// barycenter, has their area and is rotated in plane to minimise the squared
// distance to the corresponding vertices.
func TemplatePositions(pts []r3.Vec) []r3.Vec {
	n := len(pts)
	if n < 3 {
		return append([]r3.Vec(nil), pts...)
	}

	c := Barycenter(pts)
	normal := FittedNormal(pts)
	if r3.Norm(normal) == 0 {
		return append([]r3.Vec(nil), pts...)
	}

	// in-plane frame with normal = u x v
	u := unit(r3.Sub(pts[0], c))
	u = unit(r3.Sub(u, r3.Scale(r3.Dot(u, normal), normal)))
	if r3.Norm(u) == 0 {
		u = unit(r3.Cross(normal, r3.Vec{X: 1}))
		if r3.Norm(u) == 0 {
			u = unit(r3.Cross(normal, r3.Vec{Y: 1}))
		}
	}
	v := r3.Cross(normal, u)

	// Procrustes rotation of the unit regular polygon onto the face.
	var dots, crosses float64
	for j, p := range pts {
		d := r3.Sub(p, c)
		qx, qy := r3.Dot(d, u), r3.Dot(d, v)
		tx, ty := math.Cos(2*math.Pi*float64(j)/float64(n)), math.Sin(2*math.Pi*float64(j)/float64(n))
		dots += tx*qx + ty*qy
		crosses += tx*qy - ty*qx
	}
	theta := math.Atan2(crosses, dots)

	regularArea := 0.5 * float64(n) * math.Sin(2*math.Pi/float64(n))
	scale := math.Sqrt(PolygonArea(pts) / regularArea)

	template := make([]r3.Vec, n)
	for j := range template {
		a := theta + 2*math.Pi*float64(j)/float64(n)
		offset := r3.Add(r3.Scale(scale*math.Cos(a), u), r3.Scale(scale*math.Sin(a), v))
		template[j] = r3.Add(c, offset)
	}
	return template
}

// RotatedTemplatePositions returns the template of face fi rotated about its
// own centroid so that its normal follows the average of the vertex normals.
// Without usable vertex normals the template is returned unrotated.
func RotatedTemplatePositions(m *Mesh, fi int) []r3.Vec {
	f := &m.Faces[fi]
	template := TemplatePositions(m.FacePositions(fi))

	var avgN r3.Vec
	for _, vi := range f.Verts {
		avgN = r3.Add(avgN, m.Vertices[vi].N)
	}
	avgN = unit(avgN)
	normT := PolygonNormal(template)
	if r3.Norm(avgN) == 0 || r3.Norm(normT) == 0 {
		return template
	}

	origin := Barycenter(template)
	rot := RotationAligning(normT, avgN)
	for j := range template {
		template[j] = r3.Add(origin, rot.Rotate(r3.Sub(template[j], origin)))
	}
	return template
}

func meanFaceArea(m *Mesh) float64 {
	var total float64
	var count int
	m.EachFace(func(fi int, _ *Face) {
		total += FaceArea(m, fi)
		count++
	})
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// SmoothPCA regularizes polygon shapes as in "Statics Aware Grid Shells":
// every vertex is pulled towards the inverse area weighted average of the
// template positions proposed by its faces, mixed with its Laplacian
// position. It runs a fixed number of iterations and does not test for
// convergence. It returns the largest displacement of the last iteration.
func SmoothPCA(m *Mesh, opts SmoothOptions) (maxDispl float64) {
	ensureTopology(m)
	defer m.enter(Relaxing)()

	for s := 0; s < opts.Iterations; s++ {
		maxDispl = smoothPCAStep(m, opts)
		debugf(2, "smooth pca iteration %d moved vertices by at most %g", s, maxDispl)
	}
	return
}

func smoothPCAStep(m *Mesh, opts SmoothOptions) (maxDispl float64) {
	minArea := meanFaceArea(m) * MinAreaFraction

	avgPos := make([]r3.Vec, len(m.Vertices))
	weightSum := make([]float64, len(m.Vertices))
	m.EachFace(func(fi int, f *Face) {
		template := RotatedTemplatePositions(m, fi)
		area := math.Max(FaceArea(m, fi), minArea)
		if area <= 0 {
			return
		}
		w := 1 / area
		for j, p := range template {
			vi := f.Verts[j]
			avgPos[vi] = r3.Add(avgPos[vi], r3.Scale(w, p))
			weightSum[vi] += w
		}
	})

	lapPos, lapWeight := LaplacianPositions(m)

	m.EachVertex(func(vi int, v *Vertex) {
		if weightSum[vi] == 0 {
			return
		}
		if opts.FixBorder && v.Border {
			return
		}
		if opts.FixIrregular && v.Selected {
			return
		}
		target := r3.Scale(1/weightSum[vi], avgPos[vi])
		if lapWeight[vi] > 0 {
			target = blendTowards(target, lapPos[vi], 1-opts.SmoothTerm)
		}
		p := blendTowards(v.P, target, opts.Damping)
		if d := r3.Norm(r3.Sub(p, v.P)); d > maxDispl {
			maxDispl = d
		}
		v.P = p
	})
	return
}
