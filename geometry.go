package polyreg

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-12

// unit normalizes p, returning the zero vector for degenerate input.
func unit(p r3.Vec) r3.Vec {
	n := r3.Norm(p)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, p)
}

func extendBox(bb r3.Box, p r3.Vec) r3.Box {
	bb.Min = r3.Vec{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)}
	bb.Max = r3.Vec{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)}
	return bb
}

func boxDiag(bb r3.Box) float64 {
	return r3.Norm(r3.Sub(bb.Max, bb.Min))
}

// Barycenter is the mean of the points.
func Barycenter(pts []r3.Vec) (c r3.Vec) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}

// PolygonArea sums the triangles fanned from the barycenter, so it stays
// meaningful for non planar polygons.
func PolygonArea(pts []r3.Vec) (area float64) {
	n := len(pts)
	if n < 3 {
		return 0
	}
	c := Barycenter(pts)
	for j := 0; j < n; j++ {
		a := r3.Sub(pts[j], c)
		b := r3.Sub(pts[(j+1)%n], c)
		area += 0.5 * r3.Norm(r3.Cross(a, b))
	}
	return
}

// PolygonNormal is the normalized sum of the barycentric fan normals.
func PolygonNormal(pts []r3.Vec) r3.Vec {
	n := len(pts)
	if n < 3 {
		return r3.Vec{}
	}
	c := Barycenter(pts)
	var sum r3.Vec
	for j := 0; j < n; j++ {
		a := r3.Sub(pts[j], c)
		b := r3.Sub(pts[(j+1)%n], c)
		sum = r3.Add(sum, r3.Cross(a, b))
	}
	return unit(sum)
}

// Plane is the set of points p with Dot(Normal, p) == Offset.
type Plane struct {
	Normal r3.Vec
	Offset float64
}

func (pl Plane) SignedDistance(p r3.Vec) float64 {
	return r3.Dot(pl.Normal, p) - pl.Offset
}

func (pl Plane) Project(p r3.Vec) r3.Vec {
	return r3.Sub(p, r3.Scale(pl.SignedDistance(p), pl.Normal))
}

// FitPlane fits a least squares plane through the points. The normal is the
// eigenvector of the covariance matrix with the smallest eigenvalue.
func FitPlane(pts []r3.Vec) (pl Plane, ok bool) {
	if len(pts) < 3 {
		return
	}
	c := Barycenter(pts)
	var cov [6]float64 // xx xy xz yy yz zz
	for _, p := range pts {
		d := r3.Sub(p, c)
		cov[0] += d.X * d.X
		cov[1] += d.X * d.Y
		cov[2] += d.X * d.Z
		cov[3] += d.Y * d.Y
		cov[4] += d.Y * d.Z
		cov[5] += d.Z * d.Z
	}
	n := float64(len(pts))
	for i := range cov {
		cov[i] /= n
	}
	covMat := mat.NewSymDense(3, []float64{
		cov[0], cov[1], cov[2],
		cov[1], cov[3], cov[4],
		cov[2], cov[4], cov[5],
	})

	var eigen mat.EigenSym
	if !eigen.Factorize(covMat, true) {
		return
	}
	var vecs mat.Dense
	eigen.VectorsTo(&vecs)

	// Eigenvalues come back in ascending order.
	normal := unit(r3.Vec{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)})
	if r3.Norm(normal) == 0 {
		return
	}
	return Plane{Normal: normal, Offset: r3.Dot(normal, c)}, true
}

// FittedNormal is the fitted plane normal oriented like the polygon normal.
func FittedNormal(pts []r3.Vec) r3.Vec {
	n := PolygonNormal(pts)
	pl, ok := FitPlane(pts)
	if !ok {
		return n
	}
	if r3.Dot(pl.Normal, n) < 0 {
		return r3.Scale(-1, pl.Normal)
	}
	return pl.Normal
}

// Flatness is the largest distance of a vertex from the fitted plane relative
// to the mean edge length of the polygon.
func Flatness(pts []r3.Vec) float64 {
	pl, ok := FitPlane(pts)
	if !ok {
		return 0
	}
	avg := averagePolygonEdge(pts)
	if avg < epsilon {
		return 0
	}
	var worst float64
	for _, p := range pts {
		worst = math.Max(worst, math.Abs(pl.SignedDistance(p)))
	}
	return worst / avg
}

func averagePolygonEdge(pts []r3.Vec) float64 {
	n := len(pts)
	if n == 0 {
		return 0
	}
	var sum float64
	for j := 0; j < n; j++ {
		sum += r3.Norm(r3.Sub(pts[(j+1)%n], pts[j]))
	}
	return sum / float64(n)
}

// AngleDeviation returns the mean and worst deviation, in degrees, of the
// interior angles of the polygon from those of a regular polygon of the same
// arity.
func AngleDeviation(pts []r3.Vec) (avg, worst float64) {
	n := len(pts)
	if n < 3 {
		return
	}
	ideal := math.Pi * float64(n-2) / float64(n)
	for j := 0; j < n; j++ {
		dev := math.Abs(cornerAngle(pts[(j+n-1)%n], pts[j], pts[(j+1)%n]) - ideal)
		avg += dev
		worst = math.Max(worst, dev)
	}
	avg /= float64(n)
	return avg * 180 / math.Pi, worst * 180 / math.Pi
}

// cornerAngle is the angle at p between the directions to prev and next.
func cornerAngle(prev, p, next r3.Vec) float64 {
	d0 := unit(r3.Sub(prev, p))
	d1 := unit(r3.Sub(next, p))
	return math.Acos(math.Max(-1, math.Min(1, r3.Dot(d0, d1))))
}

// RotationAligning returns the rotation taking direction from onto direction
// to.
func RotationAligning(from, to r3.Vec) r3.Rotation {
	from, to = unit(from), unit(to)
	axis := r3.Cross(from, to)
	sin := r3.Norm(axis)
	cos := r3.Dot(from, to)
	if sin < 1e-9 {
		if cos > 0 {
			return r3.NewRotation(0, r3.Vec{Z: 1})
		}
		// Opposite directions: half turn about any perpendicular axis.
		perp := r3.Cross(from, r3.Vec{X: 1})
		if r3.Norm(perp) < 1e-6 {
			perp = r3.Cross(from, r3.Vec{Y: 1})
		}
		return r3.NewRotation(math.Pi, unit(perp))
	}
	return r3.NewRotation(math.Atan2(sin, cos), r3.Scale(1/sin, axis))
}

// ClosestPointOnSegment returns the point of segment ab nearest to p and its
// distance from p.
func ClosestPointOnSegment(a, b, p r3.Vec) (r3.Vec, float64) {
	c := r3.Add(a, r3.Scale(segmentParam(a, b, p), r3.Sub(b, a)))
	return c, r3.Norm(r3.Sub(p, c))
}

// segmentParam is the parameter in [0, 1] of the point of ab nearest to p. A
// segment of zero length reports 0.
func segmentParam(a, b, p r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 < epsilon {
		return 0
	}
	return math.Max(0, math.Min(1, r3.Dot(r3.Sub(p, a), ab)/l2))
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p along
// with its barycentric coordinates.
func ClosestPointOnTriangle(a, b, c, p r3.Vec) (r3.Vec, [3]float64) {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	if r3.Norm2(r3.Cross(ab, ac)) <= epsilon*r3.Norm2(ab)*r3.Norm2(ac) {
		return closestPointOnDegenerateTriangle(a, b, c, p)
	}

	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float64{1, 0, 0}
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float64{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), [3]float64{1 - v, v, 0}
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float64{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)), [3]float64{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), [3]float64{0, 1 - w, w}
	}

	denom := va + vb + vc
	v := vb / denom
	w := vc / denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), [3]float64{1 - v - w, v, w}
}

// closestPointOnDegenerateTriangle handles triangles with collinear or
// coincident corners by taking the nearest of the three edges.
func closestPointOnDegenerateTriangle(a, b, c, p r3.Vec) (best r3.Vec, bary [3]float64) {
	bestD := math.Inf(1)
	corners := [3]r3.Vec{a, b, c}
	for k := 0; k < 3; k++ {
		from, to := corners[k], corners[(k+1)%3]
		t := segmentParam(from, to, p)
		q := r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
		if d := r3.Norm(r3.Sub(p, q)); d < bestD {
			best, bestD = q, d
			bary = [3]float64{}
			bary[k] = 1 - t
			bary[(k+1)%3] = t
		}
	}
	return
}
