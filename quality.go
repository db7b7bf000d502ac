package polyreg

import (
	"gonum.org/v1/gonum/spatial/r3"
)

type QualityType int

const (
	// QualityAngle is the mean deviation, in degrees, of the face angles
	// from the angles of the regular polygon of the same arity.
	QualityAngle QualityType = iota
	// QualityPlanar is the distance from the fitted plane relative to the
	// mean edge length.
	QualityPlanar
	// QualityTemplate is the distance from the template polygon relative to
	// the mean edge length.
	QualityTemplate
)

func (q QualityType) String() string {
	switch q {
	case QualityAngle:
		return "angle"
	case QualityPlanar:
		return "planar"
	case QualityTemplate:
		return "template"
	}
	return "unknown"
}

// UpdateQuality stores the chosen quality measure in Q of every live face.
// Lower is better for all of them.
func UpdateQuality(m *Mesh, qType QualityType) {
	m.EachFace(func(fi int, f *Face) {
		pts := m.FacePositions(fi)
		switch qType {
		case QualityAngle:
			f.Q, _ = AngleDeviation(pts)
		case QualityPlanar:
			f.Q = Flatness(pts)
		default:
			f.Q = TemplateAspectRatio(pts)
		}
	})
}

// TemplateAspectRatio measures how far a polygon is from its template: the
// mean distance between each vertex and its template position over the mean
// edge length.
func TemplateAspectRatio(pts []r3.Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	avg := averagePolygonEdge(pts)
	if avg < epsilon {
		return 0
	}
	template := TemplatePositions(pts)
	var sum float64
	for j, p := range pts {
		sum += r3.Norm(r3.Sub(p, template[j]))
	}
	return sum / float64(len(pts)) / avg
}

// SelectIrregular selects the vertices whose face valence differs from that
// of a regular quad grid: four faces inside, two on a straight border. Corner
// vertices with a single face count as regular. It returns the number of
// selected vertices. Topology must be current.
func SelectIrregular(m *Mesh) (selected int) {
	valence := NewVertexAttribute[int](m)
	defer valence.Release()
	m.EachFace(func(_ int, f *Face) {
		for _, vi := range f.Verts {
			valence.Update(vi, func(n int) int { return n + 1 })
		}
	})

	m.EachVertex(func(vi int, v *Vertex) {
		n := valence.At(vi)
		regular := n == 4
		if v.Border {
			regular = n == 2 || n == 1
		}
		if regular {
			return
		}
		v.Selected = true
		selected++
	})
	return
}

// SelectNonPlanar replaces the face selection with the faces whose Flatness
// exceeds tolerance and returns how many there are.
func SelectNonPlanar(m *Mesh, tolerance float64) (selected int) {
	m.ClearFaceSelection()
	m.EachFace(func(fi int, f *Face) {
		if Flatness(m.FacePositions(fi)) > tolerance {
			f.Selected = true
			selected++
		}
	})
	return
}
