package polyreg

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const trisPerLeaf = 4

// bvNode is a node of the bounding volume tree. Leaves hold a run of
// triangle ids, inner nodes two children.
type bvNode struct {
	box         r3.Box
	left, right int
	first, n    int
}

func (n *bvNode) isLeaf() bool {
	return n.n > 0
}

// SpatialIndex answers nearest point queries over the triangles of a
// TriMesh. It is built once and goes stale if the guide surface changes.
type SpatialIndex struct {
	guide *TriMesh
	nodes []bvNode
	tris  []int
}

// Hit is the result of a nearest point query.
type Hit struct {
	Point  r3.Vec
	Normal r3.Vec
	Face   int
	Dist   float64
}

type bvItem struct {
	tri      int
	box      r3.Box
	centroid r3.Vec
}

func NewSpatialIndex(guide *TriMesh) *SpatialIndex {
	idx := &SpatialIndex{guide: guide}
	if guide.FN() == 0 {
		return idx
	}
	items := make([]bvItem, guide.FN())
	for fi := range items {
		a, b, c := guide.Corners(fi)
		box := extendBox(extendBox(r3.Box{Min: a, Max: a}, b), c)
		items[fi] = bvItem{tri: fi, box: box, centroid: Barycenter([]r3.Vec{a, b, c})}
	}
	idx.tris = make([]int, 0, len(items))
	idx.subdivide(items)
	return idx
}

// subdivide splits items along the longest axis of their bounds and returns
// the index of the node created for them.
func (idx *SpatialIndex) subdivide(items []bvItem) int {
	box := items[0].box
	for _, it := range items[1:] {
		box = extendBox(extendBox(box, it.box.Min), it.box.Max)
	}

	nodeIdx := len(idx.nodes)
	idx.nodes = append(idx.nodes, bvNode{box: box})

	if len(items) <= trisPerLeaf {
		idx.nodes[nodeIdx].first = len(idx.tris)
		idx.nodes[nodeIdx].n = len(items)
		for _, it := range items {
			idx.tris = append(idx.tris, it.tri)
		}
		return nodeIdx
	}

	axis := longestAxis(r3.Sub(box.Max, box.Min))
	sort.Slice(items, func(i, j int) bool {
		return component(items[i].centroid, axis) < component(items[j].centroid, axis)
	})
	mid := len(items) / 2
	left := idx.subdivide(items[:mid])
	right := idx.subdivide(items[mid:])
	idx.nodes[nodeIdx].left = left
	idx.nodes[nodeIdx].right = right
	return nodeIdx
}

func longestAxis(size r3.Vec) int {
	axis := 0
	maxVal := size.X
	if size.Y > maxVal {
		axis = 1
		maxVal = size.Y
	}
	if size.Z > maxVal {
		axis = 2
	}
	return axis
}

func component(p r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

func boxDistance(box r3.Box, p r3.Vec) float64 {
	dx := math.Max(0, math.Max(box.Min.X-p.X, p.X-box.Max.X))
	dy := math.Max(0, math.Max(box.Min.Y-p.Y, p.Y-box.Max.Y))
	dz := math.Max(0, math.Max(box.Min.Z-p.Z, p.Z-box.Max.Z))
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// NearestPoint returns the point of the guide surface closest to p, with the
// vertex normals interpolated there. It reports false when no triangle lies
// within maxDist.
func (idx *SpatialIndex) NearestPoint(p r3.Vec, maxDist float64) (hit Hit, ok bool) {
	if len(idx.nodes) == 0 {
		return
	}
	best := maxDist

	queue := nodeQueue{}
	heap.Push(&queue, queuedNode{node: 0, dist: boxDistance(idx.nodes[0].box, p)})
	for queue.Len() > 0 {
		next := heap.Pop(&queue).(queuedNode)
		if next.dist > best {
			break
		}
		node := &idx.nodes[next.node]
		if !node.isLeaf() {
			for _, child := range [2]int{node.left, node.right} {
				d := boxDistance(idx.nodes[child].box, p)
				if d <= best {
					heap.Push(&queue, queuedNode{node: child, dist: d})
				}
			}
			continue
		}
		for _, fi := range idx.tris[node.first : node.first+node.n] {
			a, b, c := idx.guide.Corners(fi)
			q, bary := ClosestPointOnTriangle(a, b, c, p)
			d := r3.Norm(r3.Sub(q, p))
			if d > best {
				continue
			}
			best = d
			hit = Hit{Point: q, Face: fi, Dist: d, Normal: idx.interpolatedNormal(fi, bary)}
			ok = true
		}
	}
	return
}

func (idx *SpatialIndex) interpolatedNormal(fi int, bary [3]float64) r3.Vec {
	tri := idx.guide.Triangle(fi)
	var n r3.Vec
	for k := 0; k < 3; k++ {
		n = r3.Add(n, r3.Scale(bary[k], idx.guide.N[tri[k]]))
	}
	n = unit(n)
	if r3.Norm(n) == 0 {
		return idx.guide.FaceN[fi]
	}
	return n
}

type queuedNode struct {
	node int
	dist float64
}

type nodeQueue []queuedNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(queuedNode)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
