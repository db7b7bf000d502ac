package polyreg

import "gonum.org/v1/gonum/spatial/r3"

type Vertex struct {
	P r3.Vec
	N r3.Vec

	// Selected doubles as the "processed" mark during a collapse batch and as
	// the protected-corner mark during border cleanup and reprojection.
	Selected bool
	Border   bool
	Deleted  bool
}

func (v *Vertex) IsLive() bool {
	return !v.Deleted
}
