package polyreg

import "errors"

const (
	// Faces smaller than this fraction of the mean face area are weighted as
	// if they had exactly that area during template fitting.
	MinAreaFraction = 1e-5

	DefaultEdgeFraction       = 0.3
	DefaultCornerDegree       = 25.0
	DefaultBorderCornerDegree = 100.0
	DefaultDamping            = 0.5
	DefaultSmoothTerm         = 0.1
	DefaultSmoothIterations   = 10
	DefaultReprojectSteps     = 100
	DefaultFlattenSteps       = 100
)

// BorderCleanupOptions configures CollapseBorderSmallEdges.
type BorderCleanupOptions struct {
	// EdgeFraction of the average edge length below which border edges are
	// collapsed.
	EdgeFraction float64
	// CornerDegree is the deviation from a straight boundary beyond which a
	// border vertex is kept as a corner.
	CornerDegree float64
}

func DefaultBorderCleanupOptions() BorderCleanupOptions {
	return BorderCleanupOptions{
		EdgeFraction: DefaultEdgeFraction,
		CornerDegree: DefaultCornerDegree,
	}
}

// SmoothOptions configures SmoothPCA.
type SmoothOptions struct {
	Iterations int
	// Damping is the weight kept by the current position: 0 jumps to the
	// target, 1 does not move.
	Damping float64
	// FixIrregular keeps selected vertices in place.
	FixIrregular bool
	// SmoothTerm mixes the template fit (0) with the Laplacian average (1).
	SmoothTerm float64
	// FixBorder keeps border vertices in place.
	FixBorder bool
}

func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{
		Iterations:   DefaultSmoothIterations,
		Damping:      DefaultDamping,
		FixIrregular: false,
		SmoothTerm:   DefaultSmoothTerm,
		FixBorder:    true,
	}
}

// ReprojectOptions configures the reprojection passes.
type ReprojectOptions struct {
	Steps        int
	Damping      float64
	FixIrregular bool
	// CornerDegree is the summed interior angle below which a border vertex
	// is a corner for LaplacianReprojectBorder.
	CornerDegree float64
}

func DefaultReprojectOptions() ReprojectOptions {
	return ReprojectOptions{
		Steps:        DefaultReprojectSteps,
		Damping:      DefaultDamping,
		FixIrregular: false,
		CornerDegree: DefaultBorderCornerDegree,
	}
}

// ParseSmoothOptions reads "iterations[,damping[,smoothTerm]]" on top of
// the defaults.
func ParseSmoothOptions(s string) (opts SmoothOptions, err error) {
	opts = DefaultSmoothOptions()
	values, err := parseCSFloats(s)
	if err != nil {
		return
	}
	if len(values) > 3 {
		err = errors.New("Too many smoothing options in: " + s)
		return
	}
	opts.Iterations = int(values[0])
	if len(values) > 1 {
		opts.Damping = values[1]
	}
	if len(values) > 2 {
		opts.SmoothTerm = values[2]
	}
	return
}

// ParseReprojectOptions reads "steps[,damping[,cornerDegree]]" on top of the
// defaults.
func ParseReprojectOptions(s string) (opts ReprojectOptions, err error) {
	opts = DefaultReprojectOptions()
	values, err := parseCSFloats(s)
	if err != nil {
		return
	}
	if len(values) > 3 {
		err = errors.New("Too many reprojection options in: " + s)
		return
	}
	opts.Steps = int(values[0])
	if len(values) > 1 {
		opts.Damping = values[1]
	}
	if len(values) > 2 {
		opts.CornerDegree = values[2]
	}
	return
}
