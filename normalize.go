package objmesh

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Transform moves a document's bounding-box centre to the origin and
// scales it uniformly so the largest extent equals the display size.
type Transform struct {
	Translation vec3d.T
	Scale       float64
}

// Apply returns (p + Translation) * Scale.
func (t Transform) Apply(p vec3d.T) vec3d.T {
	return vec3d.T{
		(p[0] + t.Translation[0]) * t.Scale,
		(p[1] + t.Translation[1]) * t.Scale,
		(p[2] + t.Translation[2]) * t.Scale,
	}
}

func ComputeTransform(doc *Document, displaySize float64) (Transform, error) {
	if math.IsNaN(displaySize) || math.IsInf(displaySize, 0) || displaySize <= 0 {
		return Transform{}, ErrInvalidDisplaySize
	}
	if doc == nil || len(doc.Positions) == 0 {
		return Transform{}, ErrEmptyGeometry
	}
	size := doc.BoundsSize()
	extent := math.Max(size[0], math.Max(size[1], size[2]))
	if !(extent > 0) {
		return Transform{}, ErrDegenerateBounds
	}
	c := doc.BoundsCenter()
	return Transform{
		Translation: vec3d.T{-c[0], -c[1], -c[2]},
		Scale:       displaySize / extent,
	}, nil
}
