package objmesh

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
)

// RenderBuffers is the flat, GPU-ready form of a model. Vertex k occupies
// Positions[3k:3k+3] and Colors[3k:3k+3]; every three Indices form one
// triangle. It is never modified after Build returns it.
type RenderBuffers struct {
	Positions     []float32
	Colors        []float32
	Indices       []uint32
	VertexCount   int
	TriangleCount int
}

// Vertex returns the position of output vertex i.
func (b *RenderBuffers) Vertex(i int) vec3.T {
	return vec3.T{b.Positions[3*i], b.Positions[3*i+1], b.Positions[3*i+2]}
}

// Color returns the color of output vertex i.
func (b *RenderBuffers) Color(i int) vec3.T {
	return vec3.T{b.Colors[3*i], b.Colors[3*i+1], b.Colors[3*i+2]}
}

// Bounds is the bounding box of the output positions.
func (b *RenderBuffers) Bounds() vec3.Box {
	bx := vec3.Box{
		Min: vec3.T{math32.Inf(1), math32.Inf(1), math32.Inf(1)},
		Max: vec3.T{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)},
	}
	for i := 0; i < b.VertexCount; i++ {
		v := b.Vertex(i)
		for j := range v {
			bx.Min[j] = math32.Min(bx.Min[j], v[j])
			bx.Max[j] = math32.Max(bx.Max[j], v[j])
		}
	}
	return bx
}

// Build flattens doc into render buffers. Faces are fan-triangulated from
// their first vertex and every triangle corner becomes its own output
// vertex carrying the face color, so adjacent faces never share vertices.
func Build(doc *Document, lib *Library, tr Transform) (*RenderBuffers, error) {
	if doc == nil || len(doc.Faces) == 0 {
		return nil, fmt.Errorf("%w: document has no faces", ErrBuild)
	}
	triangles := 0
	for i := range doc.Faces {
		face := &doc.Faces[i]
		if len(face.Refs) < 3 {
			return nil, fmt.Errorf("%w: face %d (line %d) has %d vertices", ErrBuild, i, face.Line, len(face.Refs))
		}
		for _, r := range face.Refs {
			if r < 0 || r >= len(doc.Positions) {
				return nil, fmt.Errorf("%w: face %d (line %d) references position %d of %d", ErrBuild, i, face.Line, r, len(doc.Positions))
			}
		}
		triangles += len(face.Refs) - 2
	}
	vertices := triangles * 3
	if uint64(vertices) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d vertices exceed index range", ErrBuild, vertices)
	}

	b := &RenderBuffers{
		Positions:     make([]float32, 0, vertices*3),
		Colors:        make([]float32, 0, vertices*3),
		Indices:       make([]uint32, 0, vertices),
		VertexCount:   vertices,
		TriangleCount: triangles,
	}
	for i := range doc.Faces {
		face := &doc.Faces[i]
		color := lib.Resolve(face.Material)
		for _, tri := range triangulateFace(face.Refs) {
			for _, r := range tri {
				p := tr.Apply(doc.Positions[r])
				b.Indices = append(b.Indices, uint32(len(b.Positions)/3))
				b.Positions = append(b.Positions, float32(p[0]), float32(p[1]), float32(p[2]))
				b.Colors = append(b.Colors, color[0], color[1], color[2])
			}
		}
	}
	return b, nil
}

// triangulateFace splits a convex polygon into a triangle fan around refs[0],
// keeping the winding of the source polygon.
func triangulateFace(refs []int) [][3]int {
	if len(refs) < 3 {
		return nil
	}
	triangles := make([][3]int, 0, len(refs)-2)
	for i := 1; i < len(refs)-1; i++ {
		triangles = append(triangles, [3]int{refs[0], refs[i], refs[i+1]})
	}
	return triangles
}
