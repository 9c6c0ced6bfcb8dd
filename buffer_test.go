package objmesh

import (
	"errors"
	"testing"

	"github.com/flywave/go3d/vec3"
	"github.com/stretchr/testify/assert"
)

const pentagonObj = `v 0 0 0
v 2 0 0
v 3 1 0
v 1 2 0
v -1 1 0
usemtl red
f 1 2 3 4 5
`

func TestTriangulateFace(t *testing.T) {
	tris := triangulateFace([]int{10, 11, 12, 13, 14})
	assert.Equal(t, [][3]int{{10, 11, 12}, {10, 12, 13}, {10, 13, 14}}, tris)
	assert.Equal(t, [][3]int{{7, 8, 9}}, triangulateFace([]int{7, 8, 9}))
	assert.Nil(t, triangulateFace([]int{1, 2}))
}

func TestBuildPentagon(t *testing.T) {
	doc, err := ParseGeometry(pentagonObj)
	if err != nil {
		t.Fatal(err)
	}
	lib := NewLibrary()
	assert.NoError(t, lib.ParseAndAdd("newmtl red\nKd 1 0 0\n"))
	bufs, err := Build(doc, lib, Transform{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 3, bufs.TriangleCount)
	assert.Equal(t, 9, bufs.VertexCount)
	assert.Len(t, bufs.Indices, 9)
	assert.Len(t, bufs.Positions, 27)
	assert.Len(t, bufs.Colors, 27)
	for i, idx := range bufs.Indices {
		assert.Equal(t, uint32(i), idx)
	}
	// every triangle starts at v0
	for tri := 0; tri < 3; tri++ {
		assert.Equal(t, vec3.T{0, 0, 0}, bufs.Vertex(3*tri))
	}
	assert.Equal(t, vec3.T{2, 0, 0}, bufs.Vertex(1))
	assert.Equal(t, vec3.T{3, 1, 0}, bufs.Vertex(2))
	assert.Equal(t, vec3.T{3, 1, 0}, bufs.Vertex(4))
	assert.Equal(t, vec3.T{-1, 1, 0}, bufs.Vertex(8))
	for i := 0; i < bufs.VertexCount; i++ {
		assert.Equal(t, vec3.T{1, 0, 0}, bufs.Color(i))
	}
}

func TestBuildAppliesTransformAndFlatColors(t *testing.T) {
	doc, err := ParseGeometry(`v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
usemtl red
f 1 2 3
usemtl nope
f 1 3 4
`)
	if err != nil {
		t.Fatal(err)
	}
	lib := NewLibrary()
	assert.NoError(t, lib.ParseAndAdd("newmtl red\nKd 1 0 0\n"))
	tr, err := ComputeTransform(doc, 5)
	if err != nil {
		t.Fatal(err)
	}
	bufs, err := Build(doc, lib, tr)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 6, bufs.VertexCount)
	assert.Equal(t, vec3.T{-2.5, -2.5, 0}, bufs.Vertex(0))
	assert.Equal(t, vec3.T{2.5, -2.5, 0}, bufs.Vertex(1))
	assert.Equal(t, vec3.T{2.5, 2.5, 0}, bufs.Vertex(2))
	// shared corners are duplicated, not shared
	assert.Equal(t, bufs.Vertex(0), bufs.Vertex(3))
	assert.Equal(t, bufs.Vertex(2), bufs.Vertex(4))
	for i := 0; i < 3; i++ {
		assert.Equal(t, vec3.T{1, 0, 0}, bufs.Color(i))
		assert.Equal(t, DefaultColor, bufs.Color(3+i))
	}

	bx := bufs.Bounds()
	assert.Equal(t, vec3.T{-2.5, -2.5, 0}, bx.Min)
	assert.Equal(t, vec3.T{2.5, 2.5, 0}, bx.Max)
}

func TestBuildIsDeterministic(t *testing.T) {
	run := func() *RenderBuffers {
		res, err := Process(Asset{
			Geometry:    pentagonObj,
			Materials:   []string{"newmtl red\nKd 1 0.25 0\n"},
			DisplaySize: 3,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res.Buffers
	}
	assert.Equal(t, run(), run())
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, nil, Transform{Scale: 1})
	assert.True(t, errors.Is(err, ErrBuild))

	_, err = Build(&Document{}, nil, Transform{Scale: 1})
	assert.True(t, errors.Is(err, ErrBuild))

	doc, err := ParseGeometry(triangleObj)
	if err != nil {
		t.Fatal(err)
	}
	doc.Faces = append(doc.Faces, Face{Refs: []int{0, 1}})
	bufs, err := Build(doc, nil, Transform{Scale: 1})
	assert.Nil(t, bufs)
	assert.True(t, errors.Is(err, ErrBuild))

	doc.Faces[1] = Face{Refs: []int{0, 1, 3}}
	bufs, err = Build(doc, nil, Transform{Scale: 1})
	assert.Nil(t, bufs)
	assert.True(t, errors.Is(err, ErrBuild))
}
