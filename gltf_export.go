package objmesh

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GltfExport writes render buffers as a binary glTF (.glb) with one mesh
// carrying POSITION, COLOR_0 and an index accessor.
type GltfExport struct {
	Name string
}

func (g *GltfExport) Export(path string, bufs *RenderBuffers) error {
	doc, err := g.ToDocument(bufs)
	if err != nil {
		return err
	}
	return errors.Wrap(gltf.SaveBinary(doc, path), "save glb")
}

func (g *GltfExport) ToDocument(bufs *RenderBuffers) (*gltf.Document, error) {
	if bufs == nil || bufs.VertexCount == 0 {
		return nil, errors.Wrap(ErrBuild, "no vertices to export")
	}
	positions := make([][3]float32, bufs.VertexCount)
	colors := make([][3]uint8, bufs.VertexCount)
	for i := range positions {
		positions[i] = bufs.Vertex(i)
		colors[i] = colorToByte(bufs.Color(i))
	}

	doc := gltf.NewDocument()
	positionAccessor := modeler.WritePosition(doc, positions)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, bufs.Indices)

	name := g.Name
	if name == "" {
		name = "objmesh"
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indicesAccessor),
			Attributes: map[string]uint32{
				"POSITION": positionAccessor,
				"COLOR_0":  colorAccessor,
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}
