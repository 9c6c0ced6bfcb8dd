package objmesh

import (
	"os"

	"github.com/chewxy/math32"
	mst "github.com/flywave/go-mst"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
	"github.com/pkg/errors"
)

// MstExport 将渲染缓冲写成 MST 网格
// 每种颜色对应一个 BaseMaterial，三角形按颜色分组
type MstExport struct{}

func (e *MstExport) Export(path string, bufs *RenderBuffers) error {
	mesh, _, err := e.ToMesh(bufs)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create mst file")
	}
	mst.MeshMarshal(f, mesh)
	return errors.Wrap(f.Close(), "close mst file")
}

// ToMesh 转换为 MST 网格，并返回顶点的边界框
func (e *MstExport) ToMesh(bufs *RenderBuffers) (*mst.Mesh, *[6]float64, error) {
	if bufs == nil || bufs.TriangleCount == 0 {
		return nil, nil, errors.Wrap(ErrBuild, "no triangles to export")
	}
	mesh := mst.NewMesh()
	meshNode := &mst.MeshNode{}
	ext := vec3d.MinBox

	groups := make(map[[3]byte]*mst.MeshTriangle)
	for t := 0; t < bufs.TriangleCount; t++ {
		var corners [3]uint32
		for k := 0; k < 3; k++ {
			v := bufs.Vertex(int(bufs.Indices[3*t+k]))
			corners[k] = uint32(len(meshNode.Vertices))
			meshNode.Vertices = append(meshNode.Vertices, v)
			p := vec3dFrom(v)
			ext.Extend(&p)
		}

		// 每个面的三个顶点颜色相同，取第一个即可
		key := colorToByte(bufs.Color(int(bufs.Indices[3*t])))
		mtg, ok := groups[key]
		if !ok {
			mtg = &mst.MeshTriangle{Batchid: int32(len(mesh.Materials))}
			groups[key] = mtg
			mesh.Materials = append(mesh.Materials, &mst.BaseMaterial{Color: key})
			meshNode.FaceGroup = append(meshNode.FaceGroup, mtg)
		}
		mtg.Faces = append(mtg.Faces, &mst.Face{Vertex: corners})
	}

	meshNode.ReComputeNormal()
	mesh.Nodes = append(mesh.Nodes, meshNode)
	return mesh, ext.Array(), nil
}

func colorToByte(c vec3.T) [3]byte {
	var out [3]byte
	for i, v := range c {
		v = math32.Max(0, math32.Min(1, v))
		out[i] = byte(math32.Floor(v*255 + 0.5))
	}
	return out
}
