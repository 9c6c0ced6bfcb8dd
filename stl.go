package objmesh

import (
	"fmt"

	"github.com/flywave/go3d/vec3"
	"github.com/hschendel/stl"
)

// StlExport 将渲染缓冲导出为 STL 文件
// STL 不保存颜色，只写出三角形和面法线
type StlExport struct {
	Name  string
	ASCII bool
}

// NewStlExport 创建一个新的STL导出器实例
func NewStlExport() *StlExport {
	return &StlExport{Name: "objmesh"}
}

func (e *StlExport) Export(path string, bufs *RenderBuffers) error {
	solid, err := e.ToSolid(bufs)
	if err != nil {
		return err
	}
	if err := solid.WriteFile(path); err != nil {
		return fmt.Errorf("写入STL文件失败: %w", err)
	}
	return nil
}

// ToSolid 把渲染缓冲转换成 STL 固体，每个输出三角形对应一个 STL 三角形
func (e *StlExport) ToSolid(bufs *RenderBuffers) (*stl.Solid, error) {
	if bufs == nil || bufs.TriangleCount == 0 {
		return nil, fmt.Errorf("%w: no triangles to export", ErrBuild)
	}
	solid := &stl.Solid{Name: e.Name, IsAscii: e.ASCII}
	solid.Triangles = make([]stl.Triangle, 0, bufs.TriangleCount)
	for t := 0; t < bufs.TriangleCount; t++ {
		var tri stl.Triangle
		var vs [3]vec3.T
		for k := 0; k < 3; k++ {
			vs[k] = bufs.Vertex(int(bufs.Indices[3*t+k]))
			tri.Vertices[k] = stl.Vec3(vs[k])
		}
		tri.Normal = stl.Vec3(faceNormal(vs[0], vs[1], vs[2]))
		solid.Triangles = append(solid.Triangles, tri)
	}
	return solid, nil
}

// DocumentFromSolid 把 STL 固体转换成几何文档，便于走同样的归一化和构建流程
// 顶点不做合并，每个三角形生成三个位置
func DocumentFromSolid(solid *stl.Solid) (*Document, error) {
	if solid == nil || len(solid.Triangles) == 0 {
		return nil, &ParseError{Source: "stl", Err: ErrEmptyGeometry}
	}
	doc := newDocument()
	for _, t := range solid.Triangles {
		base := len(doc.Positions)
		for _, v := range t.Vertices {
			doc.addPosition(vec3dFrom(vec3.T(v)))
		}
		doc.Faces = append(doc.Faces, Face{Refs: []int{base, base + 1, base + 2}})
	}
	return doc, nil
}

// faceNormal is the unit normal of a counter-clockwise triangle.
func faceNormal(v0, v1, v2 vec3.T) vec3.T {
	e1 := vec3.Sub(&v1, &v0)
	e2 := vec3.Sub(&v2, &v0)
	normal := vec3.Cross(&e1, &e2)
	length := normal.Length()
	if length > 0 {
		return vec3.T{normal[0] / length, normal[1] / length, normal[2] / length}
	}
	return vec3.T{0, 0, 1}
}
