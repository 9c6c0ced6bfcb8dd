package objmesh

import (
	"fmt"
	"io"

	gobj "github.com/flywave/go-obj"
	"github.com/flywave/go3d/vec3"
)

// ReadObjDocument decodes geometry with go-obj instead of ReadGeometry and
// converts the result into a Document.
func ReadObjDocument(rd io.Reader) (*Document, error) {
	reader := &gobj.ObjReader{}
	if err := reader.Read(rd); err != nil {
		// go-obj only reports a line-numbered message
		return nil, &ParseError{Source: "obj", Msg: err.Error(), Err: ErrMalformedFace}
	}
	return DocumentFromObjReader(reader)
}

// DocumentFromObjReader converts go-obj output into a Document. go-obj has
// already resolved face corners to 0-based indices; they are checked again
// here since go-obj does not reject bad ones.
func DocumentFromObjReader(reader *gobj.ObjReader) (*Document, error) {
	doc := newDocument()
	for i, v := range reader.V {
		p := vec3dFrom(vec3.T(v))
		if !isFinite(p[0]) || !isFinite(p[1]) || !isFinite(p[2]) {
			return nil, &ParseError{Source: "obj", Msg: fmt.Sprintf("vertex %d", i), Err: ErrMalformedPosition}
		}
		doc.addPosition(p)
	}
	if reader.MTL != "" {
		doc.MaterialLibs = append(doc.MaterialLibs, reader.MTL)
	}
	for i, face := range reader.F {
		if len(face.Corners) < 3 {
			return nil, &ParseError{Source: "obj", Msg: fmt.Sprintf("face %d", i), Err: ErrDegenerateFace}
		}
		f := Face{Refs: make([]int, len(face.Corners)), Material: face.Material}
		for j, corner := range face.Corners {
			if corner.VertexIndex < 0 || corner.VertexIndex >= len(doc.Positions) {
				return nil, &ParseError{Source: "obj", Msg: fmt.Sprintf("face %d corner %d", i, j), Err: ErrIndexOutOfRange}
			}
			f.Refs[j] = corner.VertexIndex
		}
		doc.Faces = append(doc.Faces, f)
	}
	if len(doc.Positions) == 0 || len(doc.Faces) == 0 {
		return nil, &ParseError{Source: "obj", Err: ErrEmptyGeometry}
	}
	return doc, nil
}

// AddObjMaterials merges materials decoded by go-obj. Entries without a
// full diffuse color keep the library default.
func (lib *Library) AddObjMaterials(materials map[string]*gobj.Material) {
	if lib.materials == nil {
		lib.materials = make(map[string]*Material, len(materials))
	}
	for name, m := range materials {
		if m == nil {
			continue
		}
		mat := &Material{Name: name, Diffuse: lib.Default}
		if len(m.Diffuse) >= 3 {
			mat.Diffuse = vec3.T{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2]}
		}
		lib.materials[name] = mat
	}
}

// LoadObjMaterials reads an .mtl file with go-obj and merges it.
func (lib *Library) LoadObjMaterials(path string) error {
	materials, err := gobj.ReadMaterials(path)
	if err != nil {
		return err
	}
	lib.AddObjMaterials(materials)
	return nil
}
