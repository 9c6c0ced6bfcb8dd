package objmesh

const (
	MST = "mst"
	STL = "stl"
	GLB = "glb"
)

// FormatExport writes render buffers to a file in one interchange format.
type FormatExport interface {
	Export(path string, bufs *RenderBuffers) error
}

func FormatFactory(format string) FormatExport {
	switch format {
	case MST:
		return &MstExport{}
	case STL:
		return NewStlExport()
	case GLB:
		return &GltfExport{}
	}
	return nil
}
