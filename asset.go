package objmesh

import (
	"path"
	"strings"
)

const (
	ObjExt = ".obj"
	MtlExt = ".mtl"
)

// Asset is everything the pipeline needs for one model, already fetched and
// decoded as UTF-8 text.
type Asset struct {
	Name        string
	Geometry    string
	Materials   []string
	DisplaySize float64
}

// AssetFile is one downloaded data file of an asset.
type AssetFile struct {
	Path     string
	Contents []byte
}

// AssetFromFiles assembles an Asset from the files of a download. The first
// .obj file is the geometry and every .mtl file, in order, is a material
// source. Textures and other resources are skipped.
func AssetFromFiles(name string, files []AssetFile, displaySize float64) (Asset, error) {
	a := Asset{Name: name, DisplaySize: displaySize}
	found := false
	for _, f := range files {
		switch strings.ToLower(path.Ext(f.Path)) {
		case ObjExt:
			if !found {
				a.Geometry = string(f.Contents)
				found = true
			}
		case MtlExt:
			a.Materials = append(a.Materials, string(f.Contents))
		}
	}
	if !found {
		return Asset{}, ErrNoGeometry
	}
	return a, nil
}
