// Command objmesh converts an OBJ/MTL asset into flat render buffers
// normalized to a display size and writes them as MST, STL or GLB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	objmesh "github.com/flywave/go-objmesh"
	"github.com/hschendel/stl"
)

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		objPath = flag.String("obj", "", "geometry file (.obj, or .stl)")
		size    = flag.Float64("size", 1.0, "target display size of the largest extent")
		format  = flag.String("format", objmesh.GLB, "output format: mst, stl or glb")
		out     = flag.String("out", "", "output file (default: input name with the format extension)")
		decoder = flag.String("decoder", "native", "obj decoder: native or gobj")
		verbose = flag.Bool("v", false, "debug logging")
		mtls    listFlag
	)
	flag.Var(&mtls, "mtl", "material file, may be repeated (default: mtllib entries next to the obj)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *objPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	exporter := objmesh.FormatFactory(*format)
	if exporter == nil {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*objPath, filepath.Ext(*objPath)) + "." + *format
	}

	stage := &objmesh.Stage{}
	var err error
	switch {
	case strings.EqualFold(filepath.Ext(*objPath), ".stl"):
		err = loadStl(stage, *objPath, *size)
	case *decoder == "gobj":
		err = loadGobj(stage, *objPath, mtls, *size)
	default:
		err = loadNative(stage, logger, *objPath, mtls, *size)
	}
	if err != nil {
		logger.Error("load failed", "path", *objPath, "err", err)
		fmt.Fprintln(os.Stderr, objmesh.StatusMessage(err))
		os.Exit(1)
	}

	bufs := stage.Current()
	if err := exporter.Export(*out, bufs); err != nil {
		logger.Error("export failed", "path", *out, "err", err)
		os.Exit(1)
	}
	logger.Info("wrote", "path", *out, "vertices", bufs.VertexCount, "triangles", bufs.TriangleCount)
}

func loadNative(stage *objmesh.Stage, logger *slog.Logger, objPath string, mtls []string, size float64) error {
	files, err := readAssetFiles(objPath, mtls)
	if err != nil {
		return err
	}
	asset, err := objmesh.AssetFromFiles(filepath.Base(objPath), files, size)
	if err != nil {
		return err
	}

	options := objmesh.DefaultLoaderOptions()
	options.DisplaySize = size
	options.Logger = logger
	loader := objmesh.NewLoaderWithOptions(stage, options)
	defer loader.Close()

	pending, err := loader.Load(asset)
	if err != nil {
		return err
	}
	_, err = pending.Wait(context.Background())
	return err
}

func loadGobj(stage *objmesh.Stage, objPath string, mtls []string, size float64) error {
	f, err := os.Open(objPath)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := objmesh.ReadObjDocument(f)
	if err != nil {
		return err
	}
	if len(mtls) == 0 {
		mtls = siblings(objPath, doc.MaterialLibs)
	}
	lib := objmesh.NewLibrary()
	for _, p := range mtls {
		if err := lib.LoadObjMaterials(p); err != nil {
			return err
		}
	}
	return publish(stage, doc, lib, size)
}

func loadStl(stage *objmesh.Stage, path string, size float64) error {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := objmesh.DocumentFromSolid(solid)
	if err != nil {
		return err
	}
	return publish(stage, doc, nil, size)
}

func publish(stage *objmesh.Stage, doc *objmesh.Document, lib *objmesh.Library, size float64) error {
	res, err := objmesh.ProcessDocument(doc, lib, size)
	if err != nil {
		return err
	}
	return stage.Begin().Publish(res.Buffers)
}

// readAssetFiles stands in for the asset downloader: it returns the obj and
// its material files as an asset bundle.
func readAssetFiles(objPath string, mtls []string) ([]objmesh.AssetFile, error) {
	data, err := os.ReadFile(objPath)
	if err != nil {
		return nil, err
	}
	files := []objmesh.AssetFile{{Path: objPath, Contents: data}}
	if len(mtls) == 0 {
		doc, err := objmesh.ParseGeometry(string(data))
		if err != nil {
			return nil, err
		}
		mtls = siblings(objPath, doc.MaterialLibs)
	}
	for _, p := range mtls {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("material file missing, using default color", "path", p)
				continue
			}
			return nil, err
		}
		files = append(files, objmesh.AssetFile{Path: p, Contents: data})
	}
	return files, nil
}

func siblings(objPath string, names []string) []string {
	dir := filepath.Dir(objPath)
	var paths []string
	for _, n := range names {
		if filepath.IsAbs(n) {
			paths = append(paths, n)
		} else {
			paths = append(paths, filepath.Join(dir, n))
		}
	}
	return paths
}
