package objmesh

import (
	"strconv"

	"github.com/flywave/go3d/vec3"
	"github.com/pkg/errors"
)

const (
	StepMaterials = "materials"
	StepGeometry  = "geometry"
	StepNormalize = "normalize"
	StepBuild     = "build"
)

// Result holds what one pipeline run produced. On failure Failed names the
// step that stopped the run and the fields filled by earlier steps are kept,
// but Buffers is always nil.
type Result struct {
	Library   *Library
	Document  *Document
	Transform Transform
	Buffers   *RenderBuffers
	Failed    string
}

// Process runs the whole conversion for one asset: materials, geometry,
// normalization, buffer build. It stops at the first failing step.
func Process(a Asset) (*Result, error) {
	return process(a, DefaultColor)
}

func process(a Asset, def vec3.T) (*Result, error) {
	res := &Result{Library: NewLibrary()}
	res.Library.Default = def
	for i, text := range a.Materials {
		if err := res.Library.ParseAndAdd(text); err != nil {
			res.Failed = StepMaterials
			return res, errors.Wrap(err, "material source "+strconv.Itoa(i))
		}
	}

	doc, err := ParseGeometry(a.Geometry)
	if err != nil {
		res.Failed = StepGeometry
		return res, errors.Wrap(err, "geometry")
	}
	return ProcessDocument(doc, res.Library, a.DisplaySize)
}

// ProcessDocument runs normalization and build for a document that was
// decoded elsewhere, such as by DocumentFromSolid or DocumentFromObjReader.
func ProcessDocument(doc *Document, lib *Library, displaySize float64) (*Result, error) {
	res := &Result{Library: lib, Document: doc}
	tr, err := ComputeTransform(doc, displaySize)
	if err != nil {
		res.Failed = StepNormalize
		return res, errors.Wrap(err, "normalize")
	}
	res.Transform = tr
	bufs, err := Build(doc, lib, tr)
	if err != nil {
		res.Failed = StepBuild
		return res, errors.Wrap(err, "build")
	}
	res.Buffers = bufs
	return res, nil
}
