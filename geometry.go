package objmesh

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

// Face is one polygon of a geometry document. Refs holds 0-based indices
// into Document.Positions, already resolved from the 1-based or negative
// references of the source text.
type Face struct {
	Refs     []int
	Material string // "" when no usemtl was active
	Line     int
}

// Document is the parsed form of a geometry text.
type Document struct {
	Positions    []vec3d.T
	Faces        []Face
	Bounds       vec3d.Box
	MaterialLibs []string
	Warnings     []string
}

func (doc *Document) BoundsMin() vec3d.T { return doc.Bounds.Min }

func (doc *Document) BoundsMax() vec3d.T { return doc.Bounds.Max }

// BoundsCenter is the centre of the axis-aligned bounding box.
func (doc *Document) BoundsCenter() vec3d.T {
	mn, mx := doc.Bounds.Min, doc.Bounds.Max
	return vec3d.T{(mn[0] + mx[0]) / 2, (mn[1] + mx[1]) / 2, (mn[2] + mx[2]) / 2}
}

// BoundsSize is the per-axis extent of the bounding box.
func (doc *Document) BoundsSize() vec3d.T {
	return vec3d.Sub(&doc.Bounds.Max, &doc.Bounds.Min)
}

func vec3dFrom(v vec3.T) vec3d.T {
	return vec3d.T{float64(v[0]), float64(v[1]), float64(v[2])}
}

func newDocument() *Document {
	return &Document{Bounds: vec3d.MinBox}
}

func (doc *Document) addPosition(p vec3d.T) {
	doc.Positions = append(doc.Positions, p)
	doc.Bounds.Extend(&p)
}

// ParseGeometry parses a geometry text (the position/face subset of the
// Wavefront OBJ format).
func ParseGeometry(text string) (*Document, error) {
	return ReadGeometry(strings.NewReader(text))
}

// ReadGeometry is ParseGeometry over a reader.
func ReadGeometry(rd io.Reader) (*Document, error) {
	p := &geometryParser{doc: newDocument()}
	if err := scanLines(rd, p.parseLine); err != nil {
		return nil, err
	}
	if len(p.doc.Positions) == 0 || len(p.doc.Faces) == 0 {
		return nil, &ParseError{
			Source: "obj",
			Line:   p.line,
			Msg:    "positions: " + strconv.Itoa(len(p.doc.Positions)) + ", faces: " + strconv.Itoa(len(p.doc.Faces)),
			Err:    ErrEmptyGeometry,
		}
	}
	return p.doc, nil
}

type geometryParser struct {
	doc      *Document
	material string
	line     int
}

// scanLines feeds every trimmed, non-comment line to fn as fields.
func scanLines(rd io.Reader, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (p *geometryParser) fail(kind error, directive, msg string) error {
	return &ParseError{Source: "obj", Line: p.line, Directive: directive, Msg: msg, Err: kind}
}

func (p *geometryParser) parseLine(line int, fields []string) error {
	p.line = line
	switch fields[0] {
	case "v":
		return p.parseVertex(fields[1:])
	case "f":
		return p.parseFace(fields[1:])
	case "usemtl":
		if len(fields) < 2 {
			return p.fail(ErrMalformedDirective, "usemtl", "missing material name")
		}
		p.material = fields[1]
	case "mtllib":
		p.doc.MaterialLibs = append(p.doc.MaterialLibs, fields[1:]...)
	case "vt", "vn", "vp", "o", "g", "s", "l", "p":
	default:
		p.doc.Warnings = append(p.doc.Warnings, "line "+strconv.Itoa(line)+": directive not supported: "+fields[0])
	}
	return nil
}

// v <x> <y> <z>
func (p *geometryParser) parseVertex(fields []string) error {
	if len(fields) != 3 {
		return p.fail(ErrMalformedPosition, "v", "expected 3 coordinates, got "+strconv.Itoa(len(fields)))
	}
	var v vec3d.T
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil || !isFinite(val) {
			return p.fail(ErrMalformedPosition, "v", "bad coordinate "+strconv.Quote(f))
		}
		v[i] = val
	}
	p.doc.addPosition(v)
	return nil
}

// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (p *geometryParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.fail(ErrDegenerateFace, "f", "expected at least 3 vertices, got "+strconv.Itoa(len(fields)))
	}
	count := len(p.doc.Positions)
	face := Face{Refs: make([]int, len(fields)), Material: p.material, Line: p.line}
	for i, f := range fields {
		head, _, _ := strings.Cut(f, "/")
		val, err := strconv.Atoi(head)
		if err != nil {
			return p.fail(ErrMalformedFace, "f", "bad vertex reference "+strconv.Quote(f))
		}
		idx, ok := resolveIndex(val, count)
		if !ok {
			return p.fail(ErrIndexOutOfRange, "f", "vertex "+strconv.Itoa(val)+" with "+strconv.Itoa(count)+" positions")
		}
		face.Refs[i] = idx
	}
	p.doc.Faces = append(p.doc.Faces, face)
	return nil
}

// isFinite rejects the nan and inf spellings strconv accepts.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// resolveIndex maps a 1-based or negative (relative to the end) reference
// onto a 0-based index given count positions parsed so far.
func resolveIndex(ref, count int) (int, bool) {
	var idx int
	switch {
	case ref > 0:
		idx = ref - 1
	case ref < 0:
		idx = count + ref
	default:
		return 0, false
	}
	if idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}
