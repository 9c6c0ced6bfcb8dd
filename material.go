package objmesh

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/flywave/go3d/vec3"
)

// DefaultColor is the neutral grey used for faces whose material is
// missing or was never declared.
var DefaultColor = vec3.T{0.8, 0.8, 0.8}

// Material is one newmtl block of a material text.
type Material struct {
	Name    string
	Diffuse vec3.T
}

// Library maps material names to materials, merged from any number of
// material texts.
type Library struct {
	Default   vec3.T
	materials map[string]*Material
}

func NewLibrary() *Library {
	return &Library{Default: DefaultColor, materials: make(map[string]*Material)}
}

// ParseAndAdd parses a material text and merges its materials into the
// library. Materials already present with the same name are replaced. On
// error the library is left untouched.
func (lib *Library) ParseAndAdd(text string) error {
	return lib.AddReader(strings.NewReader(text))
}

// AddReader is ParseAndAdd over a reader.
func (lib *Library) AddReader(rd io.Reader) error {
	p := &materialParser{def: lib.Default}
	if err := scanLines(rd, p.parseLine); err != nil {
		return err
	}
	if lib.materials == nil {
		lib.materials = make(map[string]*Material, len(p.parsed))
	}
	for _, m := range p.parsed {
		lib.materials[m.Name] = m
	}
	return nil
}

// Resolve returns the diffuse color of the named material, or the library
// default when the name is empty or unknown. A nil library resolves every
// name to DefaultColor.
func (lib *Library) Resolve(name string) vec3.T {
	if lib == nil {
		return DefaultColor
	}
	if m, ok := lib.materials[name]; ok && name != "" {
		return m.Diffuse
	}
	return lib.Default
}

func (lib *Library) Lookup(name string) (*Material, bool) {
	if lib == nil {
		return nil, false
	}
	m, ok := lib.materials[name]
	return m, ok
}

func (lib *Library) Len() int {
	if lib == nil {
		return 0
	}
	return len(lib.materials)
}

// Names returns the material names in sorted order.
func (lib *Library) Names() []string {
	if lib == nil {
		return nil
	}
	names := make([]string, 0, len(lib.materials))
	for n := range lib.materials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type materialParser struct {
	def     vec3.T
	parsed  []*Material
	current *Material
	line    int
}

func (p *materialParser) fail(kind error, directive, msg string) error {
	return &ParseError{Source: "mtl", Line: p.line, Directive: directive, Msg: msg, Err: kind}
}

func (p *materialParser) parseLine(line int, fields []string) error {
	p.line = line
	switch fields[0] {
	case "newmtl":
		if len(fields) < 2 {
			return p.fail(ErrMalformedDirective, "newmtl", "missing material name")
		}
		p.current = &Material{Name: fields[1], Diffuse: p.def}
		p.parsed = append(p.parsed, p.current)
	case "Kd":
		return p.parseKd(fields[1:])
	}
	return nil
}

// Kd r g b
func (p *materialParser) parseKd(fields []string) error {
	if p.current == nil {
		return p.fail(ErrColorWithoutMaterial, "Kd", "")
	}
	if len(fields) != 3 {
		return p.fail(ErrMalformedColor, "Kd", "expected 3 components, got "+strconv.Itoa(len(fields)))
	}
	var c vec3.T
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil || !isFinite(val) {
			return p.fail(ErrMalformedColor, "Kd", "bad component "+strconv.Quote(f))
		}
		c[i] = float32(val)
	}
	p.current.Diffuse = c
	return nil
}
