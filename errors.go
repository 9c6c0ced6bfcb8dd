package objmesh

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPosition  = errors.New("malformed position")
	ErrDegenerateFace     = errors.New("degenerate face")
	ErrIndexOutOfRange    = errors.New("vertex index out of range")
	ErrEmptyGeometry      = errors.New("empty geometry")
	ErrMalformedFace      = errors.New("malformed face reference")
	ErrMalformedDirective = errors.New("malformed directive")

	ErrColorWithoutMaterial = errors.New("color without material")
	ErrMalformedColor       = errors.New("malformed color")

	ErrDegenerateBounds   = errors.New("degenerate bounds")
	ErrInvalidDisplaySize = errors.New("invalid display size")

	ErrBuild = errors.New("build failed")

	ErrAlreadyPublished = errors.New("render buffers already published")
	ErrNoGeometry       = errors.New("asset has no geometry file")
	ErrLoaderClosed     = errors.New("loader closed")
)

// ParseError reports where in a geometry or material text parsing stopped.
// Err is always one of the sentinel errors above.
type ParseError struct {
	Source    string
	Line      int
	Directive string
	Msg       string
	Err       error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	if e.Directive != "" {
		s += " in '" + e.Directive + "'"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusMessage turns a pipeline failure into the single sentence shown to the user.
// Details belong in the log.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoGeometry):
		return "Asset does not contain an OBJ file."
	case errors.Is(err, ErrColorWithoutMaterial), errors.Is(err, ErrMalformedColor):
		return "Failed to parse MTL file."
	case errors.Is(err, ErrEmptyGeometry):
		return "Model has nothing to render."
	case errors.Is(err, ErrMalformedPosition), errors.Is(err, ErrDegenerateFace),
		errors.Is(err, ErrIndexOutOfRange), errors.Is(err, ErrMalformedFace),
		errors.Is(err, ErrMalformedDirective):
		return "Failed to parse OBJ file."
	case errors.Is(err, ErrDegenerateBounds):
		return "Model is too small to display."
	case errors.Is(err, ErrInvalidDisplaySize):
		return "Invalid display size."
	case errors.Is(err, ErrBuild):
		return "Failed to convert model."
	case errors.Is(err, ErrAlreadyPublished):
		return "Model was already loaded."
	case errors.Is(err, ErrLoaderClosed):
		return "Loader is shut down."
	}
	return "Failed to load model. See logs."
}
