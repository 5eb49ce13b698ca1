package common

import (
	"errors"
	"fmt"
)

// Error categories. Every concrete error below wraps exactly one of these so callers can branch on
// the category with errors.Is without enumerating individual failures.
var (
	// ErrStructural marks a malformed or incomplete asset. Always fatal to that model's load.
	ErrStructural = errors.New("structural error")

	// ErrPrecondition marks an operation invoked before its required setup completed.
	ErrPrecondition = errors.New("precondition error")

	// ErrNumericDomain marks numeric input outside an operation's domain.
	ErrNumericDomain = errors.New("numeric domain error")
)

// Structural errors raised while decoding and binding assets.
var (
	ErrMissingBinaryChunk      = fmt.Errorf("%w: missing binary chunk", ErrStructural)
	ErrInsufficientBufferViews = fmt.Errorf("%w: insufficient buffer views", ErrStructural)
	ErrNoMeshes                = fmt.Errorf("%w: asset has no meshes", ErrStructural)
	ErrEmptyPrimitive          = fmt.Errorf("%w: mesh has no primitives", ErrStructural)
	ErrAccessorNotFound        = fmt.Errorf("%w: accessor not found", ErrStructural)
	ErrMissingBufferView       = fmt.Errorf("%w: accessor has no buffer view", ErrStructural)
	ErrBufferViewOutOfRange    = fmt.Errorf("%w: buffer view out of range", ErrStructural)
	ErrMissingAttribute        = fmt.Errorf("%w: missing attribute", ErrStructural)
)

// Precondition errors.
var (
	ErrNotLoaded         = fmt.Errorf("%w: model is not loaded", ErrPrecondition)
	ErrLoadInProgress    = fmt.Errorf("%w: model load already in progress", ErrPrecondition)
	ErrShaderNotCompiled = fmt.Errorf("%w: shaders haven't been compiled correctly", ErrPrecondition)
)

// ErrZeroLength is returned when normalizing a vector with no direction.
var ErrZeroLength = fmt.Errorf("%w: zero-length vector", ErrNumericDomain)

// MissingAttributeError reports the required attributes a single mesh lacks.
// It unwraps to ErrMissingAttribute.
type MissingAttributeError struct {
	Mesh       string
	Attributes []string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("mesh %q missing attributes %v", e.Mesh, e.Attributes)
}

func (e *MissingAttributeError) Unwrap() error {
	return ErrMissingAttribute
}
