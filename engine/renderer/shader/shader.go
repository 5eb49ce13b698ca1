// Package shader reflects the interface of a WGSL program: its entry points, vertex inputs and
// uniform bindings. Devices use it to confirm a program matches the vertex slots the binder fills
// before they report it as compiled.
package shader

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrMissingEntryPoint  = errors.New("shader entry point not found")
	ErrMissingVertexInput = errors.New("shader vertex input not found")
	ErrVertexInputType    = errors.New("shader vertex input has unexpected type")
	ErrMissingUniform     = errors.New("shader uniform binding not found")
)

// VertexInput is one @location input of the vertex entry point.
type VertexInput struct {
	Location int
	Name     string
	Type     string
}

// Binding is one @group/@binding resource declaration.
type Binding struct {
	Group        int
	Binding      int
	AddressSpace string
	Name         string
	Type         string
}

// Program is the reflected interface of a WGSL source.
type Program struct {
	Label         string
	VertexEntry   string
	FragmentEntry string
	Inputs        []VertexInput
	Bindings      []Binding
}

// Reflect parses source and returns its reflected interface.
// Vertex inputs are read from the vertex entry point's parameters; a struct-typed parameter
// contributes the @location fields of that struct.
//
// Parameters:
//   - label: a name used in errors
//   - source: the WGSL source
//
// Returns:
//   - *Program: the reflected program
//   - error: ErrMissingEntryPoint if no @vertex or @fragment function is declared
func Reflect(label, source string) (*Program, error) {
	cleaned := stripComments(source)

	p := &Program{
		Label:         label,
		VertexEntry:   parseEntryPoint(cleaned, vertexEntryRegex),
		FragmentEntry: parseEntryPoint(cleaned, fragmentEntryRegex),
		Bindings:      parseBindings(cleaned),
	}
	if p.VertexEntry == "" {
		return nil, fmt.Errorf("%s: @vertex: %w", label, ErrMissingEntryPoint)
	}
	if p.FragmentEntry == "" {
		return nil, fmt.Errorf("%s: @fragment: %w", label, ErrMissingEntryPoint)
	}

	p.Inputs = parseVertexInputs(cleaned, p.VertexEntry)
	sort.Slice(p.Inputs, func(i, j int) bool { return p.Inputs[i].Location < p.Inputs[j].Location })
	return p, nil
}

// Input returns the vertex input at location.
func (p *Program) Input(location int) (VertexInput, bool) {
	for _, in := range p.Inputs {
		if in.Location == location {
			return in, true
		}
	}
	return VertexInput{}, false
}

// RequireInput checks that the vertex entry point reads location with the given WGSL type.
// Shorthand aliases such as vec3f are accepted for vec3<f32>.
//
// Parameters:
//   - location: the @location index
//   - wgslType: the expected type, e.g. "vec3<f32>"
//
// Returns:
//   - error: ErrMissingVertexInput or ErrVertexInputType
func (p *Program) RequireInput(location int, wgslType string) error {
	in, ok := p.Input(location)
	if !ok {
		return fmt.Errorf("%s: @location(%d): %w", p.Label, location, ErrMissingVertexInput)
	}
	if canonicalType(in.Type) != canonicalType(wgslType) {
		return fmt.Errorf("%s: @location(%d) %s is %s, want %s: %w", p.Label, location, in.Name, in.Type, wgslType, ErrVertexInputType)
	}
	return nil
}

// RequireUniform checks that a uniform is declared at group and binding.
//
// Returns:
//   - error: ErrMissingUniform if nothing uniform is bound there
func (p *Program) RequireUniform(group, binding int) error {
	for _, b := range p.Bindings {
		if b.Group == group && b.Binding == binding && b.AddressSpace == "uniform" {
			return nil
		}
	}
	return fmt.Errorf("%s: @group(%d) @binding(%d): %w", p.Label, group, binding, ErrMissingUniform)
}
