package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// wgslTypeAliases maps the predeclared shorthand vector aliases to their long form.
var wgslTypeAliases = map[string]string{
	"vec2f": "vec2<f32>",
	"vec3f": "vec3<f32>",
	"vec4f": "vec4<f32>",
	"vec2i": "vec2<i32>",
	"vec3i": "vec3<i32>",
	"vec4i": "vec4<i32>",
	"vec2u": "vec2<u32>",
	"vec3u": "vec3<u32>",
	"vec4u": "vec4<u32>",
	"vec2h": "vec2<f16>",
	"vec4h": "vec4<f16>",
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a field or parameter: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> projection: mat4x4<f32>;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

func canonicalType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	if long, ok := wgslTypeAliases[t]; ok {
		return long
	}
	return t
}

func parseEntryPoint(source string, re *regexp.Regexp) string {
	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

func parseBindings(source string) []Binding {
	matches := bindingDeclRegex.FindAllStringSubmatch(source, -1)
	out := make([]Binding, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		out = append(out, Binding{
			Group:        group,
			Binding:      binding,
			AddressSpace: strings.TrimSpace(m[3]),
			Name:         m[4],
			Type:         strings.TrimSpace(m[5]),
		})
	}
	return out
}

// parseVertexInputs reads the @location parameters of the named function, expanding
// struct-typed parameters into their fields.
func parseVertexInputs(source, entry string) []VertexInput {
	params, ok := functionParameters(source, entry)
	if !ok {
		return nil
	}
	structs := parseStructBlocks(source)

	var inputs []VertexInput
	for _, f := range parseFields(params) {
		if f.location >= 0 {
			inputs = append(inputs, VertexInput{Location: f.location, Name: f.name, Type: f.typeName})
			continue
		}
		for _, sf := range structs[f.typeName] {
			if sf.location >= 0 && !sf.isBuiltin {
				inputs = append(inputs, VertexInput{Location: sf.location, Name: sf.name, Type: sf.typeName})
			}
		}
	}
	return inputs
}

// functionParameters returns the text between the parentheses of fn name(...).
func functionParameters(source, name string) (string, bool) {
	loc := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`).FindStringIndex(source)
	if loc == nil {
		return "", false
	}
	start := loc[1]
	depth := 1
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return source[start:i], true
			}
		}
	}
	return "", false
}

func parseStructBlocks(source string) map[string][]parsedField {
	out := make(map[string][]parsedField)
	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		out[m[1]] = parseFields(m[2])
	}
	return out
}

// parseFields parses a comma separated list of struct fields or function parameters.
func parseFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field := parsedField{location: -1, isBuiltin: builtinRegex.MatchString(part)}
		if m := locationRegex.FindStringSubmatch(part); m != nil {
			if loc, err := strconv.Atoi(m[1]); err == nil {
				field.location = loc
			}
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}

func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes /* */ comments, which nest in WGSL.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits at commas outside <> and (), so array<T, N> and
// @location(0) stay whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
