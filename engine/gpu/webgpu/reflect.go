package webgpu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// resourceKind classifies a @group/@binding declaration.
type resourceKind int

const (
	resourceUniform resourceKind = iota
	resourceStorage
	resourceTexture
	resourceSampler
)

// resourceDecl is one `@group(G) @binding(B) var<...> name: type;` declaration.
type resourceDecl struct {
	group    uint32
	binding  uint32
	name     string
	typeName string
	kind     resourceKind

	// Buffer resources only.
	size   uint64
	count  int
	stride uint64
}

// vertexField is one @location input of the vertex stage's input struct.
type vertexField struct {
	location uint32
	typeName string
}

// moduleInfo is everything the device needs to know about a WGSL module.
type moduleInfo struct {
	entryPoint  string
	resources   []resourceDecl
	vertexInput []vertexField
}

// typeLayout is the byte size and alignment of a WGSL type in the uniform address space.
type typeLayout struct {
	size  uint64
	align uint64
}

// primitiveLayouts covers the host-shareable scalar, vector and matrix types.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"vec2<i32>":   {8, 8},
	"vec2i":       {8, 8},
	"vec4<i32>":   {16, 16},
	"vec4i":       {16, 16},
	"vec2<u32>":   {8, 8},
	"vec2u":       {8, 8},
	"vec4<u32>":   {16, 16},
	"vec4u":       {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

var (
	// bindDeclRegex captures group, binding, optional address space, name and type of a resource.
	bindDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	structBlockRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex         = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	vertexParamRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+\w+\s*\(\s*\w+\s*:\s*(\w+)`)
)

// reflectModule extracts the entry point, resource declarations and vertex input of a WGSL module.
//
// Parameters:
//   - source: WGSL source
//   - vertex: true for the vertex stage, false for the fragment stage
//
// Returns:
//   - moduleInfo: the reflected module
func reflectModule(source string, vertex bool) moduleInfo {
	cleaned := stripComments(source)
	structs := parseStructs(cleaned)
	layouts := structLayouts(structs)

	var info moduleInfo
	entry := fragmentEntryRegex
	if vertex {
		entry = vertexEntryRegex
	}
	if m := entry.FindStringSubmatch(cleaned); m != nil {
		info.entryPoint = m[1]
	}

	for _, m := range bindDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		binding, _ := strconv.ParseUint(m[2], 10, 32)
		decl := resourceDecl{
			group:    uint32(group),
			binding:  uint32(binding),
			name:     m[4],
			typeName: strings.TrimSpace(m[5]),
			count:    1,
		}
		space := strings.TrimSpace(m[3])
		switch {
		case space == "uniform":
			decl.kind = resourceUniform
		case strings.HasPrefix(space, "storage"):
			decl.kind = resourceStorage
		case strings.HasPrefix(decl.typeName, "sampler"):
			decl.kind = resourceSampler
		default:
			decl.kind = resourceTexture
		}
		if decl.kind == resourceUniform || decl.kind == resourceStorage {
			decl.count, decl.stride = arrayShape(decl.typeName, layouts)
			if l, ok := resolveLayout(decl.typeName, layouts); ok {
				decl.size = roundUp(16, l.size)
			}
		}
		info.resources = append(info.resources, decl)
	}
	sort.Slice(info.resources, func(i, j int) bool {
		a, b := info.resources[i], info.resources[j]
		if a.group != b.group {
			return a.group < b.group
		}
		return a.binding < b.binding
	})

	if vertex {
		info.vertexInput = vertexInput(cleaned, structs)
	}
	return info
}

// vertexInput returns the @location fields of the struct the vertex entry point takes, ordered by
// location.
func vertexInput(source string, structs []parsedStruct) []vertexField {
	m := vertexParamRegex.FindStringSubmatch(source)
	if m == nil {
		return nil
	}
	for _, ps := range structs {
		if ps.name != m[1] {
			continue
		}
		var fields []vertexField
		for _, f := range ps.fields {
			if f.builtin || f.location < 0 {
				continue
			}
			fields = append(fields, vertexField{location: uint32(f.location), typeName: f.typeName})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].location < fields[j].location })
		return fields
	}
	return nil
}

// arrayShape returns the element count and stride of array<T, N>, or 1 and the type's own size.
func arrayShape(typeName string, known map[string]typeLayout) (int, uint64) {
	base, params := splitTypeParams(typeName)
	if base == "array" {
		parts := strings.SplitN(params, ",", 2)
		if len(parts) == 2 {
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if elem, ok := resolveLayout(strings.TrimSpace(parts[0]), known); ok && err == nil {
				return n, roundUp(16, roundUp(elem.align, elem.size))
			}
		}
	}
	if l, ok := resolveLayout(typeName, known); ok {
		return 1, l.size
	}
	return 1, 0
}

// resolveLayout resolves primitives, known structs and fixed-size arrays.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	base, params := splitTypeParams(typeName)
	if base != "array" {
		return typeLayout{}, false
	}
	parts := strings.SplitN(params, ",", 2)
	if len(parts) != 2 {
		return typeLayout{}, false
	}
	elem, ok := resolveLayout(strings.TrimSpace(parts[0]), known)
	if !ok {
		return typeLayout{}, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	// Arrays in the uniform address space have a 16-byte element stride.
	stride := roundUp(16, roundUp(elem.align, elem.size))
	return typeLayout{n * stride, max(elem.align, 16)}, true
}

type parsedField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

func parseStructs(source string) []parsedStruct {
	var out []parsedStruct
	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		ps := parsedStruct{name: m[1]}
		for _, line := range splitTopLevel(m[2]) {
			line = strings.TrimSpace(line)
			fm := fieldRegex.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			f := parsedField{name: fm[1], typeName: strings.TrimSpace(fm[2]), location: -1}
			f.builtin = builtinRegex.MatchString(line)
			if lm := locationRegex.FindStringSubmatch(line); lm != nil {
				f.location, _ = strconv.Atoi(lm[1])
			}
			ps.fields = append(ps.fields, f)
		}
		out = append(out, ps)
	}
	return out
}

// structLayouts computes layouts for every struct whose fields resolve, iterating until no further
// struct can be resolved.
func structLayouts(structs []parsedStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	for progress := true; progress; {
		progress = false
		for _, ps := range structs {
			if _, done := known[ps.name]; done {
				continue
			}
			var offset uint64
			align := uint64(1)
			ok := true
			for _, f := range ps.fields {
				if f.builtin {
					continue
				}
				l, found := resolveLayout(f.typeName, known)
				if !found {
					ok = false
					break
				}
				offset = roundUp(l.align, offset) + l.size
				align = max(align, l.align)
			}
			if ok {
				known[ps.name] = typeLayout{roundUp(align, offset), align}
				progress = true
			}
		}
	}
	return known
}

func roundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// splitTypeParams splits "array<vec3f, 8>" into ("array", "vec3f, 8").
func splitTypeParams(typeName string) (string, string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// splitTopLevel splits at commas outside angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
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

// stripComments removes line comments and nested block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
