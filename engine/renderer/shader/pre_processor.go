package shader

import (
	"fmt"
	"strings"
)

// StructSource pairs the WGSL source of a struct definition with its WGSL type name.
type StructSource struct {
	// Source is the WGSL struct definition injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry map[AnnotationArg]StructSource
	declarations   []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and collects the generated binding
// declarations.
type PreProcessor interface {
	// Process replaces every annotation in source with its WGSL expansion. Includes are
	// expanded once; repeated includes of the same struct are dropped.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed or names an unregistered struct
	Process(source string) (string, error)

	// Declarations returns the group annotations found by the most recent Process call.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that resolves struct keys against the given registry.
func NewPreProcessor(structs map[AnnotationArg]StructSource) PreProcessor {
	registry := make(map[AnnotationArg]StructSource, len(structs))
	for k, v := range structs {
		registry[k] = v
	}
	return &preProcessor{structRegistry: registry}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include struct %q", a.Line, a.Args[0])
			}
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:group struct %q", a.Line, a.Args[2])
			}
			space := "var<uniform>"
			if a.Args[0] == AnnotationArgStorageRead {
				space = "var<storage, read>"
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, space, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
