// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy: that inject registered
// struct definitions and generate constant buffer declarations, so the Go struct that mirrors
// a constant buffer and the WGSL struct the shader reads are declared in exactly one place.
package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation site.
	//
	// Syntax: //@oxy:include <struct_key>
	//
	// Example: //@oxy:include transform
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration whose type is
	// the WGSL name of a registered struct, and records the declaration.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_key>
	//
	// Example: //@oxy:group 0 0 uniform transform transform
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// AnnotationArg is a typed string used as an annotation argument: a struct key, an address
// space or a variable name.
type AnnotationArg string

// Address space arguments accepted by group annotations.
const (
	AnnotationArgUniform     AnnotationArg = "uniform"
	AnnotationArgStorageRead AnnotationArg = "storage_read"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = struct key
	//   - group:   [0] = address space, [1] = var name, [2] = struct key
	Args []AnnotationArg

	// Line is the 1-based source line, used for error reporting.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// parseAnnotation parses one source line. Lines without the annotation prefix return nil and
// no error. Struct keys are validated later against the pre-processor's registry.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include requires exactly one argument", lineNum)
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group requires group, binding, address space, var name and struct", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %w", lineNum, args[1], err)
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q: %w", lineNum, args[2], err)
		}
		space := AnnotationArg(args[3])
		if space != AnnotationArgUniform && space != AnnotationArgStorageRead {
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{space, AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
