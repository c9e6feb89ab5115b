package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles WGSL source with naga and returns the front-end diagnostics on failure.
// The renderer backend runs it before creating a GPU shader module so that errors surface with
// source positions even when the driver reports only a generic failure.
func Validate(source string) error {
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("wgsl validation failed: %w", err)
	}
	if len(spirv) == 0 {
		return fmt.Errorf("wgsl validation produced no output")
	}
	return nil
}
