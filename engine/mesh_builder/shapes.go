// Package mesh_builder generates procedural meshes. Every generator is a pure function of its
// parameters: the same input always yields byte-identical output.
//
// Meshes are left-handed with clockwise front faces. Parametric surfaces (sphere, cylinder)
// duplicate the seam column at longitude 0 and 2pi so texture coordinates wrap without a jump.
package mesh_builder

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
)

// Shape selects a generator from the Shapes table.
type Shape int

const (
	ShapeCube Shape = iota
	ShapePyramid
	ShapeRectangle
	ShapePlane
	ShapeCylinder
	ShapeSphere
	ShapeSkySphere
	ShapeScreenQuad
)

var shapeNames = map[Shape]string{
	ShapeCube:       "cube",
	ShapePyramid:    "pyramid",
	ShapeRectangle:  "rectangle",
	ShapePlane:      "plane",
	ShapeCylinder:   "cylinder",
	ShapeSphere:     "sphere",
	ShapeSkySphere:  "sky sphere",
	ShapeScreenQuad: "screen quad",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ShapeParams carries the parameters of every generator. Each generator reads only the fields
// it needs.
type ShapeParams struct {
	// Size is the edge length of a cube or pyramid.
	Size float32

	// Width, Height and Depth are the extents of a rectangle. Height is also the cylinder height.
	Width, Height, Depth float32

	// Radius is the sphere and cylinder radius.
	Radius float32

	// Slices and Rings are the longitude and latitude subdivisions of spheres and cylinders.
	Slices, Rings int

	// Rows, Columns and Spacing describe a tessellated plane.
	Rows, Columns int
	Spacing       float32

	// Horizontal lays a plane in XZ facing +Y; otherwise it stands in XY facing -Z.
	Horizontal bool
}

// ShapeFunc generates a full-vertex mesh from its parameters.
type ShapeFunc func(p ShapeParams) graphics.MeshFull

// Shapes is the generator table. Colored and textured variants are derived from its output by
// ToPC and ToPX.
var Shapes = map[Shape]ShapeFunc{
	ShapeCube: func(p ShapeParams) graphics.MeshFull {
		return box(p.Size, p.Size, p.Size)
	},
	ShapeRectangle: func(p ShapeParams) graphics.MeshFull {
		return box(p.Width, p.Height, p.Depth)
	},
	ShapePyramid: func(p ShapeParams) graphics.MeshFull {
		return pyramid(p.Size)
	},
	ShapePlane: func(p ShapeParams) graphics.MeshFull {
		return plane(p.Rows, p.Columns, p.Spacing, p.Horizontal)
	},
	ShapeCylinder: func(p ShapeParams) graphics.MeshFull {
		return cylinder(p.Slices, p.Rings, p.Radius, p.Height)
	},
	ShapeSphere: func(p ShapeParams) graphics.MeshFull {
		return sphere(p.Slices, p.Rings, p.Radius, false)
	},
	ShapeSkySphere: func(p ShapeParams) graphics.MeshFull {
		return sphere(p.Slices, p.Rings, p.Radius, true)
	},
	ShapeScreenQuad: func(ShapeParams) graphics.MeshFull {
		return screenQuad()
	},
}

// Build runs the generator registered for shape.
//
// Parameters:
//   - shape: the shape to generate
//   - p: the generator parameters
//
// Returns:
//   - graphics.MeshFull: the generated mesh
//   - error: error if no generator is registered for shape
func Build(shape Shape, p ShapeParams) (graphics.MeshFull, error) {
	fn, ok := Shapes[shape]
	if !ok {
		return graphics.MeshFull{}, fmt.Errorf("mesh_builder: no generator for %s", shape)
	}
	return fn(p), nil
}
