package mesh_builder

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/loader"
)

// Default cylinder dimensions used by CreateCylinderPC.
const (
	DefaultCylinderRadius float32 = 1
	DefaultCylinderHeight float32 = 2
)

// NormalColor colors a vertex by its normal, mapping each axis from [-1, 1] to [0, 1].
func NormalColor(_ int, v graphics.Vertex) common.Color {
	return common.Color{
		R: v.Normal.X*0.5 + 0.5,
		G: v.Normal.Y*0.5 + 0.5,
		B: v.Normal.Z*0.5 + 0.5,
		A: 1,
	}
}

// ToPC converts a full mesh to position and color vertices.
//
// Parameters:
//   - m: the source mesh
//   - color: returns the color of the vertex at an index, nil for NormalColor
//
// Returns:
//   - graphics.MeshPC: the colored mesh sharing m's indices
func ToPC(m graphics.MeshFull, color func(i int, v graphics.Vertex) common.Color) graphics.MeshPC {
	if color == nil {
		color = NormalColor
	}
	out := graphics.MeshPC{Vertices: make([]graphics.VertexPC, len(m.Vertices)), Indices: m.Indices}
	for i, v := range m.Vertices {
		out.Vertices[i] = graphics.VertexPC{Position: v.Position, Color: color(i, v)}
	}
	return out
}

// ToPX converts a full mesh to position and texture coordinate vertices.
func ToPX(m graphics.MeshFull) graphics.MeshPX {
	out := graphics.MeshPX{Vertices: make([]graphics.VertexPX, len(m.Vertices)), Indices: m.Indices}
	for i, v := range m.Vertices {
		out.Vertices[i] = graphics.VertexPX{Position: v.Position, UV: v.UV}
	}
	return out
}

func solid(c common.Color) func(int, graphics.Vertex) common.Color {
	return func(int, graphics.Vertex) common.Color { return c }
}

// CreateCubePC creates a cube of edge length size. With a color every vertex uses it; without,
// faces are colored by their normal.
func CreateCubePC(size float32, color ...common.Color) graphics.MeshPC {
	m := Shapes[ShapeCube](ShapeParams{Size: size})
	if len(color) > 0 {
		return ToPC(m, solid(color[0]))
	}
	return ToPC(m, nil)
}

// CreatePyramidPC creates a square pyramid of edge length size, apex up.
func CreatePyramidPC(size float32) graphics.MeshPC {
	return ToPC(Shapes[ShapePyramid](ShapeParams{Size: size}), nil)
}

// CreateRectanglePC creates a box with the given extents.
func CreateRectanglePC(width, height, depth float32) graphics.MeshPC {
	return ToPC(Shapes[ShapeRectangle](ShapeParams{Width: width, Height: height, Depth: depth}), nil)
}

// CreatePlanePC creates a rows x columns grid with spacing between lines.
//
// Parameters:
//   - rows: the number of quad rows, at least 1
//   - columns: the number of quad columns, at least 1
//   - spacing: the edge length of each quad
//   - horizontal: true for an XZ floor facing +Y, false for an XY wall facing -Z
//
// Returns:
//   - graphics.MeshPC: the plane with (rows+1)*(columns+1) vertices
func CreatePlanePC(rows, columns int, spacing float32, horizontal bool) graphics.MeshPC {
	return ToPC(Shapes[ShapePlane](planeParams(rows, columns, spacing, horizontal)), nil)
}

// CreateCylinderPC creates a capped cylinder of DefaultCylinderRadius and DefaultCylinderHeight.
func CreateCylinderPC(slices, rings int) graphics.MeshPC {
	m := Shapes[ShapeCylinder](ShapeParams{
		Slices: slices,
		Rings:  rings,
		Radius: DefaultCylinderRadius,
		Height: DefaultCylinderHeight,
	})
	return ToPC(m, nil)
}

// CreateSpherePC creates a UV sphere colored by its normals.
func CreateSpherePC(slices, rings int, radius float32) graphics.MeshPC {
	return ToPC(CreateSphere(slices, rings, radius), nil)
}

// CreateCubePX creates a textured cube; every face maps the full texture.
func CreateCubePX(size float32) graphics.MeshPX {
	return ToPX(Shapes[ShapeCube](ShapeParams{Size: size}))
}

// CreateSpherePX creates a textured UV sphere.
func CreateSpherePX(slices, rings int, radius float32) graphics.MeshPX {
	return ToPX(CreateSphere(slices, rings, radius))
}

// CreateSphere creates a lit UV sphere.
//
// Parameters:
//   - slices: longitude subdivisions, at least 3
//   - rings: latitude subdivisions, at least 2
//   - radius: the sphere radius
//
// Returns:
//   - graphics.MeshFull: (rings+1)*(slices+1) vertices with a welded seam column
func CreateSphere(slices, rings int, radius float32) graphics.MeshFull {
	return Shapes[ShapeSphere](ShapeParams{Slices: slices, Rings: rings, Radius: radius})
}

// CreatePlanePX creates a textured grid; the texture spans the whole plane.
func CreatePlanePX(rows, columns int, spacing float32, horizontal bool) graphics.MeshPX {
	return ToPX(Shapes[ShapePlane](planeParams(rows, columns, spacing, horizontal)))
}

// CreatePlane creates a lit grid.
func CreatePlane(rows, columns int, spacing float32, horizontal bool) graphics.MeshFull {
	return Shapes[ShapePlane](planeParams(rows, columns, spacing, horizontal))
}

// CreateSkySpherePX creates an inward-facing sphere for sky textures.
func CreateSkySpherePX(slices, rings int, radius float32) graphics.MeshPX {
	return ToPX(Shapes[ShapeSkySphere](ShapeParams{Slices: slices, Rings: rings, Radius: radius}))
}

// CreateScreenQuadPX creates a quad covering clip space, for full-screen passes.
func CreateScreenQuadPX() graphics.MeshPX {
	return ToPX(Shapes[ShapeScreenQuad](ShapeParams{}))
}

// CreateOBJPX loads an OBJ file as a single textured mesh. Every part of the file is merged and
// positions are multiplied by scale.
//
// Parameters:
//   - path: the OBJ file path
//   - scale: the uniform position scale
//
// Returns:
//   - graphics.MeshPX: the merged mesh
//   - error: error if the file cannot be decoded
func CreateOBJPX(path string, scale float32) (graphics.MeshPX, error) {
	if loader.FormatFromPath(path) != loader.FormatOBJ {
		return graphics.MeshPX{}, fmt.Errorf("mesh_builder: %s is not an OBJ file", path)
	}
	model, err := loader.NewLoader(loader.WithScale(scale)).Load(path)
	if err != nil {
		return graphics.MeshPX{}, err
	}

	var merged graphics.MeshFull
	for _, part := range model.Meshes {
		base := uint32(len(merged.Vertices))
		merged.Vertices = append(merged.Vertices, part.Vertices...)
		for _, idx := range part.Indices {
			merged.Indices = append(merged.Indices, base+idx)
		}
	}
	return ToPX(merged), nil
}

func planeParams(rows, columns int, spacing float32, horizontal bool) ShapeParams {
	return ShapeParams{Rows: rows, Columns: columns, Spacing: spacing, Horizontal: horizontal}
}
