package mesh_builder

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/chewxy/math32"
)

// boxFace is one side of a box seen from outside: its outward normal, and the directions that
// appear as right and up to a viewer facing it.
type boxFace struct {
	normal, right, up common.Vector3
}

var boxFaces = [6]boxFace{
	{common.Vec3(0, 0, -1), common.Vec3(1, 0, 0), common.Vec3(0, 1, 0)},  // front
	{common.Vec3(1, 0, 0), common.Vec3(0, 0, 1), common.Vec3(0, 1, 0)},   // right
	{common.Vec3(0, 0, 1), common.Vec3(-1, 0, 0), common.Vec3(0, 1, 0)},  // back
	{common.Vec3(-1, 0, 0), common.Vec3(0, 0, -1), common.Vec3(0, 1, 0)}, // left
	{common.Vec3(0, 1, 0), common.Vec3(1, 0, 0), common.Vec3(0, 0, 1)},   // top
	{common.Vec3(0, -1, 0), common.Vec3(1, 0, 0), common.Vec3(0, 0, -1)}, // bottom
}

func mulComponents(a, b common.Vector3) common.Vector3 {
	return common.Vec3(a.X*b.X, a.Y*b.Y, a.Z*b.Z)
}

// appendQuad appends a quad given its corners as seen from the front, in top-left, top-right,
// bottom-right, bottom-left order.
func appendQuad(m *graphics.MeshFull, normal, tangent common.Vector3, tl, tr, br, bl common.Vector3) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices,
		graphics.Vertex{Position: tl, Normal: normal, Tangent: tangent, UV: common.Vector2{X: 0, Y: 0}},
		graphics.Vertex{Position: tr, Normal: normal, Tangent: tangent, UV: common.Vector2{X: 1, Y: 0}},
		graphics.Vertex{Position: br, Normal: normal, Tangent: tangent, UV: common.Vector2{X: 1, Y: 1}},
		graphics.Vertex{Position: bl, Normal: normal, Tangent: tangent, UV: common.Vector2{X: 0, Y: 1}},
	)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// box generates an axis-aligned box centered on the origin with four vertices per face.
func box(width, height, depth float32) graphics.MeshFull {
	half := common.Vec3(width/2, height/2, depth/2)
	m := graphics.MeshFull{
		Vertices: make([]graphics.Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		corner := func(r, u float32) common.Vector3 {
			return mulComponents(f.normal.Add(f.right.Scale(r)).Add(f.up.Scale(u)), half)
		}
		appendQuad(&m, f.normal, f.right, corner(-1, 1), corner(1, 1), corner(1, -1), corner(-1, -1))
	}
	return m
}

// pyramid generates a square pyramid of edge length size centered on the origin, apex up.
// Faces are flat shaded.
func pyramid(size float32) graphics.MeshFull {
	h := size / 2
	apex := common.Vec3(0, h, 0)
	m := graphics.MeshFull{
		Vertices: make([]graphics.Vertex, 0, 16),
		Indices:  make([]uint32, 0, 18),
	}

	for _, f := range boxFaces[:4] {
		bl := f.normal.Sub(f.right).Scale(h)
		br := f.normal.Add(f.right).Scale(h)
		bl.Y, br.Y = -h, -h

		normal := br.Sub(apex).Cross(bl.Sub(apex)).Normalize()
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			graphics.Vertex{Position: apex, Normal: normal, Tangent: f.right, UV: common.Vector2{X: 0.5, Y: 0}},
			graphics.Vertex{Position: br, Normal: normal, Tangent: f.right, UV: common.Vector2{X: 1, Y: 1}},
			graphics.Vertex{Position: bl, Normal: normal, Tangent: f.right, UV: common.Vector2{X: 0, Y: 1}},
		)
		m.Indices = append(m.Indices, base, base+1, base+2)
	}

	bottom := boxFaces[5]
	corner := func(r, u float32) common.Vector3 {
		return bottom.normal.Add(bottom.right.Scale(r)).Add(bottom.up.Scale(u)).Scale(h)
	}
	appendQuad(&m, bottom.normal, bottom.right, corner(-1, 1), corner(1, 1), corner(1, -1), corner(-1, -1))
	return m
}

// plane generates a rows x columns grid of quads centered on the origin. A horizontal plane lies
// in XZ facing +Y; a vertical plane lies in XY facing -Z.
func plane(rows, columns int, spacing float32, horizontal bool) graphics.MeshFull {
	rows, columns = max(1, rows), max(1, columns)
	halfW := float32(columns) * spacing / 2
	halfH := float32(rows) * spacing / 2

	normal := common.Vec3(0, 0, -1)
	if horizontal {
		normal = common.Vec3(0, 1, 0)
	}
	tangent := common.Vec3(1, 0, 0)

	m := graphics.MeshFull{
		Vertices: make([]graphics.Vertex, 0, (rows+1)*(columns+1)),
		Indices:  make([]uint32, 0, rows*columns*6),
	}
	for r := 0; r <= rows; r++ {
		for c := 0; c <= columns; c++ {
			x := -halfW + float32(c)*spacing
			y := halfH - float32(r)*spacing
			pos := common.Vec3(x, y, 0)
			if horizontal {
				pos = common.Vec3(x, 0, y)
			}
			m.Vertices = append(m.Vertices, graphics.Vertex{
				Position: pos,
				Normal:   normal,
				Tangent:  tangent,
				UV:       common.Vector2{X: float32(c) / float32(columns), Y: float32(r) / float32(rows)},
			})
		}
	}
	appendGridIndices(&m, rows, columns, false)
	return m
}

// appendGridIndices triangulates a (rows+1) x (columns+1) vertex grid laid out row by row, where
// columns advance to the viewer's right and rows advance down.
func appendGridIndices(m *graphics.MeshFull, rows, columns int, inward bool) {
	stride := uint32(columns + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			tl := uint32(r)*stride + uint32(c)
			tr, bl := tl+1, tl+stride
			br := bl + 1
			if inward {
				m.Indices = append(m.Indices, tl, br, tr, tl, bl, br)
			} else {
				m.Indices = append(m.Indices, tl, tr, br, tl, br, bl)
			}
		}
	}
}

// sphere generates a UV sphere with (rings+1)*(slices+1) vertices. An inverted sphere faces
// inward with its texture mirrored so it reads correctly from inside, as a sky dome.
func sphere(slices, rings int, radius float32, inverted bool) graphics.MeshFull {
	slices, rings = max(3, slices), max(2, rings)
	m := graphics.MeshFull{
		Vertices: make([]graphics.Vertex, 0, (rings+1)*(slices+1)),
		Indices:  make([]uint32, 0, rings*slices*6),
	}

	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for s := 0; s <= slices; s++ {
			// the last column repeats the first at 2pi
			theta := 2 * math32.Pi * float32(s%slices) / float32(slices)
			sinTheta, cosTheta := math32.Sincos(theta)

			normal := common.Vec3(sinPhi*cosTheta, cosPhi, sinPhi*sinTheta)
			tangent := common.Vec3(-sinTheta, 0, cosTheta)
			u := float32(s) / float32(slices)
			if inverted {
				normal = normal.Scale(-1)
				tangent = tangent.Scale(-1)
				u = 1 - u
			}
			m.Vertices = append(m.Vertices, graphics.Vertex{
				Position: common.Vec3(sinPhi*cosTheta, cosPhi, sinPhi*sinTheta).Scale(radius),
				Normal:   normal,
				Tangent:  tangent,
				UV:       common.Vector2{X: u, Y: float32(r) / float32(rings)},
			})
		}
	}
	appendGridIndices(&m, rings, slices, inverted)
	return m
}

// cylinder generates an open tube of rings x slices quads closed by two caps. It is centered on
// the origin along Y.
func cylinder(slices, rings int, radius, height float32) graphics.MeshFull {
	slices, rings = max(3, slices), max(1, rings)
	h := height / 2
	m := graphics.MeshFull{
		Vertices: make([]graphics.Vertex, 0, (rings+1)*(slices+1)+2*(slices+2)),
		Indices:  make([]uint32, 0, rings*slices*6+2*slices*3),
	}

	for r := 0; r <= rings; r++ {
		y := h - height*float32(r)/float32(rings)
		for s := 0; s <= slices; s++ {
			theta := 2 * math32.Pi * float32(s%slices) / float32(slices)
			sinTheta, cosTheta := math32.Sincos(theta)
			m.Vertices = append(m.Vertices, graphics.Vertex{
				Position: common.Vec3(cosTheta*radius, y, sinTheta*radius),
				Normal:   common.Vec3(cosTheta, 0, sinTheta),
				Tangent:  common.Vec3(-sinTheta, 0, cosTheta),
				UV:       common.Vector2{X: float32(s) / float32(slices), Y: float32(r) / float32(rings)},
			})
		}
	}
	appendGridIndices(&m, rings, slices, false)

	appendCap(&m, slices, radius, h, true)
	appendCap(&m, slices, radius, -h, false)
	return m
}

// appendCap adds a triangle fan closing the cylinder at height y.
func appendCap(m *graphics.MeshFull, slices int, radius, y float32, top bool) {
	normal := common.Vec3(0, -1, 0)
	if top {
		normal = common.Vec3(0, 1, 0)
	}
	tangent := common.Vec3(1, 0, 0)

	center := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, graphics.Vertex{
		Position: common.Vec3(0, y, 0),
		Normal:   normal,
		Tangent:  tangent,
		UV:       common.Vector2{X: 0.5, Y: 0.5},
	})
	for s := 0; s <= slices; s++ {
		theta := 2 * math32.Pi * float32(s%slices) / float32(slices)
		sinTheta, cosTheta := math32.Sincos(theta)
		m.Vertices = append(m.Vertices, graphics.Vertex{
			Position: common.Vec3(cosTheta*radius, y, sinTheta*radius),
			Normal:   normal,
			Tangent:  tangent,
			UV:       common.Vector2{X: 0.5 + cosTheta*0.5, Y: 0.5 - sinTheta*0.5},
		})
	}
	for s := uint32(0); s < uint32(slices); s++ {
		a, b := center+1+s, center+2+s
		if top {
			m.Indices = append(m.Indices, center, b, a)
		} else {
			m.Indices = append(m.Indices, center, a, b)
		}
	}
}

// screenQuad covers clip space with v running down the screen.
func screenQuad() graphics.MeshFull {
	var m graphics.MeshFull
	appendQuad(&m, common.Vec3(0, 0, -1), common.Vec3(1, 0, 0),
		common.Vec3(-1, 1, 0), common.Vec3(1, 1, 0), common.Vec3(1, -1, 0), common.Vec3(-1, -1, 0))
	return m
}
