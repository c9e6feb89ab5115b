package loader

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/chewxy/math32"
)

// transformVertices applies the import scale and the optional Z and V mirroring.
func transformVertices(mesh *ImportedMesh, scale float32, flipZ, flipV bool) {
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		v.Position = v.Position.Scale(scale)
		if flipZ {
			v.Position.Z = -v.Position.Z
			v.Normal.Z = -v.Normal.Z
			v.Tangent.Z = -v.Tangent.Z
		}
		if flipV {
			v.UV.Y = 1 - v.UV.Y
		}
	}
}

// reverseWinding swaps the second and third index of every triangle.
func reverseWinding(indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
}

// generateNormals computes smooth vertex normals from the triangle geometry. Each face normal
// is the cross product of two edges, so larger triangles weigh more, and is accumulated onto
// its three vertices before normalizing. Vertices touched by no triangle get +Y.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer
func generateNormals(vertices []graphics.Vertex, indices []uint32) {
	n := len(vertices)
	accum := make([]common.Vector3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := vertices[i0].Position
		face := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx] = accum[idx].Add(face)
		}
	}

	for i := range vertices {
		if accum[i].Length() < 1e-6 {
			vertices[i].Normal = common.Vec3(0, 1, 0)
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

// generateTangents computes per-vertex tangents from UV gradients. Per-triangle tangents are
// accumulated per vertex, then orthonormalized against the vertex normal (Gram-Schmidt).
// Degenerate vertices get a tangent perpendicular to the normal.
//
// Parameters:
//   - vertices: the vertex slice to write tangent data into
//   - indices: the triangle index buffer
func generateTangents(vertices []graphics.Vertex, indices []uint32) {
	n := len(vertices)
	accum := make([]common.Vector3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		v0, v1, v2 := &vertices[i0], &vertices[i1], &vertices[i2]

		edge1 := v1.Position.Sub(v0.Position)
		edge2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV.X-v0.UV.X, v1.UV.Y-v0.UV.Y
		du2, dv2 := v2.UV.X-v0.UV.X, v2.UV.Y-v0.UV.Y

		det := du1*dv2 - dv1*du2
		if math32.Abs(det) < 1e-12 {
			continue
		}
		t := edge1.Scale(dv2).Sub(edge2.Scale(dv1)).Scale(1 / det)
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx] = accum[idx].Add(t)
		}
	}

	for i := range vertices {
		normal := vertices[i].Normal
		ortho := accum[i].Sub(normal.Scale(normal.Dot(accum[i])))
		if ortho.Length() < 1e-6 {
			vertices[i].Tangent = perpendicular(normal)
			continue
		}
		vertices[i].Tangent = ortho.Normalize()
	}
}

// perpendicular returns a unit vector perpendicular to n.
func perpendicular(n common.Vector3) common.Vector3 {
	axis := common.Vec3(1, 0, 0)
	if math32.Abs(n.X) > 0.9 {
		axis = common.Vec3(0, 0, 1)
	}
	p := axis.Sub(n.Scale(n.Dot(axis)))
	if p.Length() < 1e-6 {
		return common.Vec3(1, 0, 0)
	}
	return p.Normalize()
}

// calculateBounds computes the axis-aligned bounding box of the vertex positions.
func calculateBounds(vertices []graphics.Vertex) (common.Vector3, common.Vector3) {
	if len(vertices) == 0 {
		return common.Vector3{}, common.Vector3{}
	}
	bmin := vertices[0].Position
	bmax := bmin
	for _, v := range vertices[1:] {
		p := v.Position
		bmin = common.Vec3(math32.Min(bmin.X, p.X), math32.Min(bmin.Y, p.Y), math32.Min(bmin.Z, p.Z))
		bmax = common.Vec3(math32.Max(bmax.X, p.X), math32.Max(bmax.Y, p.Y), math32.Max(bmax.Z, p.Z))
	}
	return bmin, bmax
}
