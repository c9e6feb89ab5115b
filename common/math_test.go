package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func assertVec3(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
	assert.InDelta(t, want.Z, got.Z, eps)
}

func TestMatrixMulIdentity(t *testing.T) {
	m := Translation(Vec3(1, 2, 3)).Mul(Scaling(Vec3(2, 2, 2)))
	assert.Equal(t, m, m.Mul(Identity4()))
	assert.Equal(t, m, Identity4().Mul(m))
}

func TestMatrixComposesLeftToRight(t *testing.T) {
	// scale then translate: (1,0,0) -> (2,0,0) -> (2,5,0)
	m := Scaling(Vec3(2, 2, 2)).Mul(Translation(Vec3(0, 5, 0)))
	assertVec3(t, Vec3(2, 5, 0), m.TransformCoord(Vec3(1, 0, 0)))
}

func TestTranspose(t *testing.T) {
	m := Translation(Vec3(4, 5, 6))
	tr := m.Transpose()
	assert.Equal(t, float32(4), tr[3])
	assert.Equal(t, float32(5), tr[7])
	assert.Equal(t, float32(6), tr[11])
	assert.Equal(t, m, tr.Transpose())
}

func TestInverse(t *testing.T) {
	m := Scaling(Vec3(2, 3, 4)).Mul(RotationY(0.7)).Mul(Translation(Vec3(1, -2, 3)))
	inv, ok := m.Inverse()
	assert.True(t, ok)
	p := Vec3(3, 1, -2)
	assertVec3(t, p, inv.TransformCoord(m.TransformCoord(p)))

	_, ok = Matrix4{}.Inverse()
	assert.False(t, ok)
}

func TestRotationQuaternionMatchesAxisRotation(t *testing.T) {
	tests := []struct {
		name string
		axis Vector3
		rot  func(float32) Matrix4
	}{
		{"x", Vec3(1, 0, 0), RotationX},
		{"y", Vec3(0, 1, 0), RotationY},
		{"z", Vec3(0, 0, 1), RotationZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuaternionFromAxisAngle(tt.axis, 0.9)
			want := tt.rot(0.9)
			got := RotationQuaternion(q)
			for i := range want {
				assert.InDelta(t, want[i], got[i], eps)
			}
		})
	}
}

func TestRotationYIsLeftHanded(t *testing.T) {
	// +X rotated a quarter turn around +Y points to -Z in a left-handed system.
	got := RotationY(math32.Pi / 2).TransformNormal(Vec3(1, 0, 0))
	assertVec3(t, Vec3(0, 0, -1), got)
}

func TestLookAtLH(t *testing.T) {
	view := LookAtLH(Vec3(0, 0, -10), Vec3(0, 0, 0), Vec3(0, 1, 0))
	assertVec3(t, Vec3(0, 0, 10), view.TransformCoord(Vec3(0, 0, 0)))
	assertVec3(t, Vec3(1, 0, 10), view.TransformCoord(Vec3(1, 0, 0)))
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := PerspectiveFovLH(math32.Pi/2, 1, 1, 100)
	assert.InDelta(t, 0, proj.TransformCoord(Vec3(0, 0, 1)).Z, eps)
	assert.InDelta(t, 1, proj.TransformCoord(Vec3(0, 0, 100)).Z, eps)
}

func TestOrthographicDepthRange(t *testing.T) {
	proj := OrthographicLH(10, 20, 1, 11)
	assertVec3(t, Vec3(1, 1, 0), proj.TransformCoord(Vec3(5, 10, 1)))
	assert.InDelta(t, 1, proj.TransformCoord(Vec3(0, 0, 11)).Z, eps)
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	tr.Position = Vec3(0, 1, 0)
	tr.Scale = Vec3(2, 2, 2)
	tr.Rotate(Vec3(0, 1, 0), math32.Pi/2)
	assertVec3(t, Vec3(0, 1, -2), tr.Matrix().TransformCoord(Vec3(1, 0, 0)))

	var zero Transform
	assert.Equal(t, Identity4(), zero.Matrix())
}

func TestVectorOps(t *testing.T) {
	assertVec3(t, Vec3(0, 0, 1), Vec3(1, 0, 0).Cross(Vec3(0, 1, 0)))
	assert.InDelta(t, 5, Vec3(3, 4, 0).Length(), eps)
	assertVec3(t, Vec3(0.6, 0.8, 0), Vec3(3, 4, 0).Normalize())
	assert.Equal(t, Vector3{}, Vector3{}.Normalize())
}

func TestStructToBytes(t *testing.T) {
	c := ColorWhite
	assert.Len(t, StructToBytes(&c), 16)
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}

func TestClampAndFlag(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(0), Clamp(float32(-1), 0, 1))
	assert.Equal(t, int32(1), BoolToFlag(true))
	assert.Equal(t, int32(0), BoolToFlag(false))
	assert.Equal(t, "b", Coalesce("", "b", "c"))
}
