package common

// Transform is a position, rotation and scale triple. The world matrix is
// built as scale, then rotation, then translation.
type Transform struct {
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
}

// NewTransform returns an identity transform with unit scale.
func NewTransform() Transform {
	return Transform{
		Rotation: QuaternionIdentity(),
		Scale:    Vector3{1, 1, 1},
	}
}

// Matrix returns S * R * T.
func (t Transform) Matrix() Matrix4 {
	scale := t.Scale
	if scale == (Vector3{}) {
		scale = Vector3{1, 1, 1}
	}
	rot := t.Rotation
	if rot == (Quaternion{}) {
		rot = QuaternionIdentity()
	}
	return Scaling(scale).Mul(RotationQuaternion(rot.Normalize())).Mul(Translation(t.Position))
}

// Rotate applies an additional rotation of angle radians around axis.
func (t *Transform) Rotate(axis Vector3, angle float32) {
	rot := t.Rotation
	if rot == (Quaternion{}) {
		rot = QuaternionIdentity()
	}
	t.Rotation = rot.Mul(QuaternionFromAxisAngle(axis, angle)).Normalize()
}
