package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Vector2 is a two component float vector, used for texture coordinates.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a three component float vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vec3 is shorthand for constructing a Vector3.
func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns v x o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector in the direction of v.
// A zero vector is returned unchanged.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Quaternion is a rotation quaternion stored as (X, Y, Z, W).
type Quaternion struct {
	X, Y, Z, W float32
}

// QuaternionIdentity returns the identity rotation.
func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromAxisAngle builds a rotation of angle radians around axis.
//
// Parameters:
//   - axis: rotation axis, normalized internally
//   - angle: rotation in radians
//
// Returns:
//   - Quaternion: the unit rotation quaternion
func QuaternionFromAxisAngle(axis Vector3, angle float32) Quaternion {
	a := axis.Normalize()
	s, c := math32.Sincos(angle * 0.5)
	return Quaternion{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: c}
}

// Mul returns the rotation q followed by o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: o.W*q.X + o.X*q.W + o.Y*q.Z - o.Z*q.Y,
		Y: o.W*q.Y - o.X*q.Z + o.Y*q.W + o.Z*q.X,
		Z: o.W*q.Z + o.X*q.Y - o.Y*q.X + o.Z*q.W,
		W: o.W*q.W - o.X*q.X - o.Y*q.Y - o.Z*q.Z,
	}
}

func (q Quaternion) Normalize() Quaternion {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuaternionIdentity()
	}
	inv := 1 / l
	return Quaternion{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Matrix4 is a 4x4 matrix stored row-major for row vectors, so a point is
// transformed as v * M and transforms compose left to right (world * view * proj).
// The element at row r, column c is m[r*4+c].
type Matrix4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * o.
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var out Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * o[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Transpose returns the transpose of m. Matrices are transposed before upload
// so shaders can multiply a row vector by the matrix.
func (m Matrix4) Transpose() Matrix4 {
	var out Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// Inverse returns the inverse of m and false when m is singular.
func (m Matrix4) Inverse() (Matrix4, bool) {
	out := m
	ok := Invert4(out[:], m[:])
	return out, ok
}

// TransformCoord transforms point v by m including the perspective divide.
func (m Matrix4) TransformCoord(v Vector3) Vector3 {
	x := v.X*m[0] + v.Y*m[4] + v.Z*m[8] + m[12]
	y := v.X*m[1] + v.Y*m[5] + v.Z*m[9] + m[13]
	z := v.X*m[2] + v.Y*m[6] + v.Z*m[10] + m[14]
	w := v.X*m[3] + v.Y*m[7] + v.Z*m[11] + m[15]
	if w != 0 && w != 1 {
		inv := 1 / w
		x, y, z = x*inv, y*inv, z*inv
	}
	return Vector3{x, y, z}
}

// TransformNormal transforms direction v by the upper 3x3 of m.
func (m Matrix4) TransformNormal(v Vector3) Vector3 {
	return Vector3{
		v.X*m[0] + v.Y*m[4] + v.Z*m[8],
		v.X*m[1] + v.Y*m[5] + v.Z*m[9],
		v.X*m[2] + v.Y*m[6] + v.Z*m[10],
	}
}

// Translation returns a matrix translating by v.
func Translation(v Vector3) Matrix4 {
	m := Identity4()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a matrix scaling by v.
func Scaling(v Vector3) Matrix4 {
	m := Identity4()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

func RotationX(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	return Matrix4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

func RotationY(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	return Matrix4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

func RotationZ(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	return Matrix4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotationQuaternion converts a unit quaternion to a rotation matrix.
func RotationQuaternion(q Quaternion) Matrix4 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	return Matrix4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// LookAtLH creates a left-handed view matrix looking from eye towards target.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up vector, typically (0, 1, 0)
//
// Returns:
//   - Matrix4: the world to view transform
func LookAtLH(eye, target, up Vector3) Matrix4 {
	z := target.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return Matrix4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveFovLH creates a left-handed perspective projection mapping depth
// to the [0, 1] clip range used by WebGPU.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func PerspectiveFovLH(fovY, aspect, near, far float32) Matrix4 {
	yScale := 1 / math32.Tan(fovY*0.5)
	xScale := yScale / aspect
	q := far / (far - near)
	return Matrix4{
		xScale, 0, 0, 0,
		0, yScale, 0, 0,
		0, 0, q, 1,
		0, 0, -near * q, 0,
	}
}

// OrthographicLH creates a left-handed orthographic projection of a
// width x height view volume centered on the view axis.
func OrthographicLH(width, height, near, far float32) Matrix4 {
	d := 1 / (far - near)
	return Matrix4{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, d, 0,
		0, 0, -near * d, 1,
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Invert4 computes the inverse of a 4x4 matrix using the Laplace expansion
// (cofactor) method. The method is layout agnostic: it inverts row-major and
// column-major storage alike. If the matrix is singular the output is left
// unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	var buf [16]float32
	buf[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	buf[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	buf[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	buf[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	buf[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	buf[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	buf[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	buf[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	buf[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	buf[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	buf[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	buf[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	buf[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	buf[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	buf[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	buf[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	copy(out, buf[:])
	return true
}
