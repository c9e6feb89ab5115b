package camera_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got common.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
	assert.InDelta(t, want.Z, got.Z, eps)
}

func TestCamera_Defaults(t *testing.T) {
	c := camera.NewCamera()
	assert.Equal(t, camera.ProjectionPerspective, c.Mode())
	assertVec3(t, common.Vec3(0, 0, 1), c.Direction())
	assert.InDelta(t, 60*math32.Pi/180, c.Fov(), eps)
	assert.Zero(t, c.Aspect())
}

func TestCamera_LookAtCentersTarget(t *testing.T) {
	c := camera.NewCamera(
		camera.WithPosition(common.Vec3(0, 1, -3)),
		camera.WithLookAt(common.Vec3(0, 0, 0)),
	)
	clip := c.ViewProjectionMatrix().TransformCoord(common.Vec3(0, 0, 0))
	assert.InDelta(t, 0, clip.X, eps)
	assert.InDelta(t, 0, clip.Y, eps)
	assert.Greater(t, clip.Z, float32(0))
	assert.Less(t, clip.Z, float32(1))

	// view space has the target straight ahead on +Z
	v := c.ViewMatrix().TransformCoord(common.Vec3(0, 0, 0))
	assert.InDelta(t, math32.Sqrt(10), v.Z, eps)
}

func TestCamera_Movement(t *testing.T) {
	c := camera.NewCamera()

	c.Walk(2)
	assertVec3(t, common.Vec3(0, 0, 2), c.Position())
	c.Strafe(1)
	assertVec3(t, common.Vec3(1, 0, 2), c.Position())
	c.Rise(-1)
	assertVec3(t, common.Vec3(1, -1, 2), c.Position())

	c.Yaw(math32.Pi / 2)
	assertVec3(t, common.Vec3(1, 0, 0), c.Direction())
	c.Yaw(-math32.Pi / 2)

	c.Pitch(math32.Pi / 4)
	assert.Less(t, c.Direction().Y, float32(0), "positive pitch looks down")
	assert.InDelta(t, 1, c.Direction().Length(), eps)

	// a pitch that would look straight down is rejected
	before := c.Direction()
	c.Pitch(math32.Pi / 4)
	assertVec3(t, before, c.Direction())
}

func TestCamera_ZoomClamps(t *testing.T) {
	c := camera.NewCamera()
	c.Zoom(10)
	assert.InDelta(t, 10*math32.Pi/180, c.Fov(), eps)
	c.Zoom(-10)
	assert.InDelta(t, 170*math32.Pi/180, c.Fov(), eps)
}

func TestCamera_AspectFollowsViewport(t *testing.T) {
	c := camera.NewCamera()
	c.SetViewport(800, 400)
	wide := c.ProjectionMatrix()
	c.SetAspect(1)
	square := c.ProjectionMatrix()

	assert.InDelta(t, wide[5]/2, wide[0], eps)
	assert.InDelta(t, square[5], square[0], eps)

	c.SetViewport(0, 0)
	assert.Equal(t, square, c.ProjectionMatrix(), "invalid viewport is ignored")
}

func TestCamera_Orthographic(t *testing.T) {
	c := camera.NewCamera(
		camera.WithMode(camera.ProjectionOrthographic),
		camera.WithSize(10, 20),
		camera.WithNear(1),
		camera.WithFar(101),
	)
	p := c.ProjectionMatrix()
	assert.InDelta(t, 2.0/10, p[0], eps)
	assert.InDelta(t, 2.0/20, p[5], eps)
	assert.Equal(t, float32(1), p[15])

	// orthographic depth is linear from near to far
	assert.InDelta(t, 0, p.TransformCoord(common.Vec3(0, 0, 1)).Z, eps)
	assert.InDelta(t, 0.5, p.TransformCoord(common.Vec3(0, 0, 51)).Z, eps)
	assert.InDelta(t, 1, p.TransformCoord(common.Vec3(0, 0, 101)).Z, eps)

	c.SetSize(0, 0)
	c.SetViewport(640, 480)
	p = c.ProjectionMatrix()
	assert.InDelta(t, 2.0/640, p[0], eps)
}

func TestCameraController_Orbit(t *testing.T) {
	cc := camera.NewCameraController(
		camera.WithRadius(5),
		camera.WithElevation(0),
		camera.WithTarget(common.Vec3(1, 0, 0)),
	)
	assertVec3(t, common.Vec3(1, 0, -5), cc.Position())

	cc.SetAzimuth(math32.Pi / 2)
	assertVec3(t, common.Vec3(6, 0, 0), cc.Position())

	cc.SetElevation(10)
	assert.InDelta(t, math32.Pi/2-0.1, cc.Elevation(), eps)

	cc.SetRadius(0)
	assert.InDelta(t, 0.5, cc.Radius(), eps)
	cc.Zoom(-1e6)
	assert.InDelta(t, 1000, cc.Radius(), eps)
}

func TestCameraController_PanKeepsOrbit(t *testing.T) {
	cc := camera.NewCameraController(camera.WithRadius(4), camera.WithElevation(0))
	offset := cc.Position().Sub(cc.Target())

	cc.PanRight(2)
	assertVec3(t, common.Vec3(2, 0, 0), cc.Target())
	cc.PanForward(1)
	assertVec3(t, common.Vec3(2, 0, 1), cc.Target())
	cc.PanUp(1)
	assertVec3(t, common.Vec3(2, 1, 1), cc.Target())

	assertVec3(t, offset, cc.Position().Sub(cc.Target()))
}

func TestCamera_Controller(t *testing.T) {
	cc := camera.NewCameraController(camera.WithRadius(3), camera.WithElevation(0))
	c := camera.NewCamera(camera.WithController(cc))
	assertVec3(t, common.Vec3(0, 0, -3), c.Position())
	assertVec3(t, common.Vec3(0, 0, 1), c.Direction())

	cc.SetAzimuth(math32.Pi / 2)
	c.Update()
	assertVec3(t, common.Vec3(3, 0, 0), c.Position())
	assertVec3(t, common.Vec3(-1, 0, 0), c.Direction())

	c.SetController(nil)
	cc.SetAzimuth(0)
	c.Update()
	assertVec3(t, common.Vec3(3, 0, 0), c.Position())
}
