package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

// ProjectionMode selects how a Camera projects the view volume.
type ProjectionMode int

const (
	// ProjectionPerspective projects through a view frustum defined by the field of view.
	ProjectionPerspective ProjectionMode = iota

	// ProjectionOrthographic projects a box of Size width and height. Used for directional
	// light cameras.
	ProjectionOrthographic
)

const (
	minFov = 10 * math32.Pi / 180
	maxFov = 170 * math32.Pi / 180

	// pitchLimit keeps the view direction from becoming parallel to the world up axis.
	pitchLimit = 0.995
)

var worldUp = common.Vec3(0, 1, 0)

type cameraImpl struct {
	mu sync.Mutex

	mode      ProjectionMode
	position  common.Vector3
	direction common.Vector3

	fov    float32
	aspect float32
	near   float32
	far    float32

	width, height                 float32
	viewportWidth, viewportHeight float32

	controller CameraController
}

// Camera is a free-look camera. It keeps a position and a view direction and builds view and
// projection matrices for the effects. Movement follows the first person convention: Walk along
// the view direction, Strafe along its right, Rise along world up, Yaw and Pitch to turn.
//
// Matrices are row-major for row vectors: a world point is projected as p * View * Projection.
type Camera interface {
	// Mode returns the projection mode.
	Mode() ProjectionMode

	// SetMode switches between perspective and orthographic projection.
	//
	// Parameters:
	//   - mode: the projection mode to use
	SetMode(mode ProjectionMode)

	// Position returns the camera position in world space.
	Position() common.Vector3

	// SetPosition moves the camera without changing its view direction.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p common.Vector3)

	// Direction returns the unit view direction.
	Direction() common.Vector3

	// SetDirection points the camera along d. A zero vector is ignored.
	//
	// Parameters:
	//   - d: the new view direction, normalized internally
	SetDirection(d common.Vector3)

	// SetLookAt points the camera at a world-space target. A target equal to the position is
	// ignored.
	//
	// Parameters:
	//   - target: the point to look at
	SetLookAt(target common.Vector3)

	// Walk moves the camera along its view direction.
	//
	// Parameters:
	//   - distance: world units to move, negative to move back
	Walk(distance float32)

	// Strafe moves the camera along its horizontal right axis.
	//
	// Parameters:
	//   - distance: world units to move, negative to move left
	Strafe(distance float32)

	// Rise moves the camera along the world up axis.
	//
	// Parameters:
	//   - distance: world units to move, negative to move down
	Rise(distance float32)

	// Yaw turns the view direction around the world up axis.
	//
	// Parameters:
	//   - radians: the turn angle, positive turns right
	Yaw(radians float32)

	// Pitch tilts the view direction around the camera's right axis. A pitch that would bring
	// the direction within a few degrees of straight up or down is rejected.
	//
	// Parameters:
	//   - radians: the tilt angle, positive tilts down
	Pitch(radians float32)

	// Zoom narrows the field of view, clamped to [10, 170] degrees.
	//
	// Parameters:
	//   - radians: the amount to subtract from the field of view
	Zoom(radians float32)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// Aspect returns the aspect ratio set on the camera. Zero means the viewport's ratio is used.
	Aspect() float32

	// SetAspect sets a fixed aspect ratio (width / height). Zero follows the viewport.
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// Size returns the orthographic view volume size. Zero components follow the viewport.
	Size() (width, height float32)

	// SetSize sets the width and height of the orthographic view volume in world units.
	//
	// Parameters:
	//   - width: the view volume width, zero to follow the viewport width
	//   - height: the view volume height, zero to follow the viewport height
	SetSize(width, height float32)

	// SetViewport records the size of the surface the camera renders to. It supplies the aspect
	// ratio and orthographic size when those are left at zero.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	SetViewport(width, height int)

	// ViewMatrix returns the world to view transform.
	ViewMatrix() common.Matrix4

	// ProjectionMatrix returns the view to clip transform for the current mode.
	ProjectionMatrix() common.Matrix4

	// ViewProjectionMatrix returns ViewMatrix() * ProjectionMatrix().
	ViewProjectionMatrix() common.Matrix4

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches an orbit controller. While attached, Update copies the controller's
	// position and target into the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach, nil to detach
	SetController(ctrl CameraController)

	// Update pulls position and look-at from the attached controller. It does nothing without
	// a controller.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective Camera at the origin looking down +Z with a 60 degree field
// of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mode:           ProjectionPerspective,
		direction:      common.Vec3(0, 0, 1),
		fov:            60 * math32.Pi / 180,
		near:           0.01,
		far:            10000,
		viewportWidth:  1280,
		viewportHeight: 720,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.pullController()
	}
	return c
}

func (c *cameraImpl) Mode() ProjectionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *cameraImpl) SetMode(mode ProjectionMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

func (c *cameraImpl) Position() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p common.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) Direction() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *cameraImpl) SetDirection(d common.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDirection(d)
}

func (c *cameraImpl) setDirection(d common.Vector3) {
	if d.Length() < 1e-6 {
		return
	}
	c.direction = d.Normalize()
}

func (c *cameraImpl) SetLookAt(target common.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDirection(target.Sub(c.position))
}

func (c *cameraImpl) right() common.Vector3 {
	return worldUp.Cross(c.direction).Normalize()
}

func (c *cameraImpl) Walk(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(c.direction.Scale(distance))
}

func (c *cameraImpl) Strafe(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(c.right().Scale(distance))
}

func (c *cameraImpl) Rise(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(worldUp.Scale(distance))
}

func (c *cameraImpl) Yaw(radians float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direction = common.RotationY(radians).TransformNormal(c.direction).Normalize()
}

func (c *cameraImpl) Pitch(radians float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rot := common.RotationQuaternion(common.QuaternionFromAxisAngle(c.right(), radians))
	look := rot.TransformNormal(c.direction).Normalize()
	if math32.Abs(look.Dot(worldUp)) < pitchLimit {
		c.direction = look
	}
}

func (c *cameraImpl) Zoom(radians float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(c.fov-radians, minFov, maxFov)
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, minFov, maxFov)
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}

func (c *cameraImpl) Size() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) SetSize(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

func (c *cameraImpl) SetViewport(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	c.viewportWidth, c.viewportHeight = float32(width), float32(height)
}

func (c *cameraImpl) ViewMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *cameraImpl) view() common.Matrix4 {
	up := worldUp
	if math32.Abs(c.direction.Dot(worldUp)) >= pitchLimit {
		// looking straight up or down, as a light camera may
		up = common.Vec3(0, 0, 1)
	}
	return common.LookAtLH(c.position, c.position.Add(c.direction), up)
}

func (c *cameraImpl) ProjectionMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

func (c *cameraImpl) projection() common.Matrix4 {
	if c.mode == ProjectionOrthographic {
		w := common.Coalesce(c.width, c.viewportWidth)
		h := common.Coalesce(c.height, c.viewportHeight)
		return common.OrthographicLH(w, h, c.near, c.far)
	}
	aspect := common.Coalesce(c.aspect, c.viewportWidth/c.viewportHeight)
	return common.PerspectiveFovLH(c.fov, aspect, c.near, c.far)
}

func (c *cameraImpl) ViewProjectionMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view().Mul(c.projection())
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.pullController()
}

// pullController copies the controller's position and target. Caller must hold the mutex.
func (c *cameraImpl) pullController() {
	c.position = c.controller.Position()
	c.setDirection(c.controller.Target().Sub(c.position))
}
