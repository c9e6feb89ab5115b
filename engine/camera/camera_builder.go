package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

type CameraBuilderOption func(*cameraImpl)

// WithMode sets the projection mode.
//
// Parameters:
//   - mode: perspective or orthographic
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's projection mode
func WithMode(mode ProjectionMode) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.mode = mode
	}
}

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - p: the camera position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(p common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithLookAt points the camera at a target. Apply it after WithPosition.
//
// Parameters:
//   - target: the world-space point to look at
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's view direction
func WithLookAt(target common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setDirection(target.Sub(c.position))
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = common.Clamp(fov, minFov, maxFov)
	}
}

// WithAspect sets a fixed aspect ratio (width / height). Zero follows the viewport.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithSize sets the orthographic view volume size in world units.
//
// Parameters:
//   - width: the view volume width
//   - height: the view volume height
//
// Returns:
//   - CameraBuilderOption: a function that sets the orthographic size
func WithSize(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.width, c.height = width, height
	}
}

// WithViewport sets the surface size used when aspect or orthographic size are zero.
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.viewportWidth, c.viewportHeight = float32(width), float32(height)
		}
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera takes its position and look-at from the controller.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
