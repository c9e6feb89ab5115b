package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

// CameraController is an orbit controller: it keeps a target and places the camera on a sphere
// around it, described by radius, azimuth and elevation. Panning moves the target and the camera
// together. Attach one to a Camera and call Camera.Update each frame.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	Position() common.Vector3

	// Target returns the orbit pivot.
	Target() common.Vector3

	// SetTarget moves the pivot and recomputes the position from the orbit angles.
	//
	// Parameters:
	//   - target: the world-space pivot
	SetTarget(target common.Vector3)

	// Zoom moves the camera toward the target by delta scaled by ZoomSpeed, clamped to the
	// radius bounds.
	//
	// Parameters:
	//   - delta: positive zooms in
	Zoom(delta float32)
}

// orbitCameraController defines the spherical orbit controls.
type orbitCameraController interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp raises the camera by one orbit speed step, clamped to the maximum elevation.
	OrbitUp()

	// OrbitDown lowers the camera by one orbit speed step, clamped to the minimum elevation.
	OrbitDown()

	// Drag orbits by a mouse movement scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx: horizontal mouse movement in pixels
	//   - dy: vertical mouse movement in pixels
	Drag(dx, dy float32)

	// Radius returns the distance from the target.
	Radius() float32

	// SetRadius sets the distance from the target, clamped to the radius bounds.
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle in radians.
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle above the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle, clamped to the elevation bounds.
	SetElevation(elevation float32)
}

// planarCameraController defines panning along the camera's local axes. Panning shifts both
// position and target by the same offset, preserving the orbit.
type planarCameraController interface {
	// PanRight translates along the horizontal right axis. Negative delta moves left.
	PanRight(delta float32)

	// PanUp translates along the camera's up axis. Negative delta moves down.
	PanUp(delta float32)

	// PanForward translates along the view direction. Negative delta moves back.
	PanForward(delta float32)
}
