package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu sync.Mutex

	// position is derived from target and the spherical coordinates
	position common.Vector3
	target   common.Vector3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller three units behind the origin, slightly above it.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		radius:    3,
		elevation: math32.Pi / 10,

		minRadius:    0.5,
		maxRadius:    1000,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from the spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)
	cc.position = cc.target.Add(common.Vec3(
		cc.radius*cosElev*sinAzim,
		cc.radius*sinElev,
		-cc.radius*cosElev*cosAzim,
	))
}

// localAxes returns the camera's right, up and forward axes. All are zero when position and
// target coincide. Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward common.Vector3) {
	d := cc.target.Sub(cc.position)
	if d.Length() < 1e-8 {
		return
	}
	forward = d.Normalize()
	right = worldUp.Cross(forward)
	if right.Length() < 1e-8 {
		return common.Vector3{}, common.Vector3{}, forward
	}
	right = right.Normalize()
	up = forward.Cross(right)
	return right, up, forward
}

func (cc *cameraControllerImpl) pan(axis common.Vector3, delta float32) {
	offset := axis.Scale(delta * cc.panSpeed)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) Position() common.Vector3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vector3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vector3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = min(cc.elevation+cc.orbitSpeed, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = max(cc.elevation-cc.orbitSpeed, cc.minElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += dx * cc.mouseSensitivity
	cc.elevation = common.Clamp(cc.elevation+dy*cc.mouseSensitivity, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.localAxes()
	cc.pan(right, delta)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.localAxes()
	cc.pan(up, delta)
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.localAxes()
	cc.pan(forward, delta)
}
