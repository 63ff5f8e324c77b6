package slabview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// OrbitCamera orbits a fixed pivot on a sphere parameterized by azimuth and
// elevation. It implements CameraRig, CameraSuspender and CameraPoser.
type OrbitCamera struct {
	Pivot     mgl32.Vec3
	Azimuth   float32 // radians around worldUp
	Elevation float32 // radians above the horizon
	Radius    float32

	MinRadius   float32
	MaxRadius   float32
	Sensitivity float32 // radians per pixel of drag
	ZoomSpeed   float32 // world units per scroll tick

	FovY   float32 // radians
	Aspect float32
	Near   float32
	Far    float32

	suspendCount int
}

const elevationLimit = 1.55 // just short of the poles

func NewOrbitCamera(pivot mgl32.Vec3, radius float32) *OrbitCamera {
	return &OrbitCamera{
		Pivot:       pivot,
		Azimuth:     0.6,
		Elevation:   0.4,
		Radius:      radius,
		MinRadius:   0.5,
		MaxRadius:   50,
		Sensitivity: 0.005,
		ZoomSpeed:   0.5,
		FovY:        mgl32.DegToRad(45),
		Aspect:      16.0 / 9.0,
		Near:        0.1,
		Far:         100,
	}
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	cosE := float32(math.Cos(float64(c.Elevation)))
	dir := mgl32.Vec3{
		cosE * float32(math.Sin(float64(c.Azimuth))),
		float32(math.Sin(float64(c.Elevation))),
		cosE * float32(math.Cos(float64(c.Azimuth))),
	}
	return c.Pivot.Add(dir.Mul(c.Radius))
}

func (c *OrbitCamera) Forward() mgl32.Vec3 {
	return c.Pivot.Sub(c.Position()).Normalize()
}

func (c *OrbitCamera) Right() mgl32.Vec3 {
	f := c.Forward()
	r := f.Cross(worldUp)
	if r.Len() < 1e-6 {
		// Looking straight along worldUp; any horizontal direction works.
		r = mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

func (c *OrbitCamera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Forward()).Normalize()
}

// RayThrough builds the picking ray through a point of the working viewport,
// given in NDC ([-1,1] on both axes, y up).
func (c *OrbitCamera) RayThrough(ndc mgl32.Vec2) Ray {
	tanH := float32(math.Tan(float64(c.FovY) / 2))
	dir := c.Forward().
		Add(c.Right().Mul(ndc.X() * tanH * c.Aspect)).
		Add(c.Up().Mul(ndc.Y() * tanH)).
		Normalize()
	return Ray{Origin: c.Position(), Dir: dir}
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Pivot, worldUp)
}

func (c *OrbitCamera) ProjMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// Suspend and Resume nest: the orbit control only reacts to input while the
// suspension count is zero.
func (c *OrbitCamera) Suspend() { c.suspendCount++ }

func (c *OrbitCamera) Resume() {
	if c.suspendCount > 0 {
		c.suspendCount--
	}
}

func (c *OrbitCamera) Suspended() bool { return c.suspendCount > 0 }

// SetPose places the camera and re-derives the spherical parameters so a
// later orbit drag continues from the new pose without jumping.
func (c *OrbitCamera) SetPose(position, lookAt mgl32.Vec3) {
	c.Pivot = lookAt
	offset := position.Sub(lookAt)
	r := offset.Len()
	if r < 1e-6 {
		return
	}
	c.Radius = mgl32.Clamp(r, c.MinRadius, c.MaxRadius)
	c.Elevation = float32(math.Asin(float64(mgl32.Clamp(offset.Y()/r, -1, 1))))
	if c.Elevation > elevationLimit {
		c.Elevation = elevationLimit
	} else if c.Elevation < -elevationLimit {
		c.Elevation = -elevationLimit
	}
	c.Azimuth = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
}

// OrbitCameraModule installs the working-view camera and its drag control.
type OrbitCameraModule struct {
	Camera *OrbitCamera
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	cam := m.Camera
	if cam == nil {
		cam = NewOrbitCamera(mgl32.Vec3{}, 5)
	}
	cmd.AddResources(cam)
	app.UseSystem(
		System(orbitCameraSystem).
			InStage(Update),
	)
}

func orbitCameraSystem(input *Input, vp *ViewportLayout, cam *OrbitCamera) {
	if vp.Work.H > 0 {
		cam.Aspect = vp.Work.W / vp.Work.H
	}
	if cam.Suspended() {
		return
	}

	if input.Pressed[MouseButtonLeft] && !input.JustPressed[MouseButtonLeft] {
		cam.Azimuth -= float32(input.MouseDeltaX) * cam.Sensitivity
		cam.Elevation += float32(input.MouseDeltaY) * cam.Sensitivity
		cam.Elevation = mgl32.Clamp(cam.Elevation, -elevationLimit, elevationLimit)
	}
	if input.ScrollY != 0 {
		cam.Radius = mgl32.Clamp(cam.Radius-float32(input.ScrollY)*cam.ZoomSpeed, cam.MinRadius, cam.MaxRadius)
	}
}
