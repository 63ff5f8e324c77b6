package slabview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a world-space half-line.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3 // normalized
}

// Plane is point-normal form.
type Plane struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3 // normalized
}

// RotationPlane builds the working plane for a rotation drag: through the
// pivot, normal along the rotation axis.
func RotationPlane(axis mgl32.Vec3, pivot mgl32.Vec3) Plane {
	return Plane{Point: pivot, Normal: axis}
}

// IntersectRayPlane returns the intersection point, or ok=false when the ray
// is parallel to the plane or the intersection lies behind the ray origin.
// Callers treat a miss as "no update this step", never as an error.
func IntersectRayPlane(ray Ray, plane Plane) (mgl32.Vec3, bool) {
	denom := ray.Dir.Dot(plane.Normal)
	if math.Abs(float64(denom)) < 1e-6 {
		return mgl32.Vec3{}, false
	}
	t := plane.Point.Sub(ray.Origin).Dot(plane.Normal) / denom
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return ray.Origin.Add(ray.Dir.Mul(t)), true
}

// SignedAngle returns the angle in (-pi, pi] from v1 to v2 about axis.
// Inputs are expected pre-normalized; near-zero vectors are normalized
// defensively rather than asserted on.
func SignedAngle(v1, v2, axis mgl32.Vec3) float32 {
	if d := v1.Len(); d > 1e-6 && math.Abs(float64(d-1)) > 1e-4 {
		v1 = v1.Mul(1 / d)
	}
	if d := v2.Len(); d > 1e-6 && math.Abs(float64(d-1)) > 1e-4 {
		v2 = v2.Mul(1 / d)
	}

	cosTheta := mgl32.Clamp(v1.Dot(v2), -1.0, 1.0)
	angle := float32(math.Acos(float64(cosTheta)))

	if v1.Cross(v2).Dot(axis) < 0 {
		angle = -angle
	}
	return angle
}

// QuatAxisAngle is the axis-angle to unit quaternion construction. The axis
// is normalized here so callers can pass raw cross products.
func QuatAxisAngle(axis mgl32.Vec3, angle float32) mgl32.Quat {
	if l := axis.Len(); l > 1e-6 {
		axis = axis.Mul(1 / l)
	}
	return mgl32.QuatRotate(angle, axis)
}

// SnapAngle rounds angle (radians) to the nearest multiple of
// incrementDegrees, rounding half away from zero.
func SnapAngle(angle float32, incrementDegrees float32) float32 {
	if incrementDegrees <= 0 {
		return angle
	}
	inc := mgl32.DegToRad(incrementDegrees)
	return float32(math.Round(float64(angle/inc))) * inc
}

// closestPoints finds the parameters of the closest approach between a ray
// (ro, rd) and a line (ao, ad). Returns ray parameter t, line parameter s and
// the distance at closest approach. Degenerate (near-parallel) pairs report
// the origin distance with zero parameters.
func closestPoints(ro, rd, ao, ad mgl32.Vec3) (float32, float32, float32) {
	r := ro.Sub(ao)
	a := rd.Dot(rd)
	b := rd.Dot(ad)
	e := ad.Dot(ad)
	f := ad.Dot(r)

	det := a*e - b*b
	if det < 1e-6 {
		return 0, 0, r.Len()
	}

	c := rd.Dot(r)
	t := (b*f - c*e) / det
	s := (a*f - b*c) / det

	p1 := ro.Add(rd.Mul(t))
	p2 := ao.Add(ad.Mul(s))
	return t, s, p1.Sub(p2).Len()
}
