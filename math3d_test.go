package slabview

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersectRayPlane(t *testing.T) {
	plane := Plane{Point: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}

	hit, ok := IntersectRayPlane(Ray{Origin: mgl32.Vec3{1, 2, 3}, Dir: mgl32.Vec3{0, -1, 0}}, plane)
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.X(), 1e-6)
	assert.InDelta(t, 0.0, hit.Y(), 1e-6)
	assert.InDelta(t, 3.0, hit.Z(), 1e-6)

	// Parallel ray misses.
	_, ok = IntersectRayPlane(Ray{Origin: mgl32.Vec3{0, 1, 0}, Dir: mgl32.Vec3{1, 0, 0}}, plane)
	assert.False(t, ok)

	// Plane behind the origin misses.
	_, ok = IntersectRayPlane(Ray{Origin: mgl32.Vec3{0, 1, 0}, Dir: mgl32.Vec3{0, 1, 0}}, plane)
	assert.False(t, ok)
}

func TestSignedAngle(t *testing.T) {
	x := mgl32.Vec3{1, 0, 0}
	y := mgl32.Vec3{0, 1, 0}
	z := mgl32.Vec3{0, 0, 1}

	assert.InDelta(t, math.Pi/2, float64(SignedAngle(x, y, z)), 1e-5)
	assert.InDelta(t, -math.Pi/2, float64(SignedAngle(y, x, z)), 1e-5)
	assert.InDelta(t, 0, float64(SignedAngle(x, x, z)), 1e-5)

	// Flipping the reference axis flips the sign.
	assert.InDelta(t, -math.Pi/2, float64(SignedAngle(x, y, z.Mul(-1))), 1e-5)
}

func TestQuatAxisAngleRotates(t *testing.T) {
	q := QuatAxisAngle(mgl32.Vec3{0, 0, 1}, math.Pi/2)
	v := q.Rotate(mgl32.Vec3{1, 0, 0})

	assert.InDelta(t, 0, v.X(), 1e-5)
	assert.InDelta(t, 1, v.Y(), 1e-5)
	assert.InDelta(t, 0, v.Z(), 1e-5)
}

func TestQuatAxisAngleNormalizesAxis(t *testing.T) {
	a := QuatAxisAngle(mgl32.Vec3{0, 0, 10}, 0.5)
	b := QuatAxisAngle(mgl32.Vec3{0, 0, 1}, 0.5)

	assert.InDelta(t, float64(b.W), float64(a.W), 1e-5)
	assert.InDelta(t, float64(b.V.Z()), float64(a.V.Z()), 1e-5)
}

func TestSnapAngle(t *testing.T) {
	deg := func(d float64) float32 { return float32(d * math.Pi / 180) }

	assert.InDelta(t, float64(deg(15)), float64(SnapAngle(deg(16), 15)), 1e-5)
	assert.InDelta(t, float64(deg(30)), float64(SnapAngle(deg(23), 15)), 1e-5)
	assert.InDelta(t, float64(deg(-15)), float64(SnapAngle(deg(-16), 15)), 1e-5)
	assert.InDelta(t, 0, float64(SnapAngle(deg(7), 15)), 1e-5)

	// Halfway rounds away from zero on both sides.
	assert.InDelta(t, float64(deg(15)), float64(SnapAngle(deg(7.5), 15)), 1e-5)
	assert.InDelta(t, float64(deg(-15)), float64(SnapAngle(deg(-7.5), 15)), 1e-5)
}

func TestRotationPlane(t *testing.T) {
	pivot := mgl32.Vec3{1, 2, 3}
	p := RotationPlane(mgl32.Vec3{0, 5, 0}, pivot)

	assert.Equal(t, pivot, p.Point)
	assert.InDelta(t, 1, float64(p.Normal.Len()), 1e-5)
	assert.InDelta(t, 1, float64(p.Normal.Y()), 1e-5)
}

func TestClosestPoints(t *testing.T) {
	// Ray along X at y=1 against a segment along Z through the origin.
	tRay, s, d := closestPoints(
		mgl32.Vec3{-5, 1, 0}, mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 2},
	)
	assert.InDelta(t, 5, float64(tRay), 1e-4)
	assert.InDelta(t, 0.5, float64(s), 1e-4)
	assert.InDelta(t, 1, float64(d), 1e-4)
}
