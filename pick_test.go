package slabview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rayAt aims a ray from origin o exactly at world point p.
func rayAt(o, p mgl32.Vec3) Ray {
	return Ray{Origin: o, Dir: p.Sub(o).Normalize()}
}

func TestPickRingHandle(t *testing.T) {
	gz, _ := newBoundGizmo()
	eye := mgl32.Vec3{2, 1.5, 5}

	// (0, 0.6, 0.8) lies on the X ring only.
	node, ok := gz.Pick(rayAt(eye, mgl32.Vec3{0, 0.6, 0.8}))
	require.True(t, ok)

	target, ok := gz.ResolvePick(node)
	require.True(t, ok)
	assert.Equal(t, PickHandle, target.Kind)
	assert.Equal(t, AxisX, target.Axis)
}

func TestPickMiss(t *testing.T) {
	gz, _ := newBoundGizmo()
	eye := mgl32.Vec3{2, 1.5, 5}

	_, ok := gz.Pick(rayAt(eye, mgl32.Vec3{40, -3, 12}))
	assert.False(t, ok)
}

func TestPickLabelResolvesThroughAnchorChain(t *testing.T) {
	gz, _ := newBoundGizmo()
	eye := mgl32.Vec3{2, 1.5, 5}

	node, ok := gz.Pick(rayAt(eye, gz.LabelCenter(AxisZ)))
	require.True(t, ok)

	// The sprite itself carries no metadata; resolution walks to the anchor.
	_, direct := gz.targets[node]
	assert.False(t, direct)

	target, ok := gz.ResolvePick(node)
	require.True(t, ok)
	assert.Equal(t, PickLabel, target.Kind)
	assert.Equal(t, AxisZ, target.Axis)
}

func TestPickRespectsActiveStyle(t *testing.T) {
	gz, _ := newBoundGizmo()
	eye := mgl32.Vec3{2, 1.5, 5}

	// A ring-band point stops being pickable once the line style is active.
	ringPoint := mgl32.Vec3{0, 0.6, 0.8}
	_, ok := gz.Pick(rayAt(eye, ringPoint))
	require.True(t, ok)

	gz.ApplyStyle(StyleLine)
	_, ok = gz.Pick(rayAt(eye, ringPoint))
	assert.False(t, ok)

	// The line representation picks along the axis shaft instead.
	node, ok := gz.Pick(rayAt(eye, mgl32.Vec3{0.9, 0, 0}))
	require.True(t, ok)
	target, _ := gz.ResolvePick(node)
	assert.Equal(t, AxisX, target.Axis)
}

func TestPickLabelsPickableInEveryStyle(t *testing.T) {
	gz, _ := newBoundGizmo()
	eye := mgl32.Vec3{2, 1.5, 5}

	for _, style := range []HandleStyle{StyleRing, StyleLine, StyleFrame} {
		gz.ApplyStyle(style)
		node, ok := gz.Pick(rayAt(eye, gz.LabelCenter(AxisY)))
		require.True(t, ok, "style %s", style)
		target, ok := gz.ResolvePick(node)
		require.True(t, ok)
		assert.Equal(t, PickLabel, target.Kind)
		assert.Equal(t, AxisY, target.Axis)
	}
}

func TestResolvePickUnknownNode(t *testing.T) {
	gz, _ := newBoundGizmo()

	_, ok := gz.ResolvePick(NodeId("not-a-node"))
	assert.False(t, ok)
}
