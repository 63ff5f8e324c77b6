package slabview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGizmoSystemBindsAndUnbindsWithTargetLifetime(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	gz := NewGizmo(nil)
	clip := &ClipState{SliceThickness: DefaultThickness}

	// No target yet.
	gizmoUpdateSystem(gz, clip, cmd)
	_, ok := gz.Target()
	assert.False(t, ok)

	eid := cmd.AddEntity(TargetTag{}, NewTransform(mgl32.Vec3{1, 0, 0}))
	app.FlushCommands()

	gizmoUpdateSystem(gz, clip, cmd)
	tr, ok := gz.Target()
	require.True(t, ok)
	assert.Equal(t, eid, gz.TargetEntity())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tr.Position)

	cmd.RemoveEntity(eid)
	app.FlushCommands()

	gizmoUpdateSystem(gz, clip, cmd)
	_, ok = gz.Target()
	assert.False(t, ok, "a despawned target must not leave a stale binding")
}

func TestGizmoSystemFeedsSliceOffset(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	gz := NewGizmo(nil)
	clip := &ClipState{SliceThickness: DefaultThickness}

	cmd.AddEntity(TargetTag{}, NewTransform(mgl32.Vec3{0, 0.5, 0}))
	app.FlushCommands()

	clip.SetCenter(2)
	gizmoUpdateSystem(gz, clip, cmd)

	// The handle offset is relative to the target pivot along the axis.
	assert.InDelta(t, 1.5, float64(gz.SliceOffset()), 1e-6)
}
