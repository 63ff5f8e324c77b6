package slabview

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuspender struct {
	suspends int
	resumes  int
}

func (s *fakeSuspender) Suspend() { s.suspends++ }
func (s *fakeSuspender) Resume()  { s.resumes++ }
func (s *fakeSuspender) held() int {
	return s.suspends - s.resumes
}

type fakeCursor struct {
	last Cursor
}

func (c *fakeCursor) SetCursor(cur Cursor) { c.last = cur }

// interactionFixture drives interactionSystem frame by frame with a real
// orbit camera rig and fake suspender/cursor collaborators.
type interactionFixture struct {
	t      *testing.T
	cam    *OrbitCamera
	susp   *fakeSuspender
	cursor *fakeCursor
	st     *InteractionState
	gz     *Gizmo
	target *TransformComponent
	clip   *ClipState
	vp     *ViewportLayout
	input  *Input
	tm     *Time
}

func newInteractionFixture(t *testing.T) *interactionFixture {
	cam := NewOrbitCamera(mgl32.Vec3{}, 5)
	cam.SetPose(mgl32.Vec3{2, 1.5, 5}, mgl32.Vec3{})
	cam.Aspect = 1

	gz, target := newBoundGizmoForInteraction()

	vp := &ViewportLayout{}
	vp.Layout(1000, 700)

	susp := &fakeSuspender{}
	cursor := &fakeCursor{}
	st := NewInteractionState(cam, susp, cam, cursor, nil)

	return &interactionFixture{
		t:      t,
		cam:    cam,
		susp:   susp,
		cursor: cursor,
		st:     st,
		gz:     gz,
		target: target,
		clip:   &ClipState{SliceThickness: DefaultThickness},
		vp:     vp,
		input:  &Input{WindowWidth: 1000, WindowHeight: 700},
		tm:     &Time{Time: time.Unix(1000, 0), Dt: 16 * time.Millisecond},
	}
}

func newBoundGizmoForInteraction() (*Gizmo, *TransformComponent) {
	gz := NewGizmo(nil)
	tr := NewTransform(mgl32.Vec3{})
	gz.Bind(1, &tr)
	gz.Update()
	return gz, &tr
}

// pixelFor inverts the camera's pinhole mapping: the pixel whose picking ray
// passes exactly through the given world point.
func (f *interactionFixture) pixelFor(world mgl32.Vec3) (float64, float64) {
	dir := world.Sub(f.cam.Position()).Normalize()
	fwd, right, up := f.cam.Forward(), f.cam.Right(), f.cam.Up()

	tanH := float32(math.Tan(float64(f.cam.FovY) / 2))
	x := dir.Dot(right) / dir.Dot(fwd) / (tanH * f.cam.Aspect)
	y := dir.Dot(up) / dir.Dot(fwd) / tanH

	px := (float64(x)+1)/2*float64(f.vp.Work.W) + float64(f.vp.Work.X)
	py := (1-float64(y))/2*float64(f.vp.Work.H) + float64(f.vp.Work.Y)
	return px, py
}

func (f *interactionFixture) run() {
	interactionSystem(f.input, f.vp, f.st, f.gz, f.clip, f.tm)
}

func (f *interactionFixture) press(px, py float64) {
	f.input.MouseX, f.input.MouseY = px, py
	f.input.Pressed[MouseButtonLeft] = true
	f.input.JustPressed[MouseButtonLeft] = true
	f.run()
	f.input.JustPressed[MouseButtonLeft] = false
}

func (f *interactionFixture) drag(px, py float64) {
	f.input.MouseX, f.input.MouseY = px, py
	f.run()
}

func (f *interactionFixture) release() {
	f.input.Pressed[MouseButtonLeft] = false
	f.input.JustReleased[MouseButtonLeft] = true
	f.run()
	f.input.JustReleased[MouseButtonLeft] = false
}

func (f *interactionFixture) hover(px, py float64) {
	f.input.MouseX, f.input.MouseY = px, py
	f.run()
}

// Points chosen to lie on exactly one handle each (see the ring radii):
// xRingPoint is only on the X ring, yRingPoint only on the Y ring.
var (
	xRingPoint  = mgl32.Vec3{0, 0.6, 0.8}
	xRingPoint2 = mgl32.Vec3{0, 0.8, 0.6}
	yRingPoint  = mgl32.Vec3{0.6, 0, 0.8}
)

func TestHoverPicksAxisAndCursor(t *testing.T) {
	f := newInteractionFixture(t)

	f.hover(f.pixelFor(yRingPoint))
	assert.Equal(t, PhaseHovering, f.st.Phase)
	assert.Equal(t, AxisY, f.gz.HoveredAxis())
	assert.Equal(t, CursorPointer, f.cursor.last)

	f.hover(10, 10)
	assert.Equal(t, PhaseIdle, f.st.Phase)
	assert.Equal(t, AxisNone, f.gz.HoveredAxis())
	assert.Equal(t, CursorDefault, f.cursor.last)
}

func TestRotateDragAppliesSignedAngle(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(f.pixelFor(xRingPoint))
	assert.Equal(t, PhaseRotateDrag, f.st.Phase)
	assert.Equal(t, AxisX, f.gz.ActiveAxis())
	assert.Equal(t, 1, f.susp.held())

	f.drag(f.pixelFor(xRingPoint2))

	wantAngle := SignedAngle(xRingPoint, xRingPoint2, mgl32.Vec3{1, 0, 0})
	want := mgl32.QuatRotate(wantAngle, mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, float64(want.W), float64(f.target.Rotation.W), 1e-3)
	assert.InDelta(t, float64(want.V.X()), float64(f.target.Rotation.V.X()), 1e-3)
	assert.InDelta(t, 0, float64(f.target.Rotation.V.Y()), 1e-3)
	assert.InDelta(t, 0, float64(f.target.Rotation.V.Z()), 1e-3)

	f.release()
	assert.Equal(t, PhaseIdle, f.st.Phase)
	assert.Equal(t, AxisNone, f.gz.ActiveAxis())
	assert.Equal(t, 0, f.susp.held())
}

func TestRotateDragBackToStartRestoresOrientation(t *testing.T) {
	f := newInteractionFixture(t)

	startX, startY := f.pixelFor(xRingPoint)
	f.press(startX, startY)
	f.drag(f.pixelFor(xRingPoint2))
	require.NotEqual(t, mgl32.QuatIdent(), f.target.Rotation)

	f.drag(startX, startY)
	assert.InDelta(t, 1, float64(f.target.Rotation.W), 1e-3,
		"returning to the start pixel must restore the snapshot orientation")
	f.release()
}

func TestRotateDragDeadZone(t *testing.T) {
	f := newInteractionFixture(t)

	px, py := f.pixelFor(xRingPoint)
	f.press(px, py)
	f.drag(px, py)

	// Below the dead zone nothing is written, not even a same-value write.
	assert.Equal(t, mgl32.QuatIdent(), f.target.Rotation)
	f.release()
}

func TestRotateDragShiftSnapsAngle(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(f.pixelFor(xRingPoint))
	f.input.Pressed[KeyShift] = true
	f.drag(f.pixelFor(xRingPoint2))

	raw := SignedAngle(xRingPoint, xRingPoint2, mgl32.Vec3{1, 0, 0})
	want := mgl32.QuatRotate(SnapAngle(raw, snapIncrementDegrees), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, float64(want.W), float64(f.target.Rotation.W), 1e-3)
	f.release()
}

func TestAmbiguousDistinguishedPressResolvesToRotate(t *testing.T) {
	f := newInteractionFixture(t)

	px, py := f.pixelFor(yRingPoint)
	f.press(px, py)
	assert.Equal(t, PhaseAmbiguousYDrag, f.st.Phase)
	assert.Equal(t, 1, f.susp.held(), "distinguished ring press suppresses orbit before resolution")

	// Within the threshold: still ambiguous.
	f.drag(px+3, py+2)
	assert.Equal(t, PhaseAmbiguousYDrag, f.st.Phase)

	// Mostly horizontal: rotation about the distinguished axis.
	f.drag(px+12, py+1)
	assert.Equal(t, PhaseRotateDrag, f.st.Phase)
	assert.Equal(t, DistinguishedAxis, f.gz.ActiveAxis())
	assert.InDelta(t, 0, float64(f.clip.SliceCenter), 1e-6)

	f.release()
	assert.Equal(t, 0, f.susp.held())
}

func TestAmbiguousDistinguishedPressResolvesToSlice(t *testing.T) {
	f := newInteractionFixture(t)

	px, py := f.pixelFor(yRingPoint)
	f.press(px, py)

	// Mostly vertical: slice. Displacement measured from the press point.
	f.drag(px+1, py+12)
	assert.Equal(t, PhaseSliceDrag, f.st.Phase)
	assert.Equal(t, 1, f.susp.held(), "ring-origin slice drag keeps orbit suppressed")

	f.drag(px+1, py+112)
	assert.InDelta(t, -112*SliceSensitivity, float64(f.clip.SliceCenter), 1e-4)
	assert.Equal(t, mgl32.QuatIdent(), f.target.Rotation, "slice drag must not rotate")

	f.release()
	assert.Equal(t, 0, f.susp.held())
}

func TestSliceClampUnderExtremePointerTravel(t *testing.T) {
	f := newInteractionFixture(t)

	px, py := f.pixelFor(yRingPoint)
	f.press(px, py)
	f.drag(px, py-10000)
	assert.Equal(t, PhaseSliceDrag, f.st.Phase)
	assert.InDelta(t, SliceMax, float64(f.clip.SliceCenter), 1e-6)

	f.drag(px, py+10000)
	assert.InDelta(t, SliceMin, float64(f.clip.SliceCenter), 1e-6)
	f.release()
}

func TestDistinguishedLabelSliceDoesNotSuspendOrbit(t *testing.T) {
	f := newInteractionFixture(t)

	px, py := f.pixelFor(f.gz.LabelCenter(DistinguishedAxis))
	f.press(px, py)
	assert.Equal(t, PhaseSliceDrag, f.st.Phase)
	assert.Equal(t, 0, f.susp.suspends, "label slice drags leave orbit live")

	f.drag(px, py-50)
	assert.InDelta(t, 50*SliceSensitivity, float64(f.clip.SliceCenter), 1e-4)

	f.release()
	assert.Equal(t, 0, f.susp.resumes)
}

func TestOtherLabelQuickClickSnapsView(t *testing.T) {
	f := newInteractionFixture(t)
	startDist := f.cam.Position().Len()

	px, py := f.pixelFor(f.gz.LabelCenter(AxisX))
	f.press(px, py)
	assert.Equal(t, PhaseOrbitPassthrough, f.st.Phase)
	assert.Equal(t, 0, f.susp.held(), "label press passes the gesture to orbit")

	f.release()
	require.True(t, f.st.SnapActive())
	assert.Equal(t, 1, f.susp.held(), "snap animation owns an orbit suspension")

	f.st.AdvanceSnap(1.0)
	assert.False(t, f.st.SnapActive())
	assert.Equal(t, 0, f.susp.held())

	pos := f.cam.Position()
	assert.InDelta(t, float64(startDist), float64(pos.Len()), 1e-2, "snap preserves distance")
	assert.InDelta(t, float64(startDist), float64(pos.X()), 1e-2, "snap lands on the +X axis view")
	assert.InDelta(t, 0, float64(pos.Y()), 1e-2)
	assert.InDelta(t, 0, float64(pos.Z()), 1e-2)
}

func TestSlowClickOnLabelDoesNotSnap(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(f.pixelFor(f.gz.LabelCenter(AxisZ)))
	f.tm.Time = f.tm.Time.Add(400 * time.Millisecond)
	f.release()
	assert.False(t, f.st.SnapActive())
}

func TestNewPressCancelsSnapAndHandsOrbitBack(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(f.pixelFor(f.gz.LabelCenter(AxisX)))
	f.release()
	require.True(t, f.st.SnapActive())
	require.Equal(t, 1, f.susp.held())

	// Mid-flight press on empty space: the animation dies and the orbit
	// suspension is released immediately.
	f.st.AdvanceSnap(0.1)
	f.press(10, 10)
	assert.False(t, f.st.SnapActive())
	assert.Equal(t, 0, f.susp.held())
	f.release()
}

func TestEmptySpacePressIsOrbitPassthrough(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(10, 10)
	assert.Equal(t, PhaseOrbitPassthrough, f.st.Phase)
	assert.Equal(t, 0, f.susp.suspends)
	assert.Equal(t, mgl32.QuatIdent(), f.target.Rotation)

	f.drag(200, 200)
	assert.Equal(t, mgl32.QuatIdent(), f.target.Rotation)
	f.release()
}

func TestViewAlignedAxisUsesFallbackPlane(t *testing.T) {
	f := newInteractionFixture(t)

	// Look straight down the Y axis; the pole clamp leaves a sliver of tilt,
	// still well past the alignment threshold.
	f.cam.SetPose(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{})

	sess := f.st.beginRotation(f.gz, AxisY, mgl32.Vec2{})
	require.NotNil(t, sess)
	assert.Equal(t, AxisY, sess.Axis, "the reported axis stays the selected one")
	assert.InDelta(t, 0, float64(sess.EffectiveAxis.Dot(mgl32.Vec3{0, 1, 0})), 0.05,
		"the working axis must tilt away from the view direction")
	assert.InDelta(t, 1, float64(sess.EffectiveAxis.Len()), 1e-4)
}

func TestRotationMissedPlaneFramesAreSkipped(t *testing.T) {
	f := newInteractionFixture(t)

	f.press(f.pixelFor(xRingPoint))
	require.Equal(t, PhaseRotateDrag, f.st.Phase)

	// A pixel far to the right sends the ray away from the x=0 drag plane.
	// The frame is skipped, the drag survives, and a later valid frame
	// still works.
	f.drag(5000, 350)
	assert.Equal(t, PhaseRotateDrag, f.st.Phase)
	assert.Equal(t, mgl32.QuatIdent(), f.target.Rotation)

	f.drag(f.pixelFor(xRingPoint2))
	assert.NotEqual(t, mgl32.QuatIdent(), f.target.Rotation)
	f.release()
}

func TestHotkeysSwitchStyleModeAndResetSlice(t *testing.T) {
	f := newInteractionFixture(t)
	input := f.input

	input.JustPressed[Key2] = true
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.Equal(t, StyleLine, f.gz.Style())
	input.JustPressed[Key2] = false

	input.JustPressed[Key3] = true
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.Equal(t, StyleFrame, f.gz.Style())
	input.JustPressed[Key3] = false

	input.JustPressed[Key1] = true
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.Equal(t, StyleRing, f.gz.Style())
	input.JustPressed[Key1] = false

	input.JustPressed[KeyG] = true
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.Equal(t, RotationLocal, f.gz.RotationMode())
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.Equal(t, RotationWorld, f.gz.RotationMode())
	input.JustPressed[KeyG] = false

	f.clip.SetCenter(1.5)
	input.JustPressed[KeyR] = true
	viewerHotkeySystem(input, f.gz, f.clip)
	assert.InDelta(t, 0, float64(f.clip.SliceCenter), 1e-6)
}

func TestPressWithoutTargetIsNoop(t *testing.T) {
	f := newInteractionFixture(t)
	f.gz = NewGizmo(nil) // unbound

	f.press(f.pixelFor(xRingPoint))
	assert.Equal(t, PhaseOrbitPassthrough, f.st.Phase)
	assert.Equal(t, 0, f.susp.suspends)
	f.release()
}
