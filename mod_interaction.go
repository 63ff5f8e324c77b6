package slabview

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// InteractionPhase is the state of the pointer gesture state machine.
type InteractionPhase int

const (
	PhaseIdle InteractionPhase = iota
	PhaseHovering
	PhaseRotateDrag
	PhaseSliceDrag
	PhaseAmbiguousYDrag
	PhaseOrbitPassthrough
)

// CameraRig is the read side of the camera collaborator.
type CameraRig interface {
	RayThrough(ndc mgl32.Vec2) Ray
	Position() mgl32.Vec3
	Forward() mgl32.Vec3
	Up() mgl32.Vec3
}

// CameraSuspender gates the ambient orbit control while the gizmo owns a
// gesture. Suspend/Resume nest.
type CameraSuspender interface {
	Suspend()
	Resume()
}

// CameraPoser is the write side used by the snap-to-axis-view animation.
type CameraPoser interface {
	SetPose(position, lookAt mgl32.Vec3)
}

// Cursor shapes the interaction controller can request. The controller emits
// cursor commands; a presentation layer (the window module) applies them.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorGrab
)

type CursorSink interface {
	SetCursor(Cursor)
}

type nopSuspender struct{}

func (nopSuspender) Suspend() {}
func (nopSuspender) Resume()  {}

type nopCursor struct{}

func (nopCursor) SetCursor(Cursor) {}

// Interaction tuning. Distances are pixels unless noted.
const (
	ambiguityThresholdPx   = 5.0
	alignmentThreshold     = 0.99
	degenerateEps          = 0.001
	deadZoneRad            = 0.001
	quickClickMaxDuration  = 250 * time.Millisecond
	quickClickMaxMoveNDC   = 0.01
	snapDurationSec        = 0.6
	snapIncrementDegrees   = 15.0
)

// DragSession is the transient state of one rotation drag. All fields are
// captured at drag start; the target orientation is always recomputed from
// StartOrientation rather than integrated, so a drag cannot drift.
type DragSession struct {
	Axis             Axis
	Plane            Plane
	EffectiveAxis    mgl32.Vec3 // possibly the fallback axis, see beginRotation
	StartHit         mgl32.Vec3
	StartOrientation mgl32.Quat

	haveStart bool
}

// SliceDragSession is the transient state of one slice drag.
type SliceDragSession struct {
	StartPointerY float64
	StartSlice    float32
}

type snapTask struct {
	gen   int
	tween *gween.Tween
	from  mgl32.Vec3
	to    mgl32.Vec3
	pivot mgl32.Vec3
}

// InteractionState is the controller resource: the gesture state machine plus
// the collaborator capabilities it drives.
type InteractionState struct {
	Phase InteractionPhase

	camera    CameraRig
	suspender CameraSuspender
	poser     CameraPoser
	cursor    CursorSink
	log       Logger

	drag  *DragSession
	slice *SliceDragSession

	// Ambiguous distinguished-axis press, unresolved direction.
	ambStartX, ambStartY float64
	ambStartSlice        float32

	// Press bookkeeping for quick-click detection.
	pressAt    time.Time
	pressX     float64
	pressY     float64
	pressKind  PickTarget
	pressValid bool

	// Whether this interaction currently holds an orbit suspension.
	orbitHeld bool

	snap    *snapTask
	snapGen int
}

func NewInteractionState(camera CameraRig, suspender CameraSuspender, poser CameraPoser, cursor CursorSink, log Logger) *InteractionState {
	if suspender == nil {
		suspender = nopSuspender{}
	}
	if cursor == nil {
		cursor = nopCursor{}
	}
	if log == nil {
		log = NewNopLogger()
	}
	return &InteractionState{
		camera:    camera,
		suspender: suspender,
		poser:     poser,
		cursor:    cursor,
		log:       log,
	}
}

// InteractionModule wires the controller into the frame. The collaborators
// are passed at construction; the dependency on orbit suspension is an
// explicit capability, not an optional callback.
type InteractionModule struct {
	Camera    CameraRig
	Suspender CameraSuspender
	Poser     CameraPoser
	Cursor    CursorSink
}

func (m InteractionModule) Install(app *App, cmd *Commands) {
	cursor := m.Cursor
	if cursor == nil {
		if ws, ok := GetResource[WindowState](app); ok {
			cursor = ws
		}
	}
	st := NewInteractionState(m.Camera, m.Suspender, m.Poser, cursor, app.Logger())
	cmd.AddResources(st)
	app.UseSystem(
		System(interactionSystem).
			InStage(PreUpdate),
	)
	app.UseSystem(
		System(snapAnimationSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(viewerHotkeySystem).
			InStage(PreUpdate),
	)
}

// interactionSystem runs once per frame, before transforms are read for view
// sync and rendering.
func interactionSystem(input *Input, vp *ViewportLayout, st *InteractionState, gz *Gizmo, clip *ClipState, tm *Time) {
	px, py := input.MouseX, input.MouseY
	ndc, inside := vp.WorkNDC(px, py)

	switch {
	case input.JustPressed[MouseButtonLeft]:
		st.pointerDown(gz, clip, px, py, ndc, inside, tm.Time)
	case input.Pressed[MouseButtonLeft]:
		st.pointerDrag(gz, clip, input, px, py, ndc)
	case input.JustReleased[MouseButtonLeft]:
		st.pointerUp(gz, vp, px, py, tm.Time)
	default:
		st.pointerHover(gz, ndc, inside)
	}
}

func (st *InteractionState) pointerDown(gz *Gizmo, clip *ClipState, px, py float64, ndc mgl32.Vec2, inside bool, now time.Time) {
	// A new interaction cancels a running snap animation and takes over the
	// responsibility of re-enabling orbit; the simplest correct handover is
	// to release the animation's suspension here and re-suspend below if the
	// new gesture needs it.
	if st.snap != nil {
		st.snap = nil
		st.snapGen++
		st.suspender.Resume()
	}

	st.pressAt = now
	st.pressX, st.pressY = px, py
	st.pressValid = false

	if _, ok := gz.Target(); !ok {
		// Model not loaded yet; interactions are no-ops, not errors.
		st.log.Debugf("pointer down before target bound")
		st.Phase = PhaseOrbitPassthrough
		return
	}
	if !inside {
		gz.SetHoverAxis(AxisNone)
		st.Phase = PhaseOrbitPassthrough
		return
	}

	ray := st.camera.RayThrough(ndc)
	node, ok := gz.Pick(ray)
	if !ok {
		gz.SetHoverAxis(AxisNone)
		st.Phase = PhaseOrbitPassthrough
		return
	}
	target, ok := gz.ResolvePick(node)
	if !ok {
		st.log.Debugf("picked node %s has no axis metadata anywhere in its chain", node)
		st.Phase = PhaseOrbitPassthrough
		return
	}
	st.pressKind = target
	st.pressValid = true

	switch {
	case target.Kind == PickLabel && target.Axis == DistinguishedAxis:
		// Distinguished-axis label: always a slice drag, and deliberately
		// does not block orbit (rings block, labels never do).
		st.slice = &SliceDragSession{StartPointerY: py, StartSlice: clip.SliceCenter}
		st.Phase = PhaseSliceDrag
		st.cursor.SetCursor(CursorGrab)

	case target.Kind == PickLabel:
		// Other labels hint the camera: the gesture stays with orbit, and a
		// quick click snaps the view on release.
		st.Phase = PhaseOrbitPassthrough

	case target.Axis == DistinguishedAxis:
		// The ring doubles as rotate and slice control; the gizmo owns the
		// gesture either way, so orbit is suppressed before the direction is
		// known.
		st.suspender.Suspend()
		st.orbitHeld = true
		st.ambStartX, st.ambStartY = px, py
		st.ambStartSlice = clip.SliceCenter
		st.Phase = PhaseAmbiguousYDrag

	default:
		st.suspender.Suspend()
		st.orbitHeld = true
		gz.SetActiveAxis(target.Axis)
		st.drag = st.beginRotation(gz, target.Axis, ndc)
		st.Phase = PhaseRotateDrag
		st.cursor.SetCursor(CursorGrab)
	}
}

// beginRotation is the rotation-setup procedure, run once per ROTATE_DRAG
// entry. When the camera looks nearly straight down the rotation axis every
// drag direction maps ambiguously to an angle, so the working plane is built
// on a fallback axis tilted into the view; the visually highlighted axis
// stays the selected one.
func (st *InteractionState) beginRotation(gz *Gizmo, axis Axis, ndc mgl32.Vec2) *DragSession {
	target, ok := gz.Target()
	if !ok {
		return nil
	}

	axisVec := gz.WorldAxisVector(axis)
	view := st.camera.Forward()

	effective := axisVec
	if float32(math.Abs(float64(view.Dot(axisVec)))) > alignmentThreshold {
		fallback := view.Cross(st.camera.Up())
		if l := fallback.Len(); l > 1e-6 {
			effective = fallback.Mul(1 / l)
		}
	}

	sess := &DragSession{
		Axis:             axis,
		Plane:            RotationPlane(effective, target.Position),
		EffectiveAxis:    effective,
		StartOrientation: target.Rotation,
	}

	ray := st.camera.RayThrough(ndc)
	if hit, ok := IntersectRayPlane(ray, sess.Plane); ok {
		sess.StartHit = hit
		sess.haveStart = true
	} else {
		// The session stays; updates no-op until a frame produces a hit.
		st.log.Debugf("rotation drag on %s started without an initial plane hit", axis)
	}
	return sess
}

func (st *InteractionState) pointerDrag(gz *Gizmo, clip *ClipState, input *Input, px, py float64, ndc mgl32.Vec2) {
	switch st.Phase {
	case PhaseAmbiguousYDrag:
		dx := px - st.ambStartX
		dy := py - st.ambStartY
		if math.Abs(dx) <= ambiguityThresholdPx && math.Abs(dy) <= ambiguityThresholdPx {
			return
		}
		if math.Abs(dy) > math.Abs(dx) {
			// Vertical gesture: slice, applying the travel accumulated since
			// the press in the same frame.
			st.slice = &SliceDragSession{StartPointerY: st.ambStartY, StartSlice: st.ambStartSlice}
			st.Phase = PhaseSliceDrag
			st.cursor.SetCursor(CursorGrab)
			clip.SetCenter(st.slice.StartSlice - float32(py-st.slice.StartPointerY)*SliceSensitivity)
		} else {
			// Horizontal gesture: rotate about the distinguished axis, with
			// setup anchored at the pointer position at resolution time.
			gz.SetActiveAxis(DistinguishedAxis)
			st.drag = st.beginRotation(gz, DistinguishedAxis, ndc)
			st.Phase = PhaseRotateDrag
			st.cursor.SetCursor(CursorGrab)
		}

	case PhaseSliceDrag:
		sess := st.slice
		if sess == nil {
			return
		}
		clip.SetCenter(sess.StartSlice - float32(py-sess.StartPointerY)*SliceSensitivity)

	case PhaseRotateDrag:
		st.updateRotation(gz, input, ndc)
	}
}

// updateRotation applies one frame of ROTATE_DRAG. Every degenerate case
// skips the frame and leaves the session alive; the drag simply does not
// move this frame.
func (st *InteractionState) updateRotation(gz *Gizmo, input *Input, ndc mgl32.Vec2) {
	sess := st.drag
	if sess == nil {
		return
	}
	target, ok := gz.Target()
	if !ok {
		return
	}

	ray := st.camera.RayThrough(ndc)
	hit, ok := IntersectRayPlane(ray, sess.Plane)
	if !ok {
		return
	}
	if !sess.haveStart {
		sess.StartHit = hit
		sess.haveStart = true
		return
	}

	pivot := sess.Plane.Point
	start := sess.StartHit.Sub(pivot)
	current := hit.Sub(pivot)
	if start.Len() < degenerateEps || current.Len() < degenerateEps {
		return
	}
	start = start.Normalize()
	current = current.Normalize()

	angle := SignedAngle(start, current, sess.EffectiveAxis)
	if float32(math.Abs(float64(angle))) < deadZoneRad {
		return
	}
	if input.Pressed[KeyShift] {
		angle = SnapAngle(angle, snapIncrementDegrees)
		if angle == 0 {
			return
		}
	}

	delta := QuatAxisAngle(sess.EffectiveAxis, angle)
	target.Rotation = delta.Mul(sess.StartOrientation).Normalize()
}

func (st *InteractionState) pointerUp(gz *Gizmo, vp *ViewportLayout, px, py float64, now time.Time) {
	switch st.Phase {
	case PhaseRotateDrag:
		st.drag = nil
		gz.ClearActiveAxis()
		st.releaseOrbit()

	case PhaseSliceDrag:
		st.slice = nil
		st.releaseOrbit()

	case PhaseAmbiguousYDrag:
		st.releaseOrbit()

	case PhaseOrbitPassthrough:
		if st.pressValid && st.pressKind.Kind == PickLabel && st.pressKind.Axis != DistinguishedAxis {
			pressNDC, _ := vp.WorkNDC(st.pressX, st.pressY)
			nowNDC, _ := vp.WorkNDC(px, py)
			moved := nowNDC.Sub(pressNDC).Len()
			if now.Sub(st.pressAt) < quickClickMaxDuration && moved < quickClickMaxMoveNDC {
				st.startSnap(gz, st.pressKind.Axis)
			}
		}
	}

	st.pressValid = false
	st.cursor.SetCursor(CursorDefault)
	st.Phase = PhaseIdle
}

func (st *InteractionState) releaseOrbit() {
	if st.orbitHeld {
		st.suspender.Resume()
		st.orbitHeld = false
	}
}

func (st *InteractionState) pointerHover(gz *Gizmo, ndc mgl32.Vec2, inside bool) {
	if !inside {
		if gz.HoveredAxis() != AxisNone {
			gz.SetHoverAxis(AxisNone)
			st.cursor.SetCursor(CursorDefault)
		}
		st.Phase = PhaseIdle
		return
	}

	ray := st.camera.RayThrough(ndc)
	if node, ok := gz.Pick(ray); ok {
		if target, ok := gz.ResolvePick(node); ok {
			gz.SetHoverAxis(target.Axis)
			st.cursor.SetCursor(CursorPointer)
			st.Phase = PhaseHovering
			return
		}
	}
	if gz.HoveredAxis() != AxisNone {
		gz.SetHoverAxis(AxisNone)
		st.cursor.SetCursor(CursorDefault)
	}
	st.Phase = PhaseIdle
}

// startSnap begins the snap-to-axis-view animation: a one-shot, time-bounded
// task advanced by the frame tick, not a state machine state.
func (st *InteractionState) startSnap(gz *Gizmo, axis Axis) {
	target, ok := gz.Target()
	if !ok || st.poser == nil {
		return
	}
	pivot := target.Position
	from := st.camera.Position()
	dist := from.Sub(pivot).Len()
	if dist < degenerateEps {
		return
	}
	to := pivot.Add(gz.WorldAxisVector(axis).Mul(dist))

	st.suspender.Suspend()
	st.snapGen++
	st.snap = &snapTask{
		gen:   st.snapGen,
		tween: gween.New(0, 1, snapDurationSec, ease.InOutSine),
		from:  from,
		to:    to,
		pivot: pivot,
	}
	st.log.Debugf("snap to %s view", axis)
}

// SnapActive reports whether a snap-to-view animation is in flight.
func (st *InteractionState) SnapActive() bool { return st.snap != nil }

func snapAnimationSystem(st *InteractionState, tm *Time) {
	st.AdvanceSnap(float32(tm.Dt.Seconds()))
}

// AdvanceSnap steps the snap animation by dt seconds, re-pointing the camera
// at the pivot each step, and re-enables orbit on completion.
func (st *InteractionState) AdvanceSnap(dt float32) {
	task := st.snap
	if task == nil || dt <= 0 {
		return
	}
	if task.gen != st.snapGen {
		// Stale task superseded by a newer interaction; it already handed
		// its orbit suspension over.
		st.snap = nil
		return
	}

	v, done := task.tween.Update(dt)
	pos := task.from.Add(task.to.Sub(task.from).Mul(v))
	st.poser.SetPose(pos, task.pivot)

	if done {
		st.snap = nil
		st.suspender.Resume()
	}
}

// viewerHotkeySystem handles the small set of viewer shortcuts: handle style
// (1/2/3), rotation frame toggle (G) and slice reset (R).
func viewerHotkeySystem(input *Input, gz *Gizmo, clip *ClipState) {
	switch {
	case input.JustPressed[Key1]:
		gz.ApplyStyle(StyleRing)
	case input.JustPressed[Key2]:
		gz.ApplyStyle(StyleLine)
	case input.JustPressed[Key3]:
		gz.ApplyStyle(StyleFrame)
	}
	if input.JustPressed[KeyG] {
		if gz.RotationMode() == RotationWorld {
			gz.SetRotationMode(RotationLocal)
		} else {
			gz.SetRotationMode(RotationWorld)
		}
	}
	if input.JustPressed[KeyR] {
		clip.Reset()
	}
}
