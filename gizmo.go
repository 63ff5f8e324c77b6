package slabview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RotationMode selects the frame the handle axes live in.
type RotationMode int

const (
	RotationWorld RotationMode = iota
	RotationLocal
)

// TransformComponent is the world transform of a scene entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// HandleVisual is the presentation state of one handle, consumed by the
// renderer. The model never issues draw calls.
type HandleVisual struct {
	Color      [4]float32
	Opacity    float32
	Emphasized bool // highlight overlay shown
}

type handleNode struct {
	id     NodeId
	axis   Axis
	visual HandleVisual
}

type styleSet struct {
	style   HandleStyle
	handles [3]*handleNode
}

// labelNode is the per-axis text label. The pickable sprite node carries no
// axis metadata; hit-testing walks up to the anchor, which does.
type labelNode struct {
	axis   Axis
	sprite NodeId
	anchor NodeId
}

// Handle geometry in local units, scaled by the gizmo's Scale.
const (
	handleRingRadius   = 1.0
	handleRingBand     = 0.15
	handleLineLength   = 1.2
	handleLineThick    = 0.12
	handleFrameHalf    = 0.85
	handleLabelOffset  = 1.35
	handleLabelRadius  = 0.14
	handleNeutralAlpha = 0.6
	handleDimmedAlpha  = 0.25
	handleGhostAlpha   = 0.08
)

var neutralGray = [4]float32{0.62, 0.62, 0.62, 1}

// Gizmo is the interactive widget model: three axis handles in one of three
// interchangeable styles, per-axis hover/active visual state, and a
// non-owning binding to the target transform it rotates.
type Gizmo struct {
	log Logger

	targetEntity EntityId
	target       *TransformComponent

	mode     RotationMode
	style    HandleStyle
	hovered  Axis
	active   Axis
	rotating bool

	position    mgl32.Vec3
	orientation mgl32.Quat
	Scale       float32

	// Offset of the distinguished axis handle along its own axis, tracking
	// the slice position.
	sliceOffset float32

	styles  map[HandleStyle]*styleSet
	labels  [3]labelNode
	parents map[NodeId]NodeId
	targets map[NodeId]PickTarget
}

func NewGizmo(log Logger) *Gizmo {
	if log == nil {
		log = NewNopLogger()
	}
	g := &Gizmo{
		log:         log,
		mode:        RotationWorld,
		hovered:     AxisNone,
		active:      AxisNone,
		orientation: mgl32.QuatIdent(),
		Scale:       1.0,
		styles:      make(map[HandleStyle]*styleSet),
		parents:     make(map[NodeId]NodeId),
		targets:     make(map[NodeId]PickTarget),
	}
	for _, axis := range Axes {
		g.labels[axis] = labelNode{
			axis:   axis,
			sprite: makeNodeId(),
			anchor: makeNodeId(),
		}
		g.targets[g.labels[axis].anchor] = PickTarget{
			Kind:    PickLabel,
			Axis:    axis,
			AxisVec: axis.Vec(),
		}
		g.parents[g.labels[axis].sprite] = g.labels[axis].anchor
	}
	g.ApplyStyle(StyleRing)
	return g
}

// Bind attaches the gizmo to a target transform. The gizmo holds the
// reference non-owning; the host owns the entity.
func (g *Gizmo) Bind(entity EntityId, target *TransformComponent) {
	g.targetEntity = entity
	g.target = target
}

func (g *Gizmo) Target() (*TransformComponent, bool) {
	return g.target, g.target != nil
}

func (g *Gizmo) TargetEntity() EntityId { return g.targetEntity }

// Unbind detaches the gizmo from its target. Handles keep their last pose.
func (g *Gizmo) Unbind() {
	g.targetEntity = 0
	g.target = nil
}

func (g *Gizmo) RotationMode() RotationMode { return g.mode }

func (g *Gizmo) SetRotationMode(mode RotationMode) {
	g.mode = mode
}

func (g *Gizmo) HoveredAxis() Axis { return g.hovered }
func (g *Gizmo) ActiveAxis() Axis  { return g.active }
func (g *Gizmo) IsRotating() bool  { return g.rotating }

func (g *Gizmo) Style() HandleStyle { return g.style }

func (g *Gizmo) Position() mgl32.Vec3     { return g.position }
func (g *Gizmo) Orientation() mgl32.Quat  { return g.orientation }
func (g *Gizmo) SliceOffset() float32     { return g.sliceOffset }
func (g *Gizmo) SetSliceOffset(v float32) { g.sliceOffset = v }

// WorldAxisVector returns the unit rotation axis for a handle in world
// space. Under local mode the local axis is taken through the target's
// current orientation; under world mode local and world frames coincide.
func (g *Gizmo) WorldAxisVector(axis Axis) mgl32.Vec3 {
	mustAxis(axis)
	v := axis.Vec()
	if g.mode == RotationLocal && g.target != nil {
		v = g.target.Rotation.Rotate(v)
		if l := v.Len(); l > 1e-6 {
			v = v.Mul(1 / l)
		}
	}
	return v
}

// SetHoverAxis updates the hovered axis and handle emphasis. Hover is
// suppressed entirely while a rotation drag is active.
func (g *Gizmo) SetHoverAxis(axis Axis) {
	if g.rotating {
		return
	}
	if axis != AxisNone {
		mustAxis(axis)
	}
	g.hovered = axis
	g.restyle()
}

// SetActiveAxis marks a handle as the live drag handle. Passing AxisNone is
// equivalent to ClearActiveAxis.
func (g *Gizmo) SetActiveAxis(axis Axis) {
	if axis == AxisNone {
		g.ClearActiveAxis()
		return
	}
	mustAxis(axis)
	g.active = axis
	g.rotating = true
	g.restyle()
}

// ClearActiveAxis restores every handle to the neutral visual state.
func (g *Gizmo) ClearActiveAxis() {
	g.active = AxisNone
	g.rotating = false
	g.hovered = AxisNone
	g.restyle()
}

// restyle recomputes all handle visuals of the current style from the
// hover/active state. Active styling overrides hover styling.
func (g *Gizmo) restyle() {
	setFor := g.styles[g.style]
	if setFor == nil {
		return
	}
	for _, h := range setFor.handles {
		switch {
		case g.rotating && h.axis == g.active:
			h.visual = HandleVisual{Color: h.axis.Color(), Opacity: 1.0, Emphasized: true}
		case g.rotating:
			h.visual = HandleVisual{Color: neutralGray, Opacity: handleGhostAlpha}
		case g.hovered != AxisNone && h.axis == g.hovered:
			h.visual = HandleVisual{Color: h.axis.Color(), Opacity: 1.0, Emphasized: true}
		case g.hovered != AxisNone:
			h.visual = HandleVisual{Color: neutralGray, Opacity: handleDimmedAlpha}
		default:
			h.visual = HandleVisual{Color: h.axis.Color(), Opacity: handleNeutralAlpha}
		}
	}
}

// ApplyStyle switches the active style set, constructing it lazily on first
// use. Idempotent: reapplying the current style leaves the pickable set
// unchanged.
func (g *Gizmo) ApplyStyle(style HandleStyle) {
	mustStyle(style)
	if _, ok := g.styles[style]; !ok {
		g.styles[style] = g.buildStyleSet(style)
	}
	g.style = style
	g.restyle()
}

func (g *Gizmo) buildStyleSet(style HandleStyle) *styleSet {
	s := &styleSet{style: style}
	for _, axis := range Axes {
		h := &handleNode{
			id:   makeNodeId(),
			axis: axis,
		}
		g.targets[h.id] = PickTarget{
			Kind:    PickHandle,
			Axis:    axis,
			AxisVec: axis.Vec(),
		}
		s.handles[axis] = h
	}
	return s
}

// Update repositions the gizmo group at the target's pivot once per frame.
// The group orientation follows the target only in local mode; in world mode
// the handles stay world-aligned.
func (g *Gizmo) Update() {
	if g.target == nil {
		g.log.Debugf("gizmo update with no bound target")
		return
	}
	g.position = g.target.Position
	if g.mode == RotationLocal {
		g.orientation = g.target.Rotation
	} else {
		g.orientation = mgl32.QuatIdent()
	}
}

// HandleVisualFor exposes the current presentation state of one handle.
func (g *Gizmo) HandleVisualFor(axis Axis) HandleVisual {
	mustAxis(axis)
	return g.styles[g.style].handles[axis].visual
}

// handleCenter is the world-space center of one handle, including the slice
// tracking offset on the distinguished axis. The offset is applied along the
// world axis regardless of rotation mode: the slab is a world-space cut, and
// the handle must stay glued to it even while the handle group follows a
// rotated target in local mode.
func (g *Gizmo) handleCenter(axis Axis) mgl32.Vec3 {
	center := g.position
	if axis == DistinguishedAxis {
		center = center.Add(axis.Vec().Mul(g.sliceOffset))
	}
	return center
}

// labelCenter is the world-space position of one axis label.
func (g *Gizmo) labelCenter(axis Axis) mgl32.Vec3 {
	dir := g.orientation.Rotate(axis.Vec())
	return g.handleCenter(axis).Add(dir.Mul(handleLabelOffset * g.Scale))
}

// LabelCenter exposes label placement for the renderer.
func (g *Gizmo) LabelCenter(axis Axis) mgl32.Vec3 {
	mustAxis(axis)
	return g.labelCenter(axis)
}
