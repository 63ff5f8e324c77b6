package slabview

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Axis identifies one of the three gizmo axes. AxisNone is the explicit
// "no axis" value used for hover/active state.
type Axis int

const (
	AxisNone Axis = iota - 1
	AxisX
	AxisY
	AxisZ
)

// DistinguishedAxis doubles as the slice-position control: vertical drags on
// its handle move the clipping slab instead of rotating.
const DistinguishedAxis = AxisY

var axisVectors = [3]mgl32.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

var axisColors = [3][4]float32{
	{0.90, 0.22, 0.21, 1}, // X red
	{0.30, 0.69, 0.31, 1}, // Y green
	{0.25, 0.47, 0.94, 1}, // Z blue
}

var axisNames = [3]string{"X", "Y", "Z"}

func mustAxis(a Axis) {
	if a < AxisX || a > AxisZ {
		panic(fmt.Sprintf("invalid axis %d", int(a)))
	}
}

// Vec returns the axis unit vector in the gizmo's local frame.
func (a Axis) Vec() mgl32.Vec3 {
	mustAxis(a)
	return axisVectors[a]
}

func (a Axis) Color() [4]float32 {
	mustAxis(a)
	return axisColors[a]
}

func (a Axis) Label() string {
	mustAxis(a)
	return axisNames[a]
}

func (a Axis) String() string {
	if a == AxisNone {
		return "none"
	}
	mustAxis(a)
	return axisNames[a]
}

// Axes lists the three axes in canonical order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// HandleStyle selects which visual representation set is visible and
// pickable. Exactly one style is active at a time.
type HandleStyle int

const (
	StyleRing HandleStyle = iota
	StyleLine
	StyleFrame
)

var styleNames = [3]string{"ring", "line", "frame"}

func mustStyle(s HandleStyle) {
	if s < StyleRing || s > StyleFrame {
		panic(fmt.Sprintf("invalid handle style %d", int(s)))
	}
}

func (s HandleStyle) String() string {
	mustStyle(s)
	return styleNames[s]
}

// ParseStyle resolves a style by name, for host configuration.
func ParseStyle(name string) (HandleStyle, bool) {
	for i, n := range styleNames {
		if n == name {
			return HandleStyle(i), true
		}
	}
	return StyleRing, false
}

// NodeId is the identity of one pickable scene node. Axis metadata hangs off
// node ids in a side table instead of being duck-typed onto render geometry.
type NodeId string

func makeNodeId() NodeId {
	return NodeId(uuid.NewString())
}

// PickKind tags what a pickable node represents.
type PickKind int

const (
	PickHandle PickKind = iota
	PickLabel
)

// PickTarget is the axis metadata attached to a pickable node.
type PickTarget struct {
	Kind    PickKind
	Axis    Axis
	AxisVec mgl32.Vec3 // local-frame axis vector
}
