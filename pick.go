package slabview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type shapeKind int

const (
	shapeCircle shapeKind = iota
	shapeSegment
	shapeSphere
)

// pickShape is one analytic pickable primitive in world space.
type pickShape struct {
	kind shapeKind

	center mgl32.Vec3 // circle / sphere center
	normal mgl32.Vec3 // circle plane normal
	radius float32    // circle / sphere radius
	band   float32    // circle band half-width

	a, b  mgl32.Vec3 // segment endpoints
	thick float32    // segment pick thickness
}

// PickNode pairs a node identity with its world-space pick geometry.
type PickNode struct {
	Id     NodeId
	shapes []pickShape
}

// PickableGeometry returns the pickable set: the active style's handle
// representations plus the three labels, which stay pickable in every style.
func (g *Gizmo) PickableGeometry() []PickNode {
	setFor := g.styles[g.style]
	if setFor == nil {
		g.log.Debugf("pickable geometry requested before style %s was built", g.style)
		return nil
	}

	nodes := make([]PickNode, 0, 6)
	for _, h := range setFor.handles {
		nodes = append(nodes, PickNode{Id: h.id, shapes: g.handleShapes(h.axis)})
	}
	for _, l := range g.labels {
		nodes = append(nodes, PickNode{Id: l.sprite, shapes: []pickShape{{
			kind:   shapeSphere,
			center: g.labelCenter(l.axis),
			radius: handleLabelRadius * g.Scale,
		}}})
	}
	return nodes
}

// handleShapes builds the active style's pick geometry for one axis.
func (g *Gizmo) handleShapes(axis Axis) []pickShape {
	center := g.handleCenter(axis)
	dir := g.orientation.Rotate(axis.Vec())

	switch g.style {
	case StyleRing:
		return []pickShape{{
			kind:   shapeCircle,
			center: center,
			normal: dir,
			radius: handleRingRadius * g.Scale,
			band:   handleRingBand * g.Scale,
		}}
	case StyleLine:
		ext := dir.Mul(handleLineLength * g.Scale)
		return []pickShape{{
			kind:  shapeSegment,
			a:     center.Sub(ext),
			b:     center.Add(ext),
			thick: handleLineThick * g.Scale,
		}}
	case StyleFrame:
		// Square outline in the plane perpendicular to the axis.
		u := g.orientation.Rotate(axisVectors[(axis+1)%3]).Mul(handleFrameHalf * g.Scale)
		v := g.orientation.Rotate(axisVectors[(axis+2)%3]).Mul(handleFrameHalf * g.Scale)
		c0 := center.Sub(u).Sub(v)
		c1 := center.Add(u).Sub(v)
		c2 := center.Add(u).Add(v)
		c3 := center.Sub(u).Add(v)
		thick := handleLineThick * g.Scale
		return []pickShape{
			{kind: shapeSegment, a: c0, b: c1, thick: thick},
			{kind: shapeSegment, a: c1, b: c2, thick: thick},
			{kind: shapeSegment, a: c2, b: c3, thick: thick},
			{kind: shapeSegment, a: c3, b: c0, thick: thick},
		}
	}
	panic("unreachable style " + g.style.String())
}

// Pick casts a ray against the pickable set and returns the nearest hit
// node. The first intersection along the ray wins.
func (g *Gizmo) Pick(ray Ray) (NodeId, bool) {
	best := NodeId("")
	minT := float32(math.MaxFloat32)

	for _, node := range g.PickableGeometry() {
		for _, shape := range node.shapes {
			if t, hit := intersectShape(ray, shape); hit && t < minT {
				minT = t
				best = node.Id
			}
		}
	}
	return best, best != ""
}

// ResolvePick maps a picked node to its axis metadata, walking the
// ownership chain upward when the node itself carries none.
func (g *Gizmo) ResolvePick(node NodeId) (PickTarget, bool) {
	for node != "" {
		if target, ok := g.targets[node]; ok {
			return target, true
		}
		parent, ok := g.parents[node]
		if !ok {
			return PickTarget{}, false
		}
		node = parent
	}
	return PickTarget{}, false
}

func intersectShape(ray Ray, shape pickShape) (float32, bool) {
	switch shape.kind {
	case shapeCircle:
		hit, ok := IntersectRayPlane(ray, Plane{Point: shape.center, Normal: shape.normal})
		if !ok {
			return 0, false
		}
		dist := hit.Sub(shape.center).Len()
		if float32(math.Abs(float64(dist-shape.radius))) > shape.band {
			return 0, false
		}
		return hit.Sub(ray.Origin).Len(), true

	case shapeSegment:
		ad := shape.b.Sub(shape.a)
		t, s, d := closestPoints(ray.Origin, ray.Dir, shape.a, ad)
		if t <= 0 || s < 0 || s > 1 || d > shape.thick {
			return 0, false
		}
		return t, true

	case shapeSphere:
		oc := shape.center.Sub(ray.Origin)
		tca := oc.Dot(ray.Dir)
		if tca < 0 {
			return 0, false
		}
		d2 := oc.Dot(oc) - tca*tca
		if d2 > shape.radius*shape.radius {
			return 0, false
		}
		return tca, true
	}
	return 0, false
}
