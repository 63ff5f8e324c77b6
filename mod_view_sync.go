package slabview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TargetTag marks the entity the gizmo manipulates.
type TargetTag struct{}

// PreviewReplicaTag marks the entity shown in the preview viewport. Its
// orientation mirrors the target every frame; its position is its own.
type PreviewReplicaTag struct{}

// SlabIndicatorTag marks the wireframe slab outline in the working view. Its
// position follows the slice center along the distinguished axis.
type SlabIndicatorTag struct{}

// SummaryHighlight marks one summary view's cutting-plane overlay. Each
// summary view cuts along its own axis; the overlay follows the slice center
// along that axis.
type SummaryHighlight struct {
	Axis Axis
}

// ViewSyncState carries the per-frame derived camera pose for the preview
// viewport. The preview camera is locked to the working camera: same viewing
// direction, distance scaled by Ratio, re-derived every frame so the preview
// can never drift out of sync.
type ViewSyncState struct {
	Ratio float32

	PreviewEye    mgl32.Vec3
	PreviewCenter mgl32.Vec3
	PreviewUp     mgl32.Vec3
}

type ViewSyncModule struct {
	// Ratio scales the preview camera's distance to its replica relative to
	// the working camera's distance to the target. Zero means 1.
	Ratio float32
}

func (m ViewSyncModule) Install(app *App, cmd *Commands) {
	ratio := m.Ratio
	if ratio == 0 {
		ratio = 1
	}
	cmd.AddResources(&ViewSyncState{Ratio: ratio})
	app.UseSystem(
		System(viewSyncSystem).
			InStage(PostUpdate),
	)
}

func viewSyncSystem(gz *Gizmo, clip *ClipState, cam *OrbitCamera, vs *ViewSyncState, cmd *Commands) {
	target, ok := gz.Target()
	if !ok {
		return
	}

	MakeQuery2[PreviewReplicaTag, TransformComponent](cmd).Map(func(_ EntityId, _ *PreviewReplicaTag, t *TransformComponent) bool {
		t.Rotation = target.Rotation

		offset := cam.Position().Sub(target.Position).Mul(vs.Ratio)
		vs.PreviewEye = t.Position.Add(offset)
		vs.PreviewCenter = t.Position
		vs.PreviewUp = cam.Up()
		return true
	})

	axis := DistinguishedAxis.Vec()
	MakeQuery2[SlabIndicatorTag, TransformComponent](cmd).Map(func(_ EntityId, _ *SlabIndicatorTag, t *TransformComponent) bool {
		lateral := t.Position.Sub(axis.Mul(t.Position.Dot(axis)))
		t.Position = lateral.Add(axis.Mul(clip.SliceCenter))
		return true
	})

	MakeQuery2[SummaryHighlight, TransformComponent](cmd).Map(func(_ EntityId, h *SummaryHighlight, t *TransformComponent) bool {
		a := h.Axis.Vec()
		lateral := t.Position.Sub(a.Mul(t.Position.Dot(a)))
		t.Position = lateral.Add(a.Mul(clip.SliceCenter))
		return true
	})
}
