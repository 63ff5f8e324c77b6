package slabview

// GizmoModule installs the rotation gizmo and keeps it glued to the target
// each frame: pivot tracking, orientation follow in local mode and the slice
// handle offset along the distinguished axis.
type GizmoModule struct {
	Style HandleStyle
}

func (m GizmoModule) Install(app *App, cmd *Commands) {
	gz := NewGizmo(app.Logger())
	if m.Style != StyleRing {
		gz.ApplyStyle(m.Style)
	}
	cmd.AddResources(gz)
	app.UseSystem(
		System(gizmoUpdateSystem).
			InStage(Update),
	)
}

func gizmoUpdateSystem(gz *Gizmo, clip *ClipState, cmd *Commands) {
	// The target entity may be despawned by the host; drop the stale binding
	// before the handles follow a dead transform.
	if _, ok := gz.Target(); ok {
		if _, alive := GetComponent[TransformComponent](cmd, gz.TargetEntity()); !alive {
			gz.Unbind()
		}
	}
	if _, ok := gz.Target(); !ok {
		MakeQuery2[TargetTag, TransformComponent](cmd).Map(func(eid EntityId, _ *TargetTag, t *TransformComponent) bool {
			gz.Bind(eid, t)
			return false
		})
	}

	gz.Update()

	if t, ok := gz.Target(); ok {
		axis := DistinguishedAxis.Vec()
		gz.SetSliceOffset(clip.SliceCenter - t.Position.Dot(axis))
	}
}
