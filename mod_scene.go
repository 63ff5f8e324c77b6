package slabview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneModule spawns the viewer scene: the target model under the gizmo, the
// preview replica, the slab indicator and the per-axis summary highlights.
// When no model path is given, or
// loading fails, the procedural demo mesh is used instead.
type SceneModule struct {
	ModelPath string
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	log := app.Logger()
	assets, ok := GetResource[AssetServer](app)
	if !ok {
		panic("SceneModule requires AssetsModule to be installed first")
	}

	var meshId AssetId
	if m.ModelPath != "" {
		id, err := assets.LoadGLTF(m.ModelPath)
		if err != nil {
			log.Errorf("loading %s failed, falling back to demo mesh: %v", m.ModelPath, err)
			meshId = assets.NewTorusKnotMesh()
		} else {
			meshId = id
		}
	} else {
		meshId = assets.NewTorusKnotMesh()
	}

	modelColor := mgl32.Vec4{0.72, 0.74, 0.78, 1}

	cmd.AddEntity(
		TargetTag{},
		NewTransform(mgl32.Vec3{}),
		RenderMeshComponent{Mesh: meshId, Color: modelColor},
	)
	cmd.AddEntity(
		PreviewReplicaTag{},
		NewTransform(mgl32.Vec3{}),
		RenderMeshComponent{Mesh: meshId, Color: modelColor},
	)
	cmd.AddEntity(
		SlabIndicatorTag{},
		NewTransform(mgl32.Vec3{}),
	)
	for _, axis := range Axes {
		cmd.AddEntity(
			SummaryHighlight{Axis: axis},
			NewTransform(mgl32.Vec3{}),
		)
	}
}
