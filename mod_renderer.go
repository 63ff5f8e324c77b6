package slabview

import (
	"image"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderMeshComponent makes an entity drawable.
type RenderMeshComponent struct {
	Mesh  AssetId
	Color mgl32.Vec4
}

type meshVertex struct {
	Pos    mgl32.Vec3 `slab:"layout" format:"float3" location:"0"`
	Normal mgl32.Vec3 `slab:"layout" format:"float3" location:"1"`
}

type lineVertex struct {
	Pos   mgl32.Vec3 `slab:"layout" format:"float3" location:"0"`
	Color mgl32.Vec4 `slab:"layout" format:"float4" location:"1"`
}

type labelVertex struct {
	Pos mgl32.Vec3 `slab:"layout" format:"float3" location:"0"`
	UV  mgl32.Vec2 `slab:"layout" format:"float2" location:"1"`
}

type meshUniforms struct {
	MVP       mgl32.Mat4
	Model     mgl32.Mat4
	Color     mgl32.Vec4
	ClipAxis  mgl32.Vec4 // xyz axis, w enables the slab test
	ClipRange mgl32.Vec4 // x center, y half thickness
}

type lineUniforms struct {
	MVP mgl32.Mat4
}

type labelUniforms struct {
	MVP   mgl32.Mat4
	Color mgl32.Vec4
}

type gpuMesh struct {
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
}

type drawSlot struct {
	uniformBuf *wgpu.Buffer
	bindGroup  *wgpu.BindGroup
}

// Fixed mesh draw slots: the scene has a known, small set of drawables, so
// every draw owns its uniform buffer and bind group up front.
const (
	slotWorkTarget = iota
	slotPreviewReplica
	slotSummaryFirst // three summary slots follow, one per axis
	meshSlotCount    = slotSummaryFirst + 3
)

type renderState struct {
	gpu *GpuState

	meshPipeline  *wgpu.RenderPipeline
	linePipeline  *wgpu.RenderPipeline
	labelPipeline *wgpu.RenderPipeline
	sampler       *wgpu.Sampler

	meshSlots        [meshSlotCount]drawSlot
	lineSlot         drawSlot
	summaryLineSlots [3]drawSlot
	labelSlots       [3]drawSlot

	meshes map[AssetId]*gpuMesh
}

type RendererModule struct{}

func (m RendererModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&renderState{meshes: map[AssetId]*gpuMesh{}})
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)
}

func (rs *renderState) init(ws *WindowState) {
	if rs.gpu != nil {
		return
	}
	g := createGpuState(ws)
	rs.gpu = g

	rs.meshPipeline = createRenderPipeline("Mesh Pipeline", meshShaderWGSL, meshVertex{}, g, pipelineOptions{
		topology:   wgpu.PrimitiveTopologyTriangleList,
		cullMode:   wgpu.CullModeBack,
		depthWrite: true,
	})
	rs.linePipeline = createRenderPipeline("Line Pipeline", lineShaderWGSL, lineVertex{}, g, pipelineOptions{
		topology:   wgpu.PrimitiveTopologyLineList,
		cullMode:   wgpu.CullModeNone,
		alphaBlend: true,
	})
	rs.labelPipeline = createRenderPipeline("Label Pipeline", labelShaderWGSL, labelVertex{}, g, pipelineOptions{
		topology:   wgpu.PrimitiveTopologyTriangleList,
		cullMode:   wgpu.CullModeNone,
		alphaBlend: true,
	})

	sampler, err := g.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	})
	if err != nil {
		panic(err)
	}
	rs.sampler = sampler

	for i := range rs.meshSlots {
		rs.meshSlots[i] = rs.newUniformSlot("Mesh Uniforms", rs.meshPipeline, toBufferBytes(meshUniforms{}), nil)
	}
	rs.lineSlot = rs.newUniformSlot("Line Uniforms", rs.linePipeline, toBufferBytes(lineUniforms{}), nil)
	for i := range rs.summaryLineSlots {
		rs.summaryLineSlots[i] = rs.newUniformSlot("Summary Line Uniforms", rs.linePipeline, toBufferBytes(lineUniforms{}), nil)
	}

	for _, axis := range Axes {
		view := rs.uploadGlyphTexture(renderLabelGlyph(axis.Label()))
		rs.labelSlots[axis] = rs.newUniformSlot("Label Uniforms", rs.labelPipeline, toBufferBytes(labelUniforms{}), view)
	}
}

func (rs *renderState) newUniformSlot(name string, pipeline *wgpu.RenderPipeline, zero []byte, glyph *wgpu.TextureView) drawSlot {
	buf := createBuffer(name, zero, rs.gpu, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
	}
	if glyph != nil {
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: 1, TextureView: glyph, Size: wgpu.WholeSize},
			wgpu.BindGroupEntry{Binding: 2, Sampler: rs.sampler, Size: wgpu.WholeSize},
		)
	}

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	group, err := rs.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
	return drawSlot{uniformBuf: buf, bindGroup: group}
}

func (rs *renderState) uploadGlyphTexture(img *image.RGBA) *wgpu.TextureView {
	w := uint32(img.Bounds().Dx())
	h := uint32(img.Bounds().Dy())
	extent := wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	tex, err := rs.gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Label Glyph",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer tex.Release()

	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	err = rs.gpu.queue.WriteTexture(
		tex.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{BytesPerRow: w * 4, RowsPerImage: h},
		&extent,
	)
	if err != nil {
		panic(err)
	}
	return view
}

func (rs *renderState) uploadMesh(assets *AssetServer, id AssetId) *gpuMesh {
	if gm, ok := rs.meshes[id]; ok {
		return gm
	}
	mesh, ok := assets.Mesh(id)
	if !ok {
		return nil
	}
	verts := make([]meshVertex, len(mesh.Positions))
	for i := range mesh.Positions {
		verts[i] = meshVertex{Pos: mesh.Positions[i], Normal: mesh.Normals[i]}
	}
	gm := &gpuMesh{
		vertexBuf:  createBuffer("Mesh Vertices", wgpu.ToBytes(verts), rs.gpu, wgpu.BufferUsageVertex),
		indexBuf:   createBuffer("Mesh Indices", wgpu.ToBytes(mesh.Indices), rs.gpu, wgpu.BufferUsageIndex),
		indexCount: uint32(len(mesh.Indices)),
	}
	rs.meshes[id] = gm
	return gm
}

func buildModelMatrix(t *TransformComponent) mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// wgpu clips z to [0,1] while mgl32 produces OpenGL-style [-1,1] projections.
var wgpuClipCorrection = mgl32.Translate3D(0, 0, 0.5).Mul4(mgl32.Scale3D(1, 1, 0.5))

const (
	summaryOrthoExtent = 1.4
	summaryCamDistance = 3.0
	slabOutlineExtent  = 1.2
)

type meshDraw struct {
	mesh  *gpuMesh
	slot  int
	valid bool
}

func renderSystem(rs *renderState, ws *WindowState, input *Input, vp *ViewportLayout, gz *Gizmo,
	clip *ClipState, cam *OrbitCamera, vs *ViewSyncState, assets *AssetServer, cmd *Commands) {

	rs.init(ws)
	rs.gpu.resize(input.WindowWidth, input.WindowHeight)
	if vp.Work.W <= 0 || vp.Work.H <= 0 {
		return
	}
	g := rs.gpu

	var draws [meshSlotCount]meshDraw
	halfThick := clip.SliceThickness / 2
	clipAxis := DistinguishedAxis.Vec()

	var summaryVP [3]mgl32.Mat4
	pivot := replicaSourcePivot(gz)
	for _, axis := range Axes {
		view, proj := summaryCamera(axis, pivot, vp.Summary[axis])
		summaryVP[axis] = wgpuClipCorrection.Mul4(proj).Mul4(view)
	}

	// Working view and the three summary views draw the target. Each summary
	// view is an MPR cut and clips along its own axis.
	MakeQuery3[TargetTag, TransformComponent, RenderMeshComponent](cmd).Map(
		func(_ EntityId, _ *TargetTag, t *TransformComponent, rm *RenderMeshComponent) bool {
			gm := rs.uploadMesh(assets, rm.Mesh)
			if gm == nil {
				return false
			}
			model := buildModelMatrix(t)
			workMVP := wgpuClipCorrection.Mul4(cam.ProjMatrix()).Mul4(cam.ViewMatrix()).Mul4(model)
			rs.writeMeshUniforms(slotWorkTarget, meshUniforms{
				MVP: workMVP, Model: model, Color: rm.Color,
			})
			draws[slotWorkTarget] = meshDraw{mesh: gm, slot: slotWorkTarget, valid: true}

			for _, axis := range Axes {
				slot := slotSummaryFirst + int(axis)
				a := axis.Vec()
				rs.writeMeshUniforms(slot, meshUniforms{
					MVP:       summaryVP[axis].Mul4(model),
					Model:     model,
					Color:     rm.Color,
					ClipAxis:  mgl32.Vec4{a.X(), a.Y(), a.Z(), 1},
					ClipRange: mgl32.Vec4{clip.SliceCenter, halfThick, 0, 0},
				})
				draws[slot] = meshDraw{mesh: gm, slot: slot, valid: true}
			}
			return false
		})

	// The preview view draws the replica, clipped to the slab.
	MakeQuery3[PreviewReplicaTag, TransformComponent, RenderMeshComponent](cmd).Map(
		func(_ EntityId, _ *PreviewReplicaTag, t *TransformComponent, rm *RenderMeshComponent) bool {
			gm := rs.uploadMesh(assets, rm.Mesh)
			if gm == nil {
				return false
			}
			model := buildModelMatrix(t)
			aspect := vp.Preview.W / vp.Preview.H
			view := mgl32.LookAtV(vs.PreviewEye, vs.PreviewCenter, vs.PreviewUp)
			proj := mgl32.Perspective(cam.FovY, aspect, cam.Near, cam.Far)

			// The replica sits at its own pivot; the slab test must happen in
			// the replica's frame, offset by the distance between pivots.
			center := clip.SliceCenter + t.Position.Sub(replicaSourcePivot(gz)).Dot(clipAxis)
			rs.writeMeshUniforms(slotPreviewReplica, meshUniforms{
				MVP:       wgpuClipCorrection.Mul4(proj).Mul4(view).Mul4(model),
				Model:     model,
				Color:     rm.Color,
				ClipAxis:  mgl32.Vec4{clipAxis.X(), clipAxis.Y(), clipAxis.Z(), 1},
				ClipRange: mgl32.Vec4{center, halfThick, 0, 0},
			})
			draws[slotPreviewReplica] = meshDraw{mesh: gm, slot: slotPreviewReplica, valid: true}
			return false
		})

	lineVerts := rs.buildLineBatch(gz, clip, cmd)
	workMVP := wgpuClipCorrection.Mul4(cam.ProjMatrix()).Mul4(cam.ViewMatrix())
	g.queue.WriteBuffer(rs.lineSlot.uniformBuf, 0, toBufferBytes(lineUniforms{MVP: workMVP}))

	var labelBufs [3]*wgpu.Buffer
	for _, axis := range Axes {
		verts := labelQuad(gz.LabelCenter(axis), cam.Right(), cam.Up(), handleLabelRadius*gz.Scale)
		labelBufs[axis] = createBuffer("Label Quad", wgpu.ToBytes(verts), g, wgpu.BufferUsageVertex)

		c := axis.Color()
		g.queue.WriteBuffer(rs.labelSlots[axis].uniformBuf, 0, toBufferBytes(labelUniforms{
			MVP:   workMVP,
			Color: mgl32.Vec4{c[0], c[1], c[2], 0.92},
		}))
	}

	var lineBuf *wgpu.Buffer
	if len(lineVerts) > 0 {
		lineBuf = createBuffer("Line Vertices", wgpu.ToBytes(lineVerts), g, wgpu.BufferUsageVertex)
	}

	var summaryHighlightVerts [3][]lineVertex
	MakeQuery2[SummaryHighlight, TransformComponent](cmd).Map(
		func(_ EntityId, h *SummaryHighlight, t *TransformComponent) bool {
			summaryHighlightVerts[h.Axis] = summaryHighlightOutline(h.Axis, t.Position)
			return true
		})
	var summaryLineBufs [3]*wgpu.Buffer
	for _, axis := range Axes {
		if len(summaryHighlightVerts[axis]) == 0 {
			continue
		}
		summaryLineBufs[axis] = createBuffer("Summary Highlight Vertices",
			wgpu.ToBytes(summaryHighlightVerts[axis]), g, wgpu.BufferUsageVertex)
		g.queue.WriteBuffer(rs.summaryLineSlots[axis].uniformBuf, 0, toBufferBytes(lineUniforms{MVP: summaryVP[axis]}))
	}

	nextTexture, err := g.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.08, G: 0.09, B: 0.11, A: 1.0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            g.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	drawMesh := func(d meshDraw) {
		if !d.valid {
			return
		}
		pass.SetPipeline(rs.meshPipeline)
		pass.SetBindGroup(0, rs.meshSlots[d.slot].bindGroup, nil)
		pass.SetVertexBuffer(0, d.mesh.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(d.mesh.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(d.mesh.indexCount, 1, 0, 0, 0)
	}

	// Working viewport: target mesh, then gizmo lines and labels on top.
	setViewport(pass, vp.Work)
	drawMesh(draws[slotWorkTarget])
	if lineBuf != nil {
		pass.SetPipeline(rs.linePipeline)
		pass.SetBindGroup(0, rs.lineSlot.bindGroup, nil)
		pass.SetVertexBuffer(0, lineBuf, 0, wgpu.WholeSize)
		pass.Draw(uint32(len(lineVerts)), 1, 0, 0)
	}
	for _, axis := range Axes {
		pass.SetPipeline(rs.labelPipeline)
		pass.SetBindGroup(0, rs.labelSlots[axis].bindGroup, nil)
		pass.SetVertexBuffer(0, labelBufs[axis], 0, wgpu.WholeSize)
		pass.Draw(6, 1, 0, 0)
	}

	setViewport(pass, vp.Preview)
	drawMesh(draws[slotPreviewReplica])

	for _, axis := range Axes {
		setViewport(pass, vp.Summary[axis])
		drawMesh(draws[slotSummaryFirst+int(axis)])
		if summaryLineBufs[axis] != nil {
			pass.SetPipeline(rs.linePipeline)
			pass.SetBindGroup(0, rs.summaryLineSlots[axis].bindGroup, nil)
			pass.SetVertexBuffer(0, summaryLineBufs[axis], 0, wgpu.WholeSize)
			pass.Draw(uint32(len(summaryHighlightVerts[axis])), 1, 0, 0)
		}
	}

	if err := pass.End(); err != nil {
		panic(err)
	}
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	g.queue.Submit(cmdBuffer)
	g.surface.Present()

	if lineBuf != nil {
		lineBuf.Release()
	}
	for _, b := range summaryLineBufs {
		if b != nil {
			b.Release()
		}
	}
	for _, b := range labelBufs {
		b.Release()
	}
}

func replicaSourcePivot(gz *Gizmo) mgl32.Vec3 {
	if t, ok := gz.Target(); ok {
		return t.Position
	}
	return mgl32.Vec3{}
}

func setViewport(pass *wgpu.RenderPassEncoder, r Rect) {
	pass.SetViewport(r.X, r.Y, r.W, r.H, 0, 1)
	pass.SetScissorRect(uint32(r.X), uint32(r.Y), uint32(r.W), uint32(r.H))
}

// summaryCamera builds the fixed orthographic camera looking down one axis.
func summaryCamera(axis Axis, pivot mgl32.Vec3, r Rect) (view, proj mgl32.Mat4) {
	dir := axis.Vec()
	up := mgl32.Vec3{0, 1, 0}
	if axis == AxisY {
		up = mgl32.Vec3{0, 0, 1}
	}
	eye := pivot.Add(dir.Mul(summaryCamDistance))
	view = mgl32.LookAtV(eye, pivot, up)

	aspect := float32(1)
	if r.H > 0 {
		aspect = r.W / r.H
	}
	proj = mgl32.Ortho(-summaryOrthoExtent*aspect, summaryOrthoExtent*aspect,
		-summaryOrthoExtent, summaryOrthoExtent, 0.1, 10)
	return view, proj
}

// buildLineBatch emits the gizmo handles in the active style plus the slab
// outline, all in world space.
func (rs *renderState) buildLineBatch(gz *Gizmo, clip *ClipState, cmd *Commands) []lineVertex {
	var verts []lineVertex

	line := func(a, b mgl32.Vec3, c mgl32.Vec4) {
		verts = append(verts, lineVertex{Pos: a, Color: c}, lineVertex{Pos: b, Color: c})
	}

	for _, axis := range Axes {
		visual := gz.HandleVisualFor(axis)
		color := mgl32.Vec4{visual.Color[0], visual.Color[1], visual.Color[2], visual.Opacity}

		center := gz.handleCenter(axis)
		dir := gz.Orientation().Rotate(axisVectors[axis])
		u := gz.Orientation().Rotate(axisVectors[(axis+1)%3])
		v := gz.Orientation().Rotate(axisVectors[(axis+2)%3])

		switch gz.Style() {
		case StyleRing:
			const segs = 64
			radius := handleRingRadius * gz.Scale
			prev := center.Add(u.Mul(radius))
			for i := 1; i <= segs; i++ {
				a := float64(i) / segs * 2 * math.Pi
				p := center.
					Add(u.Mul(radius * float32(math.Cos(a)))).
					Add(v.Mul(radius * float32(math.Sin(a))))
				line(prev, p, color)
				prev = p
			}

		case StyleLine:
			ext := dir.Mul(handleLineLength * gz.Scale)
			line(center.Sub(ext), center.Add(ext), color)

		case StyleFrame:
			h := handleFrameHalf * gz.Scale
			c00 := center.Sub(u.Mul(h)).Sub(v.Mul(h))
			c01 := center.Sub(u.Mul(h)).Add(v.Mul(h))
			c10 := center.Add(u.Mul(h)).Sub(v.Mul(h))
			c11 := center.Add(u.Mul(h)).Add(v.Mul(h))
			line(c00, c01, color)
			line(c01, c11, color)
			line(c11, c10, color)
			line(c10, c00, color)
		}
	}

	// Slab outline: one rectangle at each clipping plane.
	outlineColor := mgl32.Vec4{0.85, 0.85, 0.4, 0.5}
	axis := DistinguishedAxis.Vec()
	u := axisVectors[(DistinguishedAxis+1)%3]
	v := axisVectors[(DistinguishedAxis+2)%3]
	MakeQuery2[SlabIndicatorTag, TransformComponent](cmd).Map(
		func(_ EntityId, _ *SlabIndicatorTag, t *TransformComponent) bool {
			for _, side := range []float32{-1, 1} {
				c := t.Position.Add(axis.Mul(side * clip.SliceThickness / 2))
				e := float32(slabOutlineExtent)
				c00 := c.Sub(u.Mul(e)).Sub(v.Mul(e))
				c01 := c.Sub(u.Mul(e)).Add(v.Mul(e))
				c10 := c.Add(u.Mul(e)).Sub(v.Mul(e))
				c11 := c.Add(u.Mul(e)).Add(v.Mul(e))
				line(c00, c01, outlineColor)
				line(c01, c11, outlineColor)
				line(c11, c10, outlineColor)
				line(c10, c00, outlineColor)
			}
			return true
		})

	return verts
}

// summaryHighlightOutline builds the cutting-plane marker for one summary
// view: a rectangle perpendicular to that view's axis at the overlay's
// position, drawn in the axis color.
func summaryHighlightOutline(axis Axis, center mgl32.Vec3) []lineVertex {
	c := axis.Color()
	color := mgl32.Vec4{c[0], c[1], c[2], 0.6}
	u := axisVectors[(axis+1)%3]
	v := axisVectors[(axis+2)%3]
	e := float32(slabOutlineExtent)

	var verts []lineVertex
	line := func(a, b mgl32.Vec3) {
		verts = append(verts, lineVertex{Pos: a, Color: color}, lineVertex{Pos: b, Color: color})
	}
	c00 := center.Sub(u.Mul(e)).Sub(v.Mul(e))
	c01 := center.Sub(u.Mul(e)).Add(v.Mul(e))
	c10 := center.Add(u.Mul(e)).Sub(v.Mul(e))
	c11 := center.Add(u.Mul(e)).Add(v.Mul(e))
	line(c00, c01)
	line(c01, c11)
	line(c11, c10)
	line(c10, c00)
	return verts
}

func (rs *renderState) writeMeshUniforms(slot int, u meshUniforms) {
	rs.gpu.queue.WriteBuffer(rs.meshSlots[slot].uniformBuf, 0, toBufferBytes(u))
}

// labelQuad builds a camera-facing quad around the label anchor.
func labelQuad(center, right, up mgl32.Vec3, radius float32) []labelVertex {
	r := right.Mul(radius)
	u := up.Mul(radius)

	bl := labelVertex{Pos: center.Sub(r).Sub(u), UV: mgl32.Vec2{0, 1}}
	br := labelVertex{Pos: center.Add(r).Sub(u), UV: mgl32.Vec2{1, 1}}
	tl := labelVertex{Pos: center.Sub(r).Add(u), UV: mgl32.Vec2{0, 0}}
	tr := labelVertex{Pos: center.Add(r).Add(u), UV: mgl32.Vec2{1, 0}}

	return []labelVertex{bl, br, tr, bl, tr, tl}
}
