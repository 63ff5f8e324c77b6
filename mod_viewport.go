package slabview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Rect is a viewport rectangle in window pixels, origin top-left to match
// cursor coordinates.
type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Contains(px, py float64) bool {
	x, y := float32(px), float32(py)
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ViewportLayout splits the window into the working view on the left and a
// right-hand column holding the synchronized preview plus one summary view
// per axis.
type ViewportLayout struct {
	Work    Rect
	Preview Rect
	Summary [3]Rect
}

const workViewShare = 0.7

// Layout recomputes all rectangles for a window of the given pixel size.
func (vp *ViewportLayout) Layout(width, height int) {
	w, h := float32(width), float32(height)
	workW := w * workViewShare

	vp.Work = Rect{X: 0, Y: 0, W: workW, H: h}

	sideX := workW
	sideW := w - workW
	previewH := h * 0.4
	vp.Preview = Rect{X: sideX, Y: 0, W: sideW, H: previewH}

	summaryH := (h - previewH) / 3
	for i := range vp.Summary {
		vp.Summary[i] = Rect{X: sideX, Y: previewH + float32(i)*summaryH, W: sideW, H: summaryH}
	}
}

// WorkNDC maps window pixel coordinates into the working viewport's NDC,
// x and y in [-1,1] with y up. The returned flag reports containment; the
// coordinates are valid either way, which a drag that leaves the viewport
// relies on.
func (vp *ViewportLayout) WorkNDC(px, py float64) (mgl32.Vec2, bool) {
	r := vp.Work
	if r.W <= 0 || r.H <= 0 {
		return mgl32.Vec2{}, false
	}
	x := (float32(px)-r.X)/r.W*2 - 1
	y := 1 - (float32(py)-r.Y)/r.H*2
	return mgl32.Vec2{x, y}, r.Contains(px, py)
}

type ViewportModule struct{}

func (m ViewportModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&ViewportLayout{})
	app.UseSystem(
		System(viewportLayoutSystem).
			InStage(Prelude),
	)
}

func viewportLayoutSystem(input *Input, vp *ViewportLayout) {
	if input.WindowWidth > 0 && input.WindowHeight > 0 {
		vp.Layout(input.WindowWidth, input.WindowHeight)
	}
}
