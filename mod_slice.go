package slabview

// Slice clamp range and drag feel. Sensitivity is world units per pixel of
// vertical pointer travel.
const (
	SliceMin         = -3.0
	SliceMax         = 3.0
	SliceSensitivity = 0.02
	DefaultThickness = 0.25
)

// ClipState is the single source of truth for the clipping slab: a symmetric
// pair of plane constants center±thickness/2 along the slicing axis. It is
// written only by the slice-drag interaction and Reset; the renderer reads it
// every frame.
type ClipState struct {
	SliceCenter    float32
	SliceThickness float32
}

// PlanePair returns the lower and upper clip plane constants.
func (c *ClipState) PlanePair() (float32, float32) {
	half := c.SliceThickness / 2
	return c.SliceCenter - half, c.SliceCenter + half
}

// SetCenter clamps into the safe range; arbitrarily large pointer deltas
// cannot push the slab out of the volume.
func (c *ClipState) SetCenter(v float32) {
	if v < SliceMin {
		v = SliceMin
	}
	if v > SliceMax {
		v = SliceMax
	}
	c.SliceCenter = v
}

func (c *ClipState) Reset() {
	c.SliceCenter = 0
}

type SliceModule struct {
	Thickness float32
}

func (m SliceModule) Install(app *App, cmd *Commands) {
	thickness := m.Thickness
	if thickness <= 0 {
		thickness = DefaultThickness
	}
	cmd.AddResources(&ClipState{SliceThickness: thickness})
}
