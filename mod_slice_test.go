package slabview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipStateSetCenterClamps(t *testing.T) {
	c := &ClipState{SliceThickness: DefaultThickness}

	c.SetCenter(1.25)
	assert.Equal(t, float32(1.25), c.SliceCenter)

	c.SetCenter(100)
	assert.Equal(t, float32(SliceMax), c.SliceCenter)

	c.SetCenter(-100)
	assert.Equal(t, float32(SliceMin), c.SliceCenter)
}

func TestClipStatePlanePair(t *testing.T) {
	c := &ClipState{SliceCenter: 0.5, SliceThickness: 0.2}
	lo, hi := c.PlanePair()
	assert.InDelta(t, 0.4, float64(lo), 1e-6)
	assert.InDelta(t, 0.6, float64(hi), 1e-6)
}

func TestClipStateResetKeepsThickness(t *testing.T) {
	c := &ClipState{SliceCenter: 2, SliceThickness: 0.3}
	c.Reset()
	assert.Equal(t, float32(0), c.SliceCenter)
	assert.Equal(t, float32(0.3), c.SliceThickness)
}

func TestSliceModuleDefaultsThickness(t *testing.T) {
	app := NewAppBuilder().UseModule(SliceModule{}).Build()
	clip, ok := GetResource[ClipState](app)
	assert.True(t, ok)
	assert.Equal(t, float32(DefaultThickness), clip.SliceThickness)

	app = NewAppBuilder().UseModule(SliceModule{Thickness: 0.5}).Build()
	clip, _ = GetResource[ClipState](app)
	assert.Equal(t, float32(0.5), clip.SliceThickness)
}
