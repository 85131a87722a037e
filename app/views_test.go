package app

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-sandbox/engine"
)

func TestLayoutSingleView(t *testing.T) {
	assert.Equal(t, []engine.Viewport{{Width: 800, Height: 600}}, layout(800, 600, false))
}

func TestLayoutSplitCoversFramebuffer(t *testing.T) {
	vps := layout(801, 601, true)
	require.Len(t, vps, 4)
	area := 0
	for _, vp := range vps {
		area += vp.Width * vp.Height
	}
	assert.Equal(t, 801*601, area)
	assert.Equal(t, engine.Viewport{Width: 400, Height: 300}, vps[0])
	assert.Equal(t, engine.Viewport{Left: 400, Bottom: 300, Width: 401, Height: 301}, vps[1])
}

func TestViewsSplit(t *testing.T) {
	e := engine.New(0, nil)
	scene := e.CreateScene()

	vs := NewViews(e, scene, false)
	assert.Len(t, vs.All(), 1)
	assert.Nil(t, vs.God)

	vs = NewViews(e, scene, true)
	require.Len(t, vs.All(), 4)
	for _, v := range vs.All() {
		assert.Same(t, scene, v.Scene())
		require.NotNil(t, v.Camera())
	}

	vs.Layout(1000, 500)
	assert.Equal(t, engine.ProjectionOrtho, vs.Top.Camera().Projection())
	assert.Equal(t, engine.ProjectionOrtho, vs.Front.Camera().Projection())
	assert.Equal(t, engine.ProjectionPerspective, vs.Main.Camera().Projection())
	assert.InDelta(t, 2, vs.Main.Camera().Aspect(), 1e-6)

	m := NewManipulator(mgl32.Vec3{0, 0, -4}, 4)
	vs.Update(m, 0)
	assert.Equal(t, m.Eye(), vs.Main.Camera().Position())
	assert.Equal(t, m.Target, vs.God.Camera().Target())
	assert.Greater(t, vs.God.Camera().Position().Y(), float32(10))
	assert.InDelta(t, godDistance, vs.God.Camera().Position().Sub(m.Target).Len(), 1e-3)
}

func TestViewsMainContains(t *testing.T) {
	e := engine.New(0, nil)
	vs := NewViews(e, e.CreateScene(), true)
	vs.Layout(800, 600)

	// Main is the bottom left quadrant; y grows downward.
	assert.True(t, vs.MainContains(10, 590, 600))
	assert.False(t, vs.MainContains(10, 10, 600))
	assert.False(t, vs.MainContains(790, 590, 600))
}

func TestViewsDestroyReleasesEveryView(t *testing.T) {
	e := engine.New(0, nil)
	vs := NewViews(e, e.CreateScene(), true)
	var released []string
	vs.Destroy(e, func(v *engine.View) { released = append(released, v.Name()) })
	assert.Equal(t, []string{"main", "god", "top", "front"}, released)
}
