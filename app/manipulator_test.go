package app

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestManipulatorStartsInFrontOfTarget(t *testing.T) {
	m := NewManipulator(mgl32.Vec3{0, 0, -4}, 4)
	assert.True(t, m.Eye().ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, 1e-5), "eye %v", m.Eye())
}

func TestManipulatorDragOrbits(t *testing.T) {
	m := NewManipulator(mgl32.Vec3{}, 2)
	m.Drag(100, 0)
	assert.Zero(t, m.Yaw, "drag without grab")

	m.Grab(0, 0)
	m.Drag(-300, 0)
	assert.InDelta(t, 90, m.Yaw, 1e-4)
	assert.True(t, m.Eye().ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-4), "eye %v", m.Eye())
	assert.InDelta(t, 2, m.Eye().Len(), 1e-4)

	m.Release()
	m.Drag(0, 0)
	assert.InDelta(t, 90, m.Yaw, 1e-4)
}

func TestManipulatorPitchIsClamped(t *testing.T) {
	m := NewManipulator(mgl32.Vec3{}, 1)
	m.Grab(0, 0)
	m.Drag(0, 10000)
	assert.Equal(t, float32(maxPitch), m.Pitch)
	m.Drag(0, -10000)
	assert.Equal(t, float32(-maxPitch), m.Pitch)
}

func TestManipulatorScroll(t *testing.T) {
	m := NewManipulator(mgl32.Vec3{}, 4)
	m.Scroll(1)
	assert.InDelta(t, 3.6, m.Distance, 1e-4)
	m.Scroll(-1000)
	assert.Equal(t, float32(maxDistance), m.Distance)
	m.Scroll(1000)
	assert.Equal(t, float32(minDistance), m.Distance)
}

func TestManipulatorReset(t *testing.T) {
	m := NewManipulator(mgl32.Vec3{1, 2, 3}, 4)
	m.Grab(0, 0)
	m.Drag(50, 50)
	m.Scroll(3)
	m.Reset()
	assert.False(t, m.Dragging())
	assert.Zero(t, m.Yaw)
	assert.Zero(t, m.Pitch)
	assert.Equal(t, float32(4), m.Distance)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Target)
}
