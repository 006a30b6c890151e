package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(2), Clamp[uint32](1, 2, 8))
	assert.Equal(t, uint32(8), Clamp[uint32](9, 2, 8))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestGenerateBox(t *testing.T) {
	box := GenerateBox(2.0)
	assert.Len(t, box, 6)
	assert.Zero(t, len(box)%3)
	assert.Equal(t, Vec3{-1, -1, 0}, box[0])
	assert.Equal(t, Vec3{1, 1, 0}, box[1])
	for _, v := range box {
		assert.Zero(t, v.Z)
	}
}

func TestFlatten(t *testing.T) {
	out := Flatten([]Vec3{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, out)
	assert.Empty(t, Flatten(nil))
}

func TestVec3Ops(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := Vec3{1, 1, 1}
	assert.Equal(t, Vec3{2, 3, 4}, a.Add(b))
	assert.Equal(t, Vec3{0, 1, 2}, a.Sub(b))
	assert.Equal(t, [3]float32{1, 2, 3}, a.Elements())
}
