package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestLocalHalfExtents(t *testing.T) {
	quarter := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})

	tests := []struct {
		name  string
		shape Shape
		rot   mgl32.Quat
		want  mgl32.Vec3
	}{
		{"sphere", Sphere(2), quarter, mgl32.Vec3{2, 2, 2}},
		{"box identity", Box(2, 4, 6), mgl32.QuatIdent(), mgl32.Vec3{1, 2, 3}},
		{"box rotated", Box(2, 4, 6), quarter, mgl32.Vec3{2, 1, 3}},
		{"capsule upright", Capsule(0.5, 2), mgl32.QuatIdent(), mgl32.Vec3{0.5, 1.5, 0.5}},
		{"capsule lying", Capsule(0.5, 2), quarter, mgl32.Vec3{1.5, 0.5, 0.5}},
		{"cylinder", Cylinder(1, 4), mgl32.QuatIdent(), mgl32.Vec3{1, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.localHalfExtents(tt.rot)
			assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-5), "got %v want %v", got, tt.want)
		})
	}
}

func TestAABBRayIntersect(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	d, ok := box.RayIntersect(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{1, 0, 0}, 10)
	assert.True(t, ok)
	assert.InDelta(t, 4, d, 1e-6)

	_, ok = box.RayIntersect(mgl32.Vec3{-5, 2, 0}, mgl32.Vec3{1, 0, 0}, 10)
	assert.False(t, ok)

	d, ok = box.RayIntersect(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 10)
	assert.True(t, ok, "origin inside")
	assert.Zero(t, d)
}

func TestAABBPenetration(t *testing.T) {
	ground := AABB{Min: mgl32.Vec3{-10, -1, -10}, Max: mgl32.Vec3{10, 0, 10}}
	falling := AABB{Min: mgl32.Vec3{-0.5, -0.25, -0.5}, Max: mgl32.Vec3{0.5, 0.75, 0.5}}

	push, ok := falling.penetration(ground)
	assert.True(t, ok)
	assert.True(t, push.ApproxEqual(mgl32.Vec3{0, 0.25, 0}), "got %v", push)

	_, ok = AABB{Min: mgl32.Vec3{0, 1, 0}, Max: mgl32.Vec3{1, 2, 1}}.penetration(ground)
	assert.False(t, ok)
}
