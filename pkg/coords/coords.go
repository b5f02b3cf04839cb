// Package coords converts between the double-precision vectors the scene store
// keeps and the single-precision vectors the physics engine consumes.
package coords

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Vec64To32 narrows a 64 bit vector to a 32 bit one. Precision loss is expected.
func Vec64To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec32To64 converts a 32 bit vector to a 64 bit one.
func Vec32To64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Quat64To32 narrows a 64 bit quaternion to a 32 bit one.
func Quat64To32(q mgl64.Quat) mgl32.Quat {
	return mgl32.Quat{W: float32(q.W), V: Vec64To32(q.V)}
}

// Quat32To64 converts a 32 bit quaternion to a 64 bit one.
func Quat32To64(q mgl32.Quat) mgl64.Quat {
	return mgl64.Quat{W: float64(q.W), V: Vec32To64(q.V)}
}

// Spacing32 returns the gap between adjacent float32 values at the largest
// component magnitude of v. This is the best resolution a single-precision
// pose can have at that location.
func Spacing32(v mgl64.Vec3) float64 {
	m := math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
	f := float32(m)
	return float64(math.Nextafter32(f, float32(math.Inf(1))) - f)
}
