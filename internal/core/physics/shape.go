package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota + 1
	ShapeBox
	ShapeCapsule
	ShapeCylinder
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCapsule:
		return "capsule"
	case ShapeCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

// Shape is a convex collision primitive. Capsules and cylinders are aligned
// with the local Y axis. Shape is comparable and used as a cache key.
type Shape struct {
	Kind        ShapeKind
	Radius      float32
	HalfLength  float32
	HalfExtents mgl32.Vec3
}

func Sphere(radius float32) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func Box(width, height, length float32) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: mgl32.Vec3{width / 2, height / 2, length / 2}}
}

func Capsule(radius, length float32) Shape {
	return Shape{Kind: ShapeCapsule, Radius: radius, HalfLength: length / 2}
}

func Cylinder(radius, length float32) Shape {
	return Shape{Kind: ShapeCylinder, Radius: radius, HalfLength: length / 2}
}

func (s Shape) Validate() error {
	positive := func(v float32) bool { return v > 0 && !math32.IsInf(v, 0) && !math32.IsNaN(v) }
	switch s.Kind {
	case ShapeSphere:
		if !positive(s.Radius) {
			return fmt.Errorf("%w: sphere radius %v", ErrInvalidShape, s.Radius)
		}
	case ShapeBox:
		for _, e := range s.HalfExtents {
			if !positive(e) {
				return fmt.Errorf("%w: box half extents %v", ErrInvalidShape, s.HalfExtents)
			}
		}
	case ShapeCapsule, ShapeCylinder:
		if !positive(s.Radius) || !positive(s.HalfLength) {
			return fmt.Errorf("%w: %s radius %v half length %v", ErrInvalidShape, s.Kind, s.Radius, s.HalfLength)
		}
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidShape, s.Kind)
	}
	return nil
}

// localHalfExtents returns the half extents of the shape's bounds once rotated by q.
func (s Shape) localHalfExtents(q mgl32.Quat) mgl32.Vec3 {
	switch s.Kind {
	case ShapeSphere:
		return mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	case ShapeCapsule:
		axis := q.Rotate(mgl32.Vec3{0, s.HalfLength, 0})
		return mgl32.Vec3{
			math32.Abs(axis[0]) + s.Radius,
			math32.Abs(axis[1]) + s.Radius,
			math32.Abs(axis[2]) + s.Radius,
		}
	case ShapeCylinder:
		return rotatedExtents(q, mgl32.Vec3{s.Radius, s.HalfLength, s.Radius})
	default:
		return rotatedExtents(q, s.HalfExtents)
	}
}

// rotatedExtents computes |R|·he, the tightest axis-aligned extents of a rotated box.
func rotatedExtents(q mgl32.Quat, he mgl32.Vec3) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	var out mgl32.Vec3
	for row := 0; row < 3; row++ {
		out[row] = math32.Abs(m.At(row, 0))*he[0] +
			math32.Abs(m.At(row, 1))*he[1] +
			math32.Abs(m.At(row, 2))*he[2]
	}
	return out
}
