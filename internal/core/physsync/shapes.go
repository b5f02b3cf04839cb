package physsync

import (
	"fmt"

	"github.com/zeusync/spatialcore/internal/core/physics"
	"github.com/zeusync/spatialcore/internal/core/scene"
)

// translateShape is the single place scene shapes become engine shapes.
func translateShape(s scene.CollisionShape) (physics.Shape, error) {
	switch s.Kind {
	case scene.ShapeSphere:
		return physics.Sphere(float32(s.Radius)), nil
	case scene.ShapeBox:
		return physics.Box(float32(s.Size[0]), float32(s.Size[1]), float32(s.Size[2])), nil
	case scene.ShapeCapsule:
		return physics.Capsule(float32(s.Radius), float32(s.Length)), nil
	case scene.ShapeCylinder:
		return physics.Cylinder(float32(s.Radius), float32(s.Length)), nil
	default:
		return physics.Shape{}, fmt.Errorf("%w: kind %d", ErrUnsupportedShape, s.Kind)
	}
}
