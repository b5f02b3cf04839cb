package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/physics"
)

// ShapeKind enumerates the collision shapes scene code may request.
// The zero value is not a shape; entities carrying it never get a physics
// representation.
type ShapeKind uint8

const (
	ShapeUnknown ShapeKind = iota
	ShapeSphere
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
		return "unknown"
	}
}

// CollisionShape describes the collider of an entity in scene units.
// Radius applies to spheres, capsules and cylinders; Length to capsules and
// cylinders; Size (full extents) to boxes.
type CollisionShape struct {
	Kind   ShapeKind
	Radius float64
	Length float64
	Size   mgl64.Vec3
}

func SphereShape(radius float64) CollisionShape {
	return CollisionShape{Kind: ShapeSphere, Radius: radius}
}

func BoxShape(size mgl64.Vec3) CollisionShape {
	return CollisionShape{Kind: ShapeBox, Size: size}
}

func CapsuleShape(radius, length float64) CollisionShape {
	return CollisionShape{Kind: ShapeCapsule, Radius: radius, Length: length}
}

func CylinderShape(radius, length float64) CollisionShape {
	return CollisionShape{Kind: ShapeCylinder, Radius: radius, Length: length}
}

// BodyLink ties an entity to a physics body.
type BodyLink struct {
	Handle physics.BodyHandle
}

// StaticLink ties an entity to a physics static.
type StaticLink struct {
	Handle physics.StaticHandle
}

// Kinematic marks an entity whose body pose is imposed from the scene each step.
type Kinematic struct{}

// Dynamic marks an entity whose body is integrated by the engine.
type Dynamic struct {
	Mass float64
}

// RenderPose holds the last two simulated samples of a physics-backed entity
// and the blend between them for the current frame.
type RenderPose struct {
	Previous     physics.Pose
	Current      physics.Pose
	Interpolated physics.Pose
	valid        bool
}

// Push records a new simulated sample. The first sample seeds both slots.
func (r *RenderPose) Push(p physics.Pose) {
	if !r.valid {
		r.Previous, r.Current, r.Interpolated = p, p, p
		r.valid = true
		return
	}
	r.Previous = r.Current
	r.Current = p
}

// Shift moves every sample by -offset.
func (r *RenderPose) Shift(offset mgl32.Vec3) {
	r.Previous.Position = r.Previous.Position.Sub(offset)
	r.Current.Position = r.Current.Position.Sub(offset)
	r.Interpolated.Position = r.Interpolated.Position.Sub(offset)
}

// Blend sets Interpolated between Previous and Current. alpha is clamped to [0, 1].
func (r *RenderPose) Blend(alpha float64) {
	a := float32(min(max(alpha, 0), 1))
	delta := r.Current.Position.Sub(r.Previous.Position)
	r.Interpolated = physics.Pose{
		Position:    r.Previous.Position.Add(delta.Mul(a)),
		Orientation: mgl32.QuatNlerp(r.Previous.Orientation, r.Current.Orientation, a),
	}
}
