package physics

import "github.com/go-gl/mathgl/mgl32"

type BodyKind uint8

const (
	BodyDynamic BodyKind = iota + 1
	BodyKinematic
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// Pose is a rigid transform in single precision, relative to the current floating origin.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// PoseAt returns a pose at p with identity orientation.
func PoseAt(p mgl32.Vec3) Pose {
	return Pose{Position: p, Orientation: mgl32.QuatIdent()}
}

// BodyDescription is everything needed to create a body.
type BodyDescription struct {
	Kind            BodyKind
	Shape           ShapeIndex
	Pose            Pose
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Mass            float32
	// SleepThreshold is the speed below which the body starts counting towards sleep.
	SleepThreshold float32
}

// StaticDescription is everything needed to create a static. Statics never move;
// relocating one means removing it and adding a new one.
type StaticDescription struct {
	Shape ShapeIndex
	Pose  Pose
}

type body struct {
	kind           BodyKind
	shape          ShapeIndex
	pose           Pose
	linear         mgl32.Vec3
	angular        mgl32.Vec3
	mass           float32
	sleepThreshold float32
	awake          bool
	idle           float32
	bounds         AABB
}

type static struct {
	shape  ShapeIndex
	pose   Pose
	bounds AABB
}
