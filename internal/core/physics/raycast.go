package physics

import "github.com/go-gl/mathgl/mgl32"

// RayHit describes the nearest broad-phase hit of a ray. Exactly one of Body
// and Static is non-zero.
type RayHit struct {
	Body     BodyHandle
	Static   StaticHandle
	Distance float32
	Point    mgl32.Vec3
}

func (h RayHit) IsStatic() bool { return !h.Static.IsZero() }

// RayCast tests the ray against the broad-phase bounds of every body and static
// and returns the nearest hit within maxDistance. dir is normalized internally.
func (s *Simulation) RayCast(origin, dir mgl32.Vec3, maxDistance float32) (RayHit, bool) {
	if dir.LenSqr() == 0 || maxDistance <= 0 {
		return RayHit{}, false
	}
	dir = dir.Normalize()

	var (
		best  RayHit
		found bool
	)
	for i := range s.bodies.slots {
		sl := &s.bodies.slots[i]
		if !sl.alive {
			continue
		}
		if t, ok := sl.value.bounds.RayIntersect(origin, dir, maxDistance); ok && (!found || t < best.Distance) {
			best = RayHit{Body: BodyHandle{index: uint32(i), generation: sl.generation}, Distance: t}
			found = true
		}
	}
	for i := range s.statics.slots {
		sl := &s.statics.slots[i]
		if !sl.alive {
			continue
		}
		if t, ok := sl.value.bounds.RayIntersect(origin, dir, maxDistance); ok && (!found || t < best.Distance) {
			best = RayHit{Static: StaticHandle{index: uint32(i), generation: sl.generation}, Distance: t}
			found = true
		}
	}
	if found {
		best.Point = origin.Add(dir.Mul(best.Distance))
	}
	return best, found
}
