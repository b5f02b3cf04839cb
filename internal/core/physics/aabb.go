package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in local simulation space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func boundsAt(center, halfExtents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

// RayIntersect runs the slab test and returns the entry distance along dir.
// dir does not need to be normalized; the distance is in units of dir.
func (b AABB) RayIntersect(origin, dir mgl32.Vec3, maxDistance float32) (float32, bool) {
	tMin, tMax := float32(0), maxDistance
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(dir[axis]) < 1e-12 {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t0 := (b.Min[axis] - origin[axis]) * inv
		t1 := (b.Max[axis] - origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math32.Max(tMin, t0)
		tMax = math32.Min(tMax, t1)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// penetration returns the smallest translation that moves b out of o, or false if they do not overlap.
func (b AABB) penetration(o AABB) (mgl32.Vec3, bool) {
	if !b.Intersects(o) {
		return mgl32.Vec3{}, false
	}
	best := float32(math32.MaxFloat32)
	var push mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		up := o.Max[axis] - b.Min[axis]
		down := b.Max[axis] - o.Min[axis]
		if up < best {
			best = up
			push = mgl32.Vec3{}
			push[axis] = up
		}
		if down < best {
			best = down
			push = mgl32.Vec3{}
			push[axis] = -down
		}
	}
	return push, true
}
