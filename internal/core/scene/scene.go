// Package scene is the entity-component store holding object transforms in
// local (origin-relative) and absolute coordinates, plus links into the
// physics engine.
package scene

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/pkg/generic"
)

var digests = generic.NewPool(xxhash.New, (*xxhash.Digest).Reset)

// Scene owns entity ids and one store per component type.
//
// Positions are local to the current floating origin. When an entity also has
// an Absolute, Absolute == origin + Position is kept by SetAbsolute and SetLocal.
type Scene struct {
	ids entities

	Positions  *Store[mgl64.Vec3]
	Absolutes  *Store[mgl64.Vec3]
	Rotations  *Store[mgl64.Quat]
	Bodies     *Store[BodyLink]
	Statics    *Store[StaticLink]
	Kinematics *Store[Kinematic]
	Dynamics   *Store[Dynamic]
	Shapes     *Store[CollisionShape]
	Renders    *Store[RenderPose]

	stores []AnyStore
}

func New() *Scene {
	s := &Scene{
		Positions:  NewStore[mgl64.Vec3](),
		Absolutes:  NewStore[mgl64.Vec3](),
		Rotations:  NewStore[mgl64.Quat](),
		Bodies:     NewStore[BodyLink](),
		Statics:    NewStore[StaticLink](),
		Kinematics: NewStore[Kinematic](),
		Dynamics:   NewStore[Dynamic](),
		Shapes:     NewStore[CollisionShape](),
		Renders:    NewStore[RenderPose](),
	}
	s.stores = []AnyStore{
		s.Positions, s.Absolutes, s.Rotations,
		s.Bodies, s.Statics, s.Kinematics, s.Dynamics,
		s.Shapes, s.Renders,
	}
	return s
}

func (s *Scene) Create() Entity {
	return s.ids.create()
}

// Destroy removes e and all of its components. Physics handles linked to e
// must be released by the caller first. Reports whether e was alive.
func (s *Scene) Destroy(e Entity) bool {
	if !s.ids.destroy(e) {
		return false
	}
	for _, store := range s.stores {
		store.Remove(e)
	}
	return true
}

func (s *Scene) Alive(e Entity) bool {
	return s.ids.valid(e)
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return s.ids.live
}

// Clear destroys every entity and resets id allocation.
func (s *Scene) Clear() {
	for _, store := range s.stores {
		store.Clear()
	}
	s.ids.reset()
}

// SetAbsolute places e at abs in world space and derives its local Position.
func (s *Scene) SetAbsolute(e Entity, abs, origin mgl64.Vec3) {
	s.Absolutes.Set(e, abs)
	s.Positions.Set(e, abs.Sub(origin))
}

// SetLocal sets e's local Position and, when e tracks an Absolute, keeps it
// consistent with origin.
func (s *Scene) SetLocal(e Entity, pos, origin mgl64.Vec3) {
	s.Positions.Set(e, pos)
	if s.Absolutes.Has(e) {
		s.Absolutes.Set(e, origin.Add(pos))
	}
}

// Rotation returns e's rotation, identity when it has none.
func (s *Scene) Rotation(e Entity) mgl64.Quat {
	if q, ok := s.Rotations.Get(e); ok {
		return q
	}
	return mgl64.QuatIdent()
}

// EnsureAbsolute gives every entity that has a Position but no Absolute one
// derived from origin. Returns how many were created.
func (s *Scene) EnsureAbsolute(origin mgl64.Vec3) int {
	created := 0
	for _, e := range Without(s.Positions.All(), s.Absolutes) {
		pos, _ := s.Positions.Get(e)
		s.Absolutes.Set(e, origin.Add(pos))
		created++
	}
	return created
}

// Digest hashes the bit patterns of every Position and Rotation in entity
// order. Two scenes with equal digests hold identical transforms.
func (s *Scene) Digest() uint64 {
	d := digests.Get()
	defer digests.Put(d)
	var buf [8]byte
	write := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	for _, e := range s.Positions.All() {
		binary.LittleEndian.PutUint32(buf[:4], e.Index)
		_, _ = d.Write(buf[:4])
		pos, _ := s.Positions.Get(e)
		for _, c := range pos {
			write(c)
		}
		if q, ok := s.Rotations.Get(e); ok {
			write(q.W)
			for _, c := range q.V {
				write(c)
			}
		}
	}
	return d.Sum64()
}
