package systems

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/scene"
)

// Spin rotates entities at a constant angular velocity (radians per second
// about each axis).
type Spin struct {
	scene   *scene.Scene
	entries *orderedmap.OrderedMap[scene.Entity, mgl64.Vec3]
}

func NewSpin(s *scene.Scene) *Spin {
	return &Spin{scene: s, entries: orderedmap.NewOrderedMap[scene.Entity, mgl64.Vec3]()}
}

func (s *Spin) Name() string       { return "spin" }
func (s *Spin) Priority() Priority { return PriorityLow }

func (s *Spin) Add(e scene.Entity, angularVelocity mgl64.Vec3) {
	s.entries.Set(e, angularVelocity)
}

func (s *Spin) Remove(e scene.Entity) { s.entries.Delete(e) }

func (s *Spin) Reset() {
	s.entries = orderedmap.NewOrderedMap[scene.Entity, mgl64.Vec3]()
}

func (s *Spin) FixedUpdate(dt float64) error {
	for el := s.entries.Front(); el != nil; {
		next := el.Next()
		e, w := el.Key, el.Value
		if !s.scene.Alive(e) {
			s.entries.Delete(e)
			el = next
			continue
		}
		if rate := w.Len(); rate > 0 {
			step := mgl64.QuatRotate(rate*dt, w.Mul(1/rate))
			s.scene.Rotations.Set(e, step.Mul(s.scene.Rotation(e)).Normalize())
		}
		el = next
	}
	return nil
}
