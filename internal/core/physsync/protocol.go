// Package physsync keeps the scene store and the physics engine consistent
// around every fixed step.
//
// Per step the order is PreStep, physics step, ReadBack, then world logic.
// PostStep runs once per frame at render time.
package physsync

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/binding"
	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/physics"
	"github.com/zeusync/spatialcore/internal/core/scene"
	"github.com/zeusync/spatialcore/pkg/coords"
)

// OriginReader exposes the cumulative floating origin.
type OriginReader interface {
	CurrentOrigin() mgl64.Vec3
}

// Stats counts protocol outcomes since construction.
type Stats struct {
	BodiesCreated  uint64
	StaticsCreated uint64
	StaleHandles   uint64
	Unsupported    uint64
	Relocations    uint64
}

type Protocol struct {
	scene   *scene.Scene
	binding *binding.Binding
	origin  OriginReader
	log     log.Log
	once    *log.Once
	stats   Stats
}

func New(s *scene.Scene, b *binding.Binding, origin OriginReader, logger log.Log) *Protocol {
	return &Protocol{
		scene:   s,
		binding: b,
		origin:  origin,
		log:     logger,
		once:    log.NewOnce(logger),
	}
}

func (p *Protocol) Stats() Stats { return p.stats }

// EnsureShapes creates physics objects for entities that have a
// CollisionShape and a Position but no link yet. Kinematic entities get
// kinematic bodies, Dynamic entities dynamic bodies, the rest statics.
// Returns the number of links created.
func (p *Protocol) EnsureShapes() int {
	candidates := scene.Query(p.scene.Shapes, p.scene.Positions)
	candidates = scene.Without(candidates, p.scene.Bodies)
	candidates = scene.Without(candidates, p.scene.Statics)

	created := 0
	for _, e := range candidates {
		cs, _ := p.scene.Shapes.Get(e)
		shape, err := translateShape(cs)
		if err == nil {
			err = shape.Validate()
		}
		if err != nil {
			if p.once.Log(shapeKey(e), log.LevelWarn, "entity has no physics representation",
				log.String("entity", e.String()), log.String("shape", cs.Kind.String()), log.Error(err)) {
				p.stats.Unsupported++
			}
			continue
		}
		idx, err := p.binding.ShapeIndex(shape)
		if err != nil {
			p.once.Log(shapeKey(e), log.LevelWarn, "shape registration failed",
				log.String("entity", e.String()), log.Error(err))
			continue
		}

		pose := p.localPose(e)
		switch {
		case p.scene.Kinematics.Has(e):
			h, ok := p.binding.AddKinematic(idx, pose)
			if !ok {
				continue
			}
			p.scene.Bodies.Set(e, scene.BodyLink{Handle: h})
			p.stats.BodiesCreated++
		case p.scene.Dynamics.Has(e):
			dyn, _ := p.scene.Dynamics.Get(e)
			h, ok := p.binding.AddDynamic(idx, pose, float32(dyn.Mass))
			if !ok {
				continue
			}
			p.scene.Bodies.Set(e, scene.BodyLink{Handle: h})
			p.stats.BodiesCreated++
		default:
			h, ok := p.binding.AddStatic(idx, pose)
			if !ok {
				continue
			}
			p.scene.Statics.Set(e, scene.StaticLink{Handle: h})
			p.stats.StaticsCreated++
		}

		render := scene.RenderPose{}
		render.Push(pose)
		p.scene.Renders.Set(e, render)
		p.once.Forget(staleKey(e))
		p.once.Forget(shapeKey(e))
		created++
	}
	return created
}

// PreStep pushes every kinematic entity's Position and Rotation into its
// body, wakes it and refreshes its bounds. Returns the number of bodies synced.
func (p *Protocol) PreStep() int {
	synced := 0
	for _, e := range scene.Query(p.scene.Bodies, p.scene.Kinematics, p.scene.Positions) {
		link, _ := p.scene.Bodies.Get(e)
		pose := p.localPose(e)
		if !p.binding.ApplyKinematicPose(link.Handle, pose) {
			p.staleBody(e, link.Handle)
			continue
		}
		p.sample(e, pose)
		synced++
	}
	return synced
}

// ReadBack copies dynamic body poses into Position and Rotation, keeping
// Absolute consistent with the current origin.
func (p *Protocol) ReadBack() int {
	origin := p.origin.CurrentOrigin()
	read := 0
	for _, e := range scene.Query(p.scene.Bodies, p.scene.Dynamics) {
		link, _ := p.scene.Bodies.Get(e)
		pose, ok := p.binding.TryGetBodyPose(link.Handle)
		if !ok {
			p.staleBody(e, link.Handle)
			continue
		}
		p.scene.SetLocal(e, coords.Vec32To64(pose.Position), origin)
		p.scene.Rotations.Set(e, coords.Quat32To64(pose.Orientation))
		p.sample(e, pose)
		read++
	}
	return read
}

// PostStep produces render poses for the frame, blending the last two
// simulated samples by alpha. It never touches simulation state.
func (p *Protocol) PostStep(alpha float64) {
	for _, e := range scene.Query(p.scene.Bodies, p.scene.Renders) {
		link, _ := p.scene.Bodies.Get(e)
		pose, ok := p.binding.TryGetBodyPose(link.Handle)
		if !ok {
			p.staleBody(e, link.Handle)
			continue
		}
		render, _ := p.scene.Renders.Get(e)
		if !p.scene.Kinematics.Has(e) {
			render.Current = pose
		}
		render.Blend(alpha)
		p.scene.Renders.Set(e, render)
	}
	for _, e := range scene.Query(p.scene.Statics, p.scene.Renders) {
		link, _ := p.scene.Statics.Get(e)
		pose, ok := p.binding.TryGetStaticPose(link.Handle)
		if !ok {
			p.staleStatic(e, link.Handle)
			continue
		}
		p.scene.Renders.Set(e, scene.RenderPose{Previous: pose, Current: pose, Interpolated: pose})
	}
}

// ShiftPhysics moves every physics object by -offset. Linked objects are
// placed at their entity's Position, which the caller has already rebased;
// unlinked objects are shifted in single precision. Statics are recreated
// and their entities get the new handle.
func (p *Protocol) ShiftPhysics(offset mgl64.Vec3) {
	offset32 := coords.Vec64To32(offset)

	linkedBodies := make(map[physics.BodyHandle]struct{})
	for _, e := range p.scene.Bodies.All() {
		link, _ := p.scene.Bodies.Get(e)
		linkedBodies[link.Handle] = struct{}{}
		target, ok := p.shiftedPosition(e, link.Handle, offset32)
		if !ok || !p.binding.ShiftBody(link.Handle, target) {
			p.staleBody(e, link.Handle)
		}
	}
	for _, h := range p.binding.Bodies() {
		if _, ok := linkedBodies[h]; ok {
			continue
		}
		if pose, ok := p.binding.TryGetBodyPose(h); ok {
			p.binding.ShiftBody(h, pose.Position.Sub(offset32))
		}
	}

	linkedStatics := make(map[physics.StaticHandle]struct{})
	for _, e := range p.scene.Statics.All() {
		link, _ := p.scene.Statics.Get(e)
		linkedStatics[link.Handle] = struct{}{}
	}
	for _, h := range p.binding.Statics() {
		if _, ok := linkedStatics[h]; ok {
			continue
		}
		if pose, ok := p.binding.TryGetStaticPose(h); ok {
			pose.Position = pose.Position.Sub(offset32)
			p.binding.RelocateStatic(h, pose)
		}
	}
	for _, e := range p.scene.Statics.All() {
		link, _ := p.scene.Statics.Get(e)
		pose, ok := p.binding.TryGetStaticPose(link.Handle)
		if !ok {
			p.staleStatic(e, link.Handle)
			continue
		}
		pose.Position = p.entityPosition(e, pose.Position.Sub(offset32))
		moved, ok := p.binding.RelocateStatic(link.Handle, pose)
		if !ok {
			p.scene.Statics.Remove(e)
			p.once.Log(staleKey(e), log.LevelWarn, "static relocation failed; entity is physics-less until its shape is re-ensured",
				log.String("entity", e.String()))
			continue
		}
		p.scene.Statics.Set(e, scene.StaticLink{Handle: moved})
		p.stats.Relocations++
	}

	for _, e := range p.scene.Renders.All() {
		render, _ := p.scene.Renders.Get(e)
		render.Shift(offset32)
		p.scene.Renders.Set(e, render)
	}
}

// Release removes e's physics objects and links. Used when an entity is
// destroyed or its shape changes.
func (p *Protocol) Release(e scene.Entity) {
	if link, ok := p.scene.Bodies.Get(e); ok {
		p.binding.RemoveBody(link.Handle)
		p.scene.Bodies.Remove(e)
	}
	if link, ok := p.scene.Statics.Get(e); ok {
		p.binding.RemoveStatic(link.Handle)
		p.scene.Statics.Remove(e)
	}
	p.scene.Renders.Remove(e)
	p.once.Forget(staleKey(e))
	p.once.Forget(shapeKey(e))
}

// Reset forgets per-entity log suppression and counters.
func (p *Protocol) Reset() {
	p.once.Reset()
	p.stats = Stats{}
}

func (p *Protocol) localPose(e scene.Entity) physics.Pose {
	pos, _ := p.scene.Positions.Get(e)
	return physics.Pose{
		Position:    coords.Vec64To32(pos),
		Orientation: coords.Quat64To32(p.scene.Rotation(e)),
	}
}

func (p *Protocol) shiftedPosition(e scene.Entity, h physics.BodyHandle, offset mgl32.Vec3) (mgl32.Vec3, bool) {
	pose, ok := p.binding.TryGetBodyPose(h)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return p.entityPosition(e, pose.Position.Sub(offset)), true
}

// entityPosition prefers the entity's rebased Position over fallback.
func (p *Protocol) entityPosition(e scene.Entity, fallback mgl32.Vec3) mgl32.Vec3 {
	if pos, ok := p.scene.Positions.Get(e); ok {
		return coords.Vec64To32(pos)
	}
	return fallback
}

func (p *Protocol) sample(e scene.Entity, pose physics.Pose) {
	render, _ := p.scene.Renders.Get(e)
	render.Push(pose)
	p.scene.Renders.Set(e, render)
}

// staleBody drops the link of an entity whose body no longer resolves. The
// entity keeps its last known Position and can reacquire a body through
// EnsureShapes.
func (p *Protocol) staleBody(e scene.Entity, h physics.BodyHandle) {
	p.scene.Bodies.Remove(e)
	p.stats.StaleHandles++
	p.once.Log(staleKey(e), log.LevelWarn, "stale body handle; keeping last known position",
		log.String("entity", e.String()), log.String("handle", h.String()))
}

func (p *Protocol) staleStatic(e scene.Entity, h physics.StaticHandle) {
	p.scene.Statics.Remove(e)
	p.stats.StaleHandles++
	p.once.Log(staleKey(e), log.LevelWarn, "stale static handle; keeping last known position",
		log.String("entity", e.String()), log.String("handle", h.String()))
}

func staleKey(e scene.Entity) string { return "stale:" + e.String() }
func shapeKey(e scene.Entity) string { return "shape:" + e.String() }
