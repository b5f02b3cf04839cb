// Package binding adapts the rigid-body simulation to the scene store's needs.
// Every lookup returns a (value, ok) pair; the engine's not-found errors never
// leave this package.
package binding

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/physics"
)

// Options configures body creation defaults.
type Options struct {
	// KinematicActivityThreshold is the speed below which kinematic bodies may sleep.
	KinematicActivityThreshold float32
	// DynamicActivityThreshold is the speed below which dynamic bodies may sleep.
	DynamicActivityThreshold float32
}

type Binding struct {
	sim    *physics.Simulation
	opts   Options
	shapes map[physics.Shape]physics.ShapeIndex
	log    log.Log
}

func New(sim *physics.Simulation, opts Options, logger log.Log) *Binding {
	return &Binding{
		sim:    sim,
		opts:   opts,
		shapes: make(map[physics.Shape]physics.ShapeIndex),
		log:    logger,
	}
}

// Simulation exposes the wrapped engine for diagnostics.
func (b *Binding) Simulation() *physics.Simulation { return b.sim }

// ShapeIndex registers shape once and returns the cached index on later calls.
func (b *Binding) ShapeIndex(shape physics.Shape) (physics.ShapeIndex, error) {
	if idx, ok := b.shapes[shape]; ok {
		return idx, nil
	}
	idx, err := b.sim.AddShape(shape)
	if err != nil {
		return physics.InvalidShape, err
	}
	b.shapes[shape] = idx
	return idx, nil
}

// AddKinematic creates a body whose pose is imposed from outside every step.
func (b *Binding) AddKinematic(shape physics.ShapeIndex, pose physics.Pose) (physics.BodyHandle, bool) {
	h, err := b.sim.AddBody(physics.BodyDescription{
		Kind:           physics.BodyKinematic,
		Shape:          shape,
		Pose:           pose,
		SleepThreshold: b.opts.KinematicActivityThreshold,
	})
	if err != nil {
		b.log.Debug("add kinematic failed", log.Error(err))
		return physics.BodyHandle{}, false
	}
	return h, true
}

// AddDynamic creates a body integrated by the engine.
func (b *Binding) AddDynamic(shape physics.ShapeIndex, pose physics.Pose, mass float32) (physics.BodyHandle, bool) {
	h, err := b.sim.AddBody(physics.BodyDescription{
		Kind:           physics.BodyDynamic,
		Shape:          shape,
		Pose:           pose,
		Mass:           mass,
		SleepThreshold: b.opts.DynamicActivityThreshold,
	})
	if err != nil {
		b.log.Debug("add dynamic failed", log.Error(err))
		return physics.BodyHandle{}, false
	}
	return h, true
}

func (b *Binding) AddStatic(shape physics.ShapeIndex, pose physics.Pose) (physics.StaticHandle, bool) {
	h, err := b.sim.AddStatic(physics.StaticDescription{Shape: shape, Pose: pose})
	if err != nil {
		b.log.Debug("add static failed", log.Error(err))
		return physics.StaticHandle{}, false
	}
	return h, true
}

func (b *Binding) TryGetBodyPose(h physics.BodyHandle) (physics.Pose, bool) {
	pose, err := b.sim.BodyPose(h)
	return pose, b.found(err)
}

func (b *Binding) TryGetStaticPose(h physics.StaticHandle) (physics.Pose, bool) {
	pose, err := b.sim.StaticPose(h)
	return pose, b.found(err)
}

func (b *Binding) SetBodyPose(h physics.BodyHandle, pose physics.Pose) bool {
	return b.found(b.sim.SetBodyPose(h, pose))
}

func (b *Binding) MarkAwake(h physics.BodyHandle) bool {
	return b.found(b.sim.Awaken(h))
}

func (b *Binding) RefreshBounds(h physics.BodyHandle) bool {
	return b.found(b.sim.UpdateBounds(h))
}

// ApplyKinematicPose imposes pose on a kinematic body: set the pose, wake it,
// then refresh its broad-phase bounds. All three are needed; without the last
// one ray picks and collisions keep seeing the previous location.
func (b *Binding) ApplyKinematicPose(h physics.BodyHandle, pose physics.Pose) bool {
	return b.SetBodyPose(h, pose) && b.MarkAwake(h) && b.RefreshBounds(h)
}

// ShiftBody moves a body to position, keeping its orientation, then
// refreshes bounds and wakes it.
func (b *Binding) ShiftBody(h physics.BodyHandle, position mgl32.Vec3) bool {
	pose, found := b.TryGetBodyPose(h)
	if !found {
		return false
	}
	pose.Position = position
	return b.SetBodyPose(h, pose) && b.RefreshBounds(h) && b.MarkAwake(h)
}

func (b *Binding) RemoveBody(h physics.BodyHandle) bool {
	return b.found(b.sim.RemoveBody(h))
}

func (b *Binding) RemoveStatic(h physics.StaticHandle) bool {
	return b.found(b.sim.RemoveStatic(h))
}

// RelocateStatic moves a static by removing it and adding it again with the
// same shape. The returned handle replaces h, which is no longer valid.
func (b *Binding) RelocateStatic(h physics.StaticHandle, pose physics.Pose) (physics.StaticHandle, bool) {
	shape, err := b.sim.StaticShape(h)
	if err != nil {
		return physics.StaticHandle{}, false
	}
	if !b.RemoveStatic(h) {
		return physics.StaticHandle{}, false
	}
	return b.AddStatic(shape, pose)
}

// Step advances the engine by dt seconds.
func (b *Binding) Step(dt float64) {
	if err := b.sim.Step(float32(dt)); err != nil {
		b.log.Error("physics step failed", log.Float64("dt", dt), log.Error(err))
	}
}

func (b *Binding) RayCast(origin, dir mgl32.Vec3, maxDistance float32) (physics.RayHit, bool) {
	return b.sim.RayCast(origin, dir, maxDistance)
}

// Bodies lists every live body handle.
func (b *Binding) Bodies() []physics.BodyHandle { return b.sim.Bodies() }

// Statics lists every live static handle.
func (b *Binding) Statics() []physics.StaticHandle { return b.sim.Statics() }

// Clear drops every body and static, keeping registered shapes.
func (b *Binding) Clear() {
	b.sim.Clear()
}

// found folds an engine error into a hit/miss. Not-found is the expected miss;
// anything else is still a miss but worth a warning.
func (b *Binding) found(err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, physics.ErrBodyNotFound) && !errors.Is(err, physics.ErrStaticNotFound) {
		b.log.Warn("unexpected physics error", log.Error(err))
	}
	return false
}
