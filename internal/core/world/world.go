// Package world ties the floating origin, the fixed-step scheduler and the
// physics/scene sync together behind one context object. Every piece of
// process-wide state lives here rather than in globals.
package world

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/binding"
	"github.com/zeusync/spatialcore/internal/core/config"
	"github.com/zeusync/spatialcore/internal/core/events/bus"
	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/origin"
	"github.com/zeusync/spatialcore/internal/core/physics"
	"github.com/zeusync/spatialcore/internal/core/physsync"
	"github.com/zeusync/spatialcore/internal/core/scene"
	"github.com/zeusync/spatialcore/internal/core/system"
	"github.com/zeusync/spatialcore/internal/core/systems"
	"github.com/zeusync/spatialcore/pkg/coords"
)

// FrameResult reports what one Frame call did.
type FrameResult struct {
	Frame   uint64
	Steps   int
	Alpha   float64
	Rebased bool
	Offset  mgl64.Vec3
	// Linked is the number of physics objects created by the shape pass.
	Linked int
}

type World struct {
	cfg    config.Config
	log    log.Log
	events bus.EventBus

	scene     *scene.Scene
	binding   *binding.Binding
	origin    *origin.Manager
	protocol  *physsync.Protocol
	scheduler *system.FixedStepScheduler
	systems   *systems.Manager

	orbit *systems.Orbit
	spin  *systems.Spin
	path  *systems.Path

	frame uint64
}

func New(cfg config.Config, logger log.Log, events bus.EventBus, b *binding.Binding, s *scene.Scene) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	om, err := origin.NewManager(cfg.Origin.RebaseThreshold, s, events, logger.With(log.String("component", "origin")))
	if err != nil {
		return nil, err
	}
	scheduler, err := system.NewFixedStepScheduler(cfg.Simulation.StepRate, cfg.Simulation.MaxStepsPerFrame,
		logger.With(log.String("component", "scheduler")))
	if err != nil {
		return nil, err
	}
	protocol := physsync.New(s, b, om, logger.With(log.String("component", "physsync")))
	om.SetPhysics(protocol)

	w := &World{
		cfg:       cfg,
		log:       logger,
		events:    events,
		scene:     s,
		binding:   b,
		origin:    om,
		protocol:  protocol,
		scheduler: scheduler,
		systems:   systems.NewManager(logger.With(log.String("component", "systems"))),
		orbit:     systems.NewOrbit(s, om),
		spin:      systems.NewSpin(s),
		path:      systems.NewPath(s, om),
	}
	for _, sys := range []systems.System{w.path, w.orbit, w.spin} {
		if err = w.systems.Register(sys); err != nil {
			return nil, fmt.Errorf("register %s: %w", sys.Name(), err)
		}
	}

	scheduler.OnOverrun(func(o system.Overrun) {
		evt := bus.SchedulerOverrun{Frame: o.Frame, Owed: o.Owed, Dropped: o.Dropped}
		if err := events.Publish(bus.NewEvent(bus.TypeSchedulerOverrun, "scheduler", evt)); err != nil {
			w.log.Warn("scheduler.overrun subscriber failed", log.Error(err))
		}
	})

	return w, nil
}

// Frame runs one frame: rebase check against reference (a local position,
// typically the camera), the shape pass, every fixed step owed for delta,
// and finally render interpolation.
func (w *World) Frame(delta time.Duration, reference mgl64.Vec3) FrameResult {
	w.frame++
	res := FrameResult{Frame: w.frame}

	if w.cfg.Origin.EnsureAbsolute {
		w.scene.EnsureAbsolute(w.origin.CurrentOrigin())
	}
	res.Rebased, res.Offset = w.origin.Update(reference)
	res.Linked = w.protocol.EnsureShapes()
	res.Steps = w.scheduler.Advance(delta, w.step)
	res.Alpha = w.scheduler.Alpha()
	w.protocol.PostStep(res.Alpha)
	return res
}

func (w *World) step(dt time.Duration) {
	seconds := dt.Seconds()
	w.protocol.PreStep()
	w.binding.Step(seconds)
	w.protocol.ReadBack()
	_ = w.systems.FixedUpdate(seconds)
}

// Spawn describes a new entity.
type Spawn struct {
	// Position is absolute (world space) unless Local is set.
	Position mgl64.Vec3
	Local    bool
	Rotation *mgl64.Quat
	Shape    *scene.CollisionShape
	// Kinematic entities have their physics pose imposed every step.
	Kinematic bool
	// Mass above zero makes a non-kinematic entity dynamic. Otherwise a
	// shaped entity becomes a static.
	Mass float64
}

// Spawn creates an entity. Physics objects are created by the next Frame.
func (w *World) Spawn(sp Spawn) scene.Entity {
	e := w.scene.Create()
	if sp.Local {
		w.scene.Positions.Set(e, sp.Position)
	} else {
		w.scene.SetAbsolute(e, sp.Position, w.origin.CurrentOrigin())
	}
	if sp.Rotation != nil {
		w.scene.Rotations.Set(e, *sp.Rotation)
	}
	if sp.Shape != nil {
		w.scene.Shapes.Set(e, *sp.Shape)
	}
	switch {
	case sp.Kinematic:
		w.scene.Kinematics.Set(e, scene.Kinematic{})
	case sp.Mass > 0:
		w.scene.Dynamics.Set(e, scene.Dynamic{Mass: sp.Mass})
	}
	return e
}

// Destroy releases e's physics objects, drops it from every system and
// removes it from the scene.
func (w *World) Destroy(e scene.Entity) bool {
	if !w.scene.Alive(e) {
		return false
	}
	w.protocol.Release(e)
	w.systems.RemoveEntity(e)
	return w.scene.Destroy(e)
}

// SetShape replaces e's collision shape. Its old physics object is removed
// and the next Frame creates one for the new shape.
func (w *World) SetShape(e scene.Entity, shape scene.CollisionShape) bool {
	if !w.scene.Alive(e) {
		return false
	}
	w.protocol.Release(e)
	w.scene.Shapes.Set(e, shape)
	return true
}

// Pick casts a ray given in absolute coordinates and returns the entity
// linked to the nearest physics object hit.
func (w *World) Pick(from, dir mgl64.Vec3, maxDistance float64) (scene.Entity, physics.RayHit, bool) {
	local := from.Sub(w.origin.CurrentOrigin())
	hit, ok := w.binding.RayCast(coords.Vec64To32(local), coords.Vec64To32(dir), float32(maxDistance))
	if !ok {
		return scene.Entity{}, hit, false
	}
	if hit.IsStatic() {
		for _, e := range w.scene.Statics.All() {
			if link, _ := w.scene.Statics.Get(e); link.Handle == hit.Static {
				return e, hit, true
			}
		}
	} else {
		for _, e := range w.scene.Bodies.All() {
			if link, _ := w.scene.Bodies.Get(e); link.Handle == hit.Body {
				return e, hit, true
			}
		}
	}
	return scene.Entity{}, hit, true
}

// SetStepRate changes the fixed step rate from the next step on.
func (w *World) SetStepRate(hz float64) error {
	return w.scheduler.SetStepRate(hz)
}

// Reset reinitializes the world: the origin returns to zero and the scene,
// physics engine, scheduler and systems are emptied. Registrations survive.
func (w *World) Reset() {
	w.binding.Clear()
	w.scene.Clear()
	w.origin.Reset()
	w.scheduler.Reset()
	w.protocol.Reset()
	w.systems.Reset()
	w.frame = 0
	w.log.Info("world reset")
}

func (w *World) Frames() uint64                        { return w.frame }
func (w *World) Config() config.Config                 { return w.cfg }
func (w *World) Scene() *scene.Scene                   { return w.scene }
func (w *World) Binding() *binding.Binding             { return w.binding }
func (w *World) Origin() *origin.Manager               { return w.origin }
func (w *World) Protocol() *physsync.Protocol          { return w.protocol }
func (w *World) Scheduler() *system.FixedStepScheduler { return w.scheduler }
func (w *World) Systems() *systems.Manager             { return w.systems }
func (w *World) Events() bus.EventBus                  { return w.events }
func (w *World) Orbit() *systems.Orbit                 { return w.orbit }
func (w *World) Spin() *systems.Spin                   { return w.spin }
func (w *World) Path() *systems.Path                   { return w.path }
