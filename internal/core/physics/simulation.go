package physics

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/spatialcore/pkg/concurrent"
)

// Config holds engine-wide simulation parameters.
type Config struct {
	Gravity mgl32.Vec3
	// Workers bounds the goroutines used by Step. Values below 2 step inline.
	Workers int
	// SleepDelay is how long, in seconds, a body must stay below its
	// sleep threshold before it is put to sleep.
	SleepDelay float32
}

func DefaultConfig() Config {
	return Config{
		Gravity:    mgl32.Vec3{0, -9.81, 0},
		Workers:    1,
		SleepDelay: 0.5,
	}
}

// Simulation is a rigid-body world. It is not safe for concurrent use; Step
// fans integration out internally and joins before returning.
type Simulation struct {
	cfg     Config
	shapes  []Shape
	bodies  arena[body]
	statics arena[static]
	active  []uint32
}

func NewSimulation(cfg Config) *Simulation {
	if cfg.SleepDelay <= 0 {
		cfg.SleepDelay = DefaultConfig().SleepDelay
	}
	return &Simulation{cfg: cfg}
}

func (s *Simulation) Config() Config { return s.cfg }

func (s *Simulation) AddShape(shape Shape) (ShapeIndex, error) {
	if err := shape.Validate(); err != nil {
		return InvalidShape, err
	}
	s.shapes = append(s.shapes, shape)
	return ShapeIndex(len(s.shapes) - 1), nil
}

func (s *Simulation) Shape(idx ShapeIndex) (Shape, error) {
	if idx < 0 || int(idx) >= len(s.shapes) {
		return Shape{}, fmt.Errorf("%w: %d", ErrShapeNotFound, idx)
	}
	return s.shapes[idx], nil
}

func (s *Simulation) AddBody(desc BodyDescription) (BodyHandle, error) {
	shape, err := s.Shape(desc.Shape)
	if err != nil {
		return BodyHandle{}, err
	}
	if desc.Kind != BodyDynamic && desc.Kind != BodyKinematic {
		return BodyHandle{}, fmt.Errorf("unknown body kind %d", desc.Kind)
	}
	pose := normalizePose(desc.Pose)
	mass := desc.Mass
	switch {
	case desc.Kind == BodyKinematic:
		mass = math32.Inf(1)
	case mass <= 0:
		mass = 1
	}
	b := body{
		kind:           desc.Kind,
		shape:          desc.Shape,
		pose:           pose,
		linear:         desc.LinearVelocity,
		angular:        desc.AngularVelocity,
		mass:           mass,
		sleepThreshold: desc.SleepThreshold,
		awake:          true,
		bounds:         boundsAt(pose.Position, shape.localHalfExtents(pose.Orientation)),
	}
	idx, gen := s.bodies.add(b)
	return BodyHandle{index: idx, generation: gen}, nil
}

func (s *Simulation) AddStatic(desc StaticDescription) (StaticHandle, error) {
	shape, err := s.Shape(desc.Shape)
	if err != nil {
		return StaticHandle{}, err
	}
	pose := normalizePose(desc.Pose)
	st := static{
		shape:  desc.Shape,
		pose:   pose,
		bounds: boundsAt(pose.Position, shape.localHalfExtents(pose.Orientation)),
	}
	idx, gen := s.statics.add(st)
	return StaticHandle{index: idx, generation: gen}, nil
}

func (s *Simulation) RemoveBody(h BodyHandle) error {
	if !s.bodies.remove(h.index, h.generation) {
		return fmt.Errorf("%w: %s", ErrBodyNotFound, h)
	}
	return nil
}

func (s *Simulation) RemoveStatic(h StaticHandle) error {
	if !s.statics.remove(h.index, h.generation) {
		return fmt.Errorf("%w: %s", ErrStaticNotFound, h)
	}
	return nil
}

func (s *Simulation) body(h BodyHandle) (*body, error) {
	b, ok := s.bodies.get(h.index, h.generation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, h)
	}
	return b, nil
}

func (s *Simulation) static(h StaticHandle) (*static, error) {
	st, ok := s.statics.get(h.index, h.generation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaticNotFound, h)
	}
	return st, nil
}

func (s *Simulation) BodyPose(h BodyHandle) (Pose, error) {
	b, err := s.body(h)
	if err != nil {
		return Pose{}, err
	}
	return b.pose, nil
}

// SetBodyPose teleports a body. Broad-phase bounds are left untouched until
// UpdateBounds is called or the body is integrated by Step.
func (s *Simulation) SetBodyPose(h BodyHandle, pose Pose) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.pose = normalizePose(pose)
	return nil
}

func (s *Simulation) BodyKind(h BodyHandle) (BodyKind, error) {
	b, err := s.body(h)
	if err != nil {
		return 0, err
	}
	return b.kind, nil
}

func (s *Simulation) BodyVelocity(h BodyHandle) (linear, angular mgl32.Vec3, err error) {
	b, err := s.body(h)
	if err != nil {
		return mgl32.Vec3{}, mgl32.Vec3{}, err
	}
	return b.linear, b.angular, nil
}

func (s *Simulation) SetBodyVelocity(h BodyHandle, linear, angular mgl32.Vec3) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.linear = linear
	b.angular = angular
	return nil
}

// Awaken makes a sleeping body take part in the next Step.
func (s *Simulation) Awaken(h BodyHandle) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.awake = true
	b.idle = 0
	return nil
}

func (s *Simulation) IsAwake(h BodyHandle) (bool, error) {
	b, err := s.body(h)
	if err != nil {
		return false, err
	}
	return b.awake, nil
}

// UpdateBounds recomputes the broad-phase bounds of a body from its current pose.
func (s *Simulation) UpdateBounds(h BodyHandle) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.bounds = boundsAt(b.pose.Position, s.shapes[b.shape].localHalfExtents(b.pose.Orientation))
	return nil
}

func (s *Simulation) BodyBounds(h BodyHandle) (AABB, error) {
	b, err := s.body(h)
	if err != nil {
		return AABB{}, err
	}
	return b.bounds, nil
}

func (s *Simulation) StaticPose(h StaticHandle) (Pose, error) {
	st, err := s.static(h)
	if err != nil {
		return Pose{}, err
	}
	return st.pose, nil
}

func (s *Simulation) StaticShape(h StaticHandle) (ShapeIndex, error) {
	st, err := s.static(h)
	if err != nil {
		return InvalidShape, err
	}
	return st.shape, nil
}

// Bodies returns the handles of every live body in slot order.
func (s *Simulation) Bodies() []BodyHandle {
	out := make([]BodyHandle, 0, s.bodies.live)
	for i, sl := range s.bodies.slots {
		if sl.alive {
			out = append(out, BodyHandle{index: uint32(i), generation: sl.generation})
		}
	}
	return out
}

// Statics returns the handles of every live static in slot order.
func (s *Simulation) Statics() []StaticHandle {
	out := make([]StaticHandle, 0, s.statics.live)
	for i, sl := range s.statics.slots {
		if sl.alive {
			out = append(out, StaticHandle{index: uint32(i), generation: sl.generation})
		}
	}
	return out
}

func (s *Simulation) BodyCount() int   { return s.bodies.live }
func (s *Simulation) StaticCount() int { return s.statics.live }

// Clear removes every body and static. Registered shapes survive.
func (s *Simulation) Clear() {
	s.bodies.clear()
	s.statics.clear()
	s.active = s.active[:0]
}

// Step advances every awake body by dt seconds. Bodies are integrated
// independently, so splitting the work across goroutines yields the same
// result as a single goroutine.
func (s *Simulation) Step(dt float32) error {
	if dt <= 0 || math.IsInf(float64(dt), 0) || math.IsNaN(float64(dt)) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}

	s.active = s.active[:0]
	for i := range s.bodies.slots {
		sl := &s.bodies.slots[i]
		if sl.alive && sl.value.awake {
			s.active = append(s.active, uint32(i))
		}
	}

	return concurrent.ForEachChunk(len(s.active), s.cfg.Workers, func(lo, hi int) error {
		for _, idx := range s.active[lo:hi] {
			s.integrate(&s.bodies.slots[idx].value, dt)
		}
		return nil
	})
}

func (s *Simulation) integrate(b *body, dt float32) {
	if b.kind == BodyDynamic {
		b.linear = b.linear.Add(s.cfg.Gravity.Mul(dt))
	}
	b.pose.Position = b.pose.Position.Add(b.linear.Mul(dt))
	if b.angular.LenSqr() > 0 {
		spin := mgl32.Quat{W: 0, V: b.angular.Mul(0.5 * dt)}
		b.pose.Orientation = b.pose.Orientation.Add(spin.Mul(b.pose.Orientation)).Normalize()
	}
	b.bounds = boundsAt(b.pose.Position, s.shapes[b.shape].localHalfExtents(b.pose.Orientation))

	if b.kind == BodyDynamic {
		s.resolveStatics(b)
	}

	speed := math32.Max(b.linear.Len(), b.angular.Len())
	if speed < b.sleepThreshold {
		b.idle += dt
		if b.idle >= s.cfg.SleepDelay {
			b.awake = false
			if b.kind == BodyDynamic {
				b.linear = mgl32.Vec3{}
				b.angular = mgl32.Vec3{}
			}
		}
		return
	}
	b.idle = 0
}

// resolveStatics pushes a dynamic body out of every static it overlaps and
// cancels the velocity component driving it in.
func (s *Simulation) resolveStatics(b *body) {
	for i := range s.statics.slots {
		sl := &s.statics.slots[i]
		if !sl.alive {
			continue
		}
		push, ok := b.bounds.penetration(sl.value.bounds)
		if !ok {
			continue
		}
		b.pose.Position = b.pose.Position.Add(push)
		b.bounds = AABB{Min: b.bounds.Min.Add(push), Max: b.bounds.Max.Add(push)}
		for axis := 0; axis < 3; axis++ {
			if push[axis] != 0 && b.linear[axis]*push[axis] < 0 {
				b.linear[axis] = 0
			}
		}
	}
}

func normalizePose(p Pose) Pose {
	if p.Orientation.Len() == 0 {
		p.Orientation = mgl32.QuatIdent()
	} else {
		p.Orientation = p.Orientation.Normalize()
	}
	return p
}
