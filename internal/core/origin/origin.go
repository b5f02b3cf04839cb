// Package origin owns the floating origin: the cumulative double-precision
// offset between world space and the local coordinates stored in the scene
// and the physics engine.
package origin

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/events/bus"
	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/scene"
)

var ErrInvalidThreshold = errors.New("rebase threshold must be positive and finite")

// PhysicsShifter moves every physics object by -offset. It is called during
// a rebase, after scene Positions have been rebased.
type PhysicsShifter interface {
	ShiftPhysics(offset mgl64.Vec3)
}

// ShiftFunc is called inside a rebase with the offset being applied.
type ShiftFunc func(offset mgl64.Vec3)

// Manager tracks the current origin and performs rebases. A rebase updates
// the scene, the physics engine and every shift listener before returning;
// nothing observes a partially shifted world. Not safe for concurrent use;
// rebasing must never overlap a physics step.
type Manager struct {
	scene     *scene.Scene
	physics   PhysicsShifter
	events    bus.EventBus
	log       log.Log
	listeners []ShiftFunc

	origin    mgl64.Vec3
	threshold float64
	rebasing  bool
	rebases   uint64
	rejected  uint64
}

func NewManager(threshold float64, s *scene.Scene, events bus.EventBus, logger log.Log) (*Manager, error) {
	m := &Manager{scene: s, events: events, log: logger}
	if err := m.SetThreshold(threshold); err != nil {
		return nil, err
	}
	return m, nil
}

// SetPhysics attaches the physics side of the rebase.
func (m *Manager) SetPhysics(p PhysicsShifter) {
	m.physics = p
}

// OnShift registers fn to run inside every rebase, after the scene and the
// physics engine have been shifted.
func (m *Manager) OnShift(fn ShiftFunc) {
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) CurrentOrigin() mgl64.Vec3 { return m.origin }

func (m *Manager) Threshold() float64 { return m.threshold }

func (m *Manager) SetThreshold(threshold float64) error {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	m.threshold = threshold
	return nil
}

func (m *Manager) IsRebasing() bool { return m.rebasing }

// Rebases returns the number of completed rebases.
func (m *Manager) Rebases() uint64 { return m.rebases }

// Rejected returns the number of rebases refused because one was in progress.
func (m *Manager) Rejected() uint64 { return m.rejected }

// Update rebases onto reference, a local position, when it lies farther than
// the threshold from the local origin. Returns whether a rebase happened and
// the offset applied.
func (m *Manager) Update(reference mgl64.Vec3) (bool, mgl64.Vec3) {
	if reference.Len() <= m.threshold {
		return false, mgl64.Vec3{}
	}
	if !m.Rebase(reference) {
		return false, mgl64.Vec3{}
	}
	return true, reference
}

// ForceRebase applies offset regardless of the threshold.
func (m *Manager) ForceRebase(offset mgl64.Vec3) bool {
	return m.Rebase(offset)
}

// Rebase moves the origin by offset. Entities with an Absolute get their
// Position recomputed from it; entities without one are shifted by -offset.
// Then physics and listeners are shifted and origin.rebased is published.
// Calls made before Rebase returns, including from listeners and event
// subscribers, are rejected and return false.
func (m *Manager) Rebase(offset mgl64.Vec3) bool {
	if m.rebasing {
		m.rejected++
		m.log.Warn("re-entrant rebase rejected", log.Vec3("offset", offset))
		return false
	}
	if !finite(offset) {
		m.log.Error("rebase offset is not finite", log.Vec3("offset", offset))
		return false
	}

	m.rebasing = true
	defer func() { m.rebasing = false }()
	m.origin = m.origin.Add(offset)

	for _, e := range m.scene.Absolutes.All() {
		abs, _ := m.scene.Absolutes.Get(e)
		m.scene.Positions.Set(e, abs.Sub(m.origin))
	}
	for _, e := range scene.Without(m.scene.Positions.All(), m.scene.Absolutes) {
		pos, _ := m.scene.Positions.Get(e)
		m.scene.Positions.Set(e, pos.Sub(offset))
	}
	if m.physics != nil {
		m.physics.ShiftPhysics(offset)
	}
	for _, fn := range m.listeners {
		fn(offset)
	}

	m.rebases++

	m.log.Info("origin rebased",
		log.Vec3("offset", offset),
		log.Vec3("origin", m.origin),
		log.Uint64("count", m.rebases))
	if m.events != nil {
		evt := bus.OriginRebased{Offset: offset, Origin: m.origin, Count: m.rebases}
		if err := m.events.Publish(bus.NewEvent(bus.TypeOriginRebased, "origin", evt)); err != nil {
			m.log.Warn("origin.rebased subscriber failed", log.Error(err))
		}
	}
	return true
}

// Reset returns the origin to zero. Callers reinitializing a world clear the
// scene and physics themselves.
func (m *Manager) Reset() {
	m.origin = mgl64.Vec3{}
	m.rebases = 0
	m.rejected = 0
	m.rebasing = false
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
