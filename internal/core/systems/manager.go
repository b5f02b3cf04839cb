package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/scene"
)

type entry struct {
	system  System
	enabled bool
	metrics Metrics
}

// Manager owns the registered systems. Registration order is preserved so
// execution order is fully determined by priorities and the order of calls
// to Register.
type Manager struct {
	registry *orderedmap.OrderedMap[string, *entry]
	order    []*entry
	dirty    bool
	log      log.Log
}

func NewManager(logger log.Log) *Manager {
	return &Manager{
		registry: orderedmap.NewOrderedMap[string, *entry](),
		log:      logger,
	}
}

func (m *Manager) Register(s System) error {
	if _, exists := m.registry.Get(s.Name()); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	m.registry.Set(s.Name(), &entry{system: s, enabled: true})
	m.dirty = true
	return nil
}

func (m *Manager) Unregister(name string) error {
	if !m.registry.Delete(name) {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	m.dirty = true
	return nil
}

func (m *Manager) Get(name string) (System, bool) {
	e, ok := m.registry.Get(name)
	if !ok {
		return nil, false
	}
	return e.system, true
}

// SetEnabled toggles a system without changing its place in the order.
func (m *Manager) SetEnabled(name string, enabled bool) error {
	e, ok := m.registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// ExecutionOrder returns system names in the order FixedUpdate runs them.
func (m *Manager) ExecutionOrder() []string {
	m.sortIfDirty()
	names := make([]string, len(m.order))
	for i, e := range m.order {
		names[i] = e.system.Name()
	}
	return names
}

func (m *Manager) Metrics(name string) (Metrics, bool) {
	e, ok := m.registry.Get(name)
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

// FixedUpdate runs every enabled system once. A failing system is logged and
// counted; the remaining systems still run. The returned error joins every
// failure of this call.
func (m *Manager) FixedUpdate(dt float64) error {
	m.sortIfDirty()
	var all error
	for _, e := range m.order {
		if !e.enabled {
			continue
		}
		start := time.Now()
		err := e.system.FixedUpdate(dt)
		e.metrics.record(time.Since(start), err)
		if err != nil {
			m.log.Error("system update failed",
				log.String("system", e.system.Name()),
				log.Error(err))
			all = errors.Join(all, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return all
}

// RemoveEntity tells every system tracking entities to forget e.
func (m *Manager) RemoveEntity(e scene.Entity) {
	for el := m.registry.Front(); el != nil; el = el.Next() {
		if r, ok := el.Value.system.(EntityRemover); ok {
			r.Remove(e)
		}
	}
}

// Reset clears system state and metrics. Registrations are kept.
func (m *Manager) Reset() {
	for el := m.registry.Front(); el != nil; el = el.Next() {
		el.Value.metrics = Metrics{}
		if r, ok := el.Value.system.(Resetter); ok {
			r.Reset()
		}
	}
}

func (m *Manager) sortIfDirty() {
	if !m.dirty {
		return
	}
	m.order = m.order[:0]
	for el := m.registry.Front(); el != nil; el = el.Next() {
		m.order = append(m.order, el.Value)
	}
	sort.SliceStable(m.order, func(i, j int) bool {
		return m.order[i].system.Priority() > m.order[j].system.Priority()
	})
	m.dirty = false
}
