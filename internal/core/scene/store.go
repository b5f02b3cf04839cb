package scene

import (
	"slices"
	"sync"
)

// AnyStore provides type-erased operations so the scene can manage every
// store uniformly, e.g. when destroying an entity.
type AnyStore interface {
	Remove(e Entity)
	Has(e Entity) bool
	Count() int
	Clear()
	// All returns the entities holding this component in ascending entity order.
	All() []Entity
}

// Store is a sparse container for one component type.
type Store[T any] struct {
	mu         sync.RWMutex
	components map[Entity]T
	entities   []Entity
	sorted     bool
}

var _ AnyStore = (*Store[struct{}])(nil)

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[Entity]T),
		entities:   make([]Entity, 0, 64),
		sorted:     true,
	}
}

// Set inserts or replaces the component for e.
func (s *Store[T]) Set(e Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; !exists {
		if n := len(s.entities); n > 0 && !s.entities[n-1].less(e) {
			s.sorted = false
		}
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

func (s *Store[T]) Get(e Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.components[e]
	return val, ok
}

func (s *Store[T]) Has(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.components[e]
	return ok
}

func (s *Store[T]) Remove(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; !exists {
		return
	}
	delete(s.components, e)
	for i, entity := range s.entities {
		if entity == e {
			s.entities = slices.Delete(s.entities, i, i+1)
			break
		}
	}
}

func (s *Store[T]) All() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sorted {
		slices.SortFunc(s.entities, compareEntities)
		s.sorted = true
	}
	result := make([]Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = make(map[Entity]T)
	s.entities = make([]Entity, 0, 64)
	s.sorted = true
}

func compareEntities(a, b Entity) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	default:
		return 0
	}
}
