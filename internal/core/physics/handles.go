package physics

import "fmt"

// BodyHandle identifies a body slot and the generation it was issued for.
// The zero value never refers to a live body.
type BodyHandle struct {
	index      uint32
	generation uint32
}

func (h BodyHandle) IsZero() bool { return h.generation == 0 }

func (h BodyHandle) String() string {
	return fmt.Sprintf("body(%d@%d)", h.index, h.generation)
}

// StaticHandle identifies a static slot and the generation it was issued for.
// The zero value never refers to a live static.
type StaticHandle struct {
	index      uint32
	generation uint32
}

func (h StaticHandle) IsZero() bool { return h.generation == 0 }

func (h StaticHandle) String() string {
	return fmt.Sprintf("static(%d@%d)", h.index, h.generation)
}

// ShapeIndex refers to a registered shape. Shapes are never removed.
type ShapeIndex int32

const InvalidShape ShapeIndex = -1

// arena is a generational slot allocator. Freed slots bump their generation
// so handles issued before the free no longer resolve.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

type slot[T any] struct {
	generation uint32
	alive      bool
	value      T
}

func (a *arena[T]) add(v T) (uint32, uint32) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.alive = true
		s.value = v
		a.live++
		return idx, s.generation
	}
	a.slots = append(a.slots, slot[T]{generation: 1, alive: true, value: v})
	a.live++
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(idx, gen uint32) (*T, bool) {
	if gen == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.alive || s.generation != gen {
		return nil, false
	}
	return &s.value, true
}

func (a *arena[T]) remove(idx, gen uint32) bool {
	if _, ok := a.get(idx, gen); !ok {
		return false
	}
	s := &a.slots[idx]
	var zero T
	s.value = zero
	s.alive = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, idx)
	a.live--
	return true
}

func (a *arena[T]) clear() {
	for i := range a.slots {
		if a.slots[i].alive {
			a.slots[i].alive = false
			var zero T
			a.slots[i].value = zero
			a.slots[i].generation++
			if a.slots[i].generation == 0 {
				a.slots[i].generation = 1
			}
			a.free = append(a.free, uint32(i))
		}
	}
	a.live = 0
}
