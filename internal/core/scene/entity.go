package scene

import "fmt"

// Entity identifies a row in the scene. A destroyed entity's index may be
// recycled, but with a new generation, so old ids never alias new rows.
type Entity struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether e is the zero id, which never names a live entity.
func (e Entity) IsZero() bool { return e.Generation == 0 }

func (e Entity) String() string {
	return fmt.Sprintf("entity(%d:%d)", e.Index, e.Generation)
}

func (e Entity) less(o Entity) bool {
	if e.Index != o.Index {
		return e.Index < o.Index
	}
	return e.Generation < o.Generation
}

type entities struct {
	generations []uint32
	alive       []bool
	free        []uint32
	live        int
}

func (es *entities) create() Entity {
	var idx uint32
	if n := len(es.free); n > 0 {
		idx = es.free[n-1]
		es.free = es.free[:n-1]
	} else {
		idx = uint32(len(es.generations))
		es.generations = append(es.generations, 1)
		es.alive = append(es.alive, false)
	}
	es.alive[idx] = true
	es.live++
	return Entity{Index: idx, Generation: es.generations[idx]}
}

func (es *entities) valid(e Entity) bool {
	return int(e.Index) < len(es.generations) &&
		es.alive[e.Index] &&
		es.generations[e.Index] == e.Generation
}

func (es *entities) destroy(e Entity) bool {
	if !es.valid(e) {
		return false
	}
	es.alive[e.Index] = false
	es.generations[e.Index]++
	if es.generations[e.Index] == 0 {
		es.generations[e.Index] = 1
	}
	es.free = append(es.free, e.Index)
	es.live--
	return true
}

func (es *entities) reset() {
	*es = entities{}
}
