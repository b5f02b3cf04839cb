package scene

import "sort"

// Query returns the entities present in every given store, in ascending
// entity order. Intersection starts from the smallest store.
//
//	for _, e := range scene.Query(s.Bodies, s.Kinematics, s.Positions) {
//	    ...
//	}
func Query(stores ...AnyStore) []Entity {
	if len(stores) == 0 {
		return []Entity{}
	}
	if len(stores) == 1 {
		return stores[0].All()
	}

	ordered := make([]AnyStore, len(stores))
	copy(ordered, stores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count() < ordered[j].Count()
	})

	candidates := ordered[0].All()
	for _, store := range ordered[1:] {
		filtered := candidates[:0]
		for _, e := range candidates {
			if store.Has(e) {
				filtered = append(filtered, e)
			}
		}
		candidates = filtered
		if len(candidates) == 0 {
			break
		}
	}
	return candidates
}

// Without drops the entities present in store.
func Without(es []Entity, store AnyStore) []Entity {
	out := es[:0]
	for _, e := range es {
		if !store.Has(e) {
			out = append(out, e)
		}
	}
	return out
}
