package matching

import "hactl/internal/domain"

// Index maps lower-cased display names to entities. Iteration follows the order in
// which names were first seen; a later entity with the same name replaces the
// earlier one in place.
type Index struct {
	names    []string
	entities map[string]domain.Entity
}

func BuildIndex(entities []domain.Entity) *Index {
	idx := &Index{
		names:    make([]string, 0, len(entities)),
		entities: make(map[string]domain.Entity, len(entities)),
	}
	for _, e := range entities {
		key := normalize(e.Name)
		if key == "" {
			continue
		}
		if _, seen := idx.entities[key]; !seen {
			idx.names = append(idx.names, key)
		}
		idx.entities[key] = e
	}
	return idx
}

func (idx *Index) Len() int {
	return len(idx.names)
}

func (idx *Index) Lookup(name string) (domain.Entity, bool) {
	e, ok := idx.entities[normalize(name)]
	return e, ok
}

// Names returns the display names in index order.
func (idx *Index) Names() []string {
	out := make([]string, 0, len(idx.names))
	for _, key := range idx.names {
		out = append(out, idx.entities[key].Name)
	}
	return out
}

// Each calls fn for every entry in index order until fn returns false.
func (idx *Index) Each(fn func(key string, e domain.Entity) bool) {
	for _, key := range idx.names {
		if !fn(key, idx.entities[key]) {
			return
		}
	}
}
