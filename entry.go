package halfmap

// Entry is a view into a single key of a Map, either occupied or
// vacant, obtained from Map.Entry. It captures the one lookup done at
// construction; none of its operations search again.
//
// An Entry borrows the map. Go cannot enforce that statically, so the
// map carries a generation counter bumped on every structural
// mutation: each handle snapshots the counter and every operation
// panics with a use-after-invalidation error when the snapshot is
// stale. Operations that only touch the value in place (AndModify,
// OccupiedEntry.Insert) do not invalidate; structural ones (a vacant
// insert, a removal) consume the handle.
type Entry[K comparable, V any] struct {
	m    *Map[K, V]
	gen  uint64
	key  K
	hash uintptr // only meaningful on the hash backend
	idx  int     // backend slot of the pair, -1 when vacant
}

// Entry returns the entry for key, for in-place manipulation.
//
// Usage:
//
//	counts.Entry(word).AndModify(func(n *int) { *n++ }).OrInsert(1)
func (m *Map[K, V]) Entry(key K) *Entry[K, V] {
	e := &Entry[K, V]{m: m, gen: m.gen, key: key, idx: -1}
	switch m.state {
	case stateVec:
		e.idx = m.vec.find(&key)
	case stateMap:
		e.hash = m.hashOf(&key)
		e.idx = m.tbl.find(e.hash, func(k *K) bool { return *k == key })
	default:
		panic(errInvalidState)
	}
	return e
}

func (e *Entry[K, V]) check() {
	if e.gen != e.m.gen {
		panic(errStaleEntry)
	}
}

// slot returns the stored pair of an occupied entry.
func (e *Entry[K, V]) slot() *pairOf[K, V] {
	switch e.m.state {
	case stateVec:
		return &e.m.vec.pairs[e.idx]
	case stateMap:
		return &e.m.tbl.slots[e.idx]
	default:
		panic(errInvalidState)
	}
}

// insertVacant installs value under the entry's key and returns a
// pointer to the stored value. The entry must be vacant.
func (e *Entry[K, V]) insertVacant(value V) *V {
	m := e.m
	m.gen++
	switch m.state {
	case stateVec:
		// The entry API appends even at the limit; only Map.Insert
		// triggers the migration.
		return &m.vec.insertUnchecked(e.key, value).Value
	case stateMap:
		i := m.tbl.put(e.hash, e.key, value)
		return &m.tbl.slots[i].Value
	default:
		panic(errInvalidState)
	}
}

// Loaded reports whether the entry is occupied.
func (e *Entry[K, V]) Loaded() bool { return e.idx >= 0 }

// Key returns the entry's key. For an occupied entry this is the key
// stored in the map, which may differ in identity from the key the
// entry was built with.
func (e *Entry[K, V]) Key() K {
	e.check()
	if e.idx >= 0 {
		return e.slot().Key
	}
	return e.key
}

// AndModify applies f to the value in place when the entry is
// occupied, and is a no-op passthrough otherwise. It returns the entry
// unchanged in shape, enabling
//
//	m.Entry(k).AndModify(f).OrInsert(v)
func (e *Entry[K, V]) AndModify(f func(value *V)) *Entry[K, V] {
	e.check()
	if e.idx >= 0 {
		f(&e.slot().Value)
	}
	return e
}

// OrInsert returns a pointer to the existing value when the entry is
// occupied, and otherwise inserts def and returns a pointer to it.
// The pointer stays valid until the next structural mutation.
func (e *Entry[K, V]) OrInsert(def V) *V {
	e.check()
	if e.idx >= 0 {
		return &e.slot().Value
	}
	return e.insertVacant(def)
}

// OrInsertWith is OrInsert with a deferred default: f is invoked at
// most once, and only when the entry is vacant.
func (e *Entry[K, V]) OrInsertWith(f func() V) *V {
	e.check()
	if e.idx >= 0 {
		return &e.slot().Value
	}
	return e.insertVacant(f())
}

// Occupied narrows the entry to its occupied form. The second return
// is false when the entry is vacant.
func (e *Entry[K, V]) Occupied() (*OccupiedEntry[K, V], bool) {
	if e.idx < 0 {
		return nil, false
	}
	return &OccupiedEntry[K, V]{entry: *e}, true
}

// Vacant narrows the entry to its vacant form. The second return is
// false when the entry is occupied.
func (e *Entry[K, V]) Vacant() (*VacantEntry[K, V], bool) {
	if e.idx >= 0 {
		return nil, false
	}
	return &VacantEntry[K, V]{entry: *e}, true
}

// OccupiedEntry is a view into an entry whose key is present.
type OccupiedEntry[K comparable, V any] struct {
	entry Entry[K, V]
}

// Key returns the key stored in the map.
func (e *OccupiedEntry[K, V]) Key() K {
	e.entry.check()
	return e.entry.slot().Key
}

// Get returns a copy of the stored value.
func (e *OccupiedEntry[K, V]) Get() V {
	e.entry.check()
	return e.entry.slot().Value
}

// GetPtr returns a pointer to the stored value for in-place updates.
// The pointer stays valid until the next structural mutation.
func (e *OccupiedEntry[K, V]) GetPtr() *V {
	e.entry.check()
	return &e.entry.slot().Value
}

// Insert replaces the stored value and returns the old one. The stored
// key is untouched.
func (e *OccupiedEntry[K, V]) Insert(value V) V {
	e.entry.check()
	p := e.entry.slot()
	old := p.Value
	p.Value = value
	return old
}

// Remove takes the value out of the map and returns it, consuming the
// entry.
func (e *OccupiedEntry[K, V]) Remove() V {
	_, v := e.RemoveEntry()
	return v
}

// RemoveEntry takes the stored key and value out of the map, consuming
// the entry.
func (e *OccupiedEntry[K, V]) RemoveEntry() (K, V) {
	e.entry.check()
	m := e.entry.m
	m.gen++
	var p pairOf[K, V]
	switch m.state {
	case stateVec:
		p = m.vec.swapRemove(e.entry.idx)
	case stateMap:
		p = m.tbl.deleteAt(e.entry.idx)
	default:
		panic(errInvalidState)
	}
	return p.Key, p.Value
}

// ReplaceEntry replaces both the stored value and the stored key's
// identity with the entry's own key, returning the previous pair. With
// plain value keys the key part is indistinguishable from Insert; it
// matters for keys that compare equal while being distinct handles.
func (e *OccupiedEntry[K, V]) ReplaceEntry(value V) (K, V) {
	e.entry.check()
	p := e.entry.slot()
	oldK, oldV := p.Key, p.Value
	p.Key = e.entry.key
	p.Value = value
	return oldK, oldV
}

// ReplaceKey replaces the stored key with the entry's own key, keeping
// the value, and returns the previous stored key.
func (e *OccupiedEntry[K, V]) ReplaceKey() K {
	e.entry.check()
	p := e.entry.slot()
	old := p.Key
	p.Key = e.entry.key
	return old
}

// VacantEntry is a view into an entry whose key is absent.
type VacantEntry[K comparable, V any] struct {
	entry Entry[K, V]
}

// Key returns the key that would be used for an insertion.
func (e *VacantEntry[K, V]) Key() K {
	e.entry.check()
	return e.entry.key
}

// IntoKey hands the entry's key back to the caller.
func (e *VacantEntry[K, V]) IntoKey() K {
	e.entry.check()
	return e.entry.key
}

// Insert installs value under the entry's key and returns a pointer to
// the stored value, consuming the entry.
func (e *VacantEntry[K, V]) Insert(value V) *V {
	e.entry.check()
	return e.entry.insertVacant(value)
}
