package halfmap

// The raw entry API is the lowest level of control over a Map: lookups
// are driven by an explicit hash plus an equality predicate, so no
// owned key is needed until the moment a vacant slot is filled. That
// makes it suitable for hash memoization and for deferring expensive
// key construction until it is known to be required.
//
// The hash handed in must be consistent with what the map's hasher
// (see Map.HashKey) produces for the key that ends up stored; the map
// recomputes hashes from keys when its table is rebuilt. This is a
// documented contract, not a runtime check: an inconsistent hash never
// corrupts memory, it just makes lookups miss in seemingly random
// ways. On the linear backend hashes are ignored entirely and the
// predicate alone drives the scan.

// RawEntryBuilder performs read-only raw lookups. Obtained from
// Map.RawEntry.
type RawEntryBuilder[K comparable, V any] struct {
	m *Map[K, V]
}

// RawEntry creates a raw immutable entry builder for the map.
func (m *Map[K, V]) RawEntry() RawEntryBuilder[K, V] {
	return RawEntryBuilder[K, V]{m: m}
}

// FromKey searches by key, hashing it if the hash backend is active.
func (b RawEntryBuilder[K, V]) FromKey(key K) (K, V, bool) {
	m := b.m
	if m.state == stateVec {
		return b.fromVec(m.vec.find(&key))
	}
	m.ensureHasher()
	return b.FromKeyHashed(m.hashOf(&key), key)
}

// FromKeyHashed searches by key with a precomputed hash.
func (b RawEntryBuilder[K, V]) FromKeyHashed(hash uintptr, key K) (K, V, bool) {
	return b.FromHash(hash, func(k K) bool { return k == key })
}

// FromHash searches by hash and equality predicate alone.
func (b RawEntryBuilder[K, V]) FromHash(hash uintptr, eq func(key K) bool) (K, V, bool) {
	m := b.m
	switch m.state {
	case stateVec:
		return b.fromVec(m.vec.findFunc(func(k *K) bool { return eq(*k) }))
	case stateMap:
		i := m.tbl.find(hash, func(k *K) bool { return eq(*k) })
		if i < 0 {
			var k K
			var v V
			return k, v, false
		}
		p := &m.tbl.slots[i]
		return p.Key, p.Value, true
	default:
		panic(errInvalidState)
	}
}

func (b RawEntryBuilder[K, V]) fromVec(i int) (K, V, bool) {
	if i < 0 {
		var k K
		var v V
		return k, v, false
	}
	p := &b.m.vec.pairs[i]
	return p.Key, p.Value, true
}

// RawEntryBuilderMut performs raw lookups that produce mutable entry
// handles. Obtained from Map.RawEntryMut.
type RawEntryBuilderMut[K comparable, V any] struct {
	m *Map[K, V]
}

// RawEntryMut creates a raw entry builder for the map.
//
// Because raw entries bypass the map's own hashing on lookup, it is
// much easier to put the map into an inconsistent state which, while
// memory-safe, will cause it to produce seemingly random results.
// Prefer Entry when the owned key is already at hand.
func (m *Map[K, V]) RawEntryMut() RawEntryBuilderMut[K, V] {
	return RawEntryBuilderMut[K, V]{m: m}
}

// FromKey searches by key, hashing it if the hash backend is active.
func (b RawEntryBuilderMut[K, V]) FromKey(key K) *RawEntry[K, V] {
	m := b.m
	if m.state == stateVec {
		return &RawEntry[K, V]{
			m: m, gen: m.gen,
			idx: m.vec.find(&key),
		}
	}
	m.ensureHasher()
	return b.FromKeyHashed(m.hashOf(&key), key)
}

// FromKeyHashed searches by key with a precomputed hash.
func (b RawEntryBuilderMut[K, V]) FromKeyHashed(hash uintptr, key K) *RawEntry[K, V] {
	return b.FromHash(hash, func(k K) bool { return k == key })
}

// FromHash searches by hash and equality predicate alone. The returned
// entry remembers the hash; a later vacant Insert stores under it
// without re-hashing.
func (b RawEntryBuilderMut[K, V]) FromHash(hash uintptr, eq func(key K) bool) *RawEntry[K, V] {
	m := b.m
	e := &RawEntry[K, V]{m: m, gen: m.gen, hash: hash, idx: -1}
	switch m.state {
	case stateVec:
		e.idx = m.vec.findFunc(func(k *K) bool { return eq(*k) })
	case stateMap:
		e.idx = m.tbl.find(hash, func(k *K) bool { return eq(*k) })
	default:
		panic(errInvalidState)
	}
	return e
}

// RawEntry is the occupied-or-vacant result of a mutable raw lookup.
// Handles are generation-checked the same way Entry handles are.
type RawEntry[K comparable, V any] struct {
	m    *Map[K, V]
	gen  uint64
	hash uintptr
	idx  int // backend slot of the pair, -1 when vacant
}

func (e *RawEntry[K, V]) check() {
	if e.gen != e.m.gen {
		panic(errStaleEntry)
	}
}

func (e *RawEntry[K, V]) slot() *pairOf[K, V] {
	switch e.m.state {
	case stateVec:
		return &e.m.vec.pairs[e.idx]
	case stateMap:
		return &e.m.tbl.slots[e.idx]
	default:
		panic(errInvalidState)
	}
}

// Loaded reports whether the lookup found a stored pair.
func (e *RawEntry[K, V]) Loaded() bool { return e.idx >= 0 }

// AndModify applies f to the stored key and value in place when the
// entry is occupied. Changing the key through f in a way that alters
// its hash or equality is the documented-misuse case described above.
func (e *RawEntry[K, V]) AndModify(f func(key *K, value *V)) *RawEntry[K, V] {
	e.check()
	if e.idx >= 0 {
		p := e.slot()
		f(&p.Key, &p.Value)
	}
	return e
}

// OrInsert returns pointers to the stored key and value, inserting the
// given pair under the remembered hash when the entry is vacant.
func (e *RawEntry[K, V]) OrInsert(key K, value V) (*K, *V) {
	e.check()
	if e.idx >= 0 {
		p := e.slot()
		return &p.Key, &p.Value
	}
	v, ok := e.Vacant()
	if !ok {
		panic(errInvalidState)
	}
	return v.Insert(key, value)
}

// Occupied narrows the raw entry to its occupied form.
func (e *RawEntry[K, V]) Occupied() (*RawOccupiedEntry[K, V], bool) {
	if e.idx < 0 {
		return nil, false
	}
	return &RawOccupiedEntry[K, V]{entry: *e}, true
}

// Vacant narrows the raw entry to its vacant form.
func (e *RawEntry[K, V]) Vacant() (*RawVacantEntry[K, V], bool) {
	if e.idx >= 0 {
		return nil, false
	}
	return &RawVacantEntry[K, V]{entry: *e}, true
}

// RawOccupiedEntry is a raw view of a stored pair.
type RawOccupiedEntry[K comparable, V any] struct {
	entry RawEntry[K, V]
}

// Key returns a copy of the stored key.
func (e *RawOccupiedEntry[K, V]) Key() K {
	e.entry.check()
	return e.entry.slot().Key
}

// KeyPtr returns a pointer to the stored key. Mutating it so that its
// hash or equality changes while it remains stored is documented
// misuse: memory-safe, logically corrupting.
func (e *RawOccupiedEntry[K, V]) KeyPtr() *K {
	e.entry.check()
	return &e.entry.slot().Key
}

// Get returns a copy of the stored value.
func (e *RawOccupiedEntry[K, V]) Get() V {
	e.entry.check()
	return e.entry.slot().Value
}

// GetPtr returns a pointer to the stored value.
func (e *RawOccupiedEntry[K, V]) GetPtr() *V {
	e.entry.check()
	return &e.entry.slot().Value
}

// Pair returns copies of the stored key and value.
func (e *RawOccupiedEntry[K, V]) Pair() (K, V) {
	e.entry.check()
	p := e.entry.slot()
	return p.Key, p.Value
}

// Insert replaces the stored value and returns the old one.
func (e *RawOccupiedEntry[K, V]) Insert(value V) V {
	e.entry.check()
	p := e.entry.slot()
	old := p.Value
	p.Value = value
	return old
}

// InsertKey replaces the stored key and returns the old one. The new
// key must hash and compare like the old one.
func (e *RawOccupiedEntry[K, V]) InsertKey(key K) K {
	e.entry.check()
	p := e.entry.slot()
	old := p.Key
	p.Key = key
	return old
}

// Remove takes the value out of the map, consuming the entry.
func (e *RawOccupiedEntry[K, V]) Remove() V {
	_, v := e.RemoveEntry()
	return v
}

// RemoveEntry takes the stored pair out of the map, consuming the
// entry.
func (e *RawOccupiedEntry[K, V]) RemoveEntry() (K, V) {
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

// RawVacantEntry is a raw view of an absent key, holding only the
// lookup's hash until an owned key is supplied.
type RawVacantEntry[K comparable, V any] struct {
	entry RawEntry[K, V]
}

// Insert stores the pair under the hash captured at lookup time and
// returns pointers to the stored key and value, consuming the entry.
func (e *RawVacantEntry[K, V]) Insert(key K, value V) (*K, *V) {
	return e.InsertHashed(e.entry.hash, key, value)
}

// InsertHashed is Insert with an explicitly supplied hash, stored as
// given without re-hashing the key.
func (e *RawVacantEntry[K, V]) InsertHashed(hash uintptr, key K, value V) (*K, *V) {
	e.entry.check()
	m := e.entry.m
	m.gen++
	switch m.state {
	case stateVec:
		p := m.vec.insertUnchecked(key, value)
		return &p.Key, &p.Value
	case stateMap:
		i := m.tbl.put(hash, key, value)
		p := &m.tbl.slots[i]
		return &p.Key, &p.Value
	default:
		panic(errInvalidState)
	}
}
