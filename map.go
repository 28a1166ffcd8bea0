package halfmap

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"strings"
	"unsafe"

	"github.com/llxisdsh/pb"
)

// Map is a key/value container that adapts its backing representation
// to its size: up to VecLimit entries live in a flat vector searched
// linearly, and the first insert beyond that migrates everything into
// an open-addressing hash table. Small maps get cache locality and
// zero hashing; large maps get O(1) lookups.
//
// Core behavior:
//   - The switch is one-way. Once on the hash backend a Map never
//     reverts, even after all entries are removed.
//   - Callers cannot observe which backend is active except through
//     IsVec/IsMap; every operation behaves identically on both.
//   - Zero-value ready: var m Map[string, int] is an empty vector-backed
//     map. Hashing initializes lazily, so purely small maps never hash.
//
// Usage recommendations:
//   - Pre-size across the limit with New[K, V](WithCapacity(n)) to
//     start on the hash backend and skip the migration.
//   - Bulk-build with New[K, V](WithVecCapacity(n)) plus
//     InsertUnchecked when keys are known to be distinct.
//
// Notes:
//   - Map is not synchronized. Interleaving a mutation with any other
//     access requires external locking.
type Map[K comparable, V any] struct {
	vec     vecOf[K, V]
	tbl     *tableOf[K, V]
	state   mapState
	gen     uint64
	keyHash HashFunc
	seed    uintptr
}

// mapState tags the active backend. stateMoving exists only for the
// instant during migration when the vector has been taken apart and
// the table is not yet installed; no public call ever returns while
// the map is in it, and any operation observing it panics.
type mapState uint8

const (
	stateVec mapState = iota
	stateMap
	stateMoving
)

// New creates a new Map instance. Direct declaration of a zero value
// is also supported.
//
// Parameters:
//   - options: configuration options (WithCapacity, WithVecCapacity,
//     WithKeyHasher, etc.)
func New[K comparable, V any](options ...func(*MapConfig)) *Map[K, V] {
	m := &Map[K, V]{}
	var cfg MapConfig
	for _, o := range options {
		o(noEscape(&cfg))
	}
	m.init(&cfg)
	return m
}

func (m *Map[K, V]) init(cfg *MapConfig) {
	if cfg.keyHash != nil {
		m.keyHash = cfg.keyHash
		m.seed = uintptr(rand.Uint64())
	}
	if cfg.capacity > VecLimit && !cfg.forceVec {
		m.ensureHasher()
		m.tbl = newTableOf[K, V](cfg.capacity, m.hashOf)
		m.state = stateMap
		return
	}
	if cfg.capacity > 0 {
		m.vec.reserve(cfg.capacity)
	}
}

// ensureHasher installs the default hasher on first need. The linear
// backend never calls it, so a map that stays small never hashes.
func (m *Map[K, V]) ensureHasher() {
	if m.keyHash == nil {
		m.keyHash = pb.GetBuiltInHasher[K]()
		m.seed = uintptr(rand.Uint64())
	}
}

func (m *Map[K, V]) hashOf(key *K) uintptr {
	return m.keyHash(noescape(unsafe.Pointer(key)), m.seed)
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	switch m.state {
	case stateVec:
		return m.vec.len()
	case stateMap:
		return m.tbl.len()
	default:
		panic(errInvalidState)
	}
}

// IsEmpty reports whether the map contains no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.Len() == 0 }

// Capacity returns the number of entries the map can hold without
// reallocating.
func (m *Map[K, V]) Capacity() int {
	switch m.state {
	case stateVec:
		return m.vec.capacity()
	case stateMap:
		return m.tbl.capacity()
	default:
		panic(errInvalidState)
	}
}

// IsVec reports whether the linear backend is active.
func (m *Map[K, V]) IsVec() bool { return m.state == stateVec }

// IsMap reports whether the hash backend is active.
func (m *Map[K, V]) IsMap() bool { return m.state == stateMap }

// Hasher returns the map's hash function, initializing the default one
// if none was configured yet.
func (m *Map[K, V]) Hasher() HashFunc {
	m.ensureHasher()
	return m.keyHash
}

// HashKey returns the map's hash for key, as consumed by the raw entry
// API. Useful for hash memoization across repeated raw lookups.
func (m *Map[K, V]) HashKey(key K) uintptr {
	m.ensureHasher()
	return m.hashOf(&key)
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if p := m.getPtr(&key); p != nil {
		return *p, true
	}
	return value, false
}

// GetPtr returns a pointer to the value stored for key, or nil. The
// pointer stays valid until the next structural mutation of the map.
func (m *Map[K, V]) GetPtr(key K) *V {
	return m.getPtr(&key)
}

func (m *Map[K, V]) getPtr(key *K) *V {
	switch m.state {
	case stateVec:
		return m.vec.get(key)
	case stateMap:
		i := m.tbl.find(m.hashOf(key), func(k *K) bool { return *k == *key })
		if i < 0 {
			return nil
		}
		return &m.tbl.slots[i].Value
	default:
		panic(errInvalidState)
	}
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.getPtr(&key) != nil
}

// MustGet returns the value stored for key and panics when the key is
// absent. It is the indexing operation; use Get when absence is an
// expected outcome.
func (m *Map[K, V]) MustGet(key K) V {
	p := m.getPtr(&key)
	if p == nil {
		panic(errNoEntry)
	}
	return *p
}

// Insert stores value under key.
//
// Returns the previous value and true when key was already present; in
// that case only the value changes, the originally stored key keeps
// its identity. Inserting into a full vector backend first migrates
// all entries to the hash backend, a one-time O(n) step.
func (m *Map[K, V]) Insert(key K, value V) (prev V, loaded bool) {
	m.gen++
	switch m.state {
	case stateVec:
		if m.vec.len() >= VecLimit {
			m.migrate(m.vec.len() + 1)
			return m.tbl.insert(m.hashOf(&key), key, value)
		}
		return m.vec.insert(key, value)
	case stateMap:
		return m.tbl.insert(m.hashOf(&key), key, value)
	default:
		panic(errInvalidState)
	}
}

// InsertUnchecked stores value under key, skipping the duplicate-key
// scan on the vector backend. It is the fast path for bulk builds
// where keys are known to be distinct ahead of time; inserting a
// duplicate through it corrupts lookups. On the hash backend it falls
// back to a checked insert.
func (m *Map[K, V]) InsertUnchecked(key K, value V) {
	m.gen++
	switch m.state {
	case stateVec:
		m.vec.insertUnchecked(key, value)
	case stateMap:
		m.tbl.insert(m.hashOf(&key), key, value)
	default:
		panic(errInvalidState)
	}
}

// migrate moves every pair from the vector to a freshly built hash
// table. The map passes through stateMoving so that it never owns two
// live backends at once; both ends of this function are unconditional
// and no code path in between touches the map's public surface.
func (m *Map[K, V]) migrate(sizeHint int) {
	m.ensureHasher()
	m.state = stateMoving
	pairs := m.vec.take()
	t := newTableOf[K, V](sizeHint, m.hashOf)
	for i := range pairs {
		p := &pairs[i]
		// Keys are unique in the vector, so no overwrite checks needed.
		t.uncheckedPut(m.hashOf(&p.Key), *p)
	}
	m.tbl = t
	m.state = stateMap
}

// Remove removes key from the map, returning the value it held.
// The backend never changes on removal.
func (m *Map[K, V]) Remove(key K) (value V, loaded bool) {
	m.gen++
	switch m.state {
	case stateVec:
		return m.vec.remove(&key)
	case stateMap:
		i := m.tbl.find(m.hashOf(&key), func(k *K) bool { return *k == key })
		if i < 0 {
			return value, false
		}
		return m.tbl.deleteAt(i).Value, true
	default:
		panic(errInvalidState)
	}
}

// Retain removes every pair for which keep returns false. The value
// pointer may be used to update retained values in place.
func (m *Map[K, V]) Retain(keep func(key K, value *V) bool) {
	m.gen++
	switch m.state {
	case stateVec:
		m.vec.retain(keep)
	case stateMap:
		for i, c := range m.tbl.ctrl {
			if !isFull(c) {
				continue
			}
			p := &m.tbl.slots[i]
			if !keep(p.Key, &p.Value) {
				m.tbl.deleteAt(i)
			}
		}
	default:
		panic(errInvalidState)
	}
}

// Clear removes all entries, keeping the active backend and its
// allocated capacity for reuse.
func (m *Map[K, V]) Clear() {
	m.gen++
	switch m.state {
	case stateVec:
		m.vec.clear()
	case stateMap:
		m.tbl.clear()
	default:
		panic(errInvalidState)
	}
}

// Reserve grows the active backend to hold additional more entries
// without reallocating. It never changes the backend; reserving past
// VecLimit on a vector-backed map only grows the vector.
func (m *Map[K, V]) Reserve(additional int) {
	m.gen++
	switch m.state {
	case stateVec:
		m.vec.reserve(additional)
	case stateMap:
		m.tbl.reserve(additional)
	default:
		panic(errInvalidState)
	}
}

// ShrinkToFit drops as much unused capacity as the active backend's
// layout rules allow.
func (m *Map[K, V]) ShrinkToFit() {
	m.gen++
	switch m.state {
	case stateVec:
		m.vec.shrinkToFit()
	case stateMap:
		m.tbl.shrinkToFit()
	default:
		panic(errInvalidState)
	}
}

// ToMap collects all entries into a map[K]V.
func (m *Map[K, V]) ToMap() map[K]V {
	a := make(map[K]V, m.Len())
	m.Range(func(key K, value V) bool {
		a[key] = value
		return true
	})
	return a
}

// ToMapWithLimit collects up to limit entries into a map[K]V,
// limit < 0 is no limit.
func (m *Map[K, V]) ToMapWithLimit(limit int) map[K]V {
	if limit == 0 {
		return map[K]V{}
	}
	if limit < 0 {
		limit = math.MaxInt
	}
	a := make(map[K]V, min(m.Len(), limit))
	m.Range(func(key K, value V) bool {
		a[key] = value
		limit--
		return limit > 0
	})
	return a
}

// FromMap inserts every pair of src, overwriting values for keys that
// are already present.
func (m *Map[K, V]) FromMap(src map[K]V) {
	if len(src) > 0 {
		m.Reserve(len(src))
	}
	for k, v := range src {
		m.Insert(k, v)
	}
}

// Clone returns a deep copy of the map, on the same backend and with
// the same hasher and seed, so hashes stay comparable between the two.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		state:   m.state,
		keyHash: m.keyHash,
		seed:    m.seed,
	}
	switch m.state {
	case stateVec:
		c.vec.pairs = append([]pairOf[K, V](nil), m.vec.pairs...)
	case stateMap:
		t := *m.tbl
		t.ctrl = append([]uint8(nil), m.tbl.ctrl...)
		t.slots = append([]pairOf[K, V](nil), m.tbl.slots...)
		t.hash = c.hashOf
		c.tbl = &t
	default:
		panic(errInvalidState)
	}
	return c
}

// String implements fmt.Stringer.
func (m *Map[K, V]) String() string {
	const limit = 1024
	return strings.Replace(
		fmt.Sprint(m.ToMapWithLimit(limit)), "map[", "Map[", 1)
}

// Equal reports whether a and b hold the same set of key/value pairs.
// The result does not depend on which backend either map is on or on
// their hashers.
func Equal[K, V comparable](a, b *Map[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is Equal with a caller-supplied value comparison.
func EqualFunc[K comparable, V1, V2 any](
	a *Map[K, V1],
	b *Map[K, V2],
	eq func(V1, V2) bool,
) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Range(func(key K, value V1) bool {
		other, ok := b.Get(key)
		equal = ok && eq(value, other)
		return equal
	})
	return equal
}

// Collect builds a Map from any sequence of key/value pairs, such as
// another Map's All or Drain. Later pairs overwrite earlier ones with
// the same key.
func Collect[K comparable, V any](
	seq iter.Seq2[K, V],
	options ...func(*MapConfig),
) *Map[K, V] {
	m := New[K, V](options...)
	for k, v := range seq {
		m.Insert(k, v)
	}
	return m
}
