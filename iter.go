package halfmap

import "iter"

// Iteration order is the backend's natural order: insertion order
// while the linear backend is active (minus swap-remove shuffling),
// unspecified once the hash backend takes over. All sequences are
// lazy, single-pass, and must not be interleaved with mutations of the
// map other than the ones they perform themselves.

// Range calls yield for every pair until yield returns false.
func (m *Map[K, V]) Range(yield func(key K, value V) bool) {
	switch m.state {
	case stateVec:
		for i := range m.vec.pairs {
			p := &m.vec.pairs[i]
			if !yield(p.Key, p.Value) {
				return
			}
		}
	case stateMap:
		m.tbl.all(func(p *pairOf[K, V]) bool {
			return yield(p.Key, p.Value)
		})
	default:
		panic(errInvalidState)
	}
}

// All returns a sequence of all key/value pairs.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return m.Range
}

// AllMut returns a sequence of keys and value pointers, for updating
// values in place while iterating.
func (m *Map[K, V]) AllMut() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		switch m.state {
		case stateVec:
			for i := range m.vec.pairs {
				p := &m.vec.pairs[i]
				if !yield(p.Key, &p.Value) {
					return
				}
			}
		case stateMap:
			m.tbl.all(func(p *pairOf[K, V]) bool {
				return yield(p.Key, &p.Value)
			})
		default:
			panic(errInvalidState)
		}
	}
}

// Keys returns a sequence of all keys.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.Range(func(key K, _ V) bool {
			return yield(key)
		})
	}
}

// Values returns a sequence of all values.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.Range(func(_ K, value V) bool {
			return yield(value)
		})
	}
}

// ValuesMut returns a sequence of value pointers, for updating values
// in place while iterating.
func (m *Map[K, V]) ValuesMut() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for _, p := range m.AllMut() {
			if !yield(p) {
				return
			}
		}
	}
}

// Drain returns a sequence that removes every pair it produces. When
// the consumer stops early, the remaining pairs are removed as the
// loop exits: once a range over the sequence has run, the map is empty
// no matter how much of it was consumed. The backend and its allocated
// capacity are kept for reuse.
func (m *Map[K, V]) Drain() iter.Seq2[K, V] {
	m.gen++
	switch m.state {
	case stateVec:
		return m.drainVec
	case stateMap:
		return m.drainTable
	default:
		panic(errInvalidState)
	}
}

func (m *Map[K, V]) drainVec(yield func(K, V) bool) {
	defer m.vec.clear()
	for i := len(m.vec.pairs) - 1; i >= 0; i-- {
		p := m.vec.pairs[i]
		m.vec.pairs[i] = pairOf[K, V]{}
		m.vec.pairs = m.vec.pairs[:i]
		if !yield(p.Key, p.Value) {
			return
		}
	}
}

func (m *Map[K, V]) drainTable(yield func(K, V) bool) {
	t := m.tbl
	defer t.clear()
	for i, c := range t.ctrl {
		if !isFull(c) {
			continue
		}
		p := t.deleteAt(i)
		if !yield(p.Key, p.Value) {
			return
		}
	}
}
