package halfmap

import "slices"

// pairOf is a single key/value pair as stored by a Map.
type pairOf[K comparable, V any] struct {
	Key   K
	Value V
}

// vecOf is the linear backend: an ordered slice of unique pairs.
//
// Lookup is an equality scan, insert appends, remove swaps the last
// element in. No hashing happens here, which is the whole point: for
// at most VecLimit entries the scan is cheaper than computing a hash.
type vecOf[K comparable, V any] struct {
	pairs []pairOf[K, V]
}

// find returns the index of key, or -1.
func (v *vecOf[K, V]) find(key *K) int {
	for i := range v.pairs {
		if v.pairs[i].Key == *key {
			return i
		}
	}
	return -1
}

// findFunc returns the index of the first pair whose key satisfies eq,
// or -1. Used by the raw entry API, which searches by predicate.
func (v *vecOf[K, V]) findFunc(eq func(*K) bool) int {
	for i := range v.pairs {
		if eq(&v.pairs[i].Key) {
			return i
		}
	}
	return -1
}

func (v *vecOf[K, V]) get(key *K) *V {
	if i := v.find(key); i >= 0 {
		return &v.pairs[i].Value
	}
	return nil
}

// insert overwrites the value in place when key is already present,
// keeping the stored key, and appends otherwise.
func (v *vecOf[K, V]) insert(key K, value V) (prev V, loaded bool) {
	if i := v.find(&key); i >= 0 {
		prev = v.pairs[i].Value
		v.pairs[i].Value = value
		return prev, true
	}
	v.pairs = append(v.pairs, pairOf[K, V]{Key: key, Value: value})
	return prev, false
}

// insertUnchecked appends without the duplicate scan. The caller
// guarantees key is not present; a violated guarantee corrupts lookups.
func (v *vecOf[K, V]) insertUnchecked(key K, value V) *pairOf[K, V] {
	v.pairs = append(v.pairs, pairOf[K, V]{Key: key, Value: value})
	return &v.pairs[len(v.pairs)-1]
}

// swapRemove removes the pair at i by moving the last pair into its
// place. Order among the remaining pairs is not preserved.
func (v *vecOf[K, V]) swapRemove(i int) pairOf[K, V] {
	last := len(v.pairs) - 1
	p := v.pairs[i]
	v.pairs[i] = v.pairs[last]
	v.pairs[last] = pairOf[K, V]{}
	v.pairs = v.pairs[:last]
	return p
}

func (v *vecOf[K, V]) remove(key *K) (value V, loaded bool) {
	if i := v.find(key); i >= 0 {
		return v.swapRemove(i).Value, true
	}
	return value, false
}

func (v *vecOf[K, V]) retain(keep func(key K, value *V) bool) {
	kept := v.pairs[:0]
	for i := range v.pairs {
		p := &v.pairs[i]
		if keep(p.Key, &p.Value) {
			kept = append(kept, *p)
		}
	}
	clear(v.pairs[len(kept):])
	v.pairs = kept
}

// take hands the pair slice over to the caller and leaves the backend
// empty. Used once, during migration.
func (v *vecOf[K, V]) take() []pairOf[K, V] {
	pairs := v.pairs
	v.pairs = nil
	return pairs
}

// clear removes all pairs but keeps the allocation for reuse.
func (v *vecOf[K, V]) clear() {
	clear(v.pairs)
	v.pairs = v.pairs[:0]
}

func (v *vecOf[K, V]) reserve(additional int) {
	v.pairs = slices.Grow(v.pairs, additional)
}

func (v *vecOf[K, V]) shrinkToFit() {
	v.pairs = slices.Clip(v.pairs)
}

func (v *vecOf[K, V]) len() int { return len(v.pairs) }

func (v *vecOf[K, V]) capacity() int { return cap(v.pairs) }
