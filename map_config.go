package halfmap

import "unsafe"

// MapConfig defines configurable options for Map initialization.
type MapConfig struct {
	// keyHash specifies a custom hash function for keys.
	// If nil, Go's built-in hash function is used. The linear backend
	// never calls it; it only matters once the map backend is active
	// or the raw entry API is used.
	keyHash HashFunc

	// capacity is an estimate of the expected number of entries.
	// It selects the initial backend: at most VecLimit entries start
	// on the vector, anything larger starts on the hash table so the
	// map is never migrated right after construction.
	capacity int

	// forceVec pins the initial backend to the vector regardless of
	// the requested capacity. Used for bulk builds together with
	// InsertUnchecked when keys are known to be distinct.
	forceVec bool
}

// WithCapacity configures a new Map with capacity enough to hold cap
// entries without reallocating. If cap exceeds VecLimit the map starts
// on the hash backend immediately, avoiding a migration mid-fill.
// If cap is zero or negative, the value is ignored.
func WithCapacity(cap int) func(*MapConfig) {
	return func(c *MapConfig) {
		if cap > 0 {
			c.capacity = cap
		}
	}
}

// WithVecCapacity is WithCapacity with the difference that the map
// always starts on the vector backend, no matter how large cap is.
// This allows quicker generation when used in combination with
// InsertUnchecked.
func WithVecCapacity(cap int) func(*MapConfig) {
	return func(c *MapConfig) {
		if cap > 0 {
			c.capacity = cap
		}
		c.forceVec = true
	}
}

// WithKeyHasher sets a custom key hashing function for the map.
//
// Parameters:
//   - keyHash: hash function taking a key and a per-map seed.
//     Pass nil to keep the default built-in hasher.
//
// Notes:
//   - The linear backend does not hash; the function is first called
//     when the map backend becomes active or a raw entry is built.
//   - Hashes handed to the raw entry API must come from the same
//     function, or lookups silently miss.
func WithKeyHasher[K comparable](
	keyHash func(key K, seed uintptr) uintptr,
) func(*MapConfig) {
	return func(c *MapConfig) {
		if keyHash != nil {
			c.keyHash = func(ptr unsafe.Pointer, seed uintptr) uintptr {
				return keyHash(*(*K)(ptr), seed)
			}
		}
	}
}

// WithKeyHasherUnsafe sets a low-level key hashing function operating
// directly on the key's memory. This is the zero-indirection variant of
// WithKeyHasher; the pointer passed to hs is the address of a key of
// type K.
func WithKeyHasherUnsafe(hs HashFunc) func(*MapConfig) {
	return func(c *MapConfig) {
		if hs != nil {
			c.keyHash = hs
		}
	}
}
