package halfmap

import (
	"unsafe"

	"github.com/llxisdsh/pb"
)

// VecLimit is the maximum number of entries before the backing
// representation is switched from a vector to a hash table.
//
// Below this limit a linear scan over a contiguous slice beats hashing:
// the whole backend fits in a few cache lines and no hash needs to be
// computed. Past it, the open-addressing table wins.
const VecLimit = 32

// HashFunc hashes the value behind ptr with the given seed.
// It is pb's hash function shape, so hashers obtained from pb
// (including Go's built-in map hasher via pb.GetBuiltInHasher)
// plug in directly.
type HashFunc = pb.HashFunc

// Panic messages for caller misuse. Expected absence is always reported
// through (V, bool) returns, never through these.
const (
	errNoEntry      = "halfmap: no entry found for key"
	errStaleEntry   = "halfmap: entry used after map mutation"
	errInvalidState = "halfmap: map observed in moving state"
)

// noescape hides a pointer from escape analysis so that a key passed
// to a hash function by address does not escape to the heap.
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	//nolint:staticcheck
	return unsafe.Pointer(x ^ 0)
}

//go:nosplit
func noEscape[T any](p *T) *T {
	return (*T)(noescape(unsafe.Pointer(p)))
}
