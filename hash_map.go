package halfmap

// tableOf is the hash backend: an open-addressing table with one
// control byte per slot, probed linearly. The control byte holds the
// low 7 bits of the key's hash while the slot is full, so most probe
// steps are decided without touching the slot itself.
//
// The table never hashes on its own initiative; every operation takes
// an explicit hash, and only a rehash (growth, shrink, tombstone
// cleanup) recomputes hashes through the supplied hash function. That
// is what makes the raw entry API's insert-by-hash possible: the
// caller's hash is used as given, under the documented contract that
// it matches what the hash function would produce for the key.
type tableOf[K comparable, V any] struct {
	ctrl  []uint8
	slots []pairOf[K, V]
	hash  func(key *K) uintptr
	mask  uintptr
	live  int
	tombs int
}

const (
	ctrlEmpty   uint8 = 0b1000_0000
	ctrlDeleted uint8 = 0b1111_1110

	minTableLen = 8
)

// isFull reports whether a control byte marks a stored pair. Full
// bytes carry 7 hash bits and have the high bit clear; ctrlEmpty and
// ctrlDeleted both have it set.
func isFull(c uint8) bool { return c&0x80 == 0 }

func h1(h, mask uintptr) uintptr { return (h >> 7) & mask }

func h2(h uintptr) uint8 { return uint8(h) & 0x7f }

// maxFillOf is the 7/8 load bound for a table of n slots. Keeping at
// least n/8 empty slots guarantees every probe terminates.
func maxFillOf(n int) int { return n - n/8 }

func tableLenFor(n int) int {
	l := minTableLen
	for maxFillOf(l) < n {
		l <<= 1
	}
	return l
}

func newTableOf[K comparable, V any](
	sizeHint int,
	hash func(key *K) uintptr,
) *tableOf[K, V] {
	l := tableLenFor(max(sizeHint, 0))
	t := &tableOf[K, V]{
		ctrl:  make([]uint8, l),
		slots: make([]pairOf[K, V], l),
		hash:  hash,
		mask:  uintptr(l - 1),
	}
	for i := range t.ctrl {
		t.ctrl[i] = ctrlEmpty
	}
	return t
}

func (t *tableOf[K, V]) maxFill() int { return maxFillOf(len(t.ctrl)) }

// find returns the slot index of the pair whose key matches eq under
// the given hash, or -1. eq is only invoked on slots whose control
// byte already matches the low hash bits.
func (t *tableOf[K, V]) find(h uintptr, eq func(key *K) bool) int {
	i := h1(h, t.mask)
	c2 := h2(h)
	for {
		c := t.ctrl[i]
		if c == c2 && eq(&t.slots[i].Key) {
			return int(i)
		}
		if c == ctrlEmpty {
			return -1
		}
		i = (i + 1) & t.mask
	}
}

// put stores a pair the table does not already contain, growing or
// cleaning up tombstones first if the load bound would be crossed.
// Returns the slot index.
func (t *tableOf[K, V]) put(h uintptr, key K, value V) int {
	if t.live+t.tombs+1 > t.maxFill() {
		t.grow(1)
	}
	return t.uncheckedPut(h, pairOf[K, V]{Key: key, Value: value})
}

// uncheckedPut is put without the load check. The caller guarantees a
// free slot exists and the key is absent.
func (t *tableOf[K, V]) uncheckedPut(h uintptr, p pairOf[K, V]) int {
	i := h1(h, t.mask)
	for {
		c := t.ctrl[i]
		if c == ctrlEmpty || c == ctrlDeleted {
			if c == ctrlDeleted {
				t.tombs--
			}
			t.ctrl[i] = h2(h)
			t.slots[i] = p
			t.live++
			return int(i)
		}
		i = (i + 1) & t.mask
	}
}

// insert overwrites in place when the key is present (the stored key
// is kept), and stores a new pair otherwise.
func (t *tableOf[K, V]) insert(h uintptr, key K, value V) (prev V, loaded bool) {
	if i := t.find(h, func(k *K) bool { return *k == key }); i >= 0 {
		prev = t.slots[i].Value
		t.slots[i].Value = value
		return prev, true
	}
	t.put(h, key, value)
	return prev, false
}

// deleteAt removes the pair at slot i and returns it. The slot becomes
// a tombstone unless the next probe position is empty, in which case
// no probe chain can pass through i and the slot is freed outright.
func (t *tableOf[K, V]) deleteAt(i int) pairOf[K, V] {
	p := t.slots[i]
	t.slots[i] = pairOf[K, V]{}
	t.live--
	if t.ctrl[(uintptr(i)+1)&t.mask] == ctrlEmpty {
		t.ctrl[i] = ctrlEmpty
	} else {
		t.ctrl[i] = ctrlDeleted
		t.tombs++
	}
	return p
}

// grow rehashes into a table sized for live+extra entries. When the
// load pressure comes from tombstones rather than live entries, the
// new length equals the old one and the rehash just drops them.
func (t *tableOf[K, V]) grow(extra int) {
	need := t.live + extra
	newLen := len(t.ctrl)
	for maxFillOf(newLen) < need {
		newLen <<= 1
	}
	t.rehash(newLen)
}

func (t *tableOf[K, V]) rehash(newLen int) {
	oldCtrl, oldSlots := t.ctrl, t.slots
	t.ctrl = make([]uint8, newLen)
	t.slots = make([]pairOf[K, V], newLen)
	t.mask = uintptr(newLen - 1)
	t.live, t.tombs = 0, 0
	for i := range t.ctrl {
		t.ctrl[i] = ctrlEmpty
	}
	for i, c := range oldCtrl {
		if isFull(c) {
			p := &oldSlots[i]
			t.uncheckedPut(t.hash(&p.Key), *p)
		}
	}
}

func (t *tableOf[K, V]) reserve(additional int) {
	if t.live+additional > t.maxFill() {
		t.grow(additional)
	}
}

func (t *tableOf[K, V]) shrinkToFit() {
	if l := tableLenFor(t.live); l < len(t.ctrl) {
		t.rehash(l)
	}
}

// clear removes all pairs but keeps the allocation for reuse.
func (t *tableOf[K, V]) clear() {
	for i := range t.ctrl {
		t.ctrl[i] = ctrlEmpty
	}
	clear(t.slots)
	t.live, t.tombs = 0, 0
}

func (t *tableOf[K, V]) all(yield func(p *pairOf[K, V]) bool) {
	for i, c := range t.ctrl {
		if isFull(c) {
			if !yield(&t.slots[i]) {
				return
			}
		}
	}
}

func (t *tableOf[K, V]) len() int { return t.live }

func (t *tableOf[K, V]) capacity() int { return t.maxFill() }
