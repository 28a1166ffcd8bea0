package halfmap

import "testing"

// identity hashing makes slot placement predictable: h1 is the hash
// shifted right by 7, h2 its low 7 bits.
func idHash(k *int) uintptr { return uintptr(*k) }

func eqKey(key int) func(*int) bool {
	return func(k *int) bool { return *k == key }
}

func TestTable_PutFind(t *testing.T) {
	tbl := newTableOf[int, string](0, idHash)
	if len(tbl.ctrl) != minTableLen {
		t.Errorf("Expected min table length %d, got %d", minTableLen, len(tbl.ctrl))
	}
	tbl.put(idHash(ptr(1)), 1, "a")
	tbl.put(idHash(ptr(2)), 2, "b")
	if tbl.len() != 2 {
		t.Errorf("Expected 2 live entries, got %d", tbl.len())
	}
	i := tbl.find(idHash(ptr(1)), eqKey(1))
	if i < 0 || tbl.slots[i].Value != "a" {
		t.Errorf("Expected to find key 1 with value a, got slot %d", i)
	}
	if tbl.find(idHash(ptr(3)), eqKey(3)) >= 0 {
		t.Error("Expected miss for absent key")
	}
}

func TestTable_ProbeChain(t *testing.T) {
	// Keys below 128 share h1 = 0, so they form one linear chain
	// disambiguated by the control bytes and key equality.
	tbl := newTableOf[int, int](0, idHash)
	for k := 0; k < 6; k++ {
		tbl.put(idHash(&k), k, k*10)
	}
	for k := 0; k < 6; k++ {
		i := tbl.find(idHash(&k), eqKey(k))
		if i < 0 || tbl.slots[i].Value != k*10 {
			t.Errorf("Expected key %d found in the chain, got slot %d", k, i)
		}
	}
}

func TestTable_InsertOverwrites(t *testing.T) {
	tbl := newTableOf[int, int](0, idHash)
	if _, loaded := tbl.insert(idHash(ptr(1)), 1, 10); loaded {
		t.Error("Expected fresh insert")
	}
	prev, loaded := tbl.insert(idHash(ptr(1)), 1, 20)
	if !loaded || prev != 10 {
		t.Errorf("Expected (10, true), got (%d, %v)", prev, loaded)
	}
	if tbl.len() != 1 {
		t.Errorf("Expected 1 live entry, got %d", tbl.len())
	}
}

func TestTable_DeleteFreesWhenNextEmpty(t *testing.T) {
	// Hashes shifted left by 7 give h2 = 0 and h1 = key, placing keys
	// at their own index in an otherwise empty table.
	h := func(k int) uintptr { return uintptr(k) << 7 }
	tbl := newTableOf[int, int](0, idHash)
	for k := 0; k < 3; k++ {
		tbl.put(h(k), k, k)
	}
	// Slot 3 is empty, so deleting slot 2 frees it outright.
	tbl.deleteAt(2)
	if tbl.ctrl[2] != ctrlEmpty || tbl.tombs != 0 {
		t.Errorf("Expected slot freed, got ctrl %#x tombs %d", tbl.ctrl[2], tbl.tombs)
	}
	// Slot 1 is followed by a full slot, so it must become a tombstone.
	tbl.deleteAt(0)
	if tbl.ctrl[0] != ctrlDeleted || tbl.tombs != 1 {
		t.Errorf("Expected tombstone, got ctrl %#x tombs %d", tbl.ctrl[0], tbl.tombs)
	}
	if i := tbl.find(h(1), eqKey(1)); i != 1 {
		t.Errorf("Expected key 1 still reachable at slot 1, got %d", i)
	}
}

func TestTable_GrowPreservesEntries(t *testing.T) {
	tbl := newTableOf[int, int](0, idHash)
	for k := 0; k < 200; k++ {
		tbl.put(idHash(&k), k, k)
	}
	if tbl.len() != 200 {
		t.Fatalf("Expected 200 live entries, got %d", tbl.len())
	}
	if maxFillOf(len(tbl.ctrl)) < 200 {
		t.Errorf("Expected table grown past the load bound, got length %d", len(tbl.ctrl))
	}
	for k := 0; k < 200; k++ {
		i := tbl.find(idHash(&k), eqKey(k))
		if i < 0 || tbl.slots[i].Value != k {
			t.Errorf("Expected key %d to survive growth", k)
		}
	}
}

func TestTable_TombstonePressureRehashesInPlace(t *testing.T) {
	// Deleting every even key while its odd neighbor stays full turns
	// each even slot into a tombstone. Once live+tombstones cross the
	// load bound, the next put must rehash at the same length and drop
	// them instead of growing.
	h := func(k int) uintptr { return uintptr(k) << 7 }
	tbl := newTableOf[int, int](0, func(k *int) uintptr { return h(*k) })
	for k := 0; k < 6; k += 2 {
		tbl.put(h(k), k, k)
		tbl.put(h(k+1), k+1, k+1)
		tbl.deleteAt(tbl.find(h(k), eqKey(k)))
	}
	if tbl.len() != 3 || tbl.tombs != 3 {
		t.Fatalf("Expected 3 live and 3 tombstones, got %d and %d", tbl.len(), tbl.tombs)
	}
	tbl.put(h(6), 6, 6)
	tbl.put(h(7), 7, 7)
	if len(tbl.ctrl) != minTableLen {
		t.Errorf("Expected in-place rehash at length %d, got %d", minTableLen, len(tbl.ctrl))
	}
	if tbl.tombs != 0 {
		t.Errorf("Expected tombstones dropped, got %d", tbl.tombs)
	}
	for _, k := range []int{1, 3, 5, 6, 7} {
		if tbl.find(h(k), eqKey(k)) < 0 {
			t.Errorf("Expected key %d to survive the rehash", k)
		}
	}
}

func TestTable_ClearKeepsLength(t *testing.T) {
	tbl := newTableOf[int, int](100, idHash)
	before := len(tbl.ctrl)
	for k := 0; k < 100; k++ {
		tbl.put(idHash(&k), k, k)
	}
	tbl.clear()
	if tbl.len() != 0 || tbl.tombs != 0 {
		t.Errorf("Expected empty table, got live %d tombs %d", tbl.len(), tbl.tombs)
	}
	if len(tbl.ctrl) != before {
		t.Errorf("Expected length %d kept, got %d", before, len(tbl.ctrl))
	}
	k := 5
	tbl.put(idHash(&k), k, 50)
	if i := tbl.find(idHash(&k), eqKey(k)); i < 0 {
		t.Error("Expected table usable after clear")
	}
}

func TestTable_ShrinkToFit(t *testing.T) {
	tbl := newTableOf[int, int](0, idHash)
	for k := 0; k < 100; k++ {
		tbl.put(idHash(&k), k, k)
	}
	for k := 10; k < 100; k++ {
		tbl.deleteAt(tbl.find(idHash(&k), eqKey(k)))
	}
	before := len(tbl.ctrl)
	tbl.shrinkToFit()
	if len(tbl.ctrl) >= before {
		t.Errorf("Expected length below %d, got %d", before, len(tbl.ctrl))
	}
	for k := 0; k < 10; k++ {
		if tbl.find(idHash(&k), eqKey(k)) < 0 {
			t.Errorf("Expected key %d to survive the shrink", k)
		}
	}
}

func ptr(v int) *int { return &v }
