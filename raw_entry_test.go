package halfmap

import "testing"

func TestRawEntry_FromKey(t *testing.T) {
	onBothBackends(t, 8, func(t *testing.T, m *Map[int, int]) {
		k, v, ok := m.RawEntry().FromKey(3)
		if !ok || k != 3 || v != 30 {
			t.Errorf("Expected (3, 30, true), got (%d, %d, %v)", k, v, ok)
		}
		if _, _, ok := m.RawEntry().FromKey(99); ok {
			t.Error("Expected miss for absent key")
		}
	})
}

func TestRawEntry_FromHash(t *testing.T) {
	onBothBackends(t, 8, func(t *testing.T, m *Map[int, int]) {
		h := m.HashKey(5)
		if k, v, ok := m.RawEntry().FromKeyHashed(h, 5); !ok || k != 5 || v != 50 {
			t.Errorf("Expected (5, 50, true), got (%d, %d, %v)", k, v, ok)
		}
		k, v, ok := m.RawEntry().FromHash(h, func(k int) bool { return k == 5 })
		if !ok || k != 5 || v != 50 {
			t.Errorf("Expected (5, 50, true), got (%d, %d, %v)", k, v, ok)
		}
		if _, _, ok := m.RawEntry().FromHash(m.HashKey(99), func(k int) bool { return k == 99 }); ok {
			t.Error("Expected miss for absent key")
		}
	})
}

func TestRawEntryMut_DeferredKeyInsert(t *testing.T) {
	// The owned key is only supplied once the slot is known to be
	// vacant, under the hash computed up front.
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		h := m.HashKey(42)
		e := m.RawEntryMut().FromHash(h, func(k int) bool { return k == 42 })
		if e.Loaded() {
			t.Fatal("Expected vacant raw entry")
		}
		kp, vp := e.OrInsert(42, 7)
		if *kp != 42 || *vp != 7 {
			t.Errorf("Expected stored (42, 7), got (%d, %d)", *kp, *vp)
		}
		if v, ok := m.Get(42); !ok || v != 7 {
			t.Errorf("Expected (7, true) via regular lookup, got (%d, %v)", v, ok)
		}
	})
}

func TestRawEntryMut_OrInsertOccupied(t *testing.T) {
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		e := m.RawEntryMut().FromKey(2)
		if !e.Loaded() {
			t.Fatal("Expected occupied raw entry")
		}
		kp, vp := e.OrInsert(2, -1)
		if *kp != 2 || *vp != 20 {
			t.Errorf("Expected existing (2, 20), got (%d, %d)", *kp, *vp)
		}
	})
}

func TestRawEntryMut_AndModify(t *testing.T) {
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		m.RawEntryMut().FromKey(1).AndModify(func(_ *int, v *int) { *v *= 2 })
		if v, _ := m.Get(1); v != 20 {
			t.Errorf("Expected 20 after doubling, got %d", v)
		}
		// No-op on a vacant entry.
		m.RawEntryMut().FromKey(99).AndModify(func(_ *int, v *int) { *v = 1 })
		if m.Contains(99) {
			t.Error("Expected AndModify not to insert")
		}
	})
}

func TestRawEntryMut_OccupiedOps(t *testing.T) {
	onBothBackends(t, 8, func(t *testing.T, m *Map[int, int]) {
		oe, ok := m.RawEntryMut().FromKey(4).Occupied()
		if !ok {
			t.Fatal("Expected occupied raw entry")
		}
		if k, v := oe.Pair(); k != 4 || v != 40 {
			t.Errorf("Expected (4, 40), got (%d, %d)", k, v)
		}
		if *oe.KeyPtr() != 4 {
			t.Errorf("Expected key 4, got %d", *oe.KeyPtr())
		}
		if old := oe.InsertKey(4); old != 4 {
			t.Errorf("Expected previous key 4, got %d", old)
		}
		if old := oe.Insert(41); old != 40 {
			t.Errorf("Expected previous value 40, got %d", old)
		}
		k, v := oe.RemoveEntry()
		if k != 4 || v != 41 {
			t.Errorf("Expected (4, 41), got (%d, %d)", k, v)
		}
		if m.Contains(4) || m.Len() != 7 {
			t.Errorf("Expected key removed, got len %d", m.Len())
		}
	})
}

func TestRawEntryMut_VacantInsertHashed(t *testing.T) {
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		e := m.RawEntryMut().FromKey(77)
		ve, ok := e.Vacant()
		if !ok {
			t.Fatal("Expected vacant raw entry")
		}
		kp, vp := ve.InsertHashed(m.HashKey(77), 77, 7)
		if *kp != 77 || *vp != 7 {
			t.Errorf("Expected stored (77, 7), got (%d, %d)", *kp, *vp)
		}
		if v, ok := m.Get(77); !ok || v != 7 {
			t.Errorf("Expected (7, true), got (%d, %v)", v, ok)
		}
	})
}

func TestRawEntryMut_StaleHandlePanics(t *testing.T) {
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		e := m.RawEntryMut().FromKey(1)
		m.Insert(50, 50)
		expectPanic(t, errStaleEntry, func() {
			e.AndModify(func(_ *int, v *int) { *v = 0 })
		})
	})
}

func TestRawEntryMut_SurvivesValueOnlyOps(t *testing.T) {
	onBothBackends(t, 4, func(t *testing.T, m *Map[int, int]) {
		e := m.RawEntryMut().FromKey(2)
		oe, _ := e.Occupied()
		oe.Insert(1)
		if v := oe.Get(); v != 1 {
			t.Errorf("Expected 1 after in-place replace, got %d", v)
		}
	})
}
