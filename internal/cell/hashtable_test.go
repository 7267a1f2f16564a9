package cell

import "testing"

func TestHashtableSearchMiss(t *testing.T) {
	h := NewHashtable()
	key := &Cell{Tag: Symbol, Symbol: "missing"}
	if got := h.Search(key); got != nil {
		t.Fatalf("Search on empty table = %v, want nil", got)
	}
}

func TestHashtableInsertAndSearch(t *testing.T) {
	h := NewHashtable()
	k1 := &Cell{Tag: Symbol, Symbol: "a"}
	v1 := &Cell{Tag: Fixnum, Fixnum: 1}
	k2 := &Cell{Tag: Symbol, Symbol: "b"}
	v2 := &Cell{Tag: Fixnum, Fixnum: 2}

	h.Insert(k1, v1)
	h.Insert(k2, v2)

	if got := h.Search(k1); got != v1 {
		t.Fatalf("Search(k1) = %v, want %v", got, v1)
	}
	if got := h.Search(k2); got != v2 {
		t.Fatalf("Search(k2) = %v, want %v", got, v2)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
}

func TestHashtableInsertUpdatesExistingKey(t *testing.T) {
	h := NewHashtable()
	k := &Cell{Tag: Symbol, Symbol: "a"}
	v1 := &Cell{Tag: Fixnum, Fixnum: 1}
	v2 := &Cell{Tag: Fixnum, Fixnum: 2}

	h.Insert(k, v1)
	h.Insert(k, v2)

	if got := h.Search(k); got != v2 {
		t.Fatalf("Search(k) after update = %v, want %v", got, v2)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() after update = %d, want 1 (no duplicate entry)", h.Len())
	}
}

func TestHashtableRemove(t *testing.T) {
	h := NewHashtable()
	k1 := &Cell{Tag: Symbol, Symbol: "a"}
	k2 := &Cell{Tag: Symbol, Symbol: "b"}
	h.Insert(k1, &Cell{Tag: Fixnum, Fixnum: 1})
	h.Insert(k2, &Cell{Tag: Fixnum, Fixnum: 2})

	h.Remove(k1)

	if got := h.Search(k1); got != nil {
		t.Fatalf("Search(k1) after Remove = %v, want nil", got)
	}
	if got := h.Search(k2); got == nil {
		t.Fatalf("Remove(k1) should not have disturbed k2")
	}
	if h.Len() != 1 {
		t.Fatalf("Len() after Remove = %d, want 1", h.Len())
	}
}

func TestHashtableGrowPreservesAllEntries(t *testing.T) {
	h := NewHashtable()
	keys := make([]*Cell, 0, 64)
	for i := 0; i < 64; i++ {
		k := &Cell{Tag: Fixnum, Fixnum: int64(i)}
		v := &Cell{Tag: Fixnum, Fixnum: int64(i * 10)}
		h.Insert(k, v)
		keys = append(keys, k)
	}

	if h.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", h.Len())
	}
	for i, k := range keys {
		v := h.Search(k)
		if v == nil || v.Fixnum != int64(i*10) {
			t.Fatalf("Search after grow: key %d -> %v, want %d", i, v, i*10)
		}
	}
}

func TestHashtableEachVisitsEveryEntry(t *testing.T) {
	h := NewHashtable()
	want := map[string]int64{}
	for i := 0; i < 10; i++ {
		k := &Cell{Tag: Symbol, Symbol: string(rune('a' + i))}
		h.Insert(k, &Cell{Tag: Fixnum, Fixnum: int64(i)})
		want[k.Symbol] = int64(i)
	}

	got := map[string]int64{}
	h.Each(func(k, v *Cell) {
		got[k.Symbol] = v.Fixnum
	})

	if len(got) != len(want) {
		t.Fatalf("Each visited %d entries, want %d", len(got), len(want))
	}
	for sym, fx := range want {
		if got[sym] != fx {
			t.Errorf("entry %q = %d, want %d", sym, got[sym], fx)
		}
	}
}
