package heap

import (
	"testing"

	"github.com/skeeto/brianscheme/internal/cell"
)

func TestAllocReturnsRequestedTagAndCurrentColor(t *testing.T) {
	h := New(WithInitialCells(16))

	c := h.MakeFixnum(42)
	if c.Tag != cell.Fixnum {
		t.Fatalf("tag = %v, want fixnum", c.Tag)
	}
	if c.Color != h.color {
		t.Fatalf("color = %d, want current epoch %d", c.Color, h.color)
	}
}

func TestCollectReclaimsUnreachableCells(t *testing.T) {
	h := New(WithInitialCells(8))

	// allocate a few cells with no root; they should all become free
	// once a collection runs. New permanently roots the three singletons
	// (empty list, #t, #f), so those are the only cells that survive.
	const singletons = 3
	for i := 0; i < 4; i++ {
		h.MakeFixnum(int64(i))
	}
	before := h.Stats()
	if before.Old != 0 {
		t.Fatalf("nothing should have been promoted to old yet, got %d", before.Old)
	}

	freed := h.Collect()
	if freed != before.Active-singletons {
		t.Fatalf("collect freed %d, want all of active (%d) but the %d rooted singletons", freed, before.Active, singletons)
	}

	after := h.Stats()
	if after.Old != singletons {
		t.Fatalf("old should hold only the %d rooted singletons, got %d", singletons, after.Old)
	}
}

func TestPushRootSurvivesCollection(t *testing.T) {
	h := New(WithInitialCells(8))

	p := h.MakePair(h.MakeFixnum(1), h.MakeFixnum(2))
	h.PushRoot(&p)
	defer h.PopRoot(&p)

	h.Collect()

	if p.Tag != cell.Pair {
		t.Fatalf("rooted pair was corrupted by collection: tag=%v", p.Tag)
	}
	if p.Car.Fixnum != 1 || p.Cdr.Fixnum != 2 {
		t.Fatalf("rooted pair's children did not survive: car=%v cdr=%v", p.Car, p.Cdr)
	}
}

func TestCollectPreservesPointerIdentityAcrossManyCycles(t *testing.T) {
	h := New(WithInitialCells(64))

	const n = 200
	root := h.EmptyList
	h.PushRoot(&root)
	defer h.PopRoot(&root)

	cells := make([]*cell.Cell, n)
	for i := 0; i < n; i++ {
		c := h.MakePair(h.MakeFixnum(int64(i)), root)
		h.PushRoot(&c)
		root = c
		cells[i] = c
		h.PopRoot(&c)
		// churn garbage between insertions to force repeated collection
		for j := 0; j < 10; j++ {
			h.MakeFixnum(int64(j))
		}
	}

	h.Collect()

	walker := root
	for i := n - 1; i >= 0; i-- {
		if walker != cells[i] {
			t.Fatalf("pointer identity lost at index %d", i)
		}
		if walker.Car.Fixnum != int64(i) {
			t.Fatalf("car corrupted at index %d: got %d", i, walker.Car.Fixnum)
		}
		walker = walker.Cdr
	}
	if walker != h.EmptyList {
		t.Fatalf("list did not terminate in the empty list")
	}
}

func TestRootStackToleratesNonLIFOPop(t *testing.T) {
	h := New(WithInitialCells(8))

	a := h.MakeFixnum(1)
	b := h.MakeFixnum(2)
	c := h.MakeFixnum(3)
	base := len(h.roots.slots) // New's permanent singleton roots
	h.PushRoot(&a)
	h.PushRoot(&b)
	h.PushRoot(&c)

	// pop out of order
	h.PopRoot(&b)
	h.PopRoot(&a)
	h.PopRoot(&c)

	if len(h.roots.slots) != base {
		t.Fatalf("root stack not back to its %d permanent roots after matching pops: %d left", base, len(h.roots.slots))
	}
}

func TestPopRootOfMissingAddressIsFatal(t *testing.T) {
	h := New(WithInitialCells(8))
	a := h.MakeFixnum(1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for desynchronised pop_root")
		}
		if _, ok := r.(FatalError); !ok {
			t.Fatalf("expected FatalError, got %T", r)
		}
	}()
	h.PopRoot(&a)
}

func TestFinalizableCellsAreReleasedOnlyWhenUnreachable(t *testing.T) {
	h := New(WithInitialCells(8))

	kept := h.MakeString("kept")
	h.PushRoot(&kept)
	defer h.PopRoot(&kept)

	h.MakeString("garbage")

	h.Collect()

	if kept.Str == nil {
		t.Fatalf("rooted string was finalized")
	}
}
