// Package heap implements the heap & object model (H) and the garbage
// collector (G) of spec.md: a doubly-linked pool of tagged cells, an
// allocator that draws from a free region of that pool and triggers
// collection on exhaustion, and a Baker-style tracing collector that
// splices reachable cells from the active list onto the old list.
//
// This is a direct structural port of _examples/original_source/gc.c,
// generalised from its C macros into Go methods on *Heap.
package heap

import "github.com/skeeto/brianscheme/internal/cell"

// dlist is the doubly-linked pool gc.c calls a doubly_linked_list: either
// the "active" (provisional garbage) or "old" (reachable) set of cells.
type dlist struct {
	head, tail *cell.Cell
	count      int64
}

// unlink removes c from whichever list it currently threads through,
// mirroring the first half of move_object_to_head.
func unlink(c *cell.Cell, src *dlist) {
	if c.Prev == nil {
		src.head = c.Next
	} else {
		c.Prev.Next = c.Next
	}
	if c.Next == nil {
		src.tail = c.Prev
	} else {
		c.Next.Prev = c.Prev
	}
	src.count--
}

// moveToHead splices c out of src and prepends it to dest, matching
// move_object_to_head.
func moveToHead(c *cell.Cell, src, dest *dlist) {
	unlink(c, src)

	if dest.head == nil {
		dest.head, dest.tail = c, c
		c.Prev, c.Next = nil, nil
	} else {
		c.Prev = nil
		c.Next = dest.head
		dest.head.Prev = c
		dest.head = c
	}
	dest.count++
}

// appendToTail concatenates src onto the end of dest and empties src,
// matching append_to_tail.
func appendToTail(dest, src *dlist) {
	if src.head == nil {
		return
	}
	if dest.tail == nil {
		dest.head, dest.tail = src.head, src.tail
	} else {
		dest.tail.Next = src.head
		src.head.Prev = dest.tail
		dest.tail = src.tail
	}
	dest.count += src.count
	src.head, src.tail, src.count = nil, nil, 0
}

// Heap owns the active/old cell pools, the root stack, the finalizable
// set, and the symbol interning table — the process-wide singletons
// spec.md §5 names, bundled into one value instead of file-scope globals
// (spec.md §9's "Globals" design note).
type Heap struct {
	active, old *dlist
	nextFree    *cell.Cell
	color       uint32

	roots                        *rootStack
	finalizable, finalizableNext *finalizableStack
	symbols                      map[string]*cell.Cell

	nextHeapExtension int64
	allocCount        int64
	collectCount      int64

	// Singletons: constructing these would otherwise require allocating
	// before the heap is ready to allocate.
	EmptyList  *cell.Cell
	True       *cell.Cell
	False      *cell.Cell
}

// Option configures a new Heap.
type Option func(*config)

type config struct {
	initialCells int64
}

// WithInitialCells overrides the first heap extension's size (default
// 1000, matching gc_init's extend_heap(1000)).
func WithInitialCells(n int64) Option {
	return func(c *config) { c.initialCells = n }
}

// New builds a Heap with its first extension already performed, its root
// stack and finalizable sets initialised, and the three cell singletons
// (empty list, #t, #f) allocated — mirroring gc_init plus the handful of
// singleton constructors every other component in the core depends on.
func New(opts ...Option) *Heap {
	cfg := config{initialCells: 1000}
	for _, o := range opts {
		o(&cfg)
	}

	h := &Heap{
		active:            &dlist{},
		old:               &dlist{},
		roots:             newRootStack(400),
		finalizable:       &finalizableStack{},
		finalizableNext:   &finalizableStack{},
		symbols:           make(map[string]*cell.Cell),
		nextHeapExtension: 1000,
	}
	h.extendHeap(cfg.initialCells)
	h.nextFree = h.active.head

	h.EmptyList = h.alloc(cell.EmptyList, false)
	h.True = h.alloc(cell.Boolean, false)
	h.True.Boolean = true
	h.False = h.alloc(cell.Boolean, false)
	h.False.Boolean = false

	// gc.c/types.c push_root these at init and never pop them; do the
	// same here, or a collection that runs while none of the three is
	// transiently referenced from the explicit root stack reclaims and
	// later reissues one, breaking every comparison against its identity.
	h.PushRoot(&h.EmptyList)
	h.PushRoot(&h.True)
	h.PushRoot(&h.False)

	return h
}

// extendHeap grows the active list by extension cells, all free, matching
// gc.c's extend_heap: the new block is prepended so Next_Free_Object can
// be reset to its first cell.
func (h *Heap) extendHeap(extension int64) {
	if extension <= 0 {
		return
	}
	block := make([]cell.Cell, extension)
	for i := range block {
		block[i].Color = h.color
		if i > 0 {
			block[i].Prev = &block[i-1]
		}
		if i < len(block)-1 {
			block[i].Next = &block[i+1]
		}
	}

	last := &block[len(block)-1]
	last.Next = h.active.head
	if h.active.head != nil {
		h.active.head.Prev = last
	} else {
		h.active.tail = last
	}
	h.active.head = &block[0]
	h.nextFree = &block[0]
	h.active.count += extension
}

// alloc draws a cell from the free region of the active list, collecting
// and/or extending the heap first if it is exhausted, matching
// alloc_object. tag and needsFinalization are applied to the returned
// cell; all other fields are left zero for the caller to fill in.
func (h *Heap) alloc(tag cell.Tag, needsFinalization bool) *cell.Cell {
	if h.nextFree == nil {
		freed := h.collect()

		if freed == 0 || h.nextHeapExtension/max64(freed, 1) > 2 {
			h.extendHeap(h.nextHeapExtension)
			h.nextHeapExtension *= 3
		}

		if h.nextFree == nil {
			panic(FatalError{Msg: "alloc_object: extend_heap didn't work"})
		}
	}

	obj := h.nextFree
	obj.Tag = tag
	obj.Color = h.color
	obj.Car, obj.Cdr = nil, nil
	obj.Fixnum, obj.Character, obj.Boolean = 0, 0, false
	obj.Symbol, obj.Str, obj.Vec, obj.Code, obj.Prim, obj.Hash = "", nil, nil, nil, nil, nil

	if needsFinalization {
		h.finalizable.push(obj)
	}

	h.nextFree = obj.Next
	h.allocCount++
	return obj
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Stats reports a snapshot of heap bookkeeping, useful for tests and
// diagnostics.
type Stats struct {
	Active, Old   int64
	AllocCount    int64
	CollectCount  int64
}

func (h *Heap) Stats() Stats {
	return Stats{
		Active:       h.active.count,
		Old:          h.old.count,
		AllocCount:   h.allocCount,
		CollectCount: h.collectCount,
	}
}
