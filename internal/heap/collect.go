package heap

import "github.com/skeeto/brianscheme/internal/cell"

// Collect runs one full tracing cycle: merge old back into active, trace
// every root into old, finalize what didn't survive, and hand the
// residue of active back out as free cells. It mirrors
// original_source/gc.c's baker_collect, including the double colour-epoch
// bump described in spec.md §4.2's "Colour semantics".
func (h *Heap) Collect() int64 {
	return h.collect()
}

func (h *Heap) collect() int64 {
	appendToTail(h.active, h.old)

	h.color++
	h.roots.each(func(root *cell.Cell) {
		h.moveReachable(root)
	})
	// The interning table is a root (spec.md §4.1): every interned symbol
	// survives every cycle for the life of the heap, independent of the
	// explicit push_root/pop_root protocol.
	for _, sym := range h.symbols {
		h.moveReachable(sym)
	}

	for _, obj := range h.finalizable.items {
		if obj.Color != h.color {
			finalize(obj)
		} else {
			h.finalizableNext.push(obj)
		}
	}
	h.finalizable, h.finalizableNext = h.finalizableNext, h.finalizable
	h.finalizableNext.items = h.finalizableNext.items[:0]

	// Second bump: anything extended onto the heap immediately after this
	// collection is coloured with the *next* epoch's value, so a
	// collection that runs right afterward doesn't mistake a never-yet
	// linked-into-a-root cell for one already traced this cycle.
	h.color++

	h.nextFree = h.active.head
	numFree := h.active.count
	h.collectCount++
	return numFree
}

// moveReachable marks root live and pulls its entire reachable subgraph
// from active into old. It replaces gc.c's intrusive prev-pointer scan
// (which reuses the list's own linkage as an implicit work queue) with an
// explicit FIFO worklist — same reachability result, without overloading
// Prev for two purposes.
func (h *Heap) moveReachable(root *cell.Cell) {
	if root == nil || root.Color == h.color {
		return
	}
	root.Color = h.color
	moveToHead(root, h.active, h.old)

	queue := []*cell.Cell{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		for _, child := range children(c) {
			if child == nil || child.Color == h.color {
				continue
			}
			child.Color = h.color
			moveToHead(child, h.active, h.old)
			queue = append(queue, child)
		}
	}
}

// children returns the cell pointers scan_iter's switch-on-tag traces in
// gc.c's move_reachable, one case per tag that can hold other cells.
func children(c *cell.Cell) []*cell.Cell {
	switch c.Tag {
	case cell.Pair:
		return []*cell.Cell{c.Car, c.Cdr}
	case cell.CompiledProc, cell.CompiledSyntaxProc:
		// captured env, plus every constant an instruction embeds (fn's
		// proc template, const's value, gvar/gset's symbol) — Code is a
		// plain Go slice, so nothing else walks these for us.
		out := make([]*cell.Cell, 0, len(c.Code)+1)
		out = append(out, c.Cdr)
		for _, instr := range c.Code {
			if instr.Val != nil {
				out = append(out, instr.Val)
			}
		}
		return out
	case cell.MetaProc:
		return []*cell.Cell{c.Car, c.Cdr} // inner proc, metadata
	case cell.Vector:
		if c.Vec == nil {
			return nil
		}
		return c.Vec.Data
	case cell.HashTable:
		if c.Hash == nil {
			return nil
		}
		out := make([]*cell.Cell, 0, c.Hash.Len()*2)
		c.Hash.Each(func(k, v *cell.Cell) {
			out = append(out, k, v)
		})
		return out
	default:
		return nil
	}
}

// finalize releases the external buffer a cell owns, matching
// finalize_object. Finalizers must be idempotent against double
// invocation (spec.md §4.2); nilling the buffer after release satisfies
// that trivially since a cell is only ever finalized once it has left
// every collector list.
func finalize(c *cell.Cell) {
	switch c.Tag {
	case cell.String:
		c.Str = nil
	case cell.Vector:
		c.Vec = nil
	case cell.HashTable:
		c.Hash = nil
	}
}
