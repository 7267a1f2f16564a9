package heap

import "github.com/skeeto/brianscheme/internal/cell"

// Intern returns the unique symbol cell for name, allocating one the
// first time it is seen (spec.md §4.1 "Symbol interning": symbols with
// equal names are pointer-equal). The interning table itself is a root —
// see (*Heap).collect, which traces every interned symbol every cycle —
// so once interned a symbol cell is never reclaimed for the life of the
// heap.
func (h *Heap) Intern(name string) *cell.Cell {
	if sym, ok := h.symbols[name]; ok {
		return sym
	}
	sym := h.alloc(cell.Symbol, false)
	sym.Symbol = name
	h.symbols[name] = sym
	return sym
}

// BoolFalse returns the shared #f singleton, for callers that only have a
// narrow view of *Heap (e.g. internal/vm's opcode round-trip primitives).
func (h *Heap) BoolFalse() *cell.Cell { return h.False }
