package heap

import "github.com/skeeto/brianscheme/internal/cell"

// Every constructor below may invoke (*Heap).collect if the free list is
// exhausted, so any pointer argument a caller still needs after the call
// must already be reachable — either pushed onto the root stack, or
// already linked into a cell that is itself reachable (spec.md §3
// invariant 2). Constructors never need to root their own arguments
// mid-call: each one allocates exactly the one new cell it returns, with
// no further allocation in between taking the argument and storing it.

// MakeFixnum boxes an integer.
func (h *Heap) MakeFixnum(n int64) *cell.Cell {
	c := h.alloc(cell.Fixnum, false)
	c.Fixnum = n
	return c
}

// MakeCharacter boxes a codepoint.
func (h *Heap) MakeCharacter(r rune) *cell.Cell {
	c := h.alloc(cell.Character, false)
	c.Character = r
	return c
}

// MakeBoolean returns the shared #t/#f singleton for b, matching the
// "one of two singletons" payload spec.md §3 describes for the boolean
// tag — booleans are never freshly allocated past heap construction.
func (h *Heap) MakeBoolean(b bool) *cell.Cell {
	if b {
		return h.True
	}
	return h.False
}

// MakePair allocates a new cons cell.
func (h *Heap) MakePair(car, cdr *cell.Cell) *cell.Cell {
	c := h.alloc(cell.Pair, false)
	c.Car, c.Cdr = car, cdr
	return c
}

// MakeVector allocates a vector of n slots, each initialised to init —
// ordinarily the empty-list singleton, per spec.md §3's initialisation
// rule for operand-stack growth (invariant 3 generalises cleanly to every
// vector, not just the stack).
func (h *Heap) MakeVector(n int, init *cell.Cell) *cell.Cell {
	c := h.alloc(cell.Vector, true)
	data := make([]*cell.Cell, n)
	for i := range data {
		data[i] = init
	}
	c.Vec = &cell.VectorBuf{Data: data}
	return c
}

// MakeString allocates a string cell over a copy of s.
func (h *Heap) MakeString(s string) *cell.Cell {
	c := h.alloc(cell.String, true)
	buf := make([]byte, len(s))
	copy(buf, s)
	c.Str = &cell.StringBuf{Bytes: buf}
	return c
}

// MakeSymbol interns name, per §4.1 (symbols are never freshly allocated
// once seen — see (*Heap).Intern).
func (h *Heap) MakeSymbol(name string) *cell.Cell {
	return h.Intern(name)
}

// MakeCompiledProc builds a compiled procedure over bytecode and the
// environment it captures.
func (h *Heap) MakeCompiledProc(bytecode cell.Code, env *cell.Cell) *cell.Cell {
	c := h.alloc(cell.CompiledProc, false)
	c.Code, c.Cdr = bytecode, env
	return c
}

// MakeCompiledSyntaxProc is the set-macro!-tagged sibling of
// MakeCompiledProc (vm.c's vm_tag_macro_proc re-tags in place rather than
// allocating fresh; TagAsSyntaxProc below matches that).
func (h *Heap) MakeCompiledSyntaxProc(bytecode cell.Code, env *cell.Cell) *cell.Cell {
	c := h.alloc(cell.CompiledSyntaxProc, false)
	c.Code, c.Cdr = bytecode, env
	return c
}

// TagAsSyntaxProc re-tags an existing compiled procedure as a
// compiled_syntax_proc in place, matching vm.c's set-macro! primitive
// (vm_tag_macro_proc), which mutates FIRST->type rather than copying.
func TagAsSyntaxProc(c *cell.Cell) *cell.Cell {
	c.Tag = cell.CompiledSyntaxProc
	return c
}

// MakePrimitiveProc wraps a Go function conforming to the primitive
// calling convention (spec.md §4.1).
func (h *Heap) MakePrimitiveProc(fn cell.PrimitiveFunc) *cell.Cell {
	c := h.alloc(cell.PrimitiveProc, false)
	c.Prim = fn
	return c
}

// MakeMetaProc wraps inner (a callable) with metadata, unwrapped
// transparently by callj/fcallj (spec.md §4.3 "Meta unwrap").
func (h *Heap) MakeMetaProc(inner, metadata *cell.Cell) *cell.Cell {
	c := h.alloc(cell.MetaProc, false)
	c.Car, c.Cdr = inner, metadata
	return c
}

// MakeHashTable allocates an empty hash table.
func (h *Heap) MakeHashTable() *cell.Cell {
	c := h.alloc(cell.HashTable, true)
	c.Hash = cell.NewHashtable()
	return c
}
