package vm

import (
	"github.com/skeeto/brianscheme/internal/cell"
	"github.com/skeeto/brianscheme/internal/heap"
)

// binding is a stable, individually addressable box for one global's
// current value, so its address can be handed to Heap.PushRoot once and
// stay valid across every later redefinition (a map value has no address
// Go will let us take).
type binding struct {
	val *cell.Cell
}

// Globals is the "mapping from symbol cells to value cells" spec.md §6
// describes, modelled as explicit runtime context (spec.md §9 "Globals")
// rather than the C original's file-scope vm_global_environment object —
// idiomatic Go replaces the ambient global with a value the caller
// constructs and threads through the VM. Symbols are interned, so keying
// by the *cell.Cell pointer itself is exactly lookup_global_value's
// pointer-identity comparison.
//
// vm.c's vm_global_environment is itself reachable from the collector's
// roots, so every bound value survives collection for the life of the
// process. Go gives Globals no such automatic visibility, so each
// binding's storage is pushed onto h's root stack exactly once, the
// first time a symbol is defined, and never popped — a global binding
// lives as long as the heap does, exactly like the C original.
type Globals struct {
	h      *heap.Heap
	values map[*cell.Cell]*binding
}

// NewGlobals returns an empty global environment rooted against h.
func NewGlobals(h *heap.Heap) *Globals {
	return &Globals{h: h, values: make(map[*cell.Cell]*binding)}
}

// Define sets sym's global value, creating and permanently rooting the
// binding if absent — define_global_variable.
func (g *Globals) Define(sym, val *cell.Cell) {
	b, ok := g.values[sym]
	if !ok {
		b = &binding{}
		g.values[sym] = b
		g.h.PushRoot(&b.val)
	}
	b.val = val
}

// Lookup returns sym's global value and whether it is bound —
// lookup_global_value, generalised to report absence instead of failing
// an assertion, since gvar needs to distinguish "unbound" to raise its
// own error (spec.md §7 "Unbound global").
func (g *Globals) Lookup(sym *cell.Cell) (*cell.Cell, bool) {
	b, ok := g.values[sym]
	if !ok {
		return nil, false
	}
	return b.val, true
}

// Bound reports whether sym has a global binding (the bound? probe
// spec.md §6 names).
func (g *Globals) Bound(sym *cell.Cell) bool {
	_, ok := g.values[sym]
	return ok
}

// RegisterBuiltins installs the primitives vm_init/vm_init_environment
// wire directly into the global environment: symbol->bytecode,
// bytecode->symbol, and set-macro! (SPEC_FULL.md "SUPPLEMENTED FEATURES").
// These are the compiler/VM bridge, not the primitive library spec.md §1
// scopes out, so they live here rather than in a primitives package.
func RegisterBuiltins(h *heap.Heap, g *Globals) {
	g.Define(h.MakeSymbol("symbol->bytecode"), h.MakePrimitiveProc(
		func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
			if argc != 1 {
				return nil, errorf("symbol->bytecode: wrong number of args, expected 1, got %d", argc)
			}
			return SymbolToBytecode(h, stack.Vec.Data[top-1]), nil
		}))

	g.Define(h.MakeSymbol("bytecode->symbol"), h.MakePrimitiveProc(
		func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
			if argc != 1 {
				return nil, errorf("bytecode->symbol: wrong number of args, expected 1, got %d", argc)
			}
			return BytecodeToSymbol(h, stack.Vec.Data[top-1]), nil
		}))

	g.Define(h.MakeSymbol("set-macro!"), h.MakePrimitiveProc(
		func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
			if argc != 1 {
				return nil, errorf("set-macro!: wrong number of args, expected 1, got %d", argc)
			}
			target := stack.Vec.Data[top-1]
			if target.Tag != cell.CompiledProc {
				return nil, errorf("set-macro!: expected a compiled procedure")
			}
			return heap.TagAsSyntaxProc(target), nil
		}))
}
